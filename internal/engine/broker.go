package engine

import (
	"sync"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// progressBuffer is how many batches a subscriber may fall behind before
// its oldest pending batch is discarded.
const progressBuffer = 64

// ProgressBroker fans out the batches of each running simulation. A
// subscriber joining mid-run first receives the latest batch, so it learns
// how far the run has got without waiting for the next one. A subscriber
// that falls behind loses its oldest batches, never the newest.
//
// Finished runs keep an empty closed topic so that a subscriber arriving
// after the end gets a closed channel.
type ProgressBroker struct {
	mu     sync.Mutex
	topics map[string]*progressTopic
}

type progressTopic struct {
	subs   map[int]chan model.Progress
	nextID int
	latest *model.Progress
	closed bool
}

func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{topics: make(map[string]*progressTopic)}
}

func (b *ProgressBroker) topic(runID string) *progressTopic {
	t, ok := b.topics[runID]
	if !ok {
		t = &progressTopic{subs: make(map[int]chan model.Progress)}
		b.topics[runID] = t
	}
	return t
}

// Subscribe returns the batch stream of a run and a function releasing it.
// The channel is closed once the run finishes.
func (b *ProgressBroker) Subscribe(runID string) (<-chan model.Progress, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.topic(runID)
	ch := make(chan model.Progress, progressBuffer)
	if t.closed {
		close(ch)
		return ch, func() {}
	}
	if t.latest != nil {
		ch <- *t.latest
	}

	id := t.nextID
	t.nextID++
	t.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(t.subs, id)
	}
}

// Publish records p as the run's latest batch and delivers it to every
// subscriber. It never blocks the run.
func (b *ProgressBroker) Publish(p model.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.topic(p.RunID)
	if t.closed {
		return
	}
	t.latest = &p

	for _, ch := range t.subs {
		select {
		case ch <- p:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p:
		default:
		}
	}
}

// Subscribers reports how many clients are following a run.
func (b *ProgressBroker) Subscribers(runID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[runID]; ok {
		return len(t.subs)
	}
	return 0
}

// Close ends the run's stream. Pending batches stay readable before the
// channels report closed.
func (b *ProgressBroker) Close(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.topic(runID)
	t.closed = true
	t.latest = nil
	for id, ch := range t.subs {
		close(ch)
		delete(t.subs, id)
	}
}
