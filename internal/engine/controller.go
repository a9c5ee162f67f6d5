package engine

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/Kyky30/Projet-SIR/internal/epidemic"
	"github.com/Kyky30/Projet-SIR/internal/model"
)

var (
	// ErrAlreadyStarted is returned by Start when the controller is not Idle.
	ErrAlreadyStarted = errors.New("controller already started")

	// ErrNotRunning is returned when stepping or stopping something that is
	// not running.
	ErrNotRunning = errors.New("not running")
)

// State is the lifecycle state of a Controller.
type State int

const (
	Idle State = iota
	Running
	Completed
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Batch is the result of one Step.
type Batch struct {
	// Snapshots holds only the days added by this batch.
	Snapshots []model.Snapshot
	Elapsed   int
	Horizon   int
}

// Controller drives an engine toward a horizon in bounded batches.
//
// A single goroutine calls Step (or ranges over Batches). Stop, State,
// Elapsed, Statistics and Err may be called concurrently; a stop request
// takes effect at the next batch boundary and never interrupts a batch.
type Controller struct {
	mu sync.Mutex

	state   State
	eng     epidemic.Engine
	horizon int
	batch   int
	elapsed int
	stats   []model.Snapshot
	err     error

	inFlight      bool
	stopRequested bool
	// gen increments on Reset so a batch finishing afterwards is discarded.
	gen uint64
}

// NewController returns an Idle controller.
func NewController() *Controller {
	return &Controller{}
}

// Start moves an Idle controller to Running. horizon is the total number of
// days to simulate and batch the maximum number advanced per Step.
func (c *Controller) Start(eng epidemic.Engine, horizon, batch int) error {
	if eng == nil {
		return errors.New("start controller: nil engine")
	}
	if horizon <= 0 {
		return &model.ValidationError{Field: model.KeyHorizonDays, Reason: fmt.Sprintf("must be positive, got %d", horizon)}
	}
	if batch <= 0 {
		return &model.ValidationError{Field: model.KeyDiscretization, Reason: fmt.Sprintf("must be positive, got %d", batch)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return fmt.Errorf("%w: state is %s", ErrAlreadyStarted, c.state)
	}
	c.state = Running
	c.eng = eng
	c.horizon = horizon
	c.batch = batch
	c.elapsed = 0
	c.stats = nil
	c.err = nil
	c.stopRequested = false
	return nil
}

// Step advances the engine by min(batch, horizon-elapsed) days. It returns
// the batch and whether the controller is still Running afterwards. An
// engine error stops the controller and is returned unchanged.
func (c *Controller) Step() (Batch, bool, error) {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return Batch{}, false, ErrNotRunning
	}
	if c.stopRequested {
		c.state = Stopped
		c.mu.Unlock()
		return Batch{}, false, nil
	}
	n := min(c.batch, c.horizon-c.elapsed)
	eng := c.eng
	gen := c.gen
	c.inFlight = true
	c.mu.Unlock()

	snaps, err := eng.Advance(n)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.gen {
		return Batch{}, false, nil
	}
	if err != nil {
		c.state = Stopped
		c.err = err
		return Batch{}, false, err
	}

	c.stats = append(c.stats, snaps...)
	c.elapsed += n

	switch {
	case c.elapsed >= c.horizon:
		c.state = Completed
	case c.stopRequested:
		c.state = Stopped
	}

	return Batch{Snapshots: snaps, Elapsed: c.elapsed, Horizon: c.horizon}, c.state == Running, nil
}

// Batches steps the controller until it leaves Running, yielding each batch.
// An engine error is yielded once and ends the sequence. Breaking out of the
// loop leaves the controller Running.
func (c *Controller) Batches() iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		for {
			b, running, err := c.Step()
			if errors.Is(err, ErrNotRunning) {
				return
			}
			if err != nil {
				yield(Batch{}, err)
				return
			}
			if len(b.Snapshots) > 0 && !yield(b, nil) {
				return
			}
			if !running {
				return
			}
		}
	}
}

// Stop requests a stop. With no batch in flight the controller is Stopped
// immediately, otherwise when the current batch finishes. Stopping a
// controller that is not Running is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return
	}
	if c.inFlight {
		c.stopRequested = true
		return
	}
	c.state = Stopped
}

// Reset returns the controller to Idle from any state, discarding
// statistics, elapsed days and any recorded error.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.state = Idle
	c.eng = nil
	c.horizon = 0
	c.batch = 0
	c.elapsed = 0
	c.stats = nil
	c.err = nil
	c.stopRequested = false
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Statistics returns a copy of every snapshot appended since Start.
func (c *Controller) Statistics() []model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Snapshot, len(c.stats))
	copy(out, c.stats)
	return out
}

// Err returns the engine error that stopped the run, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
