package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Kyky30/Projet-SIR/internal/backend"
	"github.com/Kyky30/Projet-SIR/internal/model"
	"github.com/Kyky30/Projet-SIR/internal/store"
)

// DefaultBatchDelay is the pause between two batches of a run.
const DefaultBatchDelay = 100 * time.Millisecond

// Runner executes runs asynchronously. Each run gets its own engine and
// Controller, driven by one goroutine.
type Runner struct {
	store         store.RunStore
	registry      *backend.Registry
	logger        *slog.Logger
	broker        *ProgressBroker
	batchDelay    time.Duration
	maxPopulation int

	wg     sync.WaitGroup
	mu     sync.Mutex
	active map[string]*activeRun
}

type activeRun struct {
	ctrl     *Controller
	stop     chan struct{}
	stopOnce sync.Once
}

func (a *activeRun) requestStop() {
	a.ctrl.Stop()
	a.stopOnce.Do(func() { close(a.stop) })
}

// Option configures a Runner.
type Option func(*Runner)

// WithBatchDelay sets the pause between batches. Zero disables pacing.
func WithBatchDelay(d time.Duration) Option {
	return func(r *Runner) { r.batchDelay = d }
}

// WithMaxPopulation sets the population ceiling enforced on submitted runs.
// A non-positive value disables the ceiling.
func WithMaxPopulation(n int) Option {
	return func(r *Runner) { r.maxPopulation = n }
}

// NewRunner creates a runner persisting to s and building engines from reg.
func NewRunner(s store.RunStore, reg *backend.Registry, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:         s,
		registry:      reg,
		logger:        logger,
		broker:        NewProgressBroker(),
		batchDelay:    DefaultBatchDelay,
		maxPopulation: model.DefaultMaxPopulation,
		active:        make(map[string]*activeRun),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Broker returns the runner's progress broker for SSE subscription.
func (r *Runner) Broker() *ProgressBroker {
	return r.broker
}

// Submit validates the run, builds its engine, stores it with status
// "pending" and starts simulating it in a goroutine. Missing ID, engine
// kind and creation time are filled in on run. The goroutine operates on a
// copy of the run.
func (r *Runner) Submit(ctx context.Context, run *model.Run) error {
	if run.Engine == "" {
		run.Engine = backend.DefaultKind
	}
	b, err := r.registry.Resolve(run.Engine)
	if err != nil {
		return err
	}
	if err := run.Params.ValidateFor(run.Engine, r.maxPopulation); err != nil {
		return err
	}
	eng, err := b.New(backend.RunSpec{Params: run.Params, Seed: run.Seed})
	if err != nil {
		return fmt.Errorf("build %s engine: %w", run.Engine, err)
	}

	ctrl := NewController()
	if err := ctrl.Start(eng, run.Params.HorizonDays, run.Params.Discretization); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = model.NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Status = model.StatusPending
	run.Elapsed = 0

	if err := r.store.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	ar := &activeRun{ctrl: ctrl, stop: make(chan struct{})}
	r.mu.Lock()
	r.active[run.ID] = ar
	r.mu.Unlock()

	runCopy := *run
	r.wg.Go(func() {
		r.execute(&runCopy, ar)
	})

	return nil
}

// Stop requests that a run stop at its next batch boundary.
func (r *Runner) Stop(id string) error {
	r.mu.Lock()
	ar, ok := r.active[id]
	r.mu.Unlock()
	if !ok {
		return ErrNotRunning
	}
	ar.requestStop()
	return nil
}

// StopAll requests a stop of every active run.
func (r *Runner) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ar := range r.active {
		ar.requestStop()
	}
}

// Active returns the number of runs currently executing.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Wait blocks until all in-flight run goroutines complete.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// execute drives the run's controller: pending→running→completed/stopped/failed.
func (r *Runner) execute(run *model.Run, ar *activeRun) {
	defer r.broker.Close(run.ID)
	defer func() {
		r.mu.Lock()
		delete(r.active, run.ID)
		r.mu.Unlock()
	}()

	logger := r.logger.With("run_id", run.ID, "engine", run.Engine)
	ctrl := ar.ctrl
	ctx := context.Background()

	if ctrl.State() == Stopped {
		r.finish(ctx, logger, run, model.StatusStopped, "")
		return
	}

	if err := r.store.UpdateRunStatus(ctx, run.ID, model.StatusRunning, ""); err != nil {
		logger.Error("failed to transition to running", "error", err)
		r.finish(ctx, logger, run, model.StatusFailed, fmt.Sprintf("failed to start: %v", err))
		return
	}

	activeRuns.Inc()
	defer activeRuns.Dec()
	logger.Info("run started", "horizon", run.Params.HorizonDays, "batch", run.Params.Discretization)

	for {
		start := time.Now()
		batch, running, err := ctrl.Step()
		if errors.Is(err, ErrNotRunning) {
			break
		}
		if err != nil {
			logger.Error("engine failed", "elapsed", ctrl.Elapsed(), "error", err)
			r.finish(ctx, logger, run, model.StatusFailed, err.Error())
			return
		}

		if n := len(batch.Snapshots); n > 0 {
			batchDuration.WithLabelValues(run.Engine).Observe(time.Since(start).Seconds())
			simulatedDaysTotal.WithLabelValues(run.Engine).Add(float64(n))

			if err := r.store.AppendSnapshots(ctx, run.ID, batch.Elapsed, batch.Snapshots); err != nil {
				ctrl.Stop()
				logger.Error("failed to persist snapshots", "elapsed", batch.Elapsed, "error", err)
				r.finish(ctx, logger, run, model.StatusFailed, fmt.Sprintf("persist snapshots: %v", err))
				return
			}
			r.broker.Publish(model.Progress{
				RunID:     run.ID,
				Elapsed:   batch.Elapsed,
				Horizon:   batch.Horizon,
				Snapshots: batch.Snapshots,
			})
			logger.Debug("batch done", "elapsed", batch.Elapsed, "horizon", batch.Horizon)
		}

		if !running {
			break
		}
		if r.batchDelay > 0 {
			select {
			case <-time.After(r.batchDelay):
			case <-ar.stop:
			}
		}
	}

	status := model.StatusStopped
	if ctrl.State() == Completed {
		status = model.StatusCompleted
	}
	r.finish(ctx, logger, run, status, "")
}

// finish records a terminal status. errMsg is stored for failed runs.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, run *model.Run, status, errMsg string) {
	runsTotal.WithLabelValues(run.Engine, status).Inc()

	if err := r.store.UpdateRunStatus(ctx, run.ID, status, errMsg); err != nil {
		logger.Error("failed to record final status", "status", status, "error", err)
		return
	}
	logger.Info("run finished", "status", status)
}
