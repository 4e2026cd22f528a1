// Simulation control: the Frozen/Executing state machine and its worker.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/talgya/worldhistory/internal/entropy"
	"github.com/talgya/worldhistory/internal/world"
)

// Access is what Current returns: the store while frozen, or a snapshot of
// the running boundary while executing. Exactly one field is set.
type Access struct {
	Store    *world.Store
	Snapshot *BoundarySnapshot
}

// Controller owns a world and runs it on a worker goroutine. While frozen
// the store can be edited freely; while executing only the Boundary is
// reachable. A Controller must be driven from a single goroutine.
type Controller struct {
	store    *world.Store
	schedule *Schedule
	run      *run
}

type run struct {
	boundary *Boundary
	done     chan runResult
}

type runResult struct {
	store *world.Store
	err   error
}

// NewController creates a frozen controller around s.
func NewController(s *world.Store) *Controller {
	return &Controller{store: s}
}

// DefaultController creates a frozen controller around an empty world with
// a random seed.
func DefaultController() *Controller {
	return NewController(world.NewStore(world.DefaultSimulationConfig(entropy.Seed())))
}

// Executing reports whether a run is in progress.
func (c *Controller) Executing() bool {
	return c.run != nil
}

// Boundary returns the running boundary, or nil while frozen.
func (c *Controller) Boundary() *Boundary {
	if c.run == nil {
		return nil
	}
	return c.run.boundary
}

// Execute hands the store to a worker goroutine and returns the run's
// boundary. The first execution locks the config and installs the schedule
// for its direction and timespan for the lifetime of the controller.
func (c *Controller) Execute() (*Boundary, error) {
	if c.run != nil {
		return nil, ErrAlreadySimulating
	}

	cfg := c.store.Config()
	cfg.LockedIn = true
	if c.schedule == nil {
		c.schedule = ScheduleFor(cfg.Direction(), cfg.Timespan())
		slog.Info("simulation schedule installed",
			"direction", cfg.Direction(),
			"timespan", cfg.Timespan(),
			"passes", c.schedule,
		)
	}

	b := NewBoundary(cfg.IncrementsCompleted, cfg.IncrementsForCompletion)
	slog.Info("simulation executing",
		"run", b.RunID(),
		"completed", cfg.IncrementsCompleted,
		"target", cfg.IncrementsForCompletion,
	)

	// The worker owns the store from here on; cfg must not be touched.
	done := make(chan runResult, 1)
	go work(c.store, c.schedule, b, done)
	c.store = nil
	c.run = &run{boundary: b, done: done}
	return b, nil
}

// Freeze stops the run before its next tick and blocks until the worker
// hands the store back. Freezing a frozen controller does nothing.
//
// If the worker panicked or the boundary was poisoned the world is lost: the
// controller resets to DefaultController and the error is returned.
func (c *Controller) Freeze() error {
	if c.run == nil {
		return nil
	}
	if err := c.run.boundary.requestStop(); err != nil {
		slog.Warn("stop request failed, waiting for worker", "run", c.run.boundary.RunID(), "error", err)
	}
	return c.handBack(<-c.run.done)
}

// Wait blocks until the run reaches its increment target and then freezes
// like Freeze. It returns ctx's error, leaving the run executing, if ctx is
// done first.
func (c *Controller) Wait(ctx context.Context) error {
	if c.run == nil {
		return nil
	}
	select {
	case res := <-c.run.done:
		return c.handBack(res)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the store while frozen or a boundary snapshot while
// executing.
func (c *Controller) Current() (Access, error) {
	if c.run == nil {
		return Access{Store: c.store}, nil
	}
	snap, err := c.run.boundary.Snapshot()
	if err != nil {
		return Access{}, err
	}
	return Access{Snapshot: &snap}, nil
}

// Store returns the store, or ErrNotFrozen while executing.
func (c *Controller) Store() (*world.Store, error) {
	if c.run != nil {
		return nil, ErrNotFrozen
	}
	return c.store, nil
}

func (c *Controller) handBack(res runResult) error {
	b := c.run.boundary
	c.run = nil

	err := res.err
	if b.Poisoned() && !errors.Is(err, ErrBoundaryPoisoned) {
		if err == nil {
			err = ErrBoundaryPoisoned
		} else {
			err = fmt.Errorf("%w: %w", ErrBoundaryPoisoned, err)
		}
	}
	if err != nil || res.store == nil {
		slog.Error("simulation lost, resetting to an empty world", "run", b.RunID(), "error", err)
		*c = *DefaultController()
		return err
	}

	c.store = res.store
	cfg := c.store.Config()
	slog.Info("simulation frozen",
		"run", b.RunID(),
		"completed", cfg.IncrementsCompleted,
		"target", cfg.IncrementsForCompletion,
		"elapsed", time.Since(b.StartedAt()).Round(time.Millisecond),
	)
	return nil
}

// work is the worker loop. It owns s until it sends it back on done.
func work(s *world.Store, sched *Schedule, b *Boundary, done chan<- runResult) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			slog.Error("simulation worker panicked",
				"run", b.RunID(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			done <- runResult{err: fmt.Errorf("%w: %v", ErrSimulationPanicked, r)}
			return
		}
		done <- runResult{store: s, err: err}
	}()

	cfg := s.Config()
	for !cfg.Complete() {
		var stop bool
		if stop, err = b.stopRequested(); err != nil || stop {
			return
		}

		start := time.Now()
		sched.Run(s)
		elapsed := time.Since(start)
		cfg.IncrementsCompleted++

		err = b.record(cfg.IncrementsCompleted, TickSample{
			Seconds:  elapsed.Seconds(),
			Entities: s.EntityCount(),
			People:   s.PeopleCount(),
			Places:   s.PlaceCount(),
		})
		if err != nil {
			return
		}
	}
}
