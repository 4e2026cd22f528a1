package engine

import "errors"

var (
	// ErrAlreadySimulating is returned by Execute while a run is in progress.
	ErrAlreadySimulating = errors.New("simulation already executing")
	// ErrNotFrozen is returned when the store is requested during a run.
	ErrNotFrozen = errors.New("simulation is not frozen")
	// ErrBoundaryPoisoned is returned when a writer panicked while holding the
	// boundary lock. Its statistics can no longer be trusted.
	ErrBoundaryPoisoned = errors.New("simulation boundary poisoned")
	// ErrSimulationPanicked is returned when a pass panicked on the worker.
	ErrSimulationPanicked = errors.New("simulation worker panicked")
)
