package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecordLength is how many ticks of statistics a Boundary keeps.
const RecordLength = 250

// TickSample is what the worker records after each tick.
type TickSample struct {
	Seconds  float64
	Entities int
	People   int
	Places   int
}

// Boundary is the only state shared between the controller and the worker.
// Many readers may hold it at once; the worker writes once per tick.
type Boundary struct {
	mu       sync.RWMutex
	poisoned bool

	runID     uuid.UUID
	startedAt time.Time

	stopNextTick  bool
	stepsComplete uint32
	stepsTotal    uint32

	tickSeconds *Ring[float64]
	entities    *Ring[int]
	people      *Ring[int]
	places      *Ring[int]
}

// NewBoundary creates the boundary for a run that has already completed
// stepsComplete of stepsTotal increments.
func NewBoundary(stepsComplete, stepsTotal uint32) *Boundary {
	return &Boundary{
		runID:         uuid.New(),
		startedAt:     time.Now(),
		stepsComplete: stepsComplete,
		stepsTotal:    stepsTotal,
		tickSeconds:   NewRing[float64](RecordLength),
		entities:      NewRing[int](RecordLength),
		people:        NewRing[int](RecordLength),
		places:        NewRing[int](RecordLength),
	}
}

// RunID identifies the run this boundary belongs to.
func (b *Boundary) RunID() uuid.UUID {
	return b.runID
}

// StartedAt is when the run was launched.
func (b *Boundary) StartedAt() time.Time {
	return b.startedAt
}

// write runs fn under the write lock. If fn panics the boundary is poisoned
// and the panic continues up the caller's stack.
func (b *Boundary) write(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.poisoned {
		return ErrBoundaryPoisoned
	}
	done := false
	defer func() {
		if !done {
			b.poisoned = true
		}
	}()
	fn()
	done = true
	return nil
}

// requestStop asks the worker to return the store before its next tick.
func (b *Boundary) requestStop() error {
	return b.write(func() { b.stopNextTick = true })
}

// stopRequested reports whether a stop has been requested.
func (b *Boundary) stopRequested() (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.poisoned {
		return false, ErrBoundaryPoisoned
	}
	return b.stopNextTick, nil
}

// record publishes one finished tick.
func (b *Boundary) record(stepsComplete uint32, s TickSample) error {
	return b.write(func() {
		b.stepsComplete = stepsComplete
		b.tickSeconds.Push(s.Seconds)
		b.entities.Push(s.Entities)
		b.people.Push(s.People)
		b.places.Push(s.Places)
	})
}

// Poisoned reports whether a writer panicked while holding the lock.
func (b *Boundary) Poisoned() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.poisoned
}

// Progress returns the fraction of the run's increments completed.
func (b *Boundary) Progress() (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.poisoned {
		return 0, ErrBoundaryPoisoned
	}
	return progress(b.stepsComplete, b.stepsTotal), nil
}

// Snapshot copies the boundary's current state.
func (b *Boundary) Snapshot() (BoundarySnapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.poisoned {
		return BoundarySnapshot{}, ErrBoundaryPoisoned
	}
	return BoundarySnapshot{
		RunID:         b.runID,
		StartedAt:     b.startedAt,
		StopRequested: b.stopNextTick,
		StepsComplete: b.stepsComplete,
		StepsTotal:    b.stepsTotal,
		Capacity:      b.tickSeconds.Cap(),
		TickSeconds:   b.tickSeconds.Values(),
		Entities:      b.entities.Values(),
		People:        b.people.Values(),
		Places:        b.places.Values(),
	}, nil
}

// BoundarySnapshot is an immutable copy of a Boundary. Histories are oldest
// first and at most RecordLength long.
type BoundarySnapshot struct {
	RunID         uuid.UUID `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	StopRequested bool      `json:"stop_requested"`
	StepsComplete uint32    `json:"steps_complete"`
	StepsTotal    uint32    `json:"steps_total"`
	Capacity      int       `json:"capacity"` // Maximum length of each history.
	TickSeconds   []float64 `json:"tick_seconds"`
	Entities      []int     `json:"entities"`
	People        []int     `json:"people"`
	Places        []int     `json:"places"`
}

// Progress returns the fraction of the run's increments completed.
func (s BoundarySnapshot) Progress() float64 {
	return progress(s.StepsComplete, s.StepsTotal)
}

func progress(complete, total uint32) float64 {
	if total == 0 {
		return 1
	}
	return min(float64(complete)/float64(total), 1)
}
