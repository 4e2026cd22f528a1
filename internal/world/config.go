package world

import (
	"errors"
	"fmt"
)

// MinSimSteps is the smallest number of increments a run may be asked for.
const MinSimSteps = 10

var (
	// ErrConfigLocked is returned when a locked setting is changed.
	ErrConfigLocked = errors.New("simulation config is locked in")
	// ErrInvalidSteps is returned for an unusable increment target.
	ErrInvalidSteps = errors.New("invalid increment target")
)

// HistoryDirection is the direction history generates in.
type HistoryDirection uint8

const (
	// Forwards generates history as if time progresses from a point in the past.
	Forwards HistoryDirection = iota
	// Backwards generates history as if explaining the current state of the world.
	Backwards
)

func (d HistoryDirection) String() string {
	if d == Backwards {
		return "backwards"
	}
	return "forwards"
}

// ParseDirection reads "forwards" or "backwards".
func ParseDirection(s string) (HistoryDirection, error) {
	switch s {
	case "forwards", "forward":
		return Forwards, nil
	case "backwards", "backward":
		return Backwards, nil
	}
	return Forwards, fmt.Errorf("unknown history direction %q", s)
}

// Timespan is the length of time one tick represents.
type Timespan uint8

const (
	Months Timespan = iota
	Days
)

func (t Timespan) String() string {
	if t == Days {
		return "days"
	}
	return "months"
}

// ParseTimespan reads "days" or "months".
func ParseTimespan(s string) (Timespan, error) {
	switch s {
	case "days", "day":
		return Days, nil
	case "months", "month":
		return Months, nil
	}
	return Months, fmt.Errorf("unknown timespan %q", s)
}

// SimulationConfig is the overarching information about a world and its run.
type SimulationConfig struct {
	name      string
	seed      int64
	direction HistoryDirection
	timespan  Timespan

	// LockedIn prevents changes to name, seed, direction and timespan.
	// Set by the controller on the first execution.
	LockedIn bool

	IncrementsCompleted     uint32
	IncrementsForCompletion uint32
}

// DefaultSimulationConfig returns an unlocked forwards/months config.
func DefaultSimulationConfig(seed int64) SimulationConfig {
	return SimulationConfig{
		seed:                    seed,
		direction:               Forwards,
		timespan:                Months,
		IncrementsForCompletion: MinSimSteps,
	}
}

func (c *SimulationConfig) Name() string                { return c.name }
func (c *SimulationConfig) Seed() int64                 { return c.seed }
func (c *SimulationConfig) Direction() HistoryDirection { return c.direction }
func (c *SimulationConfig) Timespan() Timespan          { return c.timespan }

// SetName renames the world.
func (c *SimulationConfig) SetName(name string) error {
	if c.LockedIn {
		return ErrConfigLocked
	}
	c.name = name
	return nil
}

// SetSeed changes the RNG seed.
func (c *SimulationConfig) SetSeed(seed int64) error {
	if c.LockedIn {
		return ErrConfigLocked
	}
	c.seed = seed
	return nil
}

// SetDirection changes the history direction.
func (c *SimulationConfig) SetDirection(d HistoryDirection) error {
	if c.LockedIn {
		return ErrConfigLocked
	}
	c.direction = d
	return nil
}

// SetTimespan changes the tick granularity.
func (c *SimulationConfig) SetTimespan(t Timespan) error {
	if c.LockedIn {
		return ErrConfigLocked
	}
	c.timespan = t
	return nil
}

// SetIncrementsForCompletion changes how many increments the run lasts.
// Allowed after lock-in so a finished run can be continued.
func (c *SimulationConfig) SetIncrementsForCompletion(n uint32) error {
	if n < MinSimSteps {
		return fmt.Errorf("%w: %d is below the minimum of %d", ErrInvalidSteps, n, MinSimSteps)
	}
	if n < c.IncrementsCompleted {
		return fmt.Errorf("%w: %d is below the %d already completed", ErrInvalidSteps, n, c.IncrementsCompleted)
	}
	c.IncrementsForCompletion = n
	return nil
}

// Complete reports whether the increment target has been reached.
func (c *SimulationConfig) Complete() bool {
	return c.IncrementsCompleted >= c.IncrementsForCompletion
}
