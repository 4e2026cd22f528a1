// Package engine advances a world one tick at a time on a worker goroutine
// and exposes the run's progress through a lock-guarded Boundary.
package engine

import (
	"log/slog"

	"github.com/talgya/worldhistory/internal/world"
)

// Pass is one transformation applied to the store each tick. Passes keep no
// state outside the store.
type Pass struct {
	Name string
	Run  func(cfg *world.SimulationConfig, s *world.Store)
}

// Schedule is the ordered list of passes for one tick.
type Schedule struct {
	passes []Pass
}

// ScheduleFor builds the pass order for a direction and timespan.
//
//	Forwards  + Days:   age, health, affliction progress, death
//	Forwards  + Months: age, health, affliction progress
//	Backwards + Days:   health
//	Backwards + Months: health, death
func ScheduleFor(d world.HistoryDirection, t world.Timespan) *Schedule {
	var passes []Pass
	switch {
	case d == world.Forwards && t == world.Days:
		passes = []Pass{AgingPass, HealthPass, AfflictionProgressPass, DeathPass}
	case d == world.Forwards && t == world.Months:
		passes = []Pass{AgingPass, HealthPass, AfflictionProgressPass}
	case d == world.Backwards && t == world.Days:
		passes = []Pass{HealthPass}
	default:
		passes = []Pass{HealthPass, DeathPass}
	}
	return &Schedule{passes: passes}
}

// Names returns the pass names in execution order.
func (sc *Schedule) Names() []string {
	names := make([]string, len(sc.passes))
	for i, p := range sc.passes {
		names[i] = p.Name
	}
	return names
}

// Run applies every pass once, in order.
func (sc *Schedule) Run(s *world.Store) {
	cfg := s.Config()
	for _, p := range sc.passes {
		p.Run(cfg, s)
	}
}

// LogValue implements slog.LogValuer.
func (sc *Schedule) LogValue() slog.Value {
	return slog.AnyValue(sc.Names())
}
