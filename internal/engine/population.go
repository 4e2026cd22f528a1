// Population passes: aging of everything that has an age.
package engine

import (
	"github.com/talgya/worldhistory/internal/world"
)

// AgingPass adds one tick's worth of time to every age: a day on Days, a
// 30-day month on Months. Dead entities keep the age they died at.
var AgingPass = Pass{Name: "age", Run: ageEntities}

func ageEntities(cfg *world.SimulationConfig, s *world.Store) {
	days := cfg.Timespan() == world.Days
	s.Aging(func(_ world.Entity, age *world.Age, state *world.Living) {
		if state != nil && *state == world.Dead {
			return
		}
		if days {
			age.AddDays(1)
		} else {
			age.AddMonths(1)
		}
	})
}
