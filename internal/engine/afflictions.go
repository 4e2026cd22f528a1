package engine

import (
	"github.com/talgya/worldhistory/internal/calendar"
	"github.com/talgya/worldhistory/internal/world"
)

// AfflictionProgressPass advances the severity of every affliction by its
// progression speed. Speeds are per day; a Months tick applies 30 days.
var AfflictionProgressPass = Pass{Name: "affliction-progress", Run: progressAfflictions}

func progressAfflictions(cfg *world.SimulationConfig, s *world.Store) {
	scale := float32(1)
	if cfg.Timespan() == world.Months {
		scale = calendar.DaysPerMonth
	}
	s.ProgressAfflictions(func(_ world.Entity, def *world.Affliction, severity float32) float32 {
		return def.ProgressionSpeed.Effect(false, severity) * scale
	})
}
