// Health passes: cached health recomputation and death.
package engine

import (
	"log/slog"

	"github.com/talgya/worldhistory/internal/world"
)

// BaselineHealth is the resilience of creatures without a species.
const BaselineHealth float32 = 100

// HealthPass recomputes the cached health of every creature whose
// afflictions or species changed since it last ran.
var HealthPass = Pass{Name: "health", Run: recacheHealth}

// DeathPass marks creatures dead when their freshly changed health drops
// below zero. It never resurrects.
var DeathPass = Pass{Name: "death", Run: processDeaths}

func recacheHealth(_ *world.SimulationConfig, s *world.Store) {
	s.RecacheHealth(ComputeHealth)
}

// ComputeHealth sums the flat effects of every affliction, multiplies the sum
// by the product of their coefficients, and scales the result by the
// species' resilience.
func ComputeHealth(in world.HealthInputs) float32 {
	var flat float32
	coefficient := float32(1)
	for _, a := range in.Afflictions {
		flat += a.Def.Flat.Effect(false, a.Severity)
		coefficient *= a.Def.Coefficient.Effect(true, a.Severity)
	}

	resilience := BaselineHealth
	if in.Species != nil {
		resilience = in.Species.Resilience
	}
	return resilience * (flat * coefficient)
}

func processDeaths(_ *world.SimulationConfig, s *world.Store) {
	s.DrainHealthChanged(func(e world.Entity, health float32, state *world.Living) {
		if health >= 0 || *state == world.Dead {
			return
		}
		*state = world.Dead
		slog.Debug("creature died", "entity", e.ID(), "name", s.NameOf(e), "health", health)
	})
}
