package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/talgya/worldhistory/internal/calendar"
)

// Entity identifies anything stored in the world.
type Entity = ecs.Entity

// Name is the display name of an entity.
type Name struct {
	Value string
}

// Important marks entities that get more in-depth history generated.
type Important struct{}

// Person marks a person in history.
type Person struct{}

// Personality holds a person's behavioural leanings, each 0.0–1.0.
type Personality struct {
	Selflessness float32 `yaml:"selflessness"`
	Aggression   float32 `yaml:"aggression"`
}

// DefaultPersonality returns the neutral midpoint personality.
func DefaultPersonality() Personality {
	const midpoint = 0.5
	return Personality{Selflessness: midpoint, Aggression: midpoint}
}

// Age is how long something has existed. Dead things stop aging.
type Age struct {
	calendar.TimeLength
}

// Living marks an entity as alive or dead.
type Living uint8

const (
	Alive Living = iota
	Dead
)

func (l Living) String() string {
	if l == Dead {
		return "dead"
	}
	return "alive"
}

// CachedHealth caches the health of a living creature for fast reading.
// Only the health pass writes it.
type CachedHealth struct {
	value float32
}

// NewCachedHealth returns a health value that has not been computed yet.
func NewCachedHealth() CachedHealth {
	return CachedHealth{value: float32(math.Inf(1))}
}

// Read returns the cached value. +Inf means not yet computed.
func (h CachedHealth) Read() float32 {
	return h.value
}

// Severity is the intensity of one affliction on one entity.
type Severity struct {
	Affliction Entity
	Value      float32
}

// Afflicted lists the afflictions an entity suffers from, in the order they
// were contracted.
type Afflicted struct {
	Severities []Severity
}

// Find returns the index of the given affliction, or -1.
func (a *Afflicted) Find(affliction Entity) int {
	for i, s := range a.Severities {
		if s.Affliction == affliction {
			return i
		}
	}
	return -1
}

// Affliction is the definition of an illness, injury or condition.
type Affliction struct {
	Flat             SeverityFunction `yaml:"flat"`
	Coefficient      SeverityFunction `yaml:"coefficient"`
	ProgressionSpeed SeverityFunction `yaml:"progression_speed"`
}

// Species is the definition of a kind of creature.
type Species struct {
	Humanoid    bool                `yaml:"humanoid"`
	MaturityAge calendar.TimeLength `yaml:"maturity_age"`
	MaxAge      calendar.TimeLength `yaml:"max_age"`
	Resilience  float32             `yaml:"resilience"`
}

// AssociatedSpecies links a creature to its species definition.
type AssociatedSpecies struct {
	Species Entity
}

// Region is a territory, country or continent.
type Region struct{}

// Settlement is a discrete town or city.
type Settlement struct {
	Population uint32
	Coord      HexCoord
}

// Faction is a group people can be aligned with.
type Faction struct {
	// PersonalityOffset shifts the personalities of members.
	PersonalityOffset Personality
	// Relations holds what this faction thinks of other factions.
	Relations map[Entity]float32
}

// FactionMember lists the factions an entity belongs to.
type FactionMember struct {
	Factions []Entity
}

// Tile is one generated map cell.
type Tile struct {
	Cell      Cell
	Coord     HexCoord
	Terrain   Terrain
	Elevation float64
	Moisture  float64
	Fertility float64
}
