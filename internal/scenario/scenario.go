// Package scenario loads YAML world presets and spawns them into a store.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/worldhistory/internal/calendar"
	"github.com/talgya/worldhistory/internal/world"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is a complete world preset.
type Scenario struct {
	Name      string `yaml:"name"`
	Seed      *int64 `yaml:"seed,omitempty"`
	Direction string `yaml:"direction,omitempty"`
	Timespan  string `yaml:"timespan,omitempty"`
	Steps     uint32 `yaml:"steps,omitempty"`

	Species     []SpeciesDef    `yaml:"species"`
	Afflictions []AfflictionDef `yaml:"afflictions"`
	Regions     []string        `yaml:"regions"`
	Settlements []SettlementDef `yaml:"settlements"`
	Factions    []FactionDef    `yaml:"factions"`
	People      []PersonDef     `yaml:"people"`
}

// SpeciesDef names a species definition.
type SpeciesDef struct {
	Name          string `yaml:"name"`
	world.Species `yaml:",inline"`
}

// AfflictionDef names an affliction definition.
type AfflictionDef struct {
	Name             string `yaml:"name"`
	world.Affliction `yaml:",inline"`
}

// SettlementDef is a settlement placed at a fixed coordinate.
type SettlementDef struct {
	Name       string         `yaml:"name"`
	Population uint32         `yaml:"population"`
	Coord      world.HexCoord `yaml:"coord"`
}

// FactionDef is a faction and its opinion of other factions.
type FactionDef struct {
	Name              string             `yaml:"name"`
	PersonalityOffset world.Personality  `yaml:"personality_offset"`
	Relations         map[string]float32 `yaml:"relations,omitempty"`
}

// PersonDef is one person. Species, factions and afflictions refer to
// definitions by name.
type PersonDef struct {
	Name        string              `yaml:"name"`
	Age         calendar.TimeLength `yaml:"age"`
	Species     string              `yaml:"species,omitempty"`
	Important   bool                `yaml:"important,omitempty"`
	Dead        bool                `yaml:"dead,omitempty"`
	Personality *world.Personality  `yaml:"personality,omitempty"`
	Factions    []string            `yaml:"factions,omitempty"`
	Afflictions []Condition         `yaml:"afflictions,omitempty"`
}

// Condition is an affliction a person starts with.
type Condition struct {
	Name     string  `yaml:"name"`
	Severity float32 `yaml:"severity"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks names are unique per kind and every reference resolves.
func (sc *Scenario) Validate() error {
	species, err := nameSet("species", len(sc.Species), func(i int) string { return sc.Species[i].Name })
	if err != nil {
		return err
	}
	afflictions, err := nameSet("affliction", len(sc.Afflictions), func(i int) string { return sc.Afflictions[i].Name })
	if err != nil {
		return err
	}
	factions, err := nameSet("faction", len(sc.Factions), func(i int) string { return sc.Factions[i].Name })
	if err != nil {
		return err
	}

	if sc.Direction != "" {
		if _, err := world.ParseDirection(sc.Direction); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if sc.Timespan != "" {
		if _, err := world.ParseTimespan(sc.Timespan); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if sc.Steps != 0 && sc.Steps < world.MinSimSteps {
		return fmt.Errorf("%w: steps %d below minimum %d", ErrInvalid, sc.Steps, world.MinSimSteps)
	}

	for _, f := range sc.Factions {
		for other := range f.Relations {
			if !factions[other] {
				return fmt.Errorf("%w: faction %q has relations with unknown faction %q", ErrInvalid, f.Name, other)
			}
		}
	}

	for _, p := range sc.People {
		if p.Name == "" {
			return fmt.Errorf("%w: person without a name", ErrInvalid)
		}
		if p.Species != "" && !species[p.Species] {
			return fmt.Errorf("%w: person %q has unknown species %q", ErrInvalid, p.Name, p.Species)
		}
		for _, f := range p.Factions {
			if !factions[f] {
				return fmt.Errorf("%w: person %q joins unknown faction %q", ErrInvalid, p.Name, f)
			}
		}
		for _, c := range p.Afflictions {
			if !afflictions[c.Name] {
				return fmt.Errorf("%w: person %q has unknown affliction %q", ErrInvalid, p.Name, c.Name)
			}
			if c.Severity < 0 {
				return fmt.Errorf("%w: person %q has negative severity for %q", ErrInvalid, p.Name, c.Name)
			}
		}
	}
	return nil
}

func nameSet(kind string, n int, name func(i int) string) (map[string]bool, error) {
	set := make(map[string]bool, n)
	for i := range n {
		v := name(i)
		if v == "" {
			return nil, fmt.Errorf("%w: %s %d has no name", ErrInvalid, kind, i)
		}
		if set[v] {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalid, kind, v)
		}
		set[v] = true
	}
	return set, nil
}

// Apply configures s and spawns everything the scenario declares. The
// store's config must not be locked in yet if the scenario sets any of its
// locked fields.
func (sc *Scenario) Apply(s *world.Store) error {
	if err := sc.configure(s.Config()); err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	species := make(map[string]world.Entity, len(sc.Species))
	for _, d := range sc.Species {
		species[d.Name] = s.SpawnSpecies(d.Name, d.Species)
	}
	afflictions := make(map[string]world.Entity, len(sc.Afflictions))
	for _, d := range sc.Afflictions {
		afflictions[d.Name] = s.SpawnAffliction(d.Name, d.Affliction)
	}
	for _, name := range sc.Regions {
		s.SpawnRegion(name)
	}
	for _, d := range sc.Settlements {
		s.SpawnSettlement(d.Name, world.Settlement{Population: d.Population, Coord: d.Coord})
	}

	factions := make(map[string]world.Entity, len(sc.Factions))
	for _, d := range sc.Factions {
		factions[d.Name] = s.SpawnFaction(d.Name, world.Faction{PersonalityOffset: d.PersonalityOffset})
	}
	for _, d := range sc.Factions {
		f, _ := world.Get[world.Faction](s, factions[d.Name])
		for other, opinion := range d.Relations {
			f.Relations[factions[other]] = opinion
		}
	}

	for _, d := range sc.People {
		personality := world.DefaultPersonality()
		if d.Personality != nil {
			personality = *d.Personality
		}
		state := world.Alive
		if d.Dead {
			state = world.Dead
		}
		e := s.SpawnPerson(world.PersonBundle{
			Name:        d.Name,
			Age:         d.Age,
			Personality: personality,
			State:       state,
			Important:   d.Important,
			Species:     species[d.Species],
		})
		for _, f := range d.Factions {
			if err := s.JoinFaction(e, factions[f]); err != nil {
				return fmt.Errorf("person %q: %w", d.Name, err)
			}
		}
		for _, c := range d.Afflictions {
			if err := s.Afflict(e, afflictions[c.Name], c.Severity); err != nil {
				return fmt.Errorf("person %q: %w", d.Name, err)
			}
		}
	}
	return nil
}

func (sc *Scenario) configure(cfg *world.SimulationConfig) error {
	if sc.Name != "" {
		if err := cfg.SetName(sc.Name); err != nil {
			return err
		}
	}
	if sc.Seed != nil {
		if err := cfg.SetSeed(*sc.Seed); err != nil {
			return err
		}
	}
	if sc.Direction != "" {
		d, _ := world.ParseDirection(sc.Direction)
		if err := cfg.SetDirection(d); err != nil {
			return err
		}
	}
	if sc.Timespan != "" {
		t, _ := world.ParseTimespan(sc.Timespan)
		if err := cfg.SetTimespan(t); err != nil {
			return err
		}
	}
	if sc.Steps != 0 {
		return cfg.SetIncrementsForCompletion(sc.Steps)
	}
	return nil
}
