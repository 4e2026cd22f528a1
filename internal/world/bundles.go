package world

import (
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/talgya/worldhistory/internal/calendar"
)

// PersonBundle is everything needed to spawn a person.
type PersonBundle struct {
	Name        string
	Age         calendar.TimeLength
	Personality Personality
	State       Living
	Important   bool

	// Species is optional; the zero entity means none.
	Species Entity
}

// SpawnPerson creates a person with uncomputed health.
func (s *Store) SpawnPerson(p PersonBundle) Entity {
	e := s.Spawn(p.Name)
	ecs.NewMap[Person](s.world).Add(e, &Person{})
	ecs.NewMap[Personality](s.world).Add(e, &p.Personality)
	s.ages.Add(e, &Age{TimeLength: p.Age})
	s.living.Add(e, &p.State)
	health := NewCachedHealth()
	s.health.Add(e, &health)
	if p.Important {
		ecs.NewMap[Important](s.world).Add(e, &Important{})
	}
	if s.Alive(p.Species) {
		s.species.Add(e, &AssociatedSpecies{Species: p.Species})
		s.healthInputs[e] = struct{}{}
	}
	return e
}

// SpawnSpecies creates a species definition.
func (s *Store) SpawnSpecies(name string, sp Species) Entity {
	e := s.Spawn(name)
	s.speciesDefs.Add(e, &sp)
	return e
}

// SpawnAffliction creates an affliction definition.
func (s *Store) SpawnAffliction(name string, a Affliction) Entity {
	e := s.Spawn(name)
	s.afflictions.Add(e, &a)
	return e
}

// SpawnRegion creates a region.
func (s *Store) SpawnRegion(name string) Entity {
	e := s.Spawn(name)
	ecs.NewMap[Region](s.world).Add(e, &Region{})
	return e
}

// SpawnSettlement creates a settlement.
func (s *Store) SpawnSettlement(name string, st Settlement) Entity {
	e := s.Spawn(name)
	ecs.NewMap[Settlement](s.world).Add(e, &st)
	return e
}

// SpawnFaction creates a faction.
func (s *Store) SpawnFaction(name string, f Faction) Entity {
	if f.Relations == nil {
		f.Relations = make(map[Entity]float32)
	}
	e := s.Spawn(name)
	ecs.NewMap[Faction](s.world).Add(e, &f)
	return e
}

// SpawnTile creates a map tile.
func (s *Store) SpawnTile(t Tile) Entity {
	e := ecs.NewMap[Tile](s.world).NewEntity(&t)
	s.live++
	return e
}

// JoinFaction makes e a member of faction.
func (s *Store) JoinFaction(e, faction Entity) error {
	if !Has[Faction](s, faction) {
		return fmt.Errorf("join faction %v: %w", faction, ErrNoSuchEntity)
	}
	if !s.Alive(e) {
		return fmt.Errorf("join faction %v: member %v: %w", faction, e, ErrNoSuchEntity)
	}
	members := ecs.NewMap[FactionMember](s.world)
	if !members.Has(e) {
		members.Add(e, &FactionMember{Factions: []Entity{faction}})
		return nil
	}
	m := members.Get(e)
	for _, f := range m.Factions {
		if f == faction {
			return nil
		}
	}
	m.Factions = append(m.Factions, faction)
	return nil
}

// NameOf returns the entity's name, or "" if it has none.
func (s *Store) NameOf(e Entity) string {
	if !s.Alive(e) || !s.names.Has(e) {
		return ""
	}
	return s.names.Get(e).Value
}

// Aging calls fn for every entity with an age. state is nil for entities
// without a living state.
func (s *Store) Aging(fn func(e Entity, age *Age, state *Living)) {
	query := ecs.NewFilter1[Age](s.world).Query()
	for query.Next() {
		e := query.Entity()
		var state *Living
		if s.living.Has(e) {
			state = s.living.Get(e)
		}
		fn(e, query.Get(), state)
	}
}

// PersonView is a read-only copy of one person's state.
type PersonView struct {
	Entity Entity
	Name   string
	Age    calendar.TimeLength
	State  Living
	Health float32
}

// People returns a copy of every person's state in ascending id order.
func (s *Store) People() []PersonView {
	var out []PersonView
	query := ecs.NewFilter1[Person](s.world).Query()
	for query.Next() {
		e := query.Entity()
		v := PersonView{Entity: e, Name: s.NameOf(e)}
		if s.ages.Has(e) {
			v.Age = s.ages.Get(e).TimeLength
		}
		if s.living.Has(e) {
			v.State = *s.living.Get(e)
		}
		if s.health.Has(e) {
			v.Health = s.health.Get(e).value
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b PersonView) int {
		return int(a.Entity.ID()) - int(b.Entity.ID())
	})
	return out
}

// SettlementView is a read-only copy of one settlement.
type SettlementView struct {
	Entity     Entity
	Name       string
	Settlement Settlement
}

// Settlements returns a copy of every settlement in ascending id order.
func (s *Store) Settlements() []SettlementView {
	var out []SettlementView
	query := ecs.NewFilter1[Settlement](s.world).Query()
	for query.Next() {
		e := query.Entity()
		out = append(out, SettlementView{Entity: e, Name: s.NameOf(e), Settlement: *query.Get()})
	}
	slices.SortFunc(out, func(a, b SettlementView) int {
		return int(a.Entity.ID()) - int(b.Entity.ID())
	})
	return out
}
