package world

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"
)

// ErrNoSuchEntity is returned when an operation names a despawned entity.
var ErrNoSuchEntity = errors.New("no such entity")

// Store owns every entity of one world together with its config.
// A Store is not safe for concurrent use; the simulation controller hands
// it to exactly one goroutine at a time.
type Store struct {
	world  *ecs.World
	config SimulationConfig
	live   int

	names       *ecs.Map[Name]
	ages        *ecs.Map[Age]
	living      *ecs.Map[Living]
	health      *ecs.Map[CachedHealth]
	afflicted   *ecs.Map[Afflicted]
	species     *ecs.Map[AssociatedSpecies]
	speciesDefs *ecs.Map[Species]
	afflictions *ecs.Map[Affliction]

	// Change tracking consumed by the health and death passes.
	healthInputs  map[Entity]struct{}
	healthChanged map[Entity]struct{}
}

// NewStore creates an empty world with the given config.
func NewStore(cfg SimulationConfig) *Store {
	w := ecs.NewWorld()
	return &Store{
		world:         w,
		config:        cfg,
		names:         ecs.NewMap[Name](w),
		ages:          ecs.NewMap[Age](w),
		living:        ecs.NewMap[Living](w),
		health:        ecs.NewMap[CachedHealth](w),
		afflicted:     ecs.NewMap[Afflicted](w),
		species:       ecs.NewMap[AssociatedSpecies](w),
		speciesDefs:   ecs.NewMap[Species](w),
		afflictions:   ecs.NewMap[Affliction](w),
		healthInputs:  make(map[Entity]struct{}),
		healthChanged: make(map[Entity]struct{}),
	}
}

// Config returns the world's config for reading and editing.
func (s *Store) Config() *SimulationConfig {
	return &s.config
}

// Alive reports whether the entity exists. The zero entity never does.
func (s *Store) Alive(e Entity) bool {
	return e.ID() != 0 && s.world.Alive(e)
}

// Spawn creates an entity carrying only a name.
func (s *Store) Spawn(name string) Entity {
	e := s.names.NewEntity(&Name{Value: name})
	s.live++
	return e
}

// Despawn removes an entity and everything attached to it. Entities that
// referenced it as their species or one of their afflictions get their
// health recomputed on the next health pass.
func (s *Store) Despawn(e Entity) error {
	if !s.Alive(e) {
		return fmt.Errorf("despawn %v: %w", e, ErrNoSuchEntity)
	}

	if s.speciesDefs.Has(e) {
		Each(s, func(dep Entity, a *AssociatedSpecies) {
			if a.Species == e {
				s.healthInputs[dep] = struct{}{}
			}
		})
	}
	if s.afflictions.Has(e) {
		Each(s, func(dep Entity, a *Afflicted) {
			if a.Find(e) >= 0 {
				s.healthInputs[dep] = struct{}{}
			}
		})
	}

	s.world.RemoveEntity(e)
	s.live--
	delete(s.healthInputs, e)
	delete(s.healthChanged, e)
	return nil
}

// EntityCount returns the number of live entities.
func (s *Store) EntityCount() int {
	return s.live
}

// Count returns how many entities carry component T.
func Count[T any](s *Store) int {
	n := 0
	query := ecs.NewFilter1[T](s.world).Query()
	for query.Next() {
		n++
	}
	return n
}

// PeopleCount returns the number of people, living or dead.
func (s *Store) PeopleCount() int {
	return Count[Person](s)
}

// PlaceCount returns the number of regions and settlements.
func (s *Store) PlaceCount() int {
	return Count[Region](s) + Count[Settlement](s)
}

// Attach adds component c to e, replacing any existing value.
func Attach[T any](s *Store, e Entity, c T) error {
	if !s.Alive(e) {
		return fmt.Errorf("attach %T to %v: %w", c, e, ErrNoSuchEntity)
	}
	m := ecs.NewMap[T](s.world)
	if m.Has(e) {
		*m.Get(e) = c
	} else {
		m.Add(e, &c)
	}
	s.touch(e, any(c))
	return nil
}

// Detach removes component T from e. Detaching an absent component is a no-op.
func Detach[T any](s *Store, e Entity) error {
	if !s.Alive(e) {
		var zero T
		return fmt.Errorf("detach %T from %v: %w", zero, e, ErrNoSuchEntity)
	}
	m := ecs.NewMap[T](s.world)
	if !m.Has(e) {
		return nil
	}
	var zero T
	s.touch(e, any(zero))
	m.Remove(e)
	return nil
}

// Get returns e's component T. Changes made through the pointer to
// Afflicted or AssociatedSpecies are not tracked; use Attach or Afflict.
func Get[T any](s *Store, e Entity) (*T, bool) {
	if !s.Alive(e) {
		return nil, false
	}
	m := ecs.NewMap[T](s.world)
	if !m.Has(e) {
		return nil, false
	}
	return m.Get(e), true
}

// Has reports whether e carries component T.
func Has[T any](s *Store, e Entity) bool {
	return s.Alive(e) && ecs.NewMap[T](s.world).Has(e)
}

// Each calls fn for every entity carrying component T. fn must not spawn,
// despawn, attach or detach.
func Each[T any](s *Store, fn func(e Entity, c *T)) {
	query := ecs.NewFilter1[T](s.world).Query()
	for query.Next() {
		fn(query.Entity(), query.Get())
	}
}

// touch records changes to health inputs.
func (s *Store) touch(e Entity, c any) {
	switch c.(type) {
	case Afflicted, AssociatedSpecies:
		s.healthInputs[e] = struct{}{}
	}
}

// Afflict sets the severity of an affliction on e, contracting it if absent.
func (s *Store) Afflict(e, affliction Entity, severity float32) error {
	if !s.Alive(e) {
		return fmt.Errorf("afflict %v: %w", e, ErrNoSuchEntity)
	}
	if !s.Alive(affliction) || !s.afflictions.Has(affliction) {
		return fmt.Errorf("afflict %v with %v: %w", e, affliction, ErrNoSuchEntity)
	}
	severity = max(severity, 0)

	if !s.afflicted.Has(e) {
		s.afflicted.Add(e, &Afflicted{Severities: []Severity{{Affliction: affliction, Value: severity}}})
	} else {
		a := s.afflicted.Get(e)
		if i := a.Find(affliction); i >= 0 {
			a.Severities[i].Value = severity
		} else {
			a.Severities = append(a.Severities, Severity{Affliction: affliction, Value: severity})
		}
	}
	s.healthInputs[e] = struct{}{}
	return nil
}

// Cure removes one affliction from e.
func (s *Store) Cure(e, affliction Entity) error {
	a, ok := Get[Afflicted](s, e)
	if !ok {
		return nil
	}
	if i := a.Find(affliction); i >= 0 {
		a.Severities = slices.Delete(a.Severities, i, i+1)
		s.healthInputs[e] = struct{}{}
	}
	return nil
}

// ProgressAfflictions calls fn for every (entity, affliction) pair and adds
// the returned delta to the stored severity, clamped at zero. Nonzero deltas
// mark the entity's health inputs as changed.
func (s *Store) ProgressAfflictions(fn func(e Entity, def *Affliction, severity float32) float32) {
	Each(s, func(e Entity, a *Afflicted) {
		changed := false
		for i := range a.Severities {
			sev := &a.Severities[i]
			if !s.Alive(sev.Affliction) || !s.afflictions.Has(sev.Affliction) {
				continue
			}
			delta := fn(e, s.afflictions.Get(sev.Affliction), sev.Value)
			if delta == 0 {
				continue
			}
			sev.Value = max(sev.Value+delta, 0)
			changed = true
		}
		if changed {
			s.healthInputs[e] = struct{}{}
		}
	})
}

// HealthInputs describes what a creature's health is computed from.
type HealthInputs struct {
	// Species is nil when the creature has no species or it was despawned.
	Species *Species
	// Afflictions pairs each live affliction definition with its severity.
	Afflictions []AfflictionSeverity
}

// AfflictionSeverity is one resolved entry of an Afflicted list.
type AfflictionSeverity struct {
	Def      *Affliction
	Severity float32
}

// RecacheHealth calls compute for every entity with cached health whose
// afflictions or species changed since the previous call, and stores the
// result. Entities are visited in ascending id order.
func (s *Store) RecacheHealth(compute func(in HealthInputs) float32) {
	if len(s.healthInputs) == 0 {
		return
	}
	dirty := sortedEntities(s.healthInputs)
	clear(s.healthInputs)

	for _, e := range dirty {
		if !s.Alive(e) || !s.health.Has(e) {
			continue
		}

		var in HealthInputs
		if s.species.Has(e) {
			sp := s.species.Get(e).Species
			if s.Alive(sp) && s.speciesDefs.Has(sp) {
				in.Species = s.speciesDefs.Get(sp)
			}
		}
		if s.afflicted.Has(e) {
			for _, sev := range s.afflicted.Get(e).Severities {
				if !s.Alive(sev.Affliction) || !s.afflictions.Has(sev.Affliction) {
					continue
				}
				in.Afflictions = append(in.Afflictions, AfflictionSeverity{
					Def:      s.afflictions.Get(sev.Affliction),
					Severity: sev.Value,
				})
			}
		}

		h := s.health.Get(e)
		v := compute(in)
		if h.value != v {
			h.value = v
			s.healthChanged[e] = struct{}{}
		}
	}
}

// DrainHealthChanged calls fn for every living-state entity whose cached
// health changed since the previous call, in ascending id order.
func (s *Store) DrainHealthChanged(fn func(e Entity, health float32, state *Living)) {
	if len(s.healthChanged) == 0 {
		return
	}
	changed := sortedEntities(s.healthChanged)
	clear(s.healthChanged)

	for _, e := range changed {
		if !s.Alive(e) || !s.living.Has(e) || !s.health.Has(e) {
			continue
		}
		fn(e, s.health.Get(e).value, s.living.Get(e))
	}
}

func sortedEntities(set map[Entity]struct{}) []Entity {
	out := make([]Entity, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entity) int {
		return int(a.ID()) - int(b.ID())
	})
	return out
}
