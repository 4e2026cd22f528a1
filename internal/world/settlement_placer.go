// Settlement placement: finds suitable tiles and seeds initial settlements.
package world

import (
	"cmp"
	"math/rand"
	"slices"
)

// SettlementSize categorizes settlement scale.
type SettlementSize uint8

const (
	SizeVillage SettlementSize = iota // 20–100 people
	SizeTown                          // 200–1,000 people
	SizeCity                          // 2,000–5,000 people
)

// PlacementConfig bounds how many settlements of each size are placed.
type PlacementConfig struct {
	Cities   int
	Towns    int
	Villages int
}

// DefaultPlacementConfig suits maps of a few thousand tiles.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{Cities: 3, Towns: 10, Villages: 30}
}

// PlaceSettlements scores every land tile of m and returns deferred spawn
// commands for the best spots, cities first. Minimum spacing shrinks with
// settlement size.
func PlaceSettlements(m *Map, seed int64, cfg PlacementConfig) *CommandQueue {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	var candidates []scored
	for coord, t := range m.Tiles {
		if s := settlementScore(m, t); s > 0 {
			candidates = append(candidates, scored{coord, s})
		}
	}

	// Score descending; ties broken by coordinate for determinism.
	slices.SortFunc(candidates, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.coord.Q, b.coord.Q); c != 0 {
			return c
		}
		return cmp.Compare(a.coord.R, b.coord.R)
	})

	type placed struct {
		coord HexCoord
		size  SettlementSize
	}
	var seeds []placed
	taken := make(map[HexCoord]bool)

	tooClose := func(coord HexCoord, minDist int) bool {
		for _, s := range seeds {
			if Distance(coord, s.coord) < minDist {
				return true
			}
		}
		return false
	}

	pass := func(size SettlementSize, want, minDist int) {
		n := 0
		for _, c := range candidates {
			if n >= want {
				break
			}
			if taken[c.coord] || tooClose(c.coord, minDist) {
				continue
			}
			taken[c.coord] = true
			seeds = append(seeds, placed{c.coord, size})
			n++
		}
	}
	pass(SizeCity, cfg.Cities, 8)
	pass(SizeTown, cfg.Towns, 4)
	pass(SizeVillage, cfg.Villages, 2)

	names := generateNames(rng, len(seeds))
	q := NewCommandQueue()
	for i, s := range seeds {
		q.Push(SpawnSettlementCommand{
			Name: names[i],
			Settlement: Settlement{
				Population: PopulationForSize(s.size, rng),
				Coord:      s.coord,
			},
		})
	}
	return q
}

// settlementScore evaluates how desirable a tile is for a settlement.
// Prefers fertile plains with varied neighbouring terrain and nearby water.
func settlementScore(m *Map, t Tile) float64 {
	score := 0.0

	switch t.Terrain {
	case TerrainPlains:
		score += 3.0
	case TerrainForest:
		score += 1.5
	case TerrainDesert, TerrainSwamp, TerrainTundra:
		score += 0.5
	case TerrainMountain:
		score += 0.3
	default:
		return 0
	}

	terrainTypes := make(map[Terrain]bool)
	nearWater := false
	for _, nc := range t.Coord.Neighbors() {
		nt, ok := m.Get(nc)
		if !ok {
			continue
		}
		if nt.Terrain == TerrainOcean {
			nearWater = true
			continue
		}
		terrainTypes[nt.Terrain] = true
	}
	score += float64(len(terrainTypes)) * 0.3
	if nearWater {
		score += 1.0
	}

	return score + t.Fertility
}

// generateNames produces procedural settlement names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "marsh", "well", "brook", "cliff", "moor",
		"ridge", "watch", "fall", "rest", "point", "reach", "helm",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}

// PopulationForSize returns the initial population for a settlement size.
func PopulationForSize(size SettlementSize, rng *rand.Rand) uint32 {
	switch size {
	case SizeCity:
		return 2000 + uint32(rng.Intn(3000))
	case SizeTown:
		return 200 + uint32(rng.Intn(800))
	case SizeVillage:
		return 20 + uint32(rng.Intn(80))
	default:
		return 50
	}
}
