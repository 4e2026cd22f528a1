package world

import "github.com/mlange-42/ark/ecs"

// Map is a read-only index of the world's tiles keyed by hex coordinate.
type Map struct {
	Tiles map[HexCoord]Tile `json:"-"`
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{Tiles: make(map[HexCoord]Tile)}
}

// TileMap indexes every tile in the store.
func (s *Store) TileMap() *Map {
	m := NewMap()
	query := ecs.NewFilter1[Tile](s.world).Query()
	for query.Next() {
		m.Set(*query.Get())
	}
	return m
}

// Get returns the tile at the given coordinate.
func (m *Map) Get(coord HexCoord) (Tile, bool) {
	t, ok := m.Tiles[coord]
	return t, ok
}

// Set places a tile at its coordinate.
func (m *Map) Set(t Tile) {
	m.Tiles[t.Coord] = t
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// TerrainCounts returns a summary of terrain type distribution.
func (m *Map) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Tiles {
		counts[t.Terrain]++
	}
	return counts
}
