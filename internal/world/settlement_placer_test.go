package world

import "testing"

func plainsMap(w, h uint32) *Map {
	m := NewMap()
	for x := range w {
		for y := range h {
			c := Cell{X: x, Y: y}
			terrain := TerrainPlains
			if x == 0 {
				terrain = TerrainOcean
			}
			m.Set(Tile{Cell: c, Coord: c.Hex(), Terrain: terrain, Fertility: 0.5})
		}
	}
	return m
}

func TestPlaceSettlements(t *testing.T) {
	m := plainsMap(30, 30)
	cfg := PlacementConfig{Cities: 2, Towns: 3, Villages: 5}

	q := PlaceSettlements(m, 9, cfg)
	if q.Len() != 10 {
		t.Fatalf("placed %d settlements, want 10", q.Len())
	}

	seen := make(map[HexCoord]bool)
	names := make(map[string]bool)
	for _, c := range q.Commands() {
		sc := c.(SpawnSettlementCommand)
		tile, ok := m.Get(sc.Settlement.Coord)
		if !ok || tile.Terrain == TerrainOcean {
			t.Errorf("settlement %q on %v", sc.Name, sc.Settlement.Coord)
		}
		if seen[sc.Settlement.Coord] || names[sc.Name] {
			t.Errorf("duplicate placement %q at %v", sc.Name, sc.Settlement.Coord)
		}
		seen[sc.Settlement.Coord] = true
		names[sc.Name] = true
	}

	again := PlaceSettlements(m, 9, cfg)
	for i, c := range again.Commands() {
		if c != q.Commands()[i] {
			t.Fatalf("placement %d differs between identical calls", i)
		}
	}
}

func TestPlaceSettlementsOceanOnly(t *testing.T) {
	m := NewMap()
	m.Set(Tile{Terrain: TerrainOcean})
	if q := PlaceSettlements(m, 1, DefaultPlacementConfig()); q.Len() != 0 {
		t.Errorf("placed %d settlements on ocean", q.Len())
	}
}

func TestCellHexRoundTrip(t *testing.T) {
	for x := range uint32(5) {
		for y := range uint32(5) {
			c := Cell{X: x, Y: y}
			h := c.Hex()
			if h.Offset() != c.Offset() {
				t.Errorf("cell %v: offset round trip %v != %v", c, h.Offset(), c.Offset())
			}
		}
	}
	a := Cell{X: 0, Y: 0}.Hex()
	for _, n := range []Cell{{X: 1, Y: 0}, {X: 0, Y: 1}} {
		if d := Distance(a, n.Hex()); d != 1 {
			t.Errorf("distance (0,0)->%v = %d, want 1", n, d)
		}
	}
}
