// Package world provides the entity store, components, and map coordinates
// that the simulation passes operate on.
// The map is an even-offset hex grid; cells addressed by generation (x, y)
// convert to axial coordinates (q, r) for distance and adjacency.
package world

// Cell is a position in the rectangular generation grid.
type Cell struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// OffsetCoord is a doubled-width offset coordinate: Col+Row is always even.
type OffsetCoord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Offset converts a generation cell into doubled-width offset form.
// Odd rows are shifted half a hex to the right.
func (c Cell) Offset() OffsetCoord {
	return OffsetCoord{Col: 2*int(c.X) + int(c.Y%2), Row: int(c.Y)}
}

// Hex converts a generation cell to axial coordinates.
func (c Cell) Hex() HexCoord {
	return c.Offset().Axial()
}

// Axial converts doubled-width offset coordinates to axial coordinates.
func (o OffsetCoord) Axial() HexCoord {
	return HexCoord{Q: (o.Col - o.Row) / 2, R: o.Row}
}

// Offset converts axial coordinates to doubled-width offset coordinates.
func (h HexCoord) Offset() OffsetCoord {
	return OffsetCoord{Col: 2*h.Q + h.R, Row: h.R}
}

// Terrain types for map tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Fertile plains
	TerrainForest                  // Timber, game
	TerrainMountain                // High ground
	TerrainDesert                  // Arid and hot
	TerrainSwamp                   // Waterlogged lowland
	TerrainTundra                  // Frozen ground
	TerrainOcean                   // Below sea level
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainMountain:
		return "Mountain"
	case TerrainDesert:
		return "Desert"
	case TerrainSwamp:
		return "Swamp"
	case TerrainTundra:
		return "Tundra"
	case TerrainOcean:
		return "Ocean"
	default:
		return "Unknown"
	}
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
