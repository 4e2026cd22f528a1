// Continent generation using layered simplex noise.
// Elevation, moisture and temperature layers are sampled at hex centres and
// combined into a terrain type per cell.
package terrain

import (
	"context"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/worldhistory/internal/world"
)

// GenConfig holds continent generation parameters.
type GenConfig struct {
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
	Roughness   float64 // Amplitude of per-cell jitter added to elevation
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		SeaLevel:    0.25,
		MountainLvl: 0.72,
		Roughness:   0.02,
	}
}

// SingleContinent generates one landmass centred on the map, surrounded by
// ocean. It emits exactly one SpawnTileCommand per cell.
func SingleContinent(ctx context.Context, seed int64, size Size, workers int) (*world.CommandQueue, error) {
	return Continent(ctx, seed, size, DefaultGenConfig(), workers)
}

// Continent is SingleContinent with explicit generation parameters.
func Continent(ctx context.Context, seed int64, size Size, cfg GenConfig, workers int) (*world.CommandQueue, error) {
	// Three noise generators for independent layers. They are read-only
	// after construction and shared between fragments.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	// Continuous-space extent of the map, for edge falloff and latitude.
	cx, cy := hexCentre(world.Cell{X: size.Width - 1, Y: size.Height - 1})
	halfW, halfH := max(cx/2, 1), max(cy/2, 1)

	gen := func(q *world.CommandQueue, rng *rand.Rand, c world.Cell) {
		x, y := hexCentre(c)

		// Multi-octave noise for natural-looking terrain.
		elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
		rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
		temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

		elev += (rng.Float64()*2 - 1) * cfg.Roughness

		// Continental shaping: reduce elevation near edges to create ocean border.
		dx, dy := (x-halfW)/halfW, (y-halfH)/halfH
		distFromCenter := math.Sqrt((dx*dx + dy*dy) / 2)
		edgeFalloff := max(1.0-math.Pow(distFromCenter, 3.5), 0)
		elev = clamp01(elev * edgeFalloff)

		// Temperature decreases with elevation and distance from the equator.
		temp = temp*0.6 + (1.0-math.Abs(dy))*0.3 + (1.0-elev)*0.1

		terrain := deriveTerrain(elev, rain, temp, cfg)
		q.Push(world.SpawnTileCommand{Tile: world.Tile{
			Cell:      c,
			Coord:     c.Hex(),
			Terrain:   terrain,
			Elevation: elev,
			Moisture:  rain,
			Fertility: fertility(terrain, rain),
		}})
	}

	return Dispatch(ctx, seed, size, workers, gen)
}

// hexCentre converts a cell to continuous space. Odd rows sit half a hex to
// the right; rows are sqrt(3)/2 apart.
func hexCentre(c world.Cell) (x, y float64) {
	o := c.Offset()
	return float64(o.Col) * 0.5, float64(o.Row) * math.Sqrt(3.0) / 2.0
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) world.Terrain {
	if elev < cfg.SeaLevel {
		return world.TerrainOcean
	}
	if elev > cfg.MountainLvl {
		return world.TerrainMountain
	}
	if temp < 0.25 {
		return world.TerrainTundra
	}
	if rain < 0.25 && temp > 0.5 {
		return world.TerrainDesert
	}
	if rain > 0.7 && elev < 0.45 {
		return world.TerrainSwamp
	}
	if rain > 0.45 && elev > 0.45 {
		return world.TerrainForest
	}
	return world.TerrainPlains
}

// fertility scores how well a tile supports farming, 0.0–1.0.
func fertility(t world.Terrain, rain float64) float64 {
	switch t {
	case world.TerrainPlains:
		return 0.6 + rain*0.4
	case world.TerrainForest:
		return 0.4
	case world.TerrainSwamp:
		return 0.2
	case world.TerrainDesert, world.TerrainTundra, world.TerrainMountain:
		return 0.05
	default:
		return 0
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for range octaves {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
