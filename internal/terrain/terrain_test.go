package terrain

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/worldhistory/internal/world"
)

func TestFragmentMath(t *testing.T) {
	tests := []struct {
		n         uint32
		wantCount uint32
	}{
		{1, 1},
		{FragmentSize - 1, 1},
		{FragmentSize, 1},
		{FragmentSize + 1, 2},
		{FragmentSize * 2, 2},
		{FragmentSize*2 + 1, 3},
		{130, 3},
		{70, 2},
	}
	for _, tt := range tests {
		if got := FragmentCount(tt.n); got != tt.wantCount {
			t.Errorf("FragmentCount(%d) = %d, want %d", tt.n, got, tt.wantCount)
		}
	}

	if l, o := FragmentExtent(1, FragmentSize+1); l != 1 || o != FragmentSize {
		t.Errorf("FragmentExtent(1, %d) = (%d, %d), want (1, %d)", FragmentSize+1, l, o, FragmentSize)
	}
}

func TestFragmentMathNearMaxUint32(t *testing.T) {
	for _, n := range []uint32{math.MaxUint32, math.MaxUint32 - 10, math.MaxUint32 - FragmentSize + 1} {
		count := FragmentCount(n)
		want := n / FragmentSize
		if n%FragmentSize != 0 {
			want++
		}
		if count != want {
			t.Errorf("FragmentCount(%d) = %d, want %d", n, count, want)
		}
		if l, o := FragmentExtent(0, n); l != FragmentSize || o != 0 {
			t.Errorf("FragmentExtent(0, %d) = (%d, %d), want (%d, 0)", n, l, o, FragmentSize)
		}
		l, o := FragmentExtent(count-1, n)
		if l == 0 || l > FragmentSize || o+l != n {
			t.Errorf("last FragmentExtent(%d, %d) = (%d, %d)", count-1, n, l, o)
		}
	}
}

func TestFragmentsCoverExactly(t *testing.T) {
	for n := uint32(1); n <= 4*FragmentSize+3; n++ {
		count := FragmentCount(n)
		var sum uint32
		for i := range count {
			l, o := FragmentExtent(i, n)
			if o != sum {
				t.Fatalf("n=%d fragment %d offset %d, want %d", n, i, o, sum)
			}
			if l == 0 || l > FragmentSize {
				t.Fatalf("n=%d fragment %d length %d", n, i, l)
			}
			if i+1 < count && l != FragmentSize {
				t.Fatalf("n=%d non-final fragment %d has length %d", n, i, l)
			}
			sum += l
		}
		if sum != n {
			t.Fatalf("n=%d fragments cover %d cells", n, sum)
		}
	}
}

func countingGenerator(q *world.CommandQueue, rng *rand.Rand, c world.Cell) {
	q.Push(world.SpawnTileCommand{Tile: world.Tile{Cell: c, Elevation: rng.Float64()}})
}

func TestDispatchOrderIndependentOfWorkers(t *testing.T) {
	size := Size{Width: 130, Height: 70}
	if got := len(Fragments(size)); got != 6 {
		t.Fatalf("fragments = %d, want 6", got)
	}

	single, err := Dispatch(context.Background(), 11, size, 1, countingGenerator)
	if err != nil {
		t.Fatal(err)
	}
	if single.Len() != 9100 {
		t.Fatalf("commands = %d, want 9100", single.Len())
	}

	seen := make(map[world.Cell]bool, single.Len())
	for _, c := range single.Commands() {
		cell := c.(world.SpawnTileCommand).Tile.Cell
		if seen[cell] || cell.X >= size.Width || cell.Y >= size.Height {
			t.Fatalf("cell %v emitted twice or out of range", cell)
		}
		seen[cell] = true
	}

	for _, workers := range []int{2, 4, 16} {
		many, err := Dispatch(context.Background(), 11, size, workers, countingGenerator)
		if err != nil {
			t.Fatal(err)
		}
		if many.Len() != single.Len() {
			t.Fatalf("workers=%d: commands = %d, want %d", workers, many.Len(), single.Len())
		}
		for i, c := range many.Commands() {
			if c != single.Commands()[i] {
				t.Fatalf("workers=%d: command %d differs", workers, i)
			}
		}
	}
}

func TestDispatchErrors(t *testing.T) {
	if _, err := Dispatch(context.Background(), 1, Size{Width: 0, Height: 5}, 1, countingGenerator); !errors.Is(err, ErrEmptyMap) {
		t.Errorf("empty map = %v, want ErrEmptyMap", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Dispatch(ctx, 1, Size{Width: 200, Height: 200}, 2, countingGenerator); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled dispatch = %v, want context.Canceled", err)
	}
}

func TestSingleContinent(t *testing.T) {
	size := Size{Width: 80, Height: 40}
	q, err := SingleContinent(context.Background(), 5, size, 4)
	if err != nil {
		t.Fatal(err)
	}
	if q.Len() != size.Cells() {
		t.Fatalf("commands = %d, want %d", q.Len(), size.Cells())
	}

	var land, ocean int
	for _, c := range q.Commands() {
		tile := c.(world.SpawnTileCommand).Tile
		if tile.Coord != tile.Cell.Hex() {
			t.Fatalf("tile %v has coord %v", tile.Cell, tile.Coord)
		}
		if tile.Elevation < 0 || tile.Elevation > 1 {
			t.Fatalf("elevation %v out of range", tile.Elevation)
		}
		if tile.Terrain == world.TerrainOcean {
			ocean++
		} else {
			land++
		}
	}
	if land == 0 || ocean == 0 {
		t.Errorf("land=%d ocean=%d, want both", land, ocean)
	}

	// Corners fall off into ocean.
	corner := q.Commands()[0].(world.SpawnTileCommand).Tile
	if corner.Terrain != world.TerrainOcean {
		t.Errorf("corner terrain = %s, want ocean", world.TerrainName(corner.Terrain))
	}
}
