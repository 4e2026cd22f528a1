package terrain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/worldhistory/internal/world"
)

// ErrEmptyMap is returned when either map dimension is zero.
var ErrEmptyMap = errors.New("map has no cells")

// CellGenerator emits the commands for one cell. It is called concurrently
// for different fragments and must only touch q and rng.
type CellGenerator func(q *world.CommandQueue, rng *rand.Rand, c world.Cell)

// Dispatch runs gen for every cell of a map on at most workers goroutines
// and returns the merged commands in fragment order. The result does not
// depend on the number of workers. Every fragment's RNG starts from seed.
func Dispatch(ctx context.Context, seed int64, size Size, workers int, gen CellGenerator) (*world.CommandQueue, error) {
	if size.Width == 0 || size.Height == 0 {
		return nil, fmt.Errorf("dispatch %dx%d: %w", size.Width, size.Height, ErrEmptyMap)
	}

	frags := Fragments(size)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i := range frags {
		f := &frags[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed))
			q := world.NewCommandQueue()
			for x := range f.Width {
				for y := range f.Height {
					gen(q, rng, world.Cell{X: f.Origin.X + x, Y: f.Origin.Y + y})
				}
			}
			f.Commands = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dispatch terrain: %w", err)
	}

	merged := world.NewCommandQueue()
	for i := range frags {
		merged.Append(frags[i].Commands)
	}
	slog.Debug("terrain dispatched",
		"width", size.Width,
		"height", size.Height,
		"fragments", len(frags),
		"workers", workers,
		"commands", merged.Len(),
	)
	return merged, nil
}
