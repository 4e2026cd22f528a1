// Package terrain generates map tiles. Large maps are split into square
// fragments that are generated concurrently and merged in a fixed order.
package terrain

import "github.com/talgya/worldhistory/internal/world"

// FragmentSize is the edge length of a full fragment, in cells.
const FragmentSize = 64

// Size is the extent of a map in cells.
type Size struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Cells returns the number of cells in the map.
func (s Size) Cells() int {
	return int(s.Width) * int(s.Height)
}

// FragmentCount returns how many fragments cover n cells along one axis.
func FragmentCount(n uint32) uint32 {
	if n <= FragmentSize {
		return 1
	}
	return 1 + (n-1)/FragmentSize
}

// FragmentExtent returns the length and offset of fragment i along an axis
// of n cells. Every fragment but the last is FragmentSize long; the last
// holds the remainder.
func FragmentExtent(i, n uint32) (length, offset uint32) {
	offset = i * FragmentSize
	if i+1 < FragmentCount(n) {
		return FragmentSize, offset
	}
	return n - offset, offset
}

// Fragment is one rectangle of a map being generated.
type Fragment struct {
	Index    int
	Origin   world.Cell
	Width    uint32
	Height   uint32
	Commands *world.CommandQueue
}

// Fragments splits a map into fragments ordered x-major, then y.
func Fragments(size Size) []Fragment {
	fx, fy := FragmentCount(size.Width), FragmentCount(size.Height)
	out := make([]Fragment, 0, fx*fy)
	for x := range fx {
		w, ox := FragmentExtent(x, size.Width)
		for y := range fy {
			h, oy := FragmentExtent(y, size.Height)
			out = append(out, Fragment{
				Index:  len(out),
				Origin: world.Cell{X: ox, Y: oy},
				Width:  w,
				Height: h,
			})
		}
	}
	return out
}
