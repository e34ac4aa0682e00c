package threshold

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidExtent is returned when a lattice is created with a negative extent
var ErrInvalidExtent = errors.New("invalid lattice extent")

// Point is an integer lattice coordinate.
//
// Iterators in this package reuse one Point between steps; use Clone to keep it.
type Point []int64

// Clone returns a copy of p that is safe to retain
func (p Point) Clone() Point {
	return append(Point(nil), p...)
}

// PointSet is a finite set of lattice points with a fixed bounding box
type PointSet interface {
	NumDimensions() int
	Dimension(d int) int64
	Min(d int) int64
	Max(d int) int64
	Contains(pos []int64) bool

	// All yields every member once, in a fixed order
	All() iter.Seq[Point]

	// Size returns the number of members. Filtered sets scan to answer.
	Size() int64
}

// HyperVolume is every integer coordinate inside a box anchored at the origin.
// It is immutable once created.
type HyperVolume struct {
	dims []int64
}

// NewHyperVolume creates the lattice [0, dims[0]) x [0, dims[1]) x ...
func NewHyperVolume(dims ...int64) (*HyperVolume, error) {
	for d, v := range dims {
		if v < 0 {
			return nil, fmt.Errorf("%w: axis %d has extent %d", ErrInvalidExtent, d, v)
		}
	}
	return &HyperVolume{dims: append([]int64(nil), dims...)}, nil
}

// NumDimensions returns the number of axes
func (h *HyperVolume) NumDimensions() int {
	return len(h.dims)
}

// Dimension returns the extent of axis d
func (h *HyperVolume) Dimension(d int) int64 {
	return h.dims[d]
}

// Dimensions returns a copy of all extents
func (h *HyperVolume) Dimensions() []int64 {
	return append([]int64(nil), h.dims...)
}

// Min is always 0
func (h *HyperVolume) Min(d int) int64 {
	_ = h.dims[d]
	return 0
}

// Max returns dims[d]-1, which is -1 for an empty axis
func (h *HyperVolume) Max(d int) int64 {
	return h.dims[d] - 1
}

// Size returns the product of the extents
func (h *HyperVolume) Size() int64 {
	n := int64(1)
	for _, v := range h.dims {
		n *= v
	}
	return n
}

// Contains reports whether pos has one coordinate per axis, each inside [0, dim)
func (h *HyperVolume) Contains(pos []int64) bool {
	if len(pos) != len(h.dims) {
		return false
	}
	for d, p := range pos {
		if p < 0 || p >= h.dims[d] {
			return false
		}
	}
	return true
}

// All yields every coordinate with axis 0 varying fastest.
// A zero-dimensional lattice yields one empty point.
func (h *HyperVolume) All() iter.Seq[Point] {
	if len(h.dims) == 0 {
		return h.Slab(0, 1)
	}
	return h.Slab(0, h.dims[len(h.dims)-1])
}

// Slab yields, in the order of All, the coordinates whose last-axis value lies
// in [lo, hi). The range is clipped to the lattice.
//
// Slabs over disjoint ranges partition the lattice, which lets consumers split
// a scan across workers.
func (h *HyperVolume) Slab(lo, hi int64) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		n := len(h.dims)
		if n == 0 {
			if lo <= 0 && hi > 0 {
				yield(Point{})
			}
			return
		}

		last := n - 1
		from, to := max(lo, 0), min(hi, h.dims[last])
		if from >= to {
			return
		}
		for d := 0; d < last; d++ {
			if h.dims[d] == 0 {
				return
			}
		}

		cursor := make([]int64, n)
		cursor[last] = from
		out := make(Point, n)
		for {
			copy(out, cursor)
			if !yield(out) {
				return
			}
			if !h.advance(cursor, to) {
				return
			}
		}
	}
}

// advance moves cursor to the next coordinate, treating hi as the end of the
// last axis. It returns false once the cursor runs off the end.
func (h *HyperVolume) advance(cursor []int64, hi int64) bool {
	last := len(cursor) - 1
	for d := 0; d < last; d++ {
		cursor[d]++
		if cursor[d] < h.dims[d] {
			return true
		}
		cursor[d] = 0
	}
	cursor[last]++
	return cursor[last] < hi
}
