package threshold

import (
	"iter"
	"math"
)

// RegionOfInterest is the geometric query contract consumed by overlay
// renderers and editors
type RegionOfInterest interface {
	NumDimensions() int

	// Min and Max bound the region on the integer lattice
	Min(d int) int64
	Max(d int) int64

	// RealMin and RealMax bound the region in continuous space
	RealMin(d int) float64
	RealMax(d int) float64

	// Contains tests a real-valued position
	Contains(pos []float64) bool

	// Points yields the member lattice points
	Points() iter.Seq[Point]
}

// PointSetRegion exposes a PointSet as a RegionOfInterest.
// It holds no state of its own beyond the wrapped set.
type PointSetRegion struct {
	ps PointSet
}

// NewPointSetRegion wraps ps
func NewPointSetRegion(ps PointSet) PointSetRegion {
	return PointSetRegion{ps: ps}
}

// PointSet returns the wrapped set
func (r PointSetRegion) PointSet() PointSet {
	return r.ps
}

// NumDimensions returns the dimensionality of the wrapped set
func (r PointSetRegion) NumDimensions() int {
	return r.ps.NumDimensions()
}

// Min returns the lower bound of the wrapped set along d
func (r PointSetRegion) Min(d int) int64 {
	return r.ps.Min(d)
}

// Max returns the upper bound of the wrapped set along d
func (r PointSetRegion) Max(d int) int64 {
	return r.ps.Max(d)
}

// RealMin equals Min; point sets have no sub-pixel extent
func (r PointSetRegion) RealMin(d int) float64 {
	return float64(r.ps.Min(d))
}

// RealMax equals Max
func (r PointSetRegion) RealMax(d int) float64 {
	return float64(r.ps.Max(d))
}

// Contains rounds each coordinate to the nearest lattice value (halves round
// up) and tests that point. NaN and infinite coordinates are never contained.
func (r PointSetRegion) Contains(pos []float64) bool {
	if len(pos) != r.ps.NumDimensions() {
		return false
	}
	lattice := make([]int64, len(pos))
	for d, v := range pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		rounded := math.Floor(v + 0.5)
		if rounded < math.MinInt64 || rounded >= math.MaxInt64 {
			return false
		}
		lattice[d] = int64(rounded)
	}
	return r.ps.Contains(lattice)
}

// Points yields the members of the wrapped set
func (r PointSetRegion) Points() iter.Seq[Point] {
	return r.ps.All()
}
