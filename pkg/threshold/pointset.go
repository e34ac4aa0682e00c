package threshold

import "iter"

// ConditionalPointSet is the subset of a HyperVolume whose sampled values pass
// a condition.
//
// Nothing is cached: Contains and every iteration re-sample the image and
// re-evaluate the condition, so a change to the condition is visible to the
// very next query. The bounding box is the lattice's, not the tight box of the
// members.
//
// The version counter is a change signal for consumers that do cache derived
// data (rendered masks, statistics). It increases every time the condition is
// replaced or reported as mutated.
type ConditionalPointSet struct {
	lattice *HyperVolume
	fn      ScalarFunction
	cond    Condition
	version uint64
}

// NewConditionalPointSet filters lattice with cond applied to fn
func NewConditionalPointSet(lattice *HyperVolume, fn ScalarFunction, cond Condition) *ConditionalPointSet {
	return &ConditionalPointSet{
		lattice: lattice,
		fn:      fn,
		cond:    cond,
	}
}

// Lattice returns the underlying lattice
func (s *ConditionalPointSet) Lattice() *HyperVolume {
	return s.lattice
}

// Function returns the sampling function
func (s *ConditionalPointSet) Function() ScalarFunction {
	return s.fn
}

// Condition returns the live condition
func (s *ConditionalPointSet) Condition() Condition {
	return s.cond
}

// SetCondition replaces the condition and bumps the version. Passing the
// condition already in use is how owners report that it was mutated in place.
func (s *ConditionalPointSet) SetCondition(cond Condition) {
	s.cond = cond
	s.NotifyConditionChanged()
}

// NotifyConditionChanged records that the condition's bounds changed
func (s *ConditionalPointSet) NotifyConditionChanged() {
	s.version++
}

// Version returns the change counter
func (s *ConditionalPointSet) Version() uint64 {
	return s.version
}

// NumDimensions returns the lattice dimensionality
func (s *ConditionalPointSet) NumDimensions() int {
	return s.lattice.NumDimensions()
}

// Dimension returns the lattice extent along d
func (s *ConditionalPointSet) Dimension(d int) int64 {
	return s.lattice.Dimension(d)
}

// Dimensions returns the lattice extents
func (s *ConditionalPointSet) Dimensions() []int64 {
	return s.lattice.Dimensions()
}

// Min returns the lattice minimum along d, which is always 0
func (s *ConditionalPointSet) Min(d int) int64 {
	return s.lattice.Min(d)
}

// Max returns the lattice maximum along d, even when no member reaches it
func (s *ConditionalPointSet) Max(d int) int64 {
	return s.lattice.Max(d)
}

// Contains reports whether pos is inside the lattice and its sample passes the condition
func (s *ConditionalPointSet) Contains(pos []int64) bool {
	return s.lattice.Contains(pos) && s.cond.Evaluate(s.fn.Sample(pos))
}

// All yields the members in lattice order
func (s *ConditionalPointSet) All() iter.Seq[Point] {
	return s.filter(s.lattice.All())
}

// Slab yields the members whose last coordinate lies in [lo, hi)
func (s *ConditionalPointSet) Slab(lo, hi int64) iter.Seq[Point] {
	return s.filter(s.lattice.Slab(lo, hi))
}

// Size counts the members by scanning the lattice
func (s *ConditionalPointSet) Size() int64 {
	var n int64
	for range s.All() {
		n++
	}
	return n
}

func (s *ConditionalPointSet) filter(points iter.Seq[Point]) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for p := range points {
			if !s.cond.Evaluate(s.fn.Sample(p)) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
