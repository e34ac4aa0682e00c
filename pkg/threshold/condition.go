package threshold

import "math"

// Condition is a boolean test applied to a sampled value
type Condition interface {
	Evaluate(value float64) bool
}

// RangeCondition accepts values inside the closed interval [min, max].
//
// The bounds are not validated. An inverted range (min > max) accepts nothing,
// (-Inf, +Inf) accepts every value except NaN, and NaN is rejected by any range
// because both comparisons are false.
type RangeCondition struct {
	min float64
	max float64
}

// NewRangeCondition creates a condition for [min, max]
func NewRangeCondition(min, max float64) *RangeCondition {
	return &RangeCondition{min: min, max: max}
}

// NewUnboundedCondition creates the (-Inf, +Inf) condition that every number passes
func NewUnboundedCondition() *RangeCondition {
	return NewRangeCondition(math.Inf(-1), math.Inf(1))
}

// Evaluate reports whether min <= value <= max
func (c *RangeCondition) Evaluate(value float64) bool {
	return c.min <= value && value <= c.max
}

// Min returns the lower bound
func (c *RangeCondition) Min() float64 { return c.min }

// Max returns the upper bound
func (c *RangeCondition) Max() float64 { return c.max }

// Bounds returns both bounds
func (c *RangeCondition) Bounds() (min, max float64) {
	return c.min, c.max
}

// SetMin replaces the lower bound
func (c *RangeCondition) SetMin(min float64) { c.min = min }

// SetMax replaces the upper bound
func (c *RangeCondition) SetMax(max float64) { c.max = max }

// Unbounded reports whether the condition is (-Inf, +Inf)
func (c *RangeCondition) Unbounded() bool {
	return math.IsInf(c.min, -1) && math.IsInf(c.max, 1)
}

// Copy returns an independent condition with the same bounds
func (c *RangeCondition) Copy() *RangeCondition {
	return NewRangeCondition(c.min, c.max)
}
