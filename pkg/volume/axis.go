package volume

import (
	"fmt"
	"strings"
)

// AxisType identifies what an image axis measures
type AxisType int

const (
	Unknown AxisType = iota
	X
	Y
	Z
	Time
	Channel
)

var axisNames = map[AxisType]string{
	Unknown: "unknown",
	X:       "x",
	Y:       "y",
	Z:       "z",
	Time:    "time",
	Channel: "channel",
}

// String returns the lower-case axis name
func (a AxisType) String() string {
	if name, ok := axisNames[a]; ok {
		return name
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxisType converts an axis name such as "x" or "Time" to an AxisType
func ParseAxisType(name string) (AxisType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for axis, n := range axisNames {
		if n == name {
			return axis, nil
		}
	}
	return Unknown, fmt.Errorf("unknown axis type %q", name)
}

// defaultAxes lists the axis assignment for a freshly created image.
// Dimensions past the fourth are Unknown.
var defaultAxes = []AxisType{X, Y, Z, Time}

// Metadata holds the per-axis type and calibration of an image.
// Calibration is the physical size of one sample along the axis and defaults to 1.
//
// Axis indices follow slice semantics: an index outside [0, n) panics.
type Metadata struct {
	axes        []AxisType
	calibration []float64
}

// NewMetadata creates metadata for n axes with default types and unit calibration
func NewMetadata(n int) Metadata {
	m := Metadata{
		axes:        make([]AxisType, n),
		calibration: make([]float64, n),
	}
	for d := 0; d < n; d++ {
		if d < len(defaultAxes) {
			m.axes[d] = defaultAxes[d]
		}
		m.calibration[d] = 1
	}
	return m
}

// Axis returns the type of axis d
func (m *Metadata) Axis(d int) AxisType {
	return m.axes[d]
}

// SetAxis assigns the type of axis d
func (m *Metadata) SetAxis(axis AxisType, d int) {
	m.axes[d] = axis
}

// Axes returns a copy of all axis types
func (m *Metadata) Axes() []AxisType {
	out := make([]AxisType, len(m.axes))
	copy(out, m.axes)
	return out
}

// AxisIndex returns the first dimension carrying the given axis type, or -1
func (m *Metadata) AxisIndex(axis AxisType) int {
	for d, a := range m.axes {
		if a == axis {
			return d
		}
	}
	return -1
}

// Calibration returns the calibration factor of axis d
func (m *Metadata) Calibration(d int) float64 {
	return m.calibration[d]
}

// SetCalibration sets the calibration factor of axis d
func (m *Metadata) SetCalibration(cal float64, d int) {
	m.calibration[d] = cal
}
