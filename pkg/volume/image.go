// Package volume provides the n-dimensional image types that threshold regions
// are evaluated against.
//
// Two families of images are supported. Array holds numeric samples in a flat
// slice with axis 0 varying fastest, the same layout the reconstruction
// volumes use (idx = z*w*h + y*w + x). Plane adapts a standard image.Image to
// the same contract so that 2-D rasters can be thresholded without copying.
//
// Images are read-only from the point of view of threshold regions: only the
// axis metadata may be changed through them.
package volume

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidDimensions is returned when an extent is negative
	ErrInvalidDimensions = errors.New("invalid image dimensions")

	// ErrDataLength is returned when a backing slice does not match the extents
	ErrDataLength = errors.New("data length does not match dimensions")
)

// Image is the metadata and extent contract shared by every image type
type Image interface {
	NumDimensions() int
	Dimension(d int) int64
	Dimensions() []int64

	Axis(d int) AxisType
	SetAxis(axis AxisType, d int)
	Axes() []AxisType
	AxisIndex(axis AxisType) int
	Calibration(d int) float64
	SetCalibration(cal float64, d int)
}

// Sampler is an Image that can be read at integer positions.
//
// At panics when pos lies outside the image. FirstElement returns a
// representative sample whose dynamic type tells consumers how to convert
// samples; it is the zero value when the image is empty.
type Sampler[T any] interface {
	Image
	At(pos []int64) T
	FirstElement() T
}

// Number is the set of element types an Array can hold
type Number interface {
	constraints.Integer | constraints.Float
}

// validateDims rejects negative extents and returns the number of samples
func validateDims(dims []int64) (int64, error) {
	n := int64(1)
	for d, v := range dims {
		if v < 0 {
			return 0, fmt.Errorf("%w: axis %d has extent %d", ErrInvalidDimensions, d, v)
		}
		n *= v
	}
	return n, nil
}

// checkPosition panics if pos is not inside dims
func checkPosition(dims, pos []int64) {
	if len(pos) != len(dims) {
		panic(fmt.Sprintf("volume: position has %d coordinates, image has %d dimensions", len(pos), len(dims)))
	}
	for d, p := range pos {
		if p < 0 || p >= dims[d] {
			panic(fmt.Sprintf("volume: position %v outside image extent %v", pos, dims))
		}
	}
}
