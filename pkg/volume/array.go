package volume

import (
	"fmt"
)

// Array is an n-dimensional image backed by a flat slice.
// Samples are stored with axis 0 varying fastest.
type Array[T Number] struct {
	Metadata

	// dims holds the extent of every axis
	dims []int64

	// strides[d] is the distance in data between neighbours along axis d
	strides []int64

	data []T
}

// NewArray allocates a zero-filled array with the given extents
func NewArray[T Number](dims ...int64) (*Array[T], error) {
	n, err := validateDims(dims)
	if err != nil {
		return nil, err
	}
	return newArray(make([]T, n), dims), nil
}

// WrapArray builds an array over existing data without copying it.
// len(data) must equal the product of dims.
func WrapArray[T Number](data []T, dims ...int64) (*Array[T], error) {
	n, err := validateDims(dims)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != n {
		return nil, fmt.Errorf("%w: got %d samples, dimensions %v need %d", ErrDataLength, len(data), dims, n)
	}
	return newArray(data, dims), nil
}

func newArray[T Number](data []T, dims []int64) *Array[T] {
	a := &Array[T]{
		Metadata: NewMetadata(len(dims)),
		dims:     append([]int64(nil), dims...),
		strides:  make([]int64, len(dims)),
		data:     data,
	}
	stride := int64(1)
	for d, v := range a.dims {
		a.strides[d] = stride
		stride *= v
	}
	return a
}

// NumDimensions returns the number of axes
func (a *Array[T]) NumDimensions() int {
	return len(a.dims)
}

// Dimension returns the extent of axis d
func (a *Array[T]) Dimension(d int) int64 {
	return a.dims[d]
}

// Dimensions returns a copy of all extents
func (a *Array[T]) Dimensions() []int64 {
	return append([]int64(nil), a.dims...)
}

// Len returns the number of samples
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Data exposes the backing slice
func (a *Array[T]) Data() []T {
	return a.data
}

// Index converts a position into an offset in Data. It panics when pos is out of range.
func (a *Array[T]) Index(pos []int64) int64 {
	checkPosition(a.dims, pos)
	var idx int64
	for d, p := range pos {
		idx += p * a.strides[d]
	}
	return idx
}

// At returns the sample at pos
func (a *Array[T]) At(pos []int64) T {
	return a.data[a.Index(pos)]
}

// Set stores v at pos
func (a *Array[T]) Set(pos []int64, v T) {
	a.data[a.Index(pos)] = v
}

// FirstElement returns the first sample, or the zero value for an empty array
func (a *Array[T]) FirstElement() T {
	var zero T
	if len(a.data) == 0 {
		return zero
	}
	return a.data[0]
}
