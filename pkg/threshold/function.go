package threshold

import (
	"errors"
	"fmt"
	"image/color"
	"reflect"

	"thresholdroi/pkg/volume"
)

// ErrUnsupportedSample is returned when an image's element type has no
// conversion to a scalar
var ErrUnsupportedSample = errors.New("unsupported sample type")

// ScalarFunction maps an integer position to a real value
type ScalarFunction interface {
	Sample(pos []int64) float64
}

// ImageFunction samples an image and converts each sample to float64.
//
// The conversion is selected when the function is created, from the dynamic
// type of the image's first element, and reused for every call to Sample.
type ImageFunction[T any] struct {
	img     volume.Sampler[T]
	convert func(T) float64
}

// NewImageFunction creates a sampling function for img.
//
// Supported element types:
//   - every built-in integer and floating point type, and named types whose
//     underlying type is one of them
//   - color.Gray and color.Gray16 (the Y channel)
//   - color.Alpha and color.Alpha16 (the A channel)
//   - any other color.Color, reduced to 8-bit BT.601 luma
//     (0.299*R + 0.587*G + 0.114*B)
//
// Empty images still carry a typed zero first element, so the conversion can
// be chosen for them as well.
func NewImageFunction[T any](img volume.Sampler[T]) (*ImageFunction[T], error) {
	convert, err := converterFor(img.FirstElement())
	if err != nil {
		return nil, err
	}
	return &ImageFunction[T]{img: img, convert: convert}, nil
}

// Sample returns the converted value at pos. It panics if pos is outside the image.
func (f *ImageFunction[T]) Sample(pos []int64) float64 {
	return f.convert(f.img.At(pos))
}

// Image returns the sampled image
func (f *ImageFunction[T]) Image() volume.Sampler[T] {
	return f.img
}

func converterFor[T any](elem T) (func(T) float64, error) {
	switch any(elem).(type) {
	case float64:
		return func(v T) float64 { return any(v).(float64) }, nil
	case float32:
		return func(v T) float64 { return float64(any(v).(float32)) }, nil
	case uint8:
		return func(v T) float64 { return float64(any(v).(uint8)) }, nil
	case uint16:
		return func(v T) float64 { return float64(any(v).(uint16)) }, nil
	case uint32:
		return func(v T) float64 { return float64(any(v).(uint32)) }, nil
	case uint64:
		return func(v T) float64 { return float64(any(v).(uint64)) }, nil
	case uint:
		return func(v T) float64 { return float64(any(v).(uint)) }, nil
	case int8:
		return func(v T) float64 { return float64(any(v).(int8)) }, nil
	case int16:
		return func(v T) float64 { return float64(any(v).(int16)) }, nil
	case int32:
		return func(v T) float64 { return float64(any(v).(int32)) }, nil
	case int64:
		return func(v T) float64 { return float64(any(v).(int64)) }, nil
	case int:
		return func(v T) float64 { return float64(any(v).(int)) }, nil
	case color.Gray:
		return colorConverter[T](func(c color.Color) (float64, bool) {
			g, ok := c.(color.Gray)
			return float64(g.Y), ok
		}), nil
	case color.Gray16:
		return colorConverter[T](func(c color.Color) (float64, bool) {
			g, ok := c.(color.Gray16)
			return float64(g.Y), ok
		}), nil
	case color.Alpha:
		return colorConverter[T](func(c color.Color) (float64, bool) {
			a, ok := c.(color.Alpha)
			return float64(a.A), ok
		}), nil
	case color.Alpha16:
		return colorConverter[T](func(c color.Color) (float64, bool) {
			a, ok := c.(color.Alpha16)
			return float64(a.A), ok
		}), nil
	case color.Color:
		return colorConverter[T](func(color.Color) (float64, bool) { return 0, false }), nil
	}

	return kindConverter[T](elem)
}

// colorConverter applies fast to samples of the representative color type and
// falls back to luma for anything else, since a palette may mix color types.
func colorConverter[T any](fast func(color.Color) (float64, bool)) func(T) float64 {
	return func(v T) float64 {
		c := any(v).(color.Color)
		if f, ok := fast(c); ok {
			return f
		}
		return luma(c)
	}
}

// luma computes BT.601 luma from the 8-bit channels of c
func luma(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// kindConverter handles named numeric types through reflection
func kindConverter[T any](elem T) (func(T) float64, error) {
	rt := reflect.TypeOf(elem)
	if rt == nil {
		return nil, fmt.Errorf("%w: nil element", ErrUnsupportedSample)
	}

	switch rt.Kind() {
	case reflect.Float32, reflect.Float64:
		return func(v T) float64 { return reflect.ValueOf(v).Float() }, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v T) float64 { return float64(reflect.ValueOf(v).Int()) }, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(v T) float64 { return float64(reflect.ValueOf(v).Uint()) }, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSample, rt)
}
