// Package visualization renders 2D slices of a thresholded image: the
// underlying intensities, the threshold mask in the overlay's fill color, and
// the two composited.
package visualization

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"thresholdroi/pkg/threshold"
	"thresholdroi/pkg/volume"
)

// ErrInvalidSlice is returned for an unknown axis or an out-of-range position
var ErrInvalidSlice = errors.New("invalid slice")

// Viewer extracts slices from an overlay's image.
//
// Slices are named by the axis they cut across: an "x" slice spans the z and y
// axes, a "y" slice spans x and z, and a "z" slice spans x and y. Axes are
// looked up through the image's axis metadata. A display axis the image lacks
// is treated as having extent 1, so a 2D image is a single "z" slice. Axes
// beyond x, y and z are held at index 0.
type Viewer struct {
	overlay *threshold.Overlay

	// lo and hi are the finite sample range used to rescale intensities
	lo, hi float64
}

// NewViewer creates a viewer for o.
// It scans the image once to find the intensity range.
func NewViewer(o *threshold.Overlay) *Viewer {
	v := &Viewer{overlay: o}
	v.lo, v.hi = sampleRange(o)
	return v
}

// SampleRange returns the finite intensity range used for rescaling
func (v *Viewer) SampleRange() (lo, hi float64) {
	return v.lo, v.hi
}

// slicePlane describes the lattice positions behind a slice image
type slicePlane struct {
	// col and row are the image axes mapped to pixel x and y, or -1 if absent
	col, row int

	width, height int

	// base is the lattice position of pixel (0, 0)
	base []int64
}

// position fills pos with the lattice position of pixel (x, y)
func (p *slicePlane) position(pos []int64, x, y int) {
	copy(pos, p.base)
	if p.col >= 0 {
		pos[p.col] = int64(x)
	}
	if p.row >= 0 {
		pos[p.row] = int64(y)
	}
}

// plane resolves an axis name and position into a slice geometry
func (v *Viewer) plane(axis string, position int) (*slicePlane, error) {
	normal, err := volume.ParseAxisType(axis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlice, err)
	}

	var colType, rowType volume.AxisType
	switch normal {
	case volume.X:
		colType, rowType = volume.Z, volume.Y
	case volume.Y:
		colType, rowType = volume.X, volume.Z
	case volume.Z:
		colType, rowType = volume.X, volume.Y
	default:
		return nil, fmt.Errorf("%w: axis %s (must be x, y, or z)", ErrInvalidSlice, axis)
	}

	o := v.overlay
	extent := func(d int) int {
		if d < 0 {
			return 1
		}
		return int(o.Dimension(d))
	}

	n := o.AxisIndex(normal)
	if position < 0 || position >= extent(n) {
		return nil, fmt.Errorf("%w: position %d outside %s extent %d", ErrInvalidSlice, position, normal, extent(n))
	}

	p := &slicePlane{
		col:  o.AxisIndex(colType),
		row:  o.AxisIndex(rowType),
		base: make([]int64, o.NumDimensions()),
	}
	p.width, p.height = extent(p.col), extent(p.row)
	if n >= 0 {
		p.base[n] = int64(position)
	}
	return p, nil
}

// ExtractSlice returns the intensities of one slice as 16-bit grayscale,
// rescaled so the image's sample range maps to [0, 65535]
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	p, err := v.plane(axis, position)
	if err != nil {
		return nil, err
	}

	fn := v.overlay.Function()
	img := image.NewGray16(image.Rect(0, 0, p.width, p.height))
	pos := make([]int64, len(p.base))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.position(pos, x, y)
			img.SetGray16(x, y, color.Gray16{Y: v.rescale(fn.Sample(pos))})
		}
	}
	return img, nil
}

// MemberSlice returns the membership of one slice as a binary image:
// 255 for threshold members, 0 elsewhere
func (v *Viewer) MemberSlice(axis string, position int) (*image.Gray, error) {
	p, err := v.plane(axis, position)
	if err != nil {
		return nil, err
	}

	points := v.overlay.Points()
	img := image.NewGray(image.Rect(0, 0, p.width, p.height))
	pos := make([]int64, len(p.base))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.position(pos, x, y)
			if points.Contains(pos) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img, nil
}

// MaskSlice returns the threshold mask of one slice: member pixels take the
// overlay's fill color at its alpha, all others are transparent
func (v *Viewer) MaskSlice(axis string, position int) (*image.NRGBA, error) {
	members, err := v.MemberSlice(axis, position)
	if err != nil {
		return nil, err
	}

	o := v.overlay
	fill := o.FillColor()
	c := color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: uint8(o.Alpha())}

	b := members.Bounds()
	img := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if members.GrayAt(x, y).Y != 0 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img, nil
}

// CompositeSlice draws the mask of one slice over its grayscale intensities
func (v *Viewer) CompositeSlice(axis string, position int) (*image.NRGBA, error) {
	gray, err := v.ExtractSlice(axis, position)
	if err != nil {
		return nil, err
	}
	mask, err := v.MaskSlice(axis, position)
	if err != nil {
		return nil, err
	}
	return imaging.Overlay(gray, mask, image.Pt(0, 0), 1.0), nil
}

// ScaleSlice enlarges img by an integer factor without smoothing, so each
// sample stays a crisp block
func ScaleSlice(img image.Image, factor int) (*image.NRGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("scale factor must be positive, got %d", factor)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor), nil
}

// ExtractRegion copies a box of the image into a new array.
// Members of the threshold keep their sample; other points are NaN.
func (v *Viewer) ExtractRegion(start, size []int64) (*volume.Array[float64], error) {
	o := v.overlay
	n := o.NumDimensions()
	if len(start) != n || len(size) != n {
		return nil, fmt.Errorf("region needs %d coordinates, got start %v and size %v", n, start, size)
	}
	for d := 0; d < n; d++ {
		if start[d] < 0 {
			return nil, fmt.Errorf("start coordinates must be non-negative, got %v", start)
		}
		if size[d] <= 0 {
			return nil, fmt.Errorf("size dimensions must be positive, got %v", size)
		}
		if start[d]+size[d] > o.Dimension(d) {
			return nil, fmt.Errorf("region extends beyond image boundaries on axis %d", d)
		}
	}

	region, err := volume.NewArray[float64](size...)
	if err != nil {
		return nil, err
	}

	lattice, err := threshold.NewHyperVolume(size...)
	if err != nil {
		return nil, err
	}
	fn := o.Function()
	points := o.Points()
	src := make([]int64, n)
	data := region.Data()
	i := 0
	for p := range lattice.All() {
		for d := range p {
			src[d] = start[d] + p[d]
		}
		if points.Contains(src) {
			data[i] = fn.Sample(src)
		} else {
			data[i] = math.NaN()
		}
		i++
	}
	return region, nil
}

// rescale maps a sample onto the 16-bit gray range
func (v *Viewer) rescale(s float64) uint16 {
	if math.IsNaN(s) || v.hi <= v.lo {
		return 0
	}
	t := (s - v.lo) / (v.hi - v.lo)
	return uint16(math.Round(math.Max(0, math.Min(1, t)) * 65535))
}

// sampleRange finds the finite minimum and maximum over the whole image
func sampleRange(o *threshold.Overlay) (lo, hi float64) {
	fn := o.Function()
	lo, hi = math.Inf(1), math.Inf(-1)
	for p := range o.Points().Lattice().All() {
		s := fn.Sample(p)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
