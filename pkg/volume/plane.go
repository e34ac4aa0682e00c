package volume

import (
	"image"
	"image/color"
)

// Plane presents a standard image.Image as a two-dimensional Sampler.
//
// Positions are relative to the image bounds, so (0,0) is always the top-left
// pixel even when Bounds().Min is not the origin. The wrapped image is shared,
// never copied.
type Plane struct {
	Metadata

	img    image.Image
	bounds image.Rectangle
	dims   []int64
}

// NewPlane wraps img. Axis 0 is X and axis 1 is Y.
func NewPlane(img image.Image) *Plane {
	b := img.Bounds()
	return &Plane{
		Metadata: NewMetadata(2),
		img:      img,
		bounds:   b,
		dims:     []int64{int64(b.Dx()), int64(b.Dy())},
	}
}

// Image returns the wrapped image
func (p *Plane) Image() image.Image {
	return p.img
}

// NumDimensions is always 2
func (p *Plane) NumDimensions() int {
	return 2
}

// Dimension returns the width for axis 0 and the height for axis 1
func (p *Plane) Dimension(d int) int64 {
	return p.dims[d]
}

// Dimensions returns {width, height}
func (p *Plane) Dimensions() []int64 {
	return []int64{p.dims[0], p.dims[1]}
}

// At returns the color at pos
func (p *Plane) At(pos []int64) color.Color {
	checkPosition(p.dims, pos)
	return p.img.At(p.bounds.Min.X+int(pos[0]), p.bounds.Min.Y+int(pos[1]))
}

// FirstElement returns the top-left pixel. An empty plane reports the color
// model's conversion of transparent black so callers still see a typed value,
// or color.Transparent itself when the model has nothing to convert to (an
// empty palette).
func (p *Plane) FirstElement() color.Color {
	if p.bounds.Empty() {
		if c := p.img.ColorModel().Convert(color.Transparent); c != nil {
			return c
		}
		return color.Transparent
	}
	return p.img.At(p.bounds.Min.X, p.bounds.Min.Y)
}
