package threshold

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorRGB is an opaque 8-bit color used for overlay fill and outline
type ColorRGB struct {
	R, G, B uint8
}

// Red is the default fill and line color of an overlay
var Red = ColorRGB{R: 255}

// ParseColorRGB parses "#rrggbb" or "#rgb"
func ParseColorRGB(s string) (ColorRGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return ColorRGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return ColorRGB{R: r, G: g, B: b}, nil
}

// RGBA implements color.Color. The color is always fully opaque.
func (c ColorRGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// Colorful converts to a go-colorful color for blending and color space math
func (c ColorRGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Hex formats the color as "#rrggbb"
func (c ColorRGB) Hex() string {
	return c.Colorful().Hex()
}

// String returns the "#rrggbb" form
func (c ColorRGB) String() string {
	return c.Hex()
}

// LineStyle is the outline pattern a renderer should use
type LineStyle int

const (
	LineStyleNone LineStyle = iota
	LineStyleSolid
	LineStyleDash
	LineStyleDot
	LineStyleDotDash
)

var lineStyleNames = []string{"none", "solid", "dash", "dot", "dot-dash"}

// String returns the name ParseLineStyle accepts
func (s LineStyle) String() string {
	if s >= 0 && int(s) < len(lineStyleNames) {
		return lineStyleNames[s]
	}
	return fmt.Sprintf("LineStyle(%d)", int(s))
}

// ParseLineStyle converts a name produced by LineStyle.String back to a LineStyle
func ParseLineStyle(name string) (LineStyle, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range lineStyleNames {
		if n == name {
			return LineStyle(i), nil
		}
	}
	return LineStyleNone, fmt.Errorf("unknown line style %q", name)
}

// ArrowStyle is the decoration drawn at a line end
type ArrowStyle int

const (
	ArrowNone ArrowStyle = iota
	ArrowArrow
)

var arrowStyleNames = []string{"none", "arrow"}

// String returns the name ParseArrowStyle accepts
func (s ArrowStyle) String() string {
	if s >= 0 && int(s) < len(arrowStyleNames) {
		return arrowStyleNames[s]
	}
	return fmt.Sprintf("ArrowStyle(%d)", int(s))
}

// ParseArrowStyle converts a name produced by ArrowStyle.String back to an ArrowStyle
func ParseArrowStyle(name string) (ArrowStyle, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range arrowStyleNames {
		if n == name {
			return ArrowStyle(i), nil
		}
	}
	return ArrowNone, fmt.Errorf("unknown arrow style %q", name)
}

// DefaultLineWidth is the outline width every threshold overlay reports
const DefaultLineWidth = 1.0

// Display holds presentation attributes. They never influence membership.
type Display struct {
	// Alpha is the fill opacity, 0 (transparent) to 255 (opaque)
	Alpha int

	FillColor ColorRGB
	LineColor ColorRGB
	LineStyle LineStyle

	StartArrow ArrowStyle
	EndArrow   ArrowStyle
}

// DefaultDisplay returns a transparent red overlay with no outline or arrows
func DefaultDisplay() Display {
	return Display{
		Alpha:      0,
		FillColor:  Red,
		LineColor:  Red,
		LineStyle:  LineStyleNone,
		StartArrow: ArrowNone,
		EndArrow:   ArrowNone,
	}
}

// clampAlpha limits a to [0, 255]
func clampAlpha(a int) int {
	if a < 0 {
		return 0
	}
	if a > 255 {
		return 255
	}
	return a
}
