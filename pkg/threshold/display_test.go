package threshold

import (
	"image/color"
	"testing"
)

// TestParseColorRGB verifies hex parsing and formatting
func TestParseColorRGB(t *testing.T) {
	tests := []struct {
		in   string
		want ColorRGB
	}{
		{"#ff0000", ColorRGB{R: 255}},
		{"#00FF80", ColorRGB{G: 255, B: 128}},
		{"#fff", ColorRGB{R: 255, G: 255, B: 255}},
		{" #102030 ", ColorRGB{R: 16, G: 32, B: 48}},
	}

	for _, tt := range tests {
		got, err := ParseColorRGB(tt.in)
		if err != nil {
			t.Errorf("ParseColorRGB(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorRGB(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if _, err := ParseColorRGB("red"); err == nil {
		t.Errorf("Expected error for non-hex color")
	}

	if hex := (ColorRGB{R: 16, G: 32, B: 48}).Hex(); hex != "#102030" {
		t.Errorf("Expected #102030, got %s", hex)
	}
}

// TestColorRGBIsOpaque verifies the color.Color implementation
func TestColorRGBIsOpaque(t *testing.T) {
	var c color.Color = ColorRGB{R: 255, G: 128}
	r, g, b, a := c.RGBA()
	if r != 0xffff || g != 0x8080 || b != 0 || a != 0xffff {
		t.Errorf("Unexpected RGBA values %x %x %x %x", r, g, b, a)
	}

	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	if nrgba != (color.NRGBA{R: 255, G: 128, A: 255}) {
		t.Errorf("Unexpected NRGBA conversion %v", nrgba)
	}
}

// TestStyleNames verifies that style names round trip
func TestStyleNames(t *testing.T) {
	for _, s := range []LineStyle{LineStyleNone, LineStyleSolid, LineStyleDash, LineStyleDot, LineStyleDotDash} {
		got, err := ParseLineStyle(s.String())
		if err != nil || got != s {
			t.Errorf("Line style %v did not round trip: %v, %v", s, got, err)
		}
	}
	for _, s := range []ArrowStyle{ArrowNone, ArrowArrow} {
		got, err := ParseArrowStyle(s.String())
		if err != nil || got != s {
			t.Errorf("Arrow style %v did not round trip: %v, %v", s, got, err)
		}
	}

	if _, err := ParseLineStyle("wavy"); err == nil {
		t.Errorf("Expected error for unknown line style")
	}
	if _, err := ParseArrowStyle("feather"); err == nil {
		t.Errorf("Expected error for unknown arrow style")
	}
	if LineStyle(42).String() != "LineStyle(42)" {
		t.Errorf("Unexpected name for out-of-range style: %s", LineStyle(42).String())
	}
}
