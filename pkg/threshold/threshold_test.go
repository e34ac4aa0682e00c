package threshold

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"thresholdroi/pkg/volume"
)

// createRampImage returns a w x h image whose value at (x, y) is y*w + x
func createRampImage(t *testing.T, w, h int64) *volume.Array[float64] {
	t.Helper()
	img, err := volume.NewArray[float64](w, h)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	for i := range img.Data() {
		img.Data()[i] = float64(i)
	}
	return img
}

// collect drains a point sequence into retained copies
func collect(t *testing.T, o *Overlay) []Point {
	t.Helper()
	var out []Point
	for p := range o.Points().All() {
		out = append(out, p.Clone())
	}
	return out
}

// TestRampThreshold verifies the 4x4 ramp example: [5, 9] selects five points in order
func TestRampThreshold(t *testing.T) {
	img := createRampImage(t, 4, 4)

	o, err := NewWithRange(img, 5, 9)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	got := collect(t, o)
	want := []Point{{1, 1}, {2, 1}, {3, 1}, {0, 2}, {1, 2}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d points, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("Point %d: expected %v, got %v", i, want[i], got[i])
		}
		if v := img.At(got[i]); v < 5 || v > 9 {
			t.Errorf("Point %v has value %f outside [5, 9]", got[i], v)
		}
	}

	if n := o.Points().Size(); n != 5 {
		t.Errorf("Expected size 5, got %d", n)
	}
}

// TestIterationMatchesBruteForce checks members against a direct scan for several ranges
func TestIterationMatchesBruteForce(t *testing.T) {
	img, err := volume.NewArray[int16](5, 4, 3)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	for i := range img.Data() {
		img.Data()[i] = int16((i*7)%23 - 5)
	}

	o, err := New(img)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	ranges := [][2]float64{{-5, 17}, {0, 0}, {3, 9}, {-100, -6}, {10, 10.5}}
	for _, r := range ranges {
		o.SetRange(r[0], r[1])

		var want []Point
		for z := int64(0); z < 3; z++ {
			for y := int64(0); y < 4; y++ {
				for x := int64(0); x < 5; x++ {
					v := float64(img.At([]int64{x, y, z}))
					if r[0] <= v && v <= r[1] {
						want = append(want, Point{x, y, z})
					}
				}
			}
		}

		first := collect(t, o)
		second := collect(t, o)
		if len(first) != len(want) {
			t.Fatalf("Range %v: expected %d points, got %d", r, len(want), len(first))
		}
		for i := range want {
			if !slices.Equal(first[i], want[i]) {
				t.Errorf("Range %v point %d: expected %v, got %v", r, i, want[i], first[i])
			}
			if !slices.Equal(first[i], second[i]) {
				t.Errorf("Range %v: iteration order differs between calls at %d", r, i)
			}
		}
	}
}

// TestInvertedRange verifies that min > max yields an empty region without error
func TestInvertedRange(t *testing.T) {
	img := createRampImage(t, 3, 3)
	o, err := NewWithRange(img, 6, 2)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	if got := collect(t, o); len(got) != 0 {
		t.Errorf("Expected no points for inverted range, got %v", got)
	}
	for p := range o.Points().Lattice().All() {
		if o.Points().Contains(p) {
			t.Errorf("Expected %v not to be contained", p)
		}
	}

	// Bounds stay at the full extent even with no members
	for d := 0; d < 2; d++ {
		if o.Min(d) != 0 || o.Max(d) != 2 {
			t.Errorf("Axis %d: expected bounds [0, 2], got [%d, %d]", d, o.Min(d), o.Max(d))
		}
		if o.RealMin(d) != 0 || o.RealMax(d) != 2 {
			t.Errorf("Axis %d: expected real bounds [0, 2], got [%f, %f]", d, o.RealMin(d), o.RealMax(d))
		}
	}
}

// TestResetThreshold verifies that resetting yields every lattice point and is idempotent
func TestResetThreshold(t *testing.T) {
	img, err := volume.NewArray[uint8](3, 4, 2)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	o, err := NewWithRange(img, 1, 0)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	o.ResetThreshold()
	once := collect(t, o)
	o.ResetThreshold()
	twice := collect(t, o)

	if len(once) != 24 {
		t.Errorf("Expected 24 points after reset, got %d", len(once))
	}
	if len(once) != len(twice) {
		t.Fatalf("Expected identical regions after double reset, got %d and %d points", len(once), len(twice))
	}
	for i := range once {
		if !slices.Equal(once[i], twice[i]) {
			t.Errorf("Point %d differs after double reset: %v vs %v", i, once[i], twice[i])
		}
	}

	min, max := o.Range()
	if !math.IsInf(min, -1) || !math.IsInf(max, 1) {
		t.Errorf("Expected (-Inf, +Inf) after reset, got (%f, %f)", min, max)
	}
}

// TestNewIsUnthresholded verifies that a fresh overlay contains every point
func TestNewIsUnthresholded(t *testing.T) {
	img := createRampImage(t, 4, 2)
	o, err := New(img)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}
	if n := o.Points().Size(); n != 8 {
		t.Errorf("Expected 8 points, got %d", n)
	}
	if !o.IsDiscrete() {
		t.Errorf("Expected threshold overlays to be discrete")
	}
}

// TestSetRangeVisibleImmediately verifies that mutation is visible to live iterators' next run
func TestSetRangeVisibleImmediately(t *testing.T) {
	img := createRampImage(t, 4, 4)
	o, err := NewWithRange(img, 0, 3)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	seq := o.Points().All()
	before := o.Points().Version()

	o.SetRange(12, 15)
	if o.Points().Version() <= before {
		t.Errorf("Expected version to increase after SetRange")
	}

	var got []Point
	for p := range seq {
		got = append(got, p.Clone())
	}
	if len(got) != 4 || !slices.Equal(got[0], Point{0, 3}) {
		t.Errorf("Expected the new range to apply to an iterator created earlier, got %v", got)
	}
	if o.Points().Contains([]int64{0, 0}) {
		t.Errorf("Expected (0,0) to be excluded after SetRange")
	}
}

// TestDuplicate verifies that duplicates share the image but not the range
func TestDuplicate(t *testing.T) {
	img := createRampImage(t, 4, 4)
	o, err := NewWithRange(img, 2, 6)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}
	o.SetAlpha(128)
	o.SetFillColor(ColorRGB{G: 255})

	dup := o.Duplicate()
	if dup.Image() != o.Image() {
		t.Errorf("Expected duplicate to share the image")
	}
	if dup.Alpha() != 128 || dup.FillColor() != (ColorRGB{G: 255}) {
		t.Errorf("Expected display attributes to be copied, got %+v", dup.Display())
	}

	a, b := collect(t, o), collect(t, dup)
	if len(a) != len(b) {
		t.Fatalf("Expected same member count, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			t.Errorf("Point %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	dup.SetRange(10, 11)
	if min, max := o.Range(); min != 2 || max != 6 {
		t.Errorf("Expected original range [2, 6], got [%f, %f]", min, max)
	}
	if n := o.Points().Size(); n != 5 {
		t.Errorf("Expected original to keep 5 points, got %d", n)
	}
	if n := dup.Points().Size(); n != 2 {
		t.Errorf("Expected duplicate to have 2 points, got %d", n)
	}
}

// TestMove verifies that moving leaves membership unchanged
func TestMove(t *testing.T) {
	img := createRampImage(t, 3, 3)
	o, err := NewWithRange(img, 1, 4)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}
	before := collect(t, o)
	o.Move([]float64{10, -3.5})
	after := collect(t, o)

	if len(before) != len(after) {
		t.Fatalf("Expected same count after Move, got %d and %d", len(before), len(after))
	}
	for i := range before {
		if !slices.Equal(before[i], after[i]) {
			t.Errorf("Point %d changed after Move: %v vs %v", i, before[i], after[i])
		}
	}
}

// TestSetCalibration verifies which calibration changes are accepted
func TestSetCalibration(t *testing.T) {
	img, err := volume.NewArray[float32](2, 2, 2)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	o, err := New(img)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	tests := []struct {
		name    string
		cal     float64
		axis    int
		wantErr bool
	}{
		{"unit on x", 1, 0, false},
		{"unit on y", 1, 1, false},
		{"non-unit on x", 2, 0, true},
		{"non-unit on y", 0.5, 1, true},
		{"unit on z", 1, 2, false},
		{"non-unit on z", 2.5, 2, false},
		{"negative axis", 1, -1, true},
		{"axis past end", 1, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := o.SetCalibration(tt.cal, tt.axis)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCalibration) {
					t.Errorf("Expected ErrInvalidCalibration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected success, got %v", err)
			}
		})
	}

	if img.Calibration(0) != 1 || img.Calibration(1) != 1 {
		t.Errorf("In-plane calibration must never change, got %v", o.Calibrations())
	}
	if img.Calibration(2) != 2.5 {
		t.Errorf("Expected z calibration to pass through, got %f", img.Calibration(2))
	}

	if err := o.SetCalibrations([]float64{1, 3}); !errors.Is(err, ErrInvalidCalibration) {
		t.Errorf("Expected SetCalibrations to fail on axis 1, got %v", err)
	}
}

// TestAxisPassThrough verifies that axis metadata calls reach the image
func TestAxisPassThrough(t *testing.T) {
	img, _ := volume.NewArray[uint16](2, 2, 3)
	o, err := New(img)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	o.SetAxis(volume.Channel, 2)
	if img.Axis(2) != volume.Channel {
		t.Errorf("Expected SetAxis to reach the image")
	}
	if o.AxisIndex(volume.Channel) != 2 || o.Axis(2) != volume.Channel {
		t.Errorf("Expected Channel at axis 2, got %v", o.Axes())
	}
	if o.Dimension(2) != 3 || o.NumDimensions() != 3 {
		t.Errorf("Expected 3 axes with extent 3 on axis 2, got %v", o.Dimensions())
	}
}

// TestDisplayDefaults verifies the presentation attributes of a new overlay
func TestDisplayDefaults(t *testing.T) {
	img := createRampImage(t, 2, 2)
	o, err := New(img)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	if o.Alpha() != 0 {
		t.Errorf("Expected alpha 0, got %d", o.Alpha())
	}
	if o.FillColor() != Red || o.LineColor() != Red {
		t.Errorf("Expected red fill and line, got %v and %v", o.FillColor(), o.LineColor())
	}
	if o.LineWidth() != 1 {
		t.Errorf("Expected line width 1, got %f", o.LineWidth())
	}
	o.SetLineWidth(5)
	if o.LineWidth() != 1 {
		t.Errorf("Expected line width to stay 1, got %f", o.LineWidth())
	}
	if o.LineStyle() != LineStyleNone || o.StartArrowStyle() != ArrowNone || o.EndArrowStyle() != ArrowNone {
		t.Errorf("Expected no line style or arrows, got %+v", o.Display())
	}

	o.SetAlpha(300)
	if o.Alpha() != 255 {
		t.Errorf("Expected alpha clamped to 255, got %d", o.Alpha())
	}
	o.SetAlpha(-4)
	if o.Alpha() != 0 {
		t.Errorf("Expected alpha clamped to 0, got %d", o.Alpha())
	}

	o.SetLineStyle(LineStyleDash)
	o.SetStartArrowStyle(ArrowArrow)
	o.SetEndArrowStyle(ArrowArrow)
	o.SetLineColor(ColorRGB{B: 200})
	d := o.Display()
	if d.LineStyle != LineStyleDash || d.StartArrow != ArrowArrow || d.EndArrow != ArrowArrow || d.LineColor.B != 200 {
		t.Errorf("Expected display setters to apply, got %+v", d)
	}

	// Display attributes never affect membership
	if n := o.Points().Size(); n != 4 {
		t.Errorf("Expected 4 points, got %d", n)
	}
}

// TestWithDisplayOption verifies that the display option applies and clamps alpha
func TestWithDisplayOption(t *testing.T) {
	img := createRampImage(t, 2, 2)
	d := DefaultDisplay()
	d.Alpha = 999
	d.FillColor = ColorRGB{R: 1, G: 2, B: 3}

	o, err := New(img, WithDisplay(d))
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}
	if o.Alpha() != 255 || o.FillColor() != d.FillColor {
		t.Errorf("Expected display option to apply, got %+v", o.Display())
	}
}

// TestOverlayLogging verifies range changes log at debug and refused calibrations at warn
func TestOverlayLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	o, err := New(createRampImage(t, 2, 2), WithLogger(log))
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}

	o.SetRange(1, 2)
	if out := buf.String(); !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, "threshold range changed") {
		t.Errorf("Expected a debug event for SetRange, got %q", out)
	}
	if o.Points().Version() != 1 {
		t.Errorf("Expected version 1 after one SetRange, got %d", o.Points().Version())
	}

	buf.Reset()
	if err := o.SetCalibration(2, 0); !errors.Is(err, ErrInvalidCalibration) {
		t.Errorf("Expected ErrInvalidCalibration, got %v", err)
	}
	if out := buf.String(); !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("Expected a warn event for the refused calibration, got %q", out)
	}

	dup := o.Duplicate()
	buf.Reset()
	dup.SetRange(0, 0)
	if !strings.Contains(buf.String(), "threshold range changed") {
		t.Errorf("Expected the duplicate to keep the logger")
	}
}
