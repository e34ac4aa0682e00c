package threshold

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"thresholdroi/pkg/volume"
)

// ErrInvalidCalibration is returned when a calibration change is refused.
// Threshold overlays have no spatial calibration of their own, so the in-plane
// axes must stay at 1.
var ErrInvalidCalibration = errors.New("cannot set calibration of a threshold overlay")

// Option configures an Overlay
type Option func(*Overlay)

// WithLogger sets the logger used for range changes and refused calibrations
func WithLogger(log zerolog.Logger) Option {
	return func(o *Overlay) {
		o.log = log
	}
}

// WithDisplay sets the initial display attributes
func WithDisplay(d Display) Option {
	return func(o *Overlay) {
		o.display = d
		o.display.Alpha = clampAlpha(d.Alpha)
	}
}

// Overlay is a threshold region bound to one image.
//
// It owns the range condition, the filtered point set and the region adapter.
// The image is shared with the caller and with any duplicates; the overlay
// only reads its samples and forwards axis metadata calls to it.
type Overlay struct {
	img     volume.Image
	fn      ScalarFunction
	lattice *HyperVolume
	cond    *RangeCondition
	points  *ConditionalPointSet
	region  PointSetRegion

	display Display
	log     zerolog.Logger
}

// New creates an unthresholded overlay over img: every lattice point is a member.
//
// Returns ErrUnsupportedSample when img's element type cannot be converted
// to a scalar.
func New[T any](img volume.Sampler[T], opts ...Option) (*Overlay, error) {
	fn, err := NewImageFunction(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampling function: %w", err)
	}
	lattice, err := NewHyperVolume(img.Dimensions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create lattice: %w", err)
	}
	return newOverlay(img, fn, lattice, NewUnboundedCondition(), opts...), nil
}

// NewWithRange creates an overlay over img thresholded to [min, max]
func NewWithRange[T any](img volume.Sampler[T], min, max float64, opts ...Option) (*Overlay, error) {
	o, err := New(img, opts...)
	if err != nil {
		return nil, err
	}
	o.SetRange(min, max)
	return o, nil
}

func newOverlay(img volume.Image, fn ScalarFunction, lattice *HyperVolume, cond *RangeCondition, opts ...Option) *Overlay {
	o := &Overlay{
		img:     img,
		fn:      fn,
		lattice: lattice,
		cond:    cond,
		display: DefaultDisplay(),
		log:     zerolog.Nop(),
	}
	o.points = NewConditionalPointSet(lattice, fn, cond)
	o.region = NewPointSetRegion(o.points)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetRange changes the threshold to [min, max] and signals the point set.
// min > max is accepted and empties the region.
func (o *Overlay) SetRange(min, max float64) {
	o.cond.SetMin(min)
	o.cond.SetMax(max)
	o.points.SetCondition(o.cond)

	o.log.Debug().
		Float64("min", min).
		Float64("max", max).
		Uint64("version", o.points.Version()).
		Msg("threshold range changed")
}

// ResetThreshold removes the threshold so that every point is a member
func (o *Overlay) ResetThreshold() {
	o.SetRange(math.Inf(-1), math.Inf(1))
}

// Range returns the current bounds
func (o *Overlay) Range() (min, max float64) {
	return o.cond.Bounds()
}

// Points returns the filtered point set
func (o *Overlay) Points() *ConditionalPointSet {
	return o.points
}

// RegionOfInterest returns the region view used by renderers
func (o *Overlay) RegionOfInterest() RegionOfInterest {
	return o.region
}

// Image returns the thresholded image
func (o *Overlay) Image() volume.Image {
	return o.img
}

// Function returns the sampling function used for membership
func (o *Overlay) Function() ScalarFunction {
	return o.fn
}

// IsDiscrete is always true: membership is defined on lattice points only
func (o *Overlay) IsDiscrete() bool {
	return true
}

// Duplicate returns an independent overlay on the same image with the same
// range and display attributes. Changing the copy's range leaves o untouched.
func (o *Overlay) Duplicate() *Overlay {
	return newOverlay(o.img, o.fn, o.lattice, o.cond.Copy(), WithDisplay(o.display), WithLogger(o.log))
}

// Move does nothing. A threshold region is defined by values, not position,
// so there is nothing to translate.
func (o *Overlay) Move(deltas []float64) {}

// Update is called by the overlay framework after attribute changes.
// Membership is computed on demand, so only the change is logged.
func (o *Overlay) Update() {
	o.log.Debug().Uint64("version", o.points.Version()).Msg("threshold overlay updated")
}

// Rebuild is a no-op for threshold overlays
func (o *Overlay) Rebuild() {
	o.log.Debug().Msg("threshold overlay rebuild requested")
}

// === Geometry pass-through ===

// NumDimensions returns the dimensionality of the image
func (o *Overlay) NumDimensions() int {
	return o.points.NumDimensions()
}

// Dimension returns the image extent along axis d
func (o *Overlay) Dimension(d int) int64 {
	return o.points.Dimension(d)
}

// Dimensions returns the image extent along every axis
func (o *Overlay) Dimensions() []int64 {
	return o.points.Dimensions()
}

// Min returns 0 for every axis
func (o *Overlay) Min(d int) int64 {
	return o.points.Min(d)
}

// Max returns the image extent minus one, regardless of the threshold
func (o *Overlay) Max(d int) int64 {
	return o.points.Max(d)
}

// RealMin returns Min(d) as a float
func (o *Overlay) RealMin(d int) float64 {
	return o.region.RealMin(d)
}

// RealMax returns Max(d) as a float
func (o *Overlay) RealMax(d int) float64 {
	return o.region.RealMax(d)
}

// === Axis metadata pass-through ===

// Axis returns the axis type of dimension d
func (o *Overlay) Axis(d int) volume.AxisType {
	return o.img.Axis(d)
}

// Axes returns the axis type of every dimension
func (o *Overlay) Axes() []volume.AxisType {
	return o.img.Axes()
}

// SetAxis relabels dimension d of the underlying image
func (o *Overlay) SetAxis(axis volume.AxisType, d int) {
	o.img.SetAxis(axis, d)
}

// AxisIndex returns the dimension labelled axis, or -1
func (o *Overlay) AxisIndex(axis volume.AxisType) int {
	return o.img.AxisIndex(axis)
}

// Calibration returns the physical size of one sample along d
func (o *Overlay) Calibration(d int) float64 {
	return o.img.Calibration(d)
}

// Calibrations returns the calibration of every axis
func (o *Overlay) Calibrations() []float64 {
	cal := make([]float64, o.img.NumDimensions())
	for d := range cal {
		cal[d] = o.img.Calibration(d)
	}
	return cal
}

// SetCalibration sets the calibration of axis d.
//
// Axes 0 and 1 accept only 1, which leaves them unchanged; anything else
// returns ErrInvalidCalibration. Higher axes are forwarded to the image.
// An axis index outside the image also returns ErrInvalidCalibration.
func (o *Overlay) SetCalibration(cal float64, d int) error {
	if d < 0 || d >= o.img.NumDimensions() {
		return fmt.Errorf("%w: axis %d outside %d-dimensional image", ErrInvalidCalibration, d, o.img.NumDimensions())
	}
	if d == 0 || d == 1 {
		if cal == 1 {
			return nil
		}
		o.log.Warn().Int("axis", d).Float64("calibration", cal).Msg("refused in-plane calibration change")
		return fmt.Errorf("%w: axis %d must stay at 1, got %g", ErrInvalidCalibration, d, cal)
	}
	o.img.SetCalibration(cal, d)
	return nil
}

// SetCalibrations applies cal[d] to axis d in order and stops at the first error
func (o *Overlay) SetCalibrations(cal []float64) error {
	for d, c := range cal {
		if err := o.SetCalibration(c, d); err != nil {
			return err
		}
	}
	return nil
}

// === Display attributes ===

// Display returns a copy of all display attributes
func (o *Overlay) Display() Display {
	return o.display
}

// Alpha returns the fill opacity
func (o *Overlay) Alpha() int {
	return o.display.Alpha
}

// SetAlpha sets the fill opacity, clamped to [0, 255]
func (o *Overlay) SetAlpha(alpha int) {
	o.display.Alpha = clampAlpha(alpha)
}

// FillColor returns the color member pixels are drawn in
func (o *Overlay) FillColor() ColorRGB {
	return o.display.FillColor
}

// SetFillColor sets the member fill color
func (o *Overlay) SetFillColor(c ColorRGB) {
	o.display.FillColor = c
}

// LineColor returns the outline color
func (o *Overlay) LineColor() ColorRGB {
	return o.display.LineColor
}

// SetLineColor sets the outline color
func (o *Overlay) SetLineColor(c ColorRGB) {
	o.display.LineColor = c
}

// LineWidth is fixed at DefaultLineWidth
func (o *Overlay) LineWidth() float64 {
	return DefaultLineWidth
}

// SetLineWidth is ignored; see LineWidth
func (o *Overlay) SetLineWidth(width float64) {}

// LineStyle returns the outline dash pattern
func (o *Overlay) LineStyle() LineStyle {
	return o.display.LineStyle
}

// SetLineStyle sets the outline dash pattern
func (o *Overlay) SetLineStyle(style LineStyle) {
	o.display.LineStyle = style
}

// StartArrowStyle returns the arrowhead at the outline start
func (o *Overlay) StartArrowStyle() ArrowStyle {
	return o.display.StartArrow
}

// SetStartArrowStyle sets the arrowhead at the outline start
func (o *Overlay) SetStartArrowStyle(style ArrowStyle) {
	o.display.StartArrow = style
}

// EndArrowStyle returns the arrowhead at the outline end
func (o *Overlay) EndArrowStyle() ArrowStyle {
	return o.display.EndArrow
}

// SetEndArrowStyle sets the arrowhead at the outline end
func (o *Overlay) SetEndArrowStyle(style ArrowStyle) {
	o.display.EndArrow = style
}
