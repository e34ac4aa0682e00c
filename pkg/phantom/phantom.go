// Package phantom generates synthetic volumes for exercising thresholds
// without real scan data.
package phantom

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"thresholdroi/pkg/volume"
)

// ErrUnknownKind is returned for an unrecognized phantom name
var ErrUnknownKind = errors.New("unknown phantom kind")

// Kind selects the phantom pattern
type Kind string

const (
	// Ramp sets every sample to its linear index
	Ramp Kind = "ramp"

	// Sphere is 1 inside a centered ball and 0 outside
	Sphere Kind = "sphere"

	// Shells are concentric rings that step from 1 at the center to 0
	Shells Kind = "shells"
)

// ShellCount is the number of rings in a Shells phantom
const ShellCount = 4

// ParseKind returns the Kind for a name
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case Ramp, Sphere, Shells:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Generate builds a phantom of the given kind and extents.
// When noise > 0, Gaussian noise with that standard deviation is added to
// every sample, drawn from a source seeded with seed.
func Generate(kind Kind, seed uint64, noise float64, dims ...int64) (*volume.Array[float64], error) {
	var fill func(pos []int64, index int64) float64
	switch kind {
	case Ramp:
		fill = func(_ []int64, index int64) float64 { return float64(index) }
	case Sphere:
		dist := radialDistance(dims)
		fill = func(pos []int64, _ int64) float64 {
			if dist(pos) <= 1 {
				return 1
			}
			return 0
		}
	case Shells:
		dist := radialDistance(dims)
		fill = func(pos []int64, _ int64) float64 {
			ring := math.Floor(dist(pos) * ShellCount)
			return math.Max(0, 1-ring/ShellCount)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	vol, err := volume.NewArray[float64](dims...)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate phantom: %w", err)
	}

	var gauss *distuv.Normal
	if noise > 0 {
		gauss = &distuv.Normal{Mu: 0, Sigma: noise, Src: rand.NewSource(seed)}
	}

	data := vol.Data()
	pos := make([]int64, len(dims))
	for i := range data {
		v := fill(pos, int64(i))
		if gauss != nil {
			v += gauss.Rand()
		}
		data[i] = v

		// axis 0 varies fastest, matching the array layout
		for d := range pos {
			pos[d]++
			if pos[d] < dims[d] {
				break
			}
			pos[d] = 0
		}
	}
	return vol, nil
}

// radialDistance returns the distance of a position from the volume center,
// normalized so the largest inscribed ball has radius 1
func radialDistance(dims []int64) func(pos []int64) float64 {
	radius := math.Inf(1)
	for _, d := range dims {
		radius = math.Min(radius, float64(d)/2)
	}
	return func(pos []int64) float64 {
		if radius <= 0 || math.IsInf(radius, 1) {
			return 0
		}
		var sum float64
		for d, p := range pos {
			c := float64(p) + 0.5 - float64(dims[d])/2
			sum += c * c
		}
		return math.Sqrt(sum) / radius
	}
}
