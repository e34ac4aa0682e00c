// Package stats summarizes the samples that fall inside a threshold region.
//
// The threshold package never stores member values. The functions here scan a
// ConditionalPointSet once, collect the sampled values of its members and hand
// them to gonum for the statistics.
package stats

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"thresholdroi/pkg/threshold"
)

// EntropyBins is the histogram resolution used for Summary.Entropy
const EntropyBins = 256

// Summary describes the member samples of a region
type Summary struct {
	// Count is the number of member points
	Count int64 `json:"count" yaml:"count"`

	// Total is the number of lattice points scanned
	Total int64 `json:"total" yaml:"total"`

	// Fraction is Count / Total, or 0 for an empty lattice
	Fraction float64 `json:"fraction" yaml:"fraction"`

	// Min and Max are the extreme member samples
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`

	// Mean and StdDev are the sample mean and unbiased standard deviation
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stdDev" yaml:"stdDev"`

	// Entropy is the Shannon entropy in bits of the finite member samples,
	// over EntropyBins equal-width bins
	Entropy float64 `json:"entropy" yaml:"entropy"`
}

// Histogram holds bin edges and per-bin counts.
// Bin i covers [Dividers[i], Dividers[i+1]).
type Histogram struct {
	Dividers []float64 `json:"dividers" yaml:"dividers"`
	Counts   []float64 `json:"counts" yaml:"counts"`
}

// Values returns the sampled value of every member, in iteration order
func Values(ps *threshold.ConditionalPointSet) []float64 {
	fn := ps.Function()
	values := make([]float64, 0)
	for p := range ps.All() {
		values = append(values, fn.Sample(p))
	}
	return values
}

// Summarize scans ps once and describes its members
func Summarize(ps *threshold.ConditionalPointSet) Summary {
	values := Values(ps)
	total := ps.Lattice().Size()

	s := Summary{
		Count: int64(len(values)),
		Total: total,
	}
	if total > 0 {
		s.Fraction = float64(s.Count) / float64(total)
	}
	if len(values) == 0 {
		return s
	}

	s.Min, s.Max = findMinMax(values)
	s.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	s.Entropy = calculateEntropy(values)
	return s
}

// ComputeHistogram bins the finite member samples of ps into the given number
// of equal-width bins spanning their range
func ComputeHistogram(ps *threshold.ConditionalPointSet, bins int) Histogram {
	return histogram(Values(ps), bins)
}

func histogram(values []float64, bins int) Histogram {
	if bins < 1 {
		bins = 1
	}
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}

	h := Histogram{
		Dividers: make([]float64, bins+1),
		Counts:   make([]float64, bins),
	}
	if len(finite) == 0 {
		floats.Span(h.Dividers, 0, 1)
		return h
	}

	sort.Float64s(finite)
	lo, hi := finite[0], finite[len(finite)-1]
	if hi <= lo {
		// Every sample is identical
		floats.Span(h.Dividers, lo, lo+1)
		h.Counts[0] = float64(len(finite))
		return h
	}

	floats.Span(h.Dividers, lo, hi)
	// stat.Histogram excludes the upper edge, so nudge it past the maximum
	h.Dividers[bins] = math.Nextafter(hi, math.Inf(1))
	stat.Histogram(h.Counts, h.Dividers, finite, nil)
	return h
}

// calculateEntropy computes the Shannon entropy of data in bits
func calculateEntropy(data []float64) float64 {
	h := histogram(data, EntropyBins)

	var n float64
	for _, c := range h.Counts {
		n += c
	}
	if n == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range h.Counts {
		if count > 0 {
			p := count / n
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// findMinMax returns the minimum and maximum values in a slice
func findMinMax(data []float64) (min, max float64) {
	if len(data) == 0 {
		return 0, 0
	}
	return floats.Min(data), floats.Max(data)
}

// CountParallel counts the members of ps using several goroutines.
//
// The last axis is split into contiguous slabs, one per worker. workers <= 0
// uses every CPU. Each worker checks ctx before sampling every lattice point,
// so a cancelled count stops promptly even when the region has no members.
// ps must not be modified while the count runs.
func CountParallel(ctx context.Context, ps *threshold.ConditionalPointSet, workers int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := ps.NumDimensions()
	if n == 0 {
		return ps.Size(), nil
	}
	extent := ps.Dimension(n - 1)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if int64(workers) > extent {
		workers = int(max(extent, 1))
	}
	chunk := (extent + int64(workers) - 1) / int64(workers)

	g, ctx := errgroup.WithContext(ctx)
	counts := make([]int64, workers)
	for w := 0; w < workers; w++ {
		lo := int64(w) * chunk
		hi := min(lo+chunk, extent)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			n, err := countSlab(ctx, ps, lo, hi)
			counts[w] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// countSlab counts the members of ps whose last coordinate lies in [lo, hi).
// It walks the lattice directly so that cancellation is seen between scanned
// points rather than between members.
func countSlab(ctx context.Context, ps *threshold.ConditionalPointSet, lo, hi int64) (int64, error) {
	fn := ps.Function()
	cond := ps.Condition()
	done := ctx.Done()

	var count int64
	for p := range ps.Lattice().Slab(lo, hi) {
		select {
		case <-done:
			return count, ctx.Err()
		default:
		}
		if cond.Evaluate(fn.Sample(p)) {
			count++
		}
	}
	return count, nil
}
