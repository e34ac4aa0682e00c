package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"thresholdroi/internal/logger"
	"thresholdroi/pkg/config"
	"thresholdroi/pkg/phantom"
	"thresholdroi/pkg/stats"
	"thresholdroi/pkg/threshold"
	"thresholdroi/pkg/visualization"
	"thresholdroi/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "thresholdroi.yaml", "YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	minValue := flag.Float64("min", math.Inf(-1), "Lower threshold bound (inclusive)")
	maxValue := flag.Float64("max", math.Inf(1), "Upper threshold bound (inclusive)")
	kind := flag.String("phantom", "", "Phantom kind: ramp, sphere or shells")
	dims := flag.String("dims", "", "Phantom extents, e.g. 64x64x32")
	noise := flag.Float64("noise", 0, "Standard deviation of Gaussian noise added to the phantom")
	seed := flag.Uint64("seed", 0, "Noise seed")
	workers := flag.Int("workers", 0, "Goroutines for the parallel count (0: all CPUs)")
	bins := flag.Int("bins", 0, "Histogram bins (0: no histogram)")
	preview := flag.Bool("preview", false, "Print the threshold mask of the middle z slice")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags given explicitly override the file
	var dimsErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min":
			cfg.Threshold.Min = *minValue
		case "max":
			cfg.Threshold.Max = *maxValue
		case "phantom":
			cfg.Phantom.Kind = *kind
		case "dims":
			cfg.Phantom.Dims, dimsErr = parseDims(*dims)
		case "noise":
			cfg.Phantom.Noise = *noise
		case "seed":
			cfg.Phantom.Seed = *seed
		case "workers":
			cfg.Stats.Workers = *workers
		case "bins":
			cfg.Stats.Bins = *bins
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})
	if dimsErr != nil {
		fmt.Fprintf(os.Stderr, "Invalid -dims: %v\n", dimsErr)
		os.Exit(2)
	}
	// LoadConfig validated the file; the overrides need checking again
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	log := newLogger(cfg)
	if err := run(context.Background(), cfg, *preview, log); err != nil {
		log.Fatal().Err(err).Msg("threshold run failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	// Validate has already checked the level
	level, _ := logger.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.Console {
		return logger.NewConsole(os.Stderr, level)
	}
	return logger.New(os.Stderr, level)
}

func run(ctx context.Context, cfg *config.Config, preview bool, log zerolog.Logger) error {
	kind, err := phantom.ParseKind(cfg.Phantom.Kind)
	if err != nil {
		return err
	}
	display, err := cfg.ThresholdDisplay()
	if err != nil {
		return err
	}

	startTime := time.Now()
	vol, err := phantom.Generate(kind, cfg.Phantom.Seed, cfg.Phantom.Noise, cfg.Phantom.Dims...)
	if err != nil {
		return err
	}
	log.Info().
		Str("kind", string(kind)).
		Ints64("dims", vol.Dimensions()).
		Float64("noise", cfg.Phantom.Noise).
		Dur("elapsed", time.Since(startTime)).
		Msg("phantom generated")

	overlay, err := threshold.NewWithRange(vol, cfg.Threshold.Min, cfg.Threshold.Max,
		threshold.WithDisplay(display),
		threshold.WithLogger(logger.Component(log, "overlay")))
	if err != nil {
		return err
	}

	startTime = time.Now()
	summary := stats.Summarize(overlay.Points())
	log.Debug().Dur("elapsed", time.Since(startTime)).Msg("summary computed")

	startTime = time.Now()
	count, err := stats.CountParallel(ctx, overlay.Points(), cfg.Stats.Workers)
	if err != nil {
		return err
	}
	log.Debug().
		Int("workers", cfg.Stats.Workers).
		Int64("count", count).
		Dur("elapsed", time.Since(startTime)).
		Msg("parallel count finished")
	if count != summary.Count {
		log.Warn().Int64("sequential", summary.Count).Int64("parallel", count).Msg("member counts disagree")
	}

	lo, hi := overlay.Range()
	fmt.Printf("Threshold [%g, %g] on %s phantom %s\n", lo, hi, kind, formatDims(vol.Dimensions()))
	fmt.Printf("Members:  %d of %d (%.2f%%)\n", summary.Count, summary.Total, summary.Fraction*100)
	if summary.Count > 0 {
		fmt.Printf("Range:    [%.4f, %.4f]\n", summary.Min, summary.Max)
		fmt.Printf("Mean:     %.4f\n", summary.Mean)
		fmt.Printf("Std dev:  %.4f\n", summary.StdDev)
		fmt.Printf("Entropy:  %.4f bits\n", summary.Entropy)
	}

	if cfg.Stats.Bins > 0 && summary.Count > 0 {
		printHistogram(stats.ComputeHistogram(overlay.Points(), cfg.Stats.Bins))
	}

	if preview {
		return printPreview(overlay, log)
	}
	return nil
}

func printHistogram(h stats.Histogram) {
	const width = 40
	var peak float64
	for _, c := range h.Counts {
		peak = math.Max(peak, c)
	}

	fmt.Println("\nHistogram:")
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(c / peak * width))
		}
		fmt.Printf("  [%10.4f, %10.4f) %8.0f %s\n", h.Dividers[i], h.Dividers[i+1], c, strings.Repeat("#", bar))
	}
}

// printPreview draws the membership of the middle z slice, '#' for members
func printPreview(o *threshold.Overlay, log zerolog.Logger) error {
	position := 0
	if z := o.AxisIndex(volume.Z); z >= 0 {
		position = int(o.Dimension(z) / 2)
	}

	viewer := visualization.NewViewer(o)
	members, err := viewer.MemberSlice("z", position)
	if err != nil {
		return err
	}
	log.Debug().Int("z", position).Msg("preview slice extracted")

	fmt.Printf("\nMask at z=%d:\n", position)
	b := members.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		var line strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			if members.GrayAt(x, y).Y != 0 {
				line.WriteByte('#')
			} else {
				line.WriteByte('.')
			}
		}
		fmt.Println(line.String())
	}
	return nil
}

func parseDims(s string) ([]int64, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	dims := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad extent %q: %w", p, err)
		}
		dims[i] = v
	}
	return dims, nil
}

func formatDims(dims []int64) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return strings.Join(parts, "x")
}
