// Package config provides configuration loading and management for thresholdroi.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"thresholdroi/internal/logger"
	"thresholdroi/pkg/phantom"
	"thresholdroi/pkg/threshold"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Threshold range. YAML accepts .inf and -.inf for open ends.
	Threshold struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"threshold"`

	// Display attributes of the overlay
	Display struct {
		// Alpha is the fill opacity, 0 to 255
		Alpha int `yaml:"alpha"`

		// FillColor and LineColor are "#rrggbb" strings
		FillColor string `yaml:"fillColor"`
		LineColor string `yaml:"lineColor"`

		LineStyle  string `yaml:"lineStyle"`
		StartArrow string `yaml:"startArrow"`
		EndArrow   string `yaml:"endArrow"`
	} `yaml:"display"`

	// Phantom selects the synthetic volume the command thresholds
	Phantom struct {
		Kind  string  `yaml:"kind"`
		Dims  []int64 `yaml:"dims"`
		Noise float64 `yaml:"noise"`
		Seed  uint64  `yaml:"seed"`
	} `yaml:"phantom"`

	// Stats parameters
	Stats struct {
		// Workers is the number of goroutines for parallel counting, 0 for all CPUs
		Workers int `yaml:"workers"`

		// Bins is the histogram resolution, 0 disables the histogram
		Bins int `yaml:"bins"`
	} `yaml:"stats"`

	// Logging parameters
	Logging struct {
		Level string `yaml:"level"`

		// Console selects human-readable output instead of JSON
		Console bool `yaml:"console"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Unthresholded
	cfg.Threshold.Min = math.Inf(-1)
	cfg.Threshold.Max = math.Inf(1)

	d := threshold.DefaultDisplay()
	cfg.Display.Alpha = d.Alpha
	cfg.Display.FillColor = d.FillColor.Hex()
	cfg.Display.LineColor = d.LineColor.Hex()
	cfg.Display.LineStyle = d.LineStyle.String()
	cfg.Display.StartArrow = d.StartArrow.String()
	cfg.Display.EndArrow = d.EndArrow.String()

	cfg.Phantom.Kind = string(phantom.Sphere)
	cfg.Phantom.Dims = []int64{64, 64, 32}
	cfg.Phantom.Noise = 0
	cfg.Phantom.Seed = 1

	cfg.Stats.Workers = runtime.NumCPU()
	cfg.Stats.Bins = 16

	cfg.Logging.Level = "info"
	cfg.Logging.Console = true

	return cfg
}

// Validate checks every field that the rest of the program would otherwise reject later
func (c *Config) Validate() error {
	if math.IsNaN(c.Threshold.Min) || math.IsNaN(c.Threshold.Max) {
		return fmt.Errorf("%w: threshold bounds must not be NaN", ErrInvalidConfig)
	}
	if c.Display.Alpha < 0 || c.Display.Alpha > 255 {
		return fmt.Errorf("%w: alpha %d outside [0, 255]", ErrInvalidConfig, c.Display.Alpha)
	}
	if _, err := c.ThresholdDisplay(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := phantom.ParseKind(c.Phantom.Kind); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.Phantom.Dims) == 0 {
		return fmt.Errorf("%w: phantom needs at least one dimension", ErrInvalidConfig)
	}
	for d, v := range c.Phantom.Dims {
		if v <= 0 {
			return fmt.Errorf("%w: phantom axis %d has extent %d", ErrInvalidConfig, d, v)
		}
	}
	if c.Phantom.Noise < 0 {
		return fmt.Errorf("%w: noise must be non-negative", ErrInvalidConfig)
	}
	if c.Stats.Workers < 0 || c.Stats.Bins < 0 {
		return fmt.Errorf("%w: workers and bins must be non-negative", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ThresholdDisplay converts the display section into overlay attributes
func (c *Config) ThresholdDisplay() (threshold.Display, error) {
	d := threshold.DefaultDisplay()
	d.Alpha = c.Display.Alpha

	var err error
	if d.FillColor, err = threshold.ParseColorRGB(c.Display.FillColor); err != nil {
		return d, err
	}
	if d.LineColor, err = threshold.ParseColorRGB(c.Display.LineColor); err != nil {
		return d, err
	}
	if d.LineStyle, err = threshold.ParseLineStyle(c.Display.LineStyle); err != nil {
		return d, err
	}
	if d.StartArrow, err = threshold.ParseArrowStyle(c.Display.StartArrow); err != nil {
		return d, err
	}
	if d.EndArrow, err = threshold.ParseArrowStyle(c.Display.EndArrow); err != nil {
		return d, err
	}
	return d, nil
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// A missing or empty file yields the defaults. Unknown keys are rejected so
// that a misspelled field is not silently ignored.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig validates cfg and writes it as YAML, creating parent directories
func SaveConfig(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	data = append([]byte(fileHeader), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// fileHeader is written at the top of every saved configuration
const fileHeader = "# thresholdroi configuration. Threshold bounds accept .inf and -.inf.\n"

// CreateDefaultConfigFile writes the defaults to configPath.
// An existing file is left untouched and reported with fs.ErrExist.
func CreateDefaultConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file %s: %w", configPath, fs.ErrExist)
	}
	return SaveConfig(DefaultConfig(), configPath)
}
