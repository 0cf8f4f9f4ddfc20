// Package config handles configuration loading and management.
package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/drawbucket/internal/engine/bucket"
	"github.com/Faultbox/drawbucket/internal/logger"
)

// Config holds all settings.
type Config struct {
	Bucket   BucketConfig   `yaml:"bucket"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Demo     DemoConfig     `yaml:"demo"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BucketConfig holds the unit sorting settings.
type BucketConfig struct {
	PriorityBits int    `yaml:"priority_bits"`
	SortOrder    string `yaml:"sort_order"` // none, program, layout, program_layout
	BaseInstance bool   `yaml:"base_instance"`
	MaxUnits     int    `yaml:"max_units"` // 0 = unbounded
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	GLMajor    int  `yaml:"gl_major"`
	GLMinor    int  `yaml:"gl_minor"`
}

// DemoConfig holds settings for the bundled demo and dump tools.
type DemoConfig struct {
	Columns        int           `yaml:"columns"`
	Rows           int           `yaml:"rows"`
	ToggleInterval time.Duration `yaml:"toggle_interval"`
	Scene          string        `yaml:"scene"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bucket: BucketConfig{
			PriorityBits: 4,
			SortOrder:    "program_layout",
			BaseInstance: false,
			MaxUnits:     0,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			GLMajor:    4,
			GLMinor:    2,
		},
		Demo: DemoConfig{
			Columns:        16,
			Rows:           9,
			ToggleInterval: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	if c.Bucket.PriorityBits < 0 || c.Bucket.PriorityBits > bucket.MaxPriorityBits {
		errs = multierr.Append(errs, fmt.Errorf("bucket.priority_bits must be in [0, %d], got %d",
			bucket.MaxPriorityBits, c.Bucket.PriorityBits))
	}
	if _, err := bucket.ParseSortOrder(c.Bucket.SortOrder); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("bucket.sort_order: %w", err))
	}
	if c.Bucket.MaxUnits < 0 {
		errs = multierr.Append(errs, fmt.Errorf("bucket.max_units must not be negative, got %d", c.Bucket.MaxUnits))
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("graphics size must be positive, got %dx%d",
			c.Graphics.Width, c.Graphics.Height))
	}
	if c.Demo.Columns <= 0 || c.Demo.Rows <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("demo grid must be positive, got %dx%d",
			c.Demo.Columns, c.Demo.Rows))
	}
	if !logger.ValidLevel(c.Logging.Level) {
		errs = multierr.Append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error",
			c.Logging.Level))
	}
	return errs
}

// BucketOptions converts the bucket section into bucket.Options.
func (c *Config) BucketOptions() (bucket.Options, error) {
	order, err := bucket.ParseSortOrder(c.Bucket.SortOrder)
	if err != nil {
		return bucket.Options{}, fmt.Errorf("bucket.sort_order: %w", err)
	}
	return bucket.Options{
		PriorityBits: c.Bucket.PriorityBits,
		Order:        order,
		BaseInstance: c.Bucket.BaseInstance,
		MaxUnits:     c.Bucket.MaxUnits,
		Logger:       logger.Named("bucket"),
	}, nil
}
