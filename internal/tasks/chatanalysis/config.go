package chatanalysis

import (
	"fmt"
	"time"

	"chatleads/internal/analysis/segment"
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	OutputDir string        `mapstructure:"output_dir"`
	Workers   int           `mapstructure:"workers"`

	Segment segment.Config
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Timeout:   5 * time.Minute,
		OutputDir: "./reports",
		Workers:   4,
		Segment:   segment.DefaultConfig(),
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}
