package chatleads

import (
	"fmt"
	"time"

	"chatleads/internal/analysis/score"
	"chatleads/internal/analysis/segment"
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	OutputDir string        `mapstructure:"output_dir"`
	Workers   int           `mapstructure:"workers"`

	Segment segment.Config
	Weights score.Weights

	EmailEnabled    bool     `mapstructure:"email_enabled"`
	EmailFrom       string   `mapstructure:"email_from"`
	EmailRecipients []string `mapstructure:"email_recipients"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Timeout:   5 * time.Minute,
		OutputDir: "./reports",
		Workers:   4,
		Segment:   segment.DefaultConfig(),
		Weights:   score.DefaultWeights(),
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.EmailEnabled {
		if c.EmailFrom == "" {
			return fmt.Errorf("email_from is required when email is enabled")
		}
		if len(c.EmailRecipients) == 0 {
			return fmt.Errorf("email_recipients is required when email is enabled")
		}
	}
	return nil
}
