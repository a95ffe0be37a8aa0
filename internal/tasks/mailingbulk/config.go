package mailingbulk

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ListName  string        `mapstructure:"list_name"`
	BatchSize int           `mapstructure:"batch_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Timeout:   10 * time.Minute,
		ListName:  "Livechat Leads",
		BatchSize: 50,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ListName == "" {
		return fmt.Errorf("list_name is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	return nil
}
