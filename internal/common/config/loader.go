// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"chatleads/internal/analysis/score"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like ODOO_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from plain environment variables when
// the config file leaves them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Odoo.URL == "" {
		if val := os.Getenv("ODOO_URL"); val != "" {
			cfg.Odoo.URL = val
		}
	}
	if cfg.Odoo.Database == "" {
		if val := os.Getenv("ODOO_DB"); val != "" {
			cfg.Odoo.Database = val
		}
	}
	if cfg.Odoo.Username == "" {
		if val := os.Getenv("ODOO_USERNAME"); val != "" {
			cfg.Odoo.Username = val
		}
	}
	if cfg.Odoo.APIKey == "" {
		if val := os.Getenv("ODOO_API_KEY"); val != "" {
			cfg.Odoo.APIKey = val
		}
	}

	if cfg.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Redis.Password = val
		}
	}

	if cfg.Alerts.TopicARN == "" {
		if val := os.Getenv("ALERTS_TOPIC_ARN"); val != "" {
			cfg.Alerts.TopicARN = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Odoo.RequestTimeout == 0 {
		cfg.Odoo.RequestTimeout = 30000
	}
	if cfg.Odoo.SearchBatch == 0 {
		cfg.Odoo.SearchBatch = 200
	}
	if cfg.Odoo.ReadBatch == 0 {
		cfg.Odoo.ReadBatch = 500
	}

	if len(cfg.Analysis.NonVisitorAuthorIDs) == 0 {
		cfg.Analysis.NonVisitorAuthorIDs = []int64{2, 7, 8}
	}
	if len(cfg.Analysis.NoiseMarkers) == 0 {
		cfg.Analysis.NoiseMarkers = []string{"Reiniciando", "abandonó"}
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 4
	}
	if cfg.Analysis.Weights == (score.Weights{}) {
		cfg.Analysis.Weights = score.DefaultWeights()
	}

	if cfg.Enrichment.CacheTTLHours == 0 {
		cfg.Enrichment.CacheTTLHours = 24
	}

	if cfg.Reports.OutputDir == "" {
		cfg.Reports.OutputDir = "./reports"
	}

	if cfg.Mailing.ListName == "" {
		cfg.Mailing.ListName = "Livechat Leads"
	}
	if cfg.Mailing.BatchSize == 0 {
		cfg.Mailing.BatchSize = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}

	for key, task := range cfg.Tasks {
		if task.Timeout == 0 {
			task.Timeout = 300000
		}
		if task.MaxRetries == 0 {
			task.MaxRetries = 3
		}
		cfg.Tasks[key] = task
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Odoo.URL == "" {
		return fmt.Errorf("odoo.url is required")
	}
	if cfg.Odoo.Database == "" {
		return fmt.Errorf("odoo.database is required")
	}
	if cfg.Odoo.Username == "" {
		return fmt.Errorf("odoo.username is required")
	}
	if cfg.Odoo.APIKey == "" {
		return fmt.Errorf("odoo.api_key is required")
	}

	if cfg.Enrichment.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when enrichment is enabled")
	}

	if cfg.Email.Enabled {
		if cfg.Email.FromEmail == "" {
			return fmt.Errorf("email.from_email is required when email is enabled")
		}
		if len(cfg.Email.Recipients) == 0 {
			return fmt.Errorf("email.recipients is required when email is enabled")
		}
	}

	if cfg.Alerts.Enabled && cfg.Alerts.TopicARN == "" {
		return fmt.Errorf("alerts.topic_arn is required when alerts are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetTaskConfig retrieves task-specific configuration with fallback to defaults
func GetTaskConfig(cfg *Config, taskName string) TaskConfig {
	if task, exists := cfg.Tasks[taskName]; exists {
		return task
	}

	return TaskConfig{
		Enabled:    true,
		Timeout:    300000,
		MaxRetries: 3,
	}
}

// IsTaskEnabled checks if a specific task is enabled
func IsTaskEnabled(cfg *Config, taskName string) bool {
	if task, exists := cfg.Tasks[taskName]; exists {
		return task.Enabled
	}
	return true
}
