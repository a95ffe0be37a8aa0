// internal/common/config/config.go
package config

import (
	"fmt"

	"chatleads/internal/analysis/score"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig             `mapstructure:"app"`
	Odoo       OdooConfig            `mapstructure:"odoo"`
	Analysis   AnalysisConfig        `mapstructure:"analysis"`
	Enrichment EnrichmentConfig      `mapstructure:"enrichment"`
	Redis      RedisConfig           `mapstructure:"redis"`
	Reports    ReportsConfig         `mapstructure:"reports"`
	Mailing    MailingConfig         `mapstructure:"mailing"`
	Email      EmailConfig           `mapstructure:"email"`
	Alerts     AlertsConfig          `mapstructure:"alerts"`
	Tasks      map[string]TaskConfig `mapstructure:"tasks"`
	Logging    LoggingConfig         `mapstructure:"logging"`
	Metrics    MetricsConfig         `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// OdooConfig holds the XML-RPC endpoint and credentials.
type OdooConfig struct {
	URL            string `mapstructure:"url"`
	Database       string `mapstructure:"database"`
	Username       string `mapstructure:"username"`
	APIKey         string `mapstructure:"api_key"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	SearchBatch    int    `mapstructure:"search_batch"`
	ReadBatch      int    `mapstructure:"read_batch"`
}

// AnalysisConfig tunes segmentation, catalog loading and scoring.
type AnalysisConfig struct {
	CatalogPath         string        `mapstructure:"catalog_path"`
	NonVisitorAuthorIDs []int64       `mapstructure:"non_visitor_author_ids"`
	NoiseMarkers        []string      `mapstructure:"noise_markers"`
	Workers             int           `mapstructure:"workers"`
	Weights             score.Weights `mapstructure:"weights"`
}

// EnrichmentConfig controls partner profile lookups.
type EnrichmentConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	CacheTTLHours int  `mapstructure:"cache_ttl_hours"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ReportsConfig controls where report files land.
type ReportsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// MailingConfig holds settings for the mailing contact sync task.
type MailingConfig struct {
	ListName  string `mapstructure:"list_name"`
	BatchSize int    `mapstructure:"batch_size"`
}

// EmailConfig holds settings for report delivery via SES.
type EmailConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Region     string   `mapstructure:"region"`
	FromEmail  string   `mapstructure:"from_email"`
	Recipients []string `mapstructure:"recipients"`
}

// AlertsConfig holds settings for fatal-failure alerts via SNS.
type AlertsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

// TaskConfig holds the core settings applicable to every task.
type TaskConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"` // milliseconds
	MaxRetries int  `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Endpoint returns the metrics listen address.
func (m MetricsConfig) Endpoint() string {
	return fmt.Sprintf(":%d", m.Port)
}
