// Package config provides structures and utilities for managing application
// configuration.
package config

// EmbeddedConfig holds the content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// DatabaseConfig holds the connection settings for the orders database. The
// same connection also carries the batch metadata tables.
type DatabaseConfig struct {
	// Driver selects the database/sql driver ("mysql" or "sqlite3").
	Driver string `yaml:"driver"`
	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn"`
	// AutoMigrate creates the metadata and orders tables on startup when true.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// RepositoryConfig selects where batch execution metadata is persisted.
type RepositoryConfig struct {
	// Type is "sql" for database-backed metadata or "memory" for an
	// in-process store that does not survive restarts.
	Type string `yaml:"type"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SchedulerConfig holds the trigger settings for the recurring job.
type SchedulerConfig struct {
	// IntervalSeconds is the fixed interval between job launches.
	IntervalSeconds int `yaml:"interval_seconds"`
	// WindowDays is the width of the order date window; each run selects
	// orders from WindowDays ago through today.
	WindowDays int `yaml:"window_days"`
	// MinAmount is the minimum order amount selected by each run.
	MinAmount int `yaml:"min_amount"`
}

// JobConfig holds the tunables of the order processing job.
type JobConfig struct {
	// Name is the logical job name recorded in the metadata tables.
	Name string `yaml:"name"`
	// ChunkSize is the number of orders written per transaction.
	ChunkSize int `yaml:"chunk_size"`
	// ProcessingMode selects the status decision rule (FAST, NORMAL, CAREFUL).
	ProcessingMode string `yaml:"processing_mode"`
}

// MetricsConfig holds the settings of the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Repository RepositoryConfig `yaml:"repository"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Job        JobConfig        `yaml:"job"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// NewConfig returns a Config populated with defaults. Values from the
// embedded YAML and the environment are applied on top by LoadConfig.
func NewConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      "sqlite3",
			DSN:         "file:orderbatch.db?cache=shared&_busy_timeout=5000",
			AutoMigrate: true,
		},
		Repository: RepositoryConfig{Type: "sql"},
		Logging:    LoggingConfig{Level: "INFO"},
		Scheduler: SchedulerConfig{
			IntervalSeconds: 60,
			WindowDays:      7,
			MinAmount:       7000,
		},
		Job: JobConfig{
			Name:           "processOrderJob",
			ChunkSize:      3,
			ProcessingMode: "NORMAL",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}
