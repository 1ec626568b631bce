// Package config loads application configuration from file,
// environment, and defaults via viper. Missing or unreadable
// configuration is never fatal: defaults are substituted silently and
// callers always receive a usable Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Graph configuration
	Graph GraphConfig `mapstructure:"graph"`

	// Flush configuration
	Flush FlushConfig `mapstructure:"flush"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StorageConfig holds persistence paths.
type StorageConfig struct {
	// DataDir is where the four collection documents live.
	DataDir string `mapstructure:"data_dir"`
	// ExportDir is where export documents are written.
	ExportDir string `mapstructure:"export_dir"`
}

// GraphConfig holds graph behavior settings.
type GraphConfig struct {
	// RetentionDays is the age cutoff for query and insight records.
	RetentionDays int `mapstructure:"retention_days"`
	// MaxPathDepth bounds path searches when callers pass no limit.
	MaxPathDepth int `mapstructure:"max_path_depth"`
	// SimilarityThreshold is the default floor for similarity search.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	// EntityTypes and RelationTypes document the vocabulary producers
	// are expected to use. The store does not enforce them.
	EntityTypes   []string `mapstructure:"entity_types"`
	RelationTypes []string `mapstructure:"relation_types"`
}

// FlushConfig holds persistence retry and circuit breaker settings.
type FlushConfig struct {
	// MaxRetries bounds flush retries after the first attempt.
	MaxRetries int `mapstructure:"max_retries"`
	// BackoffMillis is the initial backoff, doubled per retry.
	BackoffMillis int `mapstructure:"backoff_millis"`
	// Breaker configures the flush circuit breaker.
	Breaker CircuitBreakerConfig `mapstructure:"breaker"`
}

// CircuitBreakerConfig holds configuration for circuit breaking.
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// AlertConfig holds configuration for alerting.
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// TelemetryConfig holds telemetry configuration.
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)
	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("storage.data_dir", "data/knowledge")
	viper.SetDefault("storage.export_dir", "outputs/knowledge")

	viper.SetDefault("graph.retention_days", 365)
	viper.SetDefault("graph.max_path_depth", 3)
	viper.SetDefault("graph.similarity_threshold", 0.7)
	viper.SetDefault("graph.entity_types", []string{"concept", "skill", "tool", "pattern", "problem", "solution"})
	viper.SetDefault("graph.relation_types", []string{"uses", "requires", "implements", "solves", "related_to", "part_of"})

	viper.SetDefault("flush.max_retries", 0)
	viper.SetDefault("flush.backoff_millis", 50)
	viper.SetDefault("flush.breaker.enabled", false)
	viper.SetDefault("flush.breaker.max_requests", 1)
	viper.SetDefault("flush.breaker.interval", 60)
	viper.SetDefault("flush.breaker.timeout", 30)
	viper.SetDefault("flush.breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", filepath.Join(home, ".kgraph", "telemetry"))
	}
}

// overrideWithEnv overrides config with environment variables.
func overrideWithEnv(config *Config) {
	if dataDir := os.Getenv("KGRAPH_DATA_DIR"); dataDir != "" {
		config.Storage.DataDir = dataDir
	}
	if exportDir := os.Getenv("KGRAPH_EXPORT_DIR"); exportDir != "" {
		config.Storage.ExportDir = exportDir
	}
	if days := os.Getenv("KGRAPH_RETENTION_DAYS"); days != "" {
		if parsed, err := strconv.Atoi(days); err == nil {
			config.Graph.RetentionDays = parsed
		}
	}
	if level := os.Getenv("KGRAPH_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if port := os.Getenv("KGRAPH_SERVER_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			config.Server.Port = parsed
		}
	}
}
