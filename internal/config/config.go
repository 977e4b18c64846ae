// Package config loads application configuration from environment
// variables and an optional YAML file. File values take precedence over
// environment variables, which take precedence over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Ingest  IngestConfig  `yaml:"ingest" envconfig:"INGEST"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tabular.log"`
}

// IngestConfig contains the pipeline's size limits and sampling knobs.
// These are the read-only constant tables of the pipeline: injected into
// each component at construction, never mutated at runtime.
type IngestConfig struct {
	MaxFileSize      int64 `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"52428800"`
	WarnFileSize     int64 `yaml:"warn_file_size" envconfig:"WARN_FILE_SIZE" default:"10485760"`
	WarnRowEstimate  int   `yaml:"warn_row_estimate" envconfig:"WARN_ROW_ESTIMATE" default:"100000"`
	WarnMaxRows      int   `yaml:"warn_max_rows" envconfig:"WARN_MAX_ROWS" default:"1000000"`
	PreviewRows      int   `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" default:"20"`
	BatchConcurrency int   `yaml:"batch_concurrency" envconfig:"BATCH_CONCURRENCY" default:"3"`
	SampleSize       int   `yaml:"sample_size" envconfig:"SAMPLE_SIZE" default:"100"`
	DetectLines      int   `yaml:"detect_lines" envconfig:"DETECT_LINES" default:"10"`
}

// Load loads configuration from environment variables and, when present,
// the config file named by TABULAR_CONFIG (default "config.yaml").
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TABULAR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("TABULAR_CONFIG")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment or any file. Used by tests and the CLI.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitRPS:    20,
			RateLimitBurst:  10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Ingest: DefaultIngest(),
	}
}

// DefaultIngest returns the default pipeline limits.
func DefaultIngest() IngestConfig {
	return IngestConfig{
		MaxFileSize:      50 * 1024 * 1024,
		WarnFileSize:     10 * 1024 * 1024,
		WarnRowEstimate:  100_000,
		WarnMaxRows:      1_000_000,
		PreviewRows:      20,
		BatchConcurrency: 3,
		SampleSize:       100,
		DetectLines:      10,
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Ingest.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.Ingest.MaxFileSize)
	}
	if c.Ingest.WarnFileSize > c.Ingest.MaxFileSize {
		return fmt.Errorf("warn_file_size %d exceeds max_file_size %d",
			c.Ingest.WarnFileSize, c.Ingest.MaxFileSize)
	}
	if c.Ingest.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be at least 1, got %d", c.Ingest.BatchConcurrency)
	}
	if c.Ingest.SampleSize < 1 {
		return fmt.Errorf("sample_size must be at least 1, got %d", c.Ingest.SampleSize)
	}
	return nil
}
