// Package config provides the configuration system for straptrack.
// It defines a single ConvertConfig structure used by the conversion
// pipeline and the strap2parquet CLI.
//
// Example usage:
//
//	cfg := config.NewConvertConfig()
//	cfg.ChunkSize = 5000
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/straptrack/pkg/errors"
)

// DefaultChunkSize is the number of records buffered per column batch
// when no explicit chunk size is configured.
const DefaultChunkSize = 1000

// ConvertConfig controls one STRAP-to-Parquet conversion.
type ConvertConfig struct {
	// ChunkSize is the number of records buffered per column batch.
	// It only trades memory footprint against write-call count; the
	// logical output is identical for any positive value.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// Compression selects the Parquet page compression codec
	// (snappy, gzip, zstd, none).
	Compression string `yaml:"compression" json:"compression"`

	// Logging settings for the conversion
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Observability settings
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// LoggingConfig contains logging-related settings.
type LoggingConfig struct {
	// Level sets the log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Development enables human-readable console output
	Development bool `yaml:"development" json:"development"`
}

// ObservabilityConfig contains monitoring settings.
type ObservabilityConfig struct {
	// EnableMetrics enables Prometheus metrics collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
}

// NewConvertConfig returns a ConvertConfig with sensible defaults.
func NewConvertConfig() *ConvertConfig {
	return &ConvertConfig{
		ChunkSize:   DefaultChunkSize,
		Compression: "snappy",
		Logging: LoggingConfig{
			Level: "info",
		},
		Observability: ObservabilityConfig{
			EnableMetrics: false,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *ConvertConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}

	switch c.Compression {
	case "", "none", "snappy", "gzip", "zstd":
	default:
		return fmt.Errorf("unsupported compression codec: %s", c.Compression)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// ApplyDefaults fills zero values with defaults. Unset fields from a
// partially populated YAML file get the same values NewConvertConfig uses.
func (c *ConvertConfig) ApplyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Load reads a YAML file into cfg, expanding ${VAR} placeholders from
// the environment before parsing.
func Load(path string, cfg *ConvertConfig) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
	}

	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config YAML")
	}
	return nil
}

// Save writes cfg to a YAML file.
func Save(path string, cfg *ConvertConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal config YAML")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to write config file")
	}
	return nil
}

// expandEnv replaces ${VAR} placeholders with environment values.
// Unset variables expand to the empty string.
func expandEnv(s string) string {
	var b strings.Builder
	for {
		open := strings.Index(s, "${")
		if open < 0 {
			break
		}
		closing := strings.Index(s[open:], "}")
		if closing < 0 {
			break
		}
		b.WriteString(s[:open])
		b.WriteString(os.Getenv(s[open+2 : open+closing]))
		s = s[open+closing+1:]
	}
	b.WriteString(s)
	return b.String()
}
