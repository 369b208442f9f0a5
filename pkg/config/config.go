package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Batch         BatchConfig
	Processing    ProcessingConfig
	Output        OutputConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

// BatchConfig holds default batch metadata. Flags override it.
type BatchConfig struct {
	Sector        string
	Month         string
	Week          string
	InferMetadata bool
}

type ProcessingConfig struct {
	Workers            int
	KeyPolicy          string // exact | fold
	SimilarityDistance int
}

type OutputConfig struct {
	Dir    string
	Format string // xlsx | csv
	Sheet  string
	File   string
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsFile    string // Prometheus text file written after each run
}

// Load reads configuration from environment variables, after loading .env
// from the working directory when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Batch: BatchConfig{
			Sector:        getEnv("LINCE_SECTOR", ""),
			Month:         getEnv("LINCE_MONTH", ""),
			Week:          getEnv("LINCE_WEEK", ""),
			InferMetadata: getEnvAsBool("INFER_METADATA", false),
		},
		Processing: ProcessingConfig{
			Workers:            getEnvAsInt("WORKERS", 0),
			KeyPolicy:          getEnv("KEY_POLICY", "exact"),
			SimilarityDistance: getEnvAsInt("SIMILARITY_DISTANCE", 0),
		},
		Output: OutputConfig{
			Dir:    getEnv("OUTPUT_DIR", "."),
			Format: getEnv("OUTPUT_FORMAT", "xlsx"),
			Sheet:  getEnv("OUTPUT_SHEET", "Perdas"),
			File:   getEnv("OUTPUT_FILE", "perdas_lince.xlsx"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsFile:    getEnv("METRICS_FILE", "lince.prom"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Processing.KeyPolicy) {
	case "exact", "fold":
	default:
		errs = append(errs, fmt.Errorf("KEY_POLICY must be exact or fold, got %q", c.Processing.KeyPolicy))
	}

	switch strings.ToLower(c.Output.Format) {
	case "xlsx", "csv":
	default:
		errs = append(errs, fmt.Errorf("OUTPUT_FORMAT must be xlsx or csv, got %q", c.Output.Format))
	}

	if c.Processing.Workers < 0 {
		errs = append(errs, errors.New("WORKERS must not be negative"))
	}
	if c.Processing.SimilarityDistance < 0 {
		errs = append(errs, errors.New("SIMILARITY_DISTANCE must not be negative"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
