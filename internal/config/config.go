// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxRetentionDays caps RETENTION_DAYS at roughly a century.
const MaxRetentionDays = 36500

// Config holds all application configuration.
type Config struct {
	// Source file to snapshot
	SourcePath string

	// Storage provider configuration
	StorageProvider string // "s3" or "gcs"

	// S3 configuration
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string // Optional custom endpoint
	S3ObjectLock       bool   // Bucket has object lock enabled; uploads send Content-MD5

	// GCS configuration
	GCSBucket                string
	GoogleProjectID          string
	GoogleServiceAccountJSON string

	// Timing
	PollInterval     time.Duration
	DebounceInterval time.Duration
	SyncInterval     time.Duration
	PruneInterval    time.Duration

	// Snapshot options
	SnapshotPrefix string
	RetentionDays  int

	// Observability
	MetricsPort int // 0 disables the HTTP server
	LogLevel    slog.Level
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		SourcePath:      os.Getenv("SOURCE_PATH"),
		StorageProvider: os.Getenv("STORAGE_PROVIDER"),

		// S3
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           os.Getenv("S3_REGION"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3ObjectLock:       getEnvBool("S3_OBJECT_LOCK", false),

		// GCS
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		GoogleProjectID:          os.Getenv("GOOGLE_PROJECT_ID"),
		GoogleServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),

		SnapshotPrefix: os.Getenv("SNAPSHOT_PREFIX"),
	}

	cfg.PollInterval = getEnvDuration("POLL_INTERVAL", time.Second)
	cfg.DebounceInterval = getEnvDuration("DEBOUNCE_INTERVAL", 5*time.Second)
	cfg.SyncInterval = getEnvDuration("SYNC_INTERVAL", time.Minute)
	cfg.PruneInterval = getEnvDuration("PRUNE_INTERVAL", time.Hour)
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 0) // 0 means no retention policy
	cfg.MetricsPort = getEnvInt("METRICS_PORT", 0)
	cfg.LogLevel = getEnvLevel("LOG_LEVEL", slog.LevelInfo)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return fmt.Errorf("SOURCE_PATH is required")
	}

	if c.StorageProvider == "" {
		return fmt.Errorf("STORAGE_PROVIDER is required")
	}

	switch c.StorageProvider {
	case "s3":
		if err := c.validateS3(); err != nil {
			return err
		}
	case "gcs":
		if err := c.validateGCS(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid STORAGE_PROVIDER: %s (must be 's3' or 'gcs')", c.StorageProvider)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.DebounceInterval < 0 {
		return fmt.Errorf("DEBOUNCE_INTERVAL must be non-negative")
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must be non-negative")
	}
	if c.PruneInterval < 0 {
		return fmt.Errorf("PRUNE_INTERVAL must be non-negative")
	}

	if c.RetentionDays < 0 || c.RetentionDays > MaxRetentionDays {
		return fmt.Errorf("RETENTION_DAYS must be between 0 and %d", MaxRetentionDays)
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be between 0 and 65535")
	}

	return nil
}

func (c *Config) validateS3() error {
	if c.AWSAccessKeyID == "" {
		return fmt.Errorf("AWS_ACCESS_KEY_ID is required for S3 storage")
	}
	if c.AWSSecretAccessKey == "" {
		return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required for S3 storage")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for S3 storage")
	}
	if c.S3Region == "" && c.S3Endpoint == "" {
		return fmt.Errorf("S3_REGION is required for S3 storage (unless S3_ENDPOINT is set)")
	}
	return nil
}

func (c *Config) validateGCS() error {
	if c.GCSBucket == "" {
		return fmt.Errorf("GCS_BUCKET is required for GCS storage")
	}
	if c.GoogleProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is required for GCS storage")
	}
	if c.GoogleServiceAccountJSON == "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is required for GCS storage")
	}
	return nil
}

// getEnvBool gets a boolean from environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvInt gets an integer from environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration syntax ("1m30s") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(secs) || math.Abs(secs*float64(time.Second)) >= math.MaxInt64 {
		return defaultValue
	}
	return time.Duration(secs * float64(time.Second))
}

// getEnvLevel parses a slog level name such as "debug" or "WARN".
func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}
