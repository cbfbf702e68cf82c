// Package config builds the process configuration once at startup.
// Every environment lookup happens here; components receive the typed
// Config by reference and never touch the environment themselves.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the signal vault.
//
// The store URL and the two shared secrets are each optional: a missing
// store degrades reads to the static-snapshot fallback tier, a missing
// secret leaves the corresponding surface open (development mode).
// Absence is never fatal.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Snapshot SnapshotConfig
	Ingest   IngestConfig
	Review   ReviewConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds the primary-store (PostgreSQL) settings.
type DatabaseConfig struct {
	URL string // empty = primary store not configured

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Configured reports whether a primary store was set up at all.
func (d DatabaseConfig) Configured() bool {
	return d.URL != ""
}

// SnapshotConfig locates the scanner's static output files used by the
// fallback retrieval tiers.
type SnapshotConfig struct {
	Dir string
}

// IngestConfig covers the write-side scanner surface: the shared secret
// gating POST /api/ingest plus the CLI/scheduler upload settings.
type IngestConfig struct {
	Secret      string // empty = open (development mode)
	PayloadPath string
	APIBaseURL  string
	Schedule    string // cron expression for the scheduled upload
}

// ReviewConfig covers the human-review surface (candidates + labels).
type ReviewConfig struct {
	Secret string // empty = open (development mode)
}

// Load reads configuration from the environment, consulting .env files
// the way the development setup expects.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Snapshot: SnapshotConfig{
			Dir: getEnv("SNAPSHOT_DIR", "output"),
		},

		Ingest: IngestConfig{
			Secret:      getEnv("INGEST_SECRET", ""),
			PayloadPath: getEnv("INGEST_PAYLOAD", filepath.Join("output", "full_scan_payload.json")),
			APIBaseURL:  getEnv("INGEST_API_URL", "http://localhost:8089"),
			Schedule:    getEnv("INGEST_SCHEDULE", "0 30 21 * * 1-5"),
		},

		Review: ReviewConfig{
			Secret: getEnv("REVIEW_SECRET", ""),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// validate checks the fields that must be well-formed when present.
// The store URL and secrets are deliberately not required.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Snapshot.Dir == "" {
		return fmt.Errorf("SNAPSHOT_DIR must not be empty")
	}
	return nil
}

// loadEnvFile tries .env in the places the CLI is usually run from.
func loadEnvFile() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
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
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
