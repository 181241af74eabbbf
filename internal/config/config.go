// Package config handles environment variable loading for ports, database
// strings, and secrets.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the hive controller.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the controller
	HTTPPort int

	// Shared key agents present as a bearer token. Empty disables auth.
	ServerKey string

	// Oracle credential. Empty routes every narrative to offline mode.
	OracleAPIKey string

	// Oracle endpoint override, mainly for tests.
	OracleURL string

	// Oracle model name.
	OracleModel string

	// Upper bound on a single oracle call.
	OracleTimeout time.Duration

	// Staleness sweep cadence. Zero disables the sweep entirely.
	SweepInterval time.Duration

	// Agents unseen for longer than this are marked Offline by the sweep.
	OfflineAfter time.Duration

	// Per-client request rate for agent-facing endpoints. Zero disables
	// limiting.
	RateLimit float64
	RateBurst int

	// OTLP collector address for traces. Empty disables tracing.
	OTELEndpoint string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:      8080,
		OracleModel:   "gemini-1.5-flash",
		OracleTimeout: 15 * time.Second,
		OfflineAfter:  5 * time.Minute,
		RateBurst:     10,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.HTTPPort = p
	}

	cfg.ServerKey = os.Getenv("HIVE_SERVER_KEY")
	cfg.OracleAPIKey = os.Getenv("ORACLE_API_KEY")
	cfg.OracleURL = os.Getenv("ORACLE_URL")
	if model := os.Getenv("ORACLE_MODEL"); model != "" {
		cfg.OracleModel = model
	}

	if v := os.Getenv("ORACLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ORACLE_TIMEOUT: %w", err)
		}
		cfg.OracleTimeout = d
	}

	if v := os.Getenv("HIVE_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HIVE_SWEEP_INTERVAL: %w", err)
		}
		cfg.SweepInterval = d
	}

	if v := os.Getenv("HIVE_OFFLINE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HIVE_OFFLINE_AFTER: %w", err)
		}
		cfg.OfflineAfter = d
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = f
	}

	if v := os.Getenv("RATE_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_BURST: %w", err)
		}
		cfg.RateBurst = b
	}

	cfg.OTELEndpoint = os.Getenv("OTEL_ENDPOINT")

	return cfg, nil
}
