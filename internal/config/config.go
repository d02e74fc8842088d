package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the service configuration. Environment variables are
// parsed from the STUDIFLOW_ prefix, e.g. STUDIFLOW_HTTP_PORT.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Local persistence: diskv (file-backed key/value) or sqlite.
	LocalDriver string `envconfig:"LOCAL_DRIVER" default:"diskv"`
	DataDir     string `envconfig:"DATA_DIR" default:""`

	// Remote persistence. Empty DSN disables remote sync entirely; the
	// service then runs local-only.
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Assistant provider
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates the local driver and derives the data
// directory when unset.
func (c *Config) ResolveDefaults() error {
	switch c.LocalDriver {
	case "diskv", "sqlite":
	default:
		return fmt.Errorf("unsupported LOCAL_DRIVER: %s", c.LocalDriver)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		c.DataDir = filepath.Join(home, ".studiflow")
	}
	return nil
}

// New creates a Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("STUDIFLOW", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("local_driver", cfg.LocalDriver).
		Str("data_dir", cfg.DataDir).
		Bool("remote_enabled", cfg.PostgresDSN != "").
		Str("gemini_model", cfg.GeminiModel).
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
