// Package config defines the CLI and gateway configuration and how it is
// loaded.
package config

import (
	"time"

	"github.com/yourusername/postcodes-io/postcode"
)

// Config contains process configuration.
type Config struct {
	// BaseURL is the postcodes.io API root.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds each HTTP request, e.g. "10s".
	Timeout time.Duration `koanf:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `koanf:"user_agent"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the gateway listen address, e.g. ":5001".
	Addr string `koanf:"addr"`

	// BatchConcurrency bounds the bulk requests in flight for large batches.
	BatchConcurrency int `koanf:"batch_concurrency"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		BaseURL:          postcode.DefaultBaseURL,
		Timeout:          10 * time.Second,
		UserAgent:        "postcodes-io-go",
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":5001",
		BatchConcurrency: 4,
	}
}
