// Package app wires configuration, logging, metrics and the postcodes.io
// client together for the CLI and the gateway.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yourusername/postcodes-io/internal/batch"
	"github.com/yourusername/postcodes-io/internal/config"
	"github.com/yourusername/postcodes-io/internal/logger"
	"github.com/yourusername/postcodes-io/internal/metrics"
	"github.com/yourusername/postcodes-io/postcode"
)

// Overrides are command line values that win over the loaded config.
// Empty fields are ignored.
type Overrides struct {
	ConfigPath string
	BaseURL    string
	LogLevel   string
}

// App holds the wired components.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Client   *postcode.Client
	Batch    *batch.Runner
	Registry *prometheus.Registry
}

// New loads configuration and builds an App. Logs go to logOut.
func New(ctx context.Context, o Overrides, logOut io.Writer) (*App, error) {
	cfg, err := config.Load(ctx, o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	rec, err := metrics.NewRecorder(metrics.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	transport := postcode.NewHTTPTransport(&http.Client{Timeout: cfg.Timeout}, cfg.UserAgent)
	client := postcode.NewClient(
		postcode.WithBaseURL(cfg.BaseURL),
		postcode.WithTransport(rec.Wrap(transport)),
		postcode.WithLogger(log.With("component", "postcodes")),
	)

	return &App{
		Config:   cfg,
		Log:      log,
		Client:   client,
		Batch:    batch.New(client, cfg.BatchConcurrency, log.With("component", "batch")),
		Registry: reg,
	}, nil
}
