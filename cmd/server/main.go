package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/postcodes-io/api"
	"github.com/yourusername/postcodes-io/internal/app"
)

func main() {
	var o app.Overrides
	addr := flag.String("addr", "", "HTTP server address (default from config, :5001)")
	flag.StringVar(&o.ConfigPath, "config", "", "YAML config file")
	flag.StringVar(&o.BaseURL, "base-url", "", "postcodes.io API root")
	flag.StringVar(&o.LogLevel, "log-level", "", "debug, info, warn or error")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, o, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	if *addr == "" {
		*addr = a.Config.Addr
	}

	srv := api.NewServer(a.Client, a.Batch, a.Registry, a.Log.With("component", "api"))
	if err := srv.ListenAndServe(ctx, *addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
