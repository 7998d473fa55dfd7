package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/yourusername/postcodes-io/internal/config"
	"github.com/yourusername/postcodes-io/postcode"
)

var configEnvVars = []string{
	"POSTCODES_CONFIG",
	"POSTCODES_BASE_URL",
	"POSTCODES_TIMEOUT",
	"POSTCODES_LOG_LEVEL",
	"POSTCODES_BATCH_CONCURRENCY",
	"POSTCODES_ADDR",
}

func clearConfigEnvVars(t *testing.T) {
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "postcodes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, postcode.DefaultBaseURL)
				convey.So(cfg.Timeout, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.Addr, convey.ShouldEqual, ":5001")
				convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("POSTCODES_BASE_URL", "http://localhost:8000")
			t.Setenv("POSTCODES_TIMEOUT", "3s")
			t.Setenv("POSTCODES_BATCH_CONCURRENCY", "16")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://localhost:8000")
				convey.So(cfg.Timeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 16)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
base_url: "http://postcodes.internal"
timeout: 2s
log_level: debug
addr: ":9090"
`)
			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://postcodes.internal")
				convey.So(cfg.Timeout, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When both a file and env vars are set", func() {
			path := writeConfigFile(t, "log_level: debug\naddr: \":9090\"\n")
			t.Setenv("POSTCODES_CONFIG", path)
			t.Setenv("POSTCODES_LOG_LEVEL", "error")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then env vars take precedence over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the base URL is not absolute", func() {
			t.Setenv("POSTCODES_BASE_URL", "api.postcodes.io")

			_, err := config.Load(ctx, "")

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When batch concurrency is zero", func() {
			t.Setenv("POSTCODES_BATCH_CONCURRENCY", "0")

			_, err := config.Load(ctx, "")

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
