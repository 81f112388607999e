package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"nestquest/internal/config"
)

var configEnvVars = []string{
	"NESTQUEST_CONFIG",
	"NESTQUEST_ADDR",
	"NESTQUEST_LOG_LEVEL",
	"NESTQUEST_RPC_ENDPOINT",
	"NESTQUEST_RPC_TIMEOUT",
	"NESTQUEST_RPC_CONCURRENCY",
	"NESTQUEST_REQUEST_TIMEOUT",
	"NESTQUEST_REPLAY_WINDOW",
	"NESTQUEST_REQUIRE_TIMESTAMP",
	"NESTQUEST_USE_MEMORY",
	"NESTQUEST_POSTGRES_DSN",
	"NESTQUEST_CLICKHOUSE_DSN",
	"NESTQUEST_BUCKET",
	"NESTQUEST_CORS_ORIGINS",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		_ = os.Setenv("NESTQUEST_USE_MEMORY", "true")
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RPCMaxRetries, convey.ShouldEqual, 0)
				convey.So(cfg.RPCConcurrency, convey.ShouldEqual, 1)
				convey.So(cfg.RequestTimeout, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.ReplayWindow, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.RequireTimestamp, convey.ShouldBeFalse)
				convey.So(cfg.Bucket, convey.ShouldEqual, "gfxnestquest")
				convey.So(cfg.Region, convey.ShouldEqual, "ap-south-1")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NESTQUEST_ADDR", ":7070")
			_ = os.Setenv("NESTQUEST_RPC_ENDPOINT", "http://localhost:8899")
			_ = os.Setenv("NESTQUEST_REQUEST_TIMEOUT", "5s")
			_ = os.Setenv("NESTQUEST_REQUIRE_TIMESTAMP", "true")
			_ = os.Setenv("NESTQUEST_RPC_CONCURRENCY", "4")

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RPCEndpoint, convey.ShouldEqual, "http://localhost:8899")
				convey.So(cfg.RequestTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.RequireTimestamp, convey.ShouldBeTrue)
				convey.So(cfg.RPCConcurrency, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeFile(t, "nestquest.yaml", `
addr: ":9999"
log_level: debug
replay_window: 45s
cors_origins:
  - https://app.goosefx.io
`)
			_ = os.Setenv("NESTQUEST_CONFIG", path)

			cfg, err := config.Load()

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.ReplayWindow, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://app.goosefx.io"})
			})

			convey.Convey("And env vars still take precedence", func() {
				_ = os.Setenv("NESTQUEST_ADDR", ":1234")

				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":1234")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("NESTQUEST_CONFIG", "/non/existent/nestquest.yaml")

			_, err := config.Load()

			convey.Convey("Then it should fail to load", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("NESTQUEST_RPC_CONCURRENCY", "0")

			_, err := config.Load()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When persistent storage is selected without DSNs", func() {
			_ = os.Setenv("NESTQUEST_USE_MEMORY", "false")

			_, err := config.Load()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLoadEnvFile(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		path := writeFile(t, ".env", "NESTQUEST_ADDR=:5555\nNESTQUEST_LOG_LEVEL=warn\n")

		convey.Convey("When a variable is already set", func() {
			_ = os.Setenv("NESTQUEST_LOG_LEVEL", "error")

			err := config.LoadEnvFile(path)

			convey.Convey("Then the existing value wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(os.Getenv("NESTQUEST_ADDR"), convey.ShouldEqual, ":5555")
				convey.So(os.Getenv("NESTQUEST_LOG_LEVEL"), convey.ShouldEqual, "error")
			})
		})

		convey.Convey("When the file is missing", func() {
			err := config.LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))

			convey.Convey("Then it is ignored", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the defaults in memory mode", t, func() {
		cfg := config.New()
		cfg.UseMemory = true

		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("An empty rpc endpoint is rejected", func() {
			cfg.RPCEndpoint = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A non-positive request timeout is rejected", func() {
			cfg.RequestTimeout = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An unknown log level is rejected", func() {
			cfg.LogLevel = "verbose"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Persistent mode needs a bucket", func() {
			cfg.UseMemory = false
			cfg.PostgresDSN = "postgres://localhost/nestquest"
			cfg.ClickhouseDSN = "clickhouse://localhost:9000/nestquest"
			convey.So(cfg.Validate(), convey.ShouldBeNil)

			cfg.Bucket = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
