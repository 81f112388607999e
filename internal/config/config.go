// Package config defines the service configuration and its loader.
package config

import (
	"fmt"
	"time"

	"nestquest/internal/publish"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address for the upgrade API.
	Addr string `koanf:"addr"`

	// MetricsAddr serves /metrics. Empty disables the metrics listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	RPCEndpoint    string        `koanf:"rpc_endpoint"`
	RPCTimeout     time.Duration `koanf:"rpc_timeout"`
	RPCMaxRetries  int           `koanf:"rpc_max_retries"`
	RPCConcurrency int64         `koanf:"rpc_concurrency"`

	FetchTimeout     time.Duration `koanf:"fetch_timeout"`
	RequestTimeout   time.Duration `koanf:"request_timeout"`
	ReplayWindow     time.Duration `koanf:"replay_window"`
	RequireTimestamp bool          `koanf:"require_timestamp"`

	// Bucket and Region locate the published documents.
	Bucket string `koanf:"bucket"`
	Region string `koanf:"region"`

	// UseMemory replaces every store and the bucket with in-memory versions.
	UseMemory     bool   `koanf:"use_memory"`
	PostgresDSN   string `koanf:"postgres_dsn"`
	ClickhouseDSN string `koanf:"clickhouse_dsn"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Addr:           ":8080",
		MetricsAddr:    ":9090",
		LogLevel:       "info",
		RPCEndpoint:    "https://api.mainnet-beta.solana.com",
		RPCTimeout:     30 * time.Second,
		RPCMaxRetries:  0,
		RPCConcurrency: 1,
		FetchTimeout:   10 * time.Second,
		RequestTimeout: 30 * time.Second,
		ReplayWindow:   30 * time.Second,
		Bucket:         publish.DefaultBucket,
		Region:         publish.DefaultRegion,
		CORSOrigins:    []string{"*"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RPCEndpoint == "":
		return fmt.Errorf("%w: rpc_endpoint must not be empty", ErrInvalidConfig)
	case c.RPCTimeout <= 0:
		return fmt.Errorf("%w: rpc_timeout must be positive", ErrInvalidConfig)
	case c.RPCMaxRetries < 0:
		return fmt.Errorf("%w: rpc_max_retries must not be negative", ErrInvalidConfig)
	case c.RPCConcurrency <= 0:
		return fmt.Errorf("%w: rpc_concurrency must be positive", ErrInvalidConfig)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch_timeout must be positive", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case c.ReplayWindow <= 0:
		return fmt.Errorf("%w: replay_window must be positive", ErrInvalidConfig)
	}

	if !c.UseMemory {
		if c.Bucket == "" || c.Region == "" {
			return fmt.Errorf("%w: bucket and region are required (use use_memory for in-memory storage)", ErrInvalidConfig)
		}
		if c.PostgresDSN == "" || c.ClickhouseDSN == "" {
			return fmt.Errorf("%w: postgres_dsn and clickhouse_dsn are required (use use_memory for in-memory storage)", ErrInvalidConfig)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
