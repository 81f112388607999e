// Package main runs the NestQuest tier-3 upgrade service:
// - POST /tier3, GET /healthz, GET /upgrades/{identifier} on --addr
// - Prometheus /metrics on --metrics-addr
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nestquest/internal/api"
	"nestquest/internal/config"
	"nestquest/internal/logging"
	"nestquest/internal/metadata"
	"nestquest/internal/observability"
	"nestquest/internal/publish"
	"nestquest/internal/solana"
	"nestquest/internal/storage"
	chstore "nestquest/internal/storage/clickhouse"
	"nestquest/internal/storage/memory"
	"nestquest/internal/storage/migrations"
	pgstore "nestquest/internal/storage/postgres"
	"nestquest/internal/upgrade"
)

const shutdownTimeout = 30 * time.Second

var (
	envFile string
	flags   struct {
		addr        string
		metricsAddr string
		rpcEndpoint string
		logLevel    string
		useMemory   bool
	}
)

var rootCmd = &cobra.Command{
	Use:   "nestquest-server",
	Short: "Serve NestQuest tier-3 metadata upgrades",
	Long: `Serve NestQuest tier-3 metadata upgrades.

Configuration is layered (low -> high): defaults, the YAML file named by
NESTQUEST_CONFIG, NESTQUEST_* environment variables, then flags.
A .env file is loaded first; variables already set win.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file to load before configuration")
	rootCmd.Flags().StringVar(&flags.addr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Prometheus metrics HTTP address")
	rootCmd.Flags().StringVar(&flags.rpcEndpoint, "rpc-endpoint", "", "Solana RPC HTTP endpoint")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flags.useMemory, "use-memory", false, "Use in-memory stores and bucket")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers flags that were set explicitly over config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr = flags.addr
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = flags.metricsAddr
	}
	if f.Changed("rpc-endpoint") {
		cfg.RPCEndpoint = flags.rpcEndpoint
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("use-memory") {
		cfg.UseMemory = flags.useMemory
	}
	return cfg, cfg.Validate()
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	rpc := solana.NewLimitedClient(
		solana.NewHTTPClient(cfg.RPCEndpoint,
			solana.WithTimeout(cfg.RPCTimeout),
			solana.WithMaxRetries(cfg.RPCMaxRetries),
		),
		cfg.RPCConcurrency,
	)

	pipeline := upgrade.New(upgrade.Options{
		RPC:              rpc,
		Fetcher:          metadata.NewHTTPFetcher(cfg.FetchTimeout),
		Store:            st.objects,
		Records:          st.records,
		Evaluations:      st.evaluations,
		Logger:           logger,
		Timeout:          cfg.RequestTimeout,
		ReplayWindow:     cfg.ReplayWindow,
		RequireTimestamp: cfg.RequireTimestamp,
	})

	router := api.NewRouter(api.NewHandler(pipeline, st.records, logger), cfg.CORSOrigins)
	servers := []*http.Server{{Addr: cfg.Addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}}
	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", observability.Handler())
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("graceful shutdown failed", zap.String("addr", srv.Addr), zap.Error(serr))
		}
	}

	logger.Info("shutdown complete")
	return err
}

// stores holds the persistence and publishing backends.
type stores struct {
	objects     publish.ObjectStore
	records     storage.UpgradeRecordStore
	evaluations storage.EvaluationStore
}

// createStores builds in-memory or Postgres/ClickHouse/S3 backends and applies migrations.
func createStores(ctx context.Context, cfg *config.Config) (*stores, func(), error) {
	if cfg.UseMemory {
		return &stores{
			objects:     publish.NewMemoryStore(),
			records:     memory.NewUpgradeRecordStore(),
			evaluations: memory.NewEvaluationStore(),
		}, func() {}, nil
	}

	objects, err := publish.NewS3Store(ctx, cfg.Bucket, cfg.Region)
	if err != nil {
		return nil, nil, fmt.Errorf("create s3 store: %w", err)
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse
	admin, err := chstore.NewConnWithDatabase(ctx, cfg.ClickhouseDSN, "")
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	err = migrations.EnsureClickhouseDatabase(ctx, admin, cfg.ClickhouseDSN)
	admin.Close()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	chConn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	st := &stores{
		objects:     objects,
		records:     pgstore.NewUpgradeRecordStore(pool),
		evaluations: chstore.NewEvaluationStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return st, cleanup, nil
}
