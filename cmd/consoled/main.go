// Package main is the entry point for the Remails console server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/remails/console/internal/api"
	"github.com/remails/console/internal/config"
	"github.com/remails/console/internal/history"
	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/navigation"
	"github.com/remails/console/internal/observability"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/router"
	"github.com/remails/console/internal/session"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Step 1: Parse CLI flags.
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// Step 2: Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	// Step 3: Initialize telemetry (logger, tracer, metrics).
	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "remails-console", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	// Step 4: Build the route table. A configured YAML file overrides the
	// built-in table; both go through the same startup validation.
	table := route.DefaultTable()
	if cfg.Routes.File != "" {
		table, err = route.LoadTable(cfg.Routes.File)
		if err != nil {
			logger.Error("route table load failed", zap.Error(err))
			return 1
		}
	}

	// Step 5: Platform API client.
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	// Step 6: Resume cache.
	resume, resumeCloser, err := buildResumeCache(ctx, cfg.Sessions.Resume, logger)
	if err != nil {
		logger.Error("resume cache initialization failed", zap.Error(err))
		return 1
	}

	// Step 7: Navigation journal (optional).
	journalStore, journalCloser, err := buildJournalStore(ctx, cfg.Journal, logger)
	if err != nil {
		logger.Error("journal initialization failed", zap.Error(err))
		return 1
	}

	// Step 8: Per-session app factory and registry.
	factory := func(sessionID, location string) *session.App {
		st := state.NewStore()
		hist := history.NewStack()
		rt := router.New(table, location)
		loaders := navigation.NewLoaders(client, st, rt, logger)

		opts := []navigation.Option{
			navigation.WithMiddleware(loaders.Pipeline()...),
			navigation.WithMetrics(metrics),
			navigation.WithLogger(logger.With(zap.String("session_id", sessionID))),
		}
		if journalStore != nil {
			opts = append(opts, navigation.WithJournal(journalStore))
		}

		return &session.App{
			Controller: navigation.NewController(rt, st, hist, opts...),
			Store:      st,
			History:    hist,
		}
	}
	registry := session.NewRegistry(factory, cfg.Sessions.IdleTTL)

	// Step 9: Readiness checks.
	readinessChecks := observability.ReadinessChecks{
		RouteTableLoaded: func() bool { return len(table.Names()) > 0 },
	}
	if journalStore != nil {
		readinessChecks.Journal = journalStore
	}
	readinessChecks.ResumeCache = resume

	// Step 10: HTTP router.
	httpRouter := transport.NewRouter(transport.Dependencies{
		Config:   cfg,
		Registry: registry,
		Resume:   resume,
		Table:    table,
		API:      client,
		Journal:  journalStore,
		Metrics:  metrics,
		Checks:   readinessChecks,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Step 11: Background idle-session sweeper.
	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()
	go runSessionSweeper(bgCtx, registry, metrics, cfg.Sessions.SweepInterval, logger)

	// Step 12: Start HTTP server.
	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("routes", len(table.Names())),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	// Graceful shutdown sequence.
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Cancel background tasks.
	bgCancel()

	// Close stores.
	if journalCloser != nil {
		journalCloser()
	}
	if resumeCloser != nil {
		resumeCloser()
	}

	// Flush telemetry.
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildResumeCache creates the resume cache based on config.
func buildResumeCache(ctx context.Context, cfg config.ResumeCacheConfig, logger *zap.Logger) (session.ResumeCache, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory resume cache")
		return session.NewMemoryResumeCache(), nil, nil
	case "redis":
		addr := os.Getenv(cfg.AddrEnv)
		if addr == "" {
			return nil, nil, fmt.Errorf("resume cache: %s environment variable not set", cfg.AddrEnv)
		}
		client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("resume cache: ping: %w", err)
		}
		return session.NewRedisResumeCache(client), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported resume cache driver: %q", cfg.Driver)
	}
}

// buildJournalStore creates the navigation journal store based on config.
// Returns a nil store when the journal is disabled.
func buildJournalStore(ctx context.Context, cfg config.JournalConfig, logger *zap.Logger) (journal.Store, func(), error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory navigation journal")
		return journal.NewMemoryStore(), nil, nil
	case "postgres":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("journal: %s environment variable not set", cfg.DSNEnv)
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("journal: connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("journal: ping: %w", err)
		}
		return journal.NewPgStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported journal driver: %q", cfg.Driver)
	}
}

// runSessionSweeper periodically evicts idle session apps.
func runSessionSweeper(ctx context.Context, registry *session.Registry, metrics *observability.Metrics, interval time.Duration, logger *zap.Logger) {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := registry.Sweep(time.Now())
			if evicted > 0 {
				logger.Info("idle sessions evicted", zap.Int("count", evicted))
				metrics.RecordSessionsEvicted(evicted)
			}
			metrics.SetSessionsLive(registry.Len())
		}
	}
}
