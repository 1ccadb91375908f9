package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/garrettladley/folio/internal/migrations"
	xredis "github.com/garrettladley/folio/internal/redis"
	"github.com/garrettladley/folio/internal/server"
	"github.com/garrettladley/folio/internal/service/billing"
	"github.com/garrettladley/folio/internal/storage"
	"github.com/garrettladley/folio/internal/telemetry"
	"github.com/garrettladley/folio/internal/xslog"
)

const (
	keyPort        = "port"
	keyChannel     = "channel"
	keySinks       = "sinks"
	keyConcurrency = "concurrency"
	keyPath        = "path"

	shutdownTimeout = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := server.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	logger.InfoContext(ctx, "loaded config",
		xslog.SecretHint(cfg.Stripe.WebhookSecret),
		xslog.Tolerance(cfg.Stripe.Tolerance),
	)

	sinks, closers, err := initTelemetry(ctx, cfg, logger)
	defer closeAll(ctx, logger, closers)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	tracker := telemetry.NewAsync(sinks, cfg.Telemetry.Concurrency, cfg.Telemetry.Timeout)
	logger.InfoContext(ctx, "telemetry ready",
		slog.Int(keySinks, len(sinks)),
		slog.Int(keyConcurrency, cfg.Telemetry.Concurrency))

	limiter := storage.NewMemoryLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Burst)
	defer func() { _ = limiter.Close() }()

	processor := billing.NewProcessor(cfg.SecretProvider(),
		billing.WithTolerance(cfg.Stripe.Tolerance),
		billing.WithTracker(tracker),
	)

	httpServer := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Logger:       logger,
			Billing:      processor,
			Limiter:      limiter,
			MaxBodyBytes: cfg.Webhook.MaxBodyBytes,
			ClientIP:     cfg.ClientIPResolver(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "server error", xslog.Error(err))
			done <- syscall.SIGTERM
		}
	}()

	<-done
	logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// no new deliveries can start once the server has drained
	if err := tracker.Close(); err != nil {
		logger.WarnContext(ctx, "telemetry drain failed", xslog.Error(err))
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

// initTelemetry builds the sink fan-out. The log sink is always present; the
// others are enabled by their config. Closers are returned even on error so the
// caller can release whatever was opened.
func initTelemetry(ctx context.Context, cfg server.Config, logger *slog.Logger) (telemetry.Multi, []io.Closer, error) {
	sinks := telemetry.Multi{telemetry.Log{Level: slog.LevelInfo}}
	var closers []io.Closer

	if cfg.Telemetry.RedisURL != "" {
		client, err := xredis.New(ctx, xredis.Config{URL: cfg.Telemetry.RedisURL})
		if err != nil {
			return nil, closers, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, client)
		sinks = append(sinks, telemetry.NewRedis(client, cfg.Telemetry.RedisChannel))
		logger.InfoContext(ctx, "telemetry sink enabled: redis",
			slog.String(keyChannel, cfg.Telemetry.RedisChannel))
	}

	if cfg.Telemetry.DatabaseURL != "" {
		pool, err := initPostgres(ctx, cfg.Telemetry.DatabaseURL)
		if err != nil {
			return nil, closers, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, closerFunc(pool.Close))
		sinks = append(sinks, telemetry.NewPostgres(pool))
		logger.InfoContext(ctx, "telemetry sink enabled: postgres")
	}

	if cfg.Telemetry.SQLitePath != "" {
		db, err := telemetry.OpenSQLite(cfg.Telemetry.SQLitePath)
		if err != nil {
			return nil, closers, fmt.Errorf("sqlite: %w", err)
		}
		closers = append(closers, db)
		if err := migrations.Apply(ctx, db, migrations.SQLite); err != nil {
			return nil, closers, fmt.Errorf("sqlite migrations: %w", err)
		}
		sinks = append(sinks, telemetry.NewSQLite(db))
		logger.InfoContext(ctx, "telemetry sink enabled: sqlite",
			slog.String(keyPath, cfg.Telemetry.SQLitePath))
	}

	return sinks, closers, nil
}

func initPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// closing the sql.DB releases its wrapper; the pool stays open
	db := stdlib.OpenDBFromPool(pool)
	err = migrations.Apply(ctx, db, migrations.Postgres)
	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return pool, nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func closeAll(ctx context.Context, logger *slog.Logger, closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.WarnContext(ctx, "failed to close telemetry sink", xslog.Error(err))
		}
	}
}
