// Command server loads the persisted gauge claim summaries and serves the
// nearest-gauge query API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/flood-claims-service/internal/adapter/http"
	"github.com/couchcryptid/flood-claims-service/internal/adapter/postgres"
	"github.com/couchcryptid/flood-claims-service/internal/adapter/rediscache"
	"github.com/couchcryptid/flood-claims-service/internal/config"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
	"github.com/couchcryptid/flood-claims-service/internal/query"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.New(ctx, cfg.PostgresDSN, logger, metrics)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	summaries, err := store.LoadAll(ctx)
	if err != nil {
		logger.Error("failed to load summaries", "error", err)
		os.Exit(1)
	}
	logger.Info("summaries loaded", "count", len(summaries))

	service := query.NewService(summaries, logger, metrics)

	// Cache layer is feature-flagged via REDIS_ENABLED / REDIS_ADDR.
	var querier query.Querier = service
	if cfg.RedisEnabled {
		client := rediscache.OpenClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		querier = rediscache.New(service, client, cfg.QueryCacheTTL, logger, metrics)
		logger.Info("query cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.QueryCacheTTL)
	} else {
		logger.Info("query cache disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, querier, service, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
