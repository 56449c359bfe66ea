package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/payhook/internal/adapters/sqlite"
	"github.com/fr0stylo/payhook/internal/app/services"
	"github.com/fr0stylo/payhook/internal/config"
	"github.com/fr0stylo/payhook/internal/db"
	"github.com/fr0stylo/payhook/internal/observability"
	"github.com/fr0stylo/payhook/internal/ratelimit"
	"github.com/fr0stylo/payhook/internal/server"
	"github.com/fr0stylo/payhook/internal/server/routes"
)

func main() {
	log := slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsLocalDevelopment() && cfg.Webhook.Secret == "payhook-local-dev" {
		slog.Warn("PAYHOOK_WEBHOOK_SECRET not set, using local development fallback")
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	verifier, err := services.NewSignatureVerifier(cfg.Webhook.Secret)
	if err != nil {
		slog.Error("Failed to configure signature verification", "error", err)
		os.Exit(1)
	}

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	defer limiter.Close()

	go logDBLatencyStats(log, database)

	store := sqlite.NewEventStore(database)
	admission := services.NewAdmissionService(verifier, limiter, store)
	queries := services.NewPaymentQueryService(store)

	srv := server.New(log)
	srv.RegisterRouter(routes.NewWebhookRoutes(admission, queries))
	srv.RegisterRouter(routes.NewPaymentRoutes(queries))
	srv.RegisterRouter(routes.NewMetaRoutes(database.Ping))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	slog.Info("Starting server",
		"port", cfg.Server.Port,
		"rate_limit", cfg.RateLimit.MaxRequests,
		"rate_window", cfg.RateLimit.Window.String(),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

func logDBLatencyStats(log *slog.Logger, database *db.Database) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := database.QueryLatencyStats()
		if len(stats) == 0 {
			continue
		}
		limit := 5
		if len(stats) < limit {
			limit = len(stats)
		}
		for index := 0; index < limit; index++ {
			entry := stats[index]
			log.Info("db_query_latency",
				"query", entry.Name,
				"count", entry.Count,
				"p50_ms", entry.P50.Milliseconds(),
				"p95_ms", entry.P95.Milliseconds(),
				"max_ms", entry.Max.Milliseconds(),
			)
		}
	}
}
