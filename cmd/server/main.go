package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/popdash/internal/config"
	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/logging"
	"github.com/JonMunkholm/popdash/internal/store"
	"github.com/JonMunkholm/popdash/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset_source", cfg.Dataset.Source,
		"session_ttl", cfg.Session.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dataset is loaded once; a failure here is fatal.
	ds, err := store.LoadDataset(ctx, cfg, logger)
	if err != nil {
		msg := core.MapError(err)
		slog.Error("failed to load dataset",
			"error", err,
			"code", msg.Code,
			"action", msg.Action,
		)
		os.Exit(1)
	}

	report := ds.Report()
	slog.Info("dataset ready",
		"source", ds.Source(),
		"records", ds.Len(),
		"years", len(ds.Years()),
		"skipped", report.Skipped,
		"duplicates", report.Duplicates,
	)

	server := web.NewServer(ds, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
