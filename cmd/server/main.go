package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/civilcsv/internal/collaborator"
	"github.com/JonMunkholm/civilcsv/internal/config"
	"github.com/JonMunkholm/civilcsv/internal/core"
	"github.com/JonMunkholm/civilcsv/internal/logging"
	"github.com/JonMunkholm/civilcsv/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"processing_server", cfg.Collaborator.URL,
		"collaborator_max_concurrent", cfg.Collaborator.MaxConcurrent,
		"session_idle_timeout", cfg.Session.IdleTimeout,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	collab, err := collaborator.New(cfg.Collaborator.URL,
		collaborator.WithHTTPClient(&http.Client{Timeout: cfg.Collaborator.Timeout}),
		collaborator.WithLimiter(collaborator.NewLimiter(cfg.Collaborator.MaxConcurrent, cfg.Collaborator.MaxWaitTime)),
	)
	if err != nil {
		slog.Error("invalid processing server URL", "error", err)
		os.Exit(1)
	}

	sessions := core.NewSessionStore(cfg.Session.IdleTimeout)
	server := web.NewServer(cfg, sessions, collab)

	// Background jobs stop when the server shuts down
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go sessions.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight processing server calls finish first
		status := collab.Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for processing server calls", "active", status.Active)
			if err := collab.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("processing server calls did not complete in time", "error", err)
			} else {
				slog.Info("all processing server calls completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
