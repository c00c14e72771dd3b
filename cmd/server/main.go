package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/grantsheet/internal/config"
	"github.com/JonMunkholm/grantsheet/internal/database"
	"github.com/JonMunkholm/grantsheet/internal/grants"
	"github.com/JonMunkholm/grantsheet/internal/logging"
	"github.com/JonMunkholm/grantsheet/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Logging.File != "" {
		f, err := logging.RotatingFile(cfg.Logging.File, cfg.Logging.FileMaxSizeMB, cfg.Logging.FileMaxBackups, cfg.Logging.FileMaxAgeDays)
		if err != nil {
			slog.Error("failed to open log file", "path", cfg.Logging.File, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format, f)
	} else {
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	}

	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	service := grants.NewService(database.NewStore(pool), grants.Options{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	})
	server := web.NewServer(service, cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, server, service.Limiter(), cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// httpServer is the part of web.Server that run drives.
type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is done, then stops accepting requests and waits for
// running imports. It returns only after both have finished or timeout has
// passed, so deferred cleanup never races an open import transaction.
func run(ctx context.Context, server httpServer, imports *grants.ImportLimiter, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown closes the listener and waits for in-flight handlers.
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if active := imports.ActiveCount(); active > 0 {
		slog.Info("waiting for imports to complete", "active", active)
		if err := imports.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		} else {
			slog.Info("all imports completed")
		}
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
