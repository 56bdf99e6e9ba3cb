package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jspark-dev/rollbook/internal/config"
	"github.com/jspark-dev/rollbook/internal/directory"
	"github.com/jspark-dev/rollbook/internal/imagehost"
	"github.com/jspark-dev/rollbook/internal/logging"
	"github.com/jspark-dev/rollbook/internal/session"
	"github.com/jspark-dev/rollbook/internal/sheet"
	"github.com/jspark-dev/rollbook/internal/web"
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
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"spreadsheet_id", cfg.Sheet.SpreadsheetID,
		"grid_columns", cfg.Directory.GridColumns,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if cfg.Auth.Password == config.DefaultPassword {
		slog.Warn("APP_PASSWORD is not set; the directory is protected only by the default password")
	}
	if cfg.ImageHost.APIKey == "" {
		slog.Warn("IMAGE_HOST_API_KEY is not set; photo uploads are disabled")
	}

	ctx := context.Background()

	// The sheet client is the one long-lived backend handle: built once,
	// shared by every request.
	store, err := sheet.New(ctx, cfg.Sheet)
	if err != nil {
		slog.Error("failed to create sheet client", "error", err)
		os.Exit(1)
	}

	photos := imagehost.New(cfg.ImageHost)

	// Local audit trail, optional.
	var audit *directory.AuditLog
	if cfg.Audit.Path != "" {
		audit, err = directory.OpenAuditLog(cfg.Audit.Path)
		if err != nil {
			slog.Error("failed to open audit log", "error", err, "path", cfg.Audit.Path)
			os.Exit(1)
		}
		defer audit.Close()
		slog.Info("audit trail enabled", "path", cfg.Audit.Path)
	} else {
		slog.Info("audit trail disabled")
	}

	var auditor directory.Auditor
	var auditReader web.AuditReader
	if audit != nil {
		auditor = audit
		auditReader = audit
	}

	service := directory.NewService(store, photos, auditor, directory.Options{
		PhoneColumn: cfg.Directory.PhoneColumn,
		PhotoColumn: cfg.Directory.PhotoColumn,
	})

	sessions := session.NewManager(cfg.Auth.Password, cfg.Auth.SessionTTL)

	server := web.NewServer(service, sessions, auditReader, cfg)

	// Sweep expired sessions in the background.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.Sweep()
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelSweep()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
