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

	"github.com/JonMunkholm/examgrid/internal/config"
	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/logging"
	"github.com/JonMunkholm/examgrid/internal/schedule"
	"github.com/JonMunkholm/examgrid/internal/store"
	"github.com/JonMunkholm/examgrid/internal/web"
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

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"rows_per_page", cfg.View.RowsPerPage,
	)

	rules, err := schedule.LoadRules(cfg.Schedule.RulesFile)
	if err != nil {
		slog.Error("failed to load schedule rules", "error", err, "path", cfg.Schedule.RulesFile)
		os.Exit(1)
	}
	slog.Info("schedule rules loaded",
		"dates", len(rules.Dates),
		"timeslots", len(rules.Timeslots),
		"fixed", len(rules.Fixed),
	)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open schedule store", "error", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}

	service := core.NewService(st, schedule.NewGenerator(rules, cfg.Schedule.Seed), cfg)
	defer service.Close()

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartRetentionScheduler(jobCtx, core.RetentionConfig{
		MaxAge:        cfg.Retention.MaxAge,
		CheckInterval: cfg.Retention.CheckInterval,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for generations to complete", "active", status.Active)
			if err := service.WaitForGenerations(shutdownCtx); err != nil {
				slog.Warn("generations did not complete in time", "error", err)
			} else {
				slog.Info("all generations completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		return
	}
	<-done
}
