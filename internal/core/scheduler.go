package core

// scheduler.go runs retention in the background: schedules older than the
// configured age are purged from the store on a fixed interval. Failures are
// logged and retried on the next tick; they never stop the service.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls the purge job.
type RetentionConfig struct {
	MaxAge        time.Duration // how long a schedule stays available (default: 24h)
	CheckInterval time.Duration // how often to purge (default: 15m)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 15 * time.Minute
	}
	return c
}

// StartRetentionScheduler purges once immediately, then every
// CheckInterval until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("retention scheduler started",
		"max_age", cfg.MaxAge.String(),
		"check_interval", cfg.CheckInterval.String(),
	)

	s.runRetentionJob(ctx, cfg.MaxAge)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg.MaxAge)
		}
	}
}

func (s *Service) runRetentionJob(ctx context.Context, maxAge time.Duration) {
	start := time.Now()
	purged, err := s.PurgeExpired(ctx, maxAge)
	if err != nil {
		slog.Error("retention purge failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged expired schedules",
			"count", purged,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// PurgeExpired deletes schedules created more than maxAge ago.
func (s *Service) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.store.DeleteOlderThan(ctx, s.now().Add(-maxAge))
}
