package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/simhub/backend/repository"
)

// ReaperConfig controls the retired-session purge schedule.
type ReaperConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// SessionReaper deletes retired session rows once they are old enough to be
// useless for auditing. Only storage is reclaimed; authentication behavior
// never depends on the purge.
type SessionReaper struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ReaperConfig
}

func NewSessionReaper(sessions repository.SessionRepository, logger *zap.Logger, cfg ReaperConfig) *SessionReaper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &SessionReaper{
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		r.purge(ctx)
	})

	return r
}

// Start launches the cron scheduler.
func (r *SessionReaper) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("session reaper started")
}

// Stop gracefully stops the scheduler.
func (r *SessionReaper) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("session reaper stopped")
}

func (r *SessionReaper) purge(ctx context.Context) {
	cutoff := time.Now().Add(-r.cfg.Retention)
	purged, err := r.sessions.PurgeRetired(ctx, cutoff)
	if err != nil {
		r.logger.Error("session purge failed", zap.Error(err))
		return
	}
	if purged > 0 {
		r.logger.Info("retired sessions purged", zap.Int64("count", purged))
	}
}
