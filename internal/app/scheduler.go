package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lingualearn/auth-service/internal/service"
)

const sweepTimeout = time.Minute

// Scheduler runs the periodic cleanup sweeps: expired or revoked refresh
// tokens and aged login attempts. Sweeps only reclaim storage; correctness
// never depends on them having run.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewScheduler(authService service.AuthService, schedule string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if count, err := authService.CleanupExpiredTokens(ctx); err != nil {
			logger.Error("refresh token sweep failed", zap.Error(err))
		} else {
			logger.Info("refresh token sweep finished", zap.Int64("deleted", count))
		}

		if count, err := authService.CleanupOldLoginAttempts(ctx); err != nil {
			logger.Error("login attempt sweep failed", zap.Error(err))
		} else {
			logger.Info("login attempt sweep finished", zap.Int64("deleted", count))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started")
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
