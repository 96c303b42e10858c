package usecase

import (
	"context"
	"log/slog"
	"time"

	"FieldOps/internal/ports"
)

// Scheduler wires the cron driver with the daily digest run.
type Scheduler struct {
	driver  ports.Scheduler
	digests *DigestService
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring digest run.
func NewScheduler(driver ports.Scheduler, digests *DigestService, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, digests: digests, logger: loggerOrDiscard(logger)}
}

// Start registers the digest run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.digests == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.digests.RunDaily(ctx, trigger); err != nil {
			s.logger.Error("daily digest run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
