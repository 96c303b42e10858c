package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"FieldOps/internal/ports"
)

// ParseSchedule parses a standard five-field cron expression
// (minute, hour, day-of-month, month, day-of-week). When both day fields
// are restricted a day matching either one fires. Next evaluates in the
// location of the time it is given.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("cron %q: %w", expr, err)
	}
	return schedule, nil
}

// CronScheduler fires a job at each schedule match in a fixed timezone.
type CronScheduler struct {
	schedule cron.Schedule
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(expr string, loc *time.Location, logger *slog.Logger) (*CronScheduler, error) {
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CronScheduler{
		schedule: schedule,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}, nil
}

// Start launches the trigger loop; calling it twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.loop(runCtx, job, c.done)
	return nil
}

func (c *CronScheduler) loop(ctx context.Context, job func(time.Time), done chan struct{}) {
	defer close(done)

	for {
		now := c.now().In(c.loc)
		next := c.schedule.Next(now)
		if next.IsZero() {
			c.logger.Error("cron schedule never fires, stopping")
			return
		}
		c.logger.Debug("next run scheduled", "at", next)

		select {
		case <-ctx.Done():
			return
		case <-c.after(next.Sub(now)):
			job(next)
		}
	}
}

// Stop halts the trigger loop and waits for an in-flight job to return.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
