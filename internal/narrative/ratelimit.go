package narrative

import (
	"context"
	"fmt"
	"time"

	"FieldOps/internal/ports"
)

// Decision is the outcome of a rate-limit check.
type Decision int

const (
	Allowed Decision = iota
	Exceeded
)

func (d Decision) String() string {
	if d == Exceeded {
		return "exceeded"
	}
	return "allowed"
}

// RateLimiter counts an actor's text-service calls in a trailing window.
// Exceeding the limit is a routing decision, not an error.
type RateLimiter struct {
	usage    ports.UsageRepository
	window   time.Duration
	maxCalls int
	now      func() time.Time
}

// NewRateLimiter builds a limiter; maxCalls <= 0 disables limiting.
func NewRateLimiter(usage ports.UsageRepository, window time.Duration, maxCalls int, now func() time.Time) *RateLimiter {
	if window <= 0 {
		window = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{usage: usage, window: window, maxCalls: maxCalls, now: now}
}

// Check counts qualifying events for actorID within the trailing window.
func (r *RateLimiter) Check(ctx context.Context, actorID string) (Decision, error) {
	if r == nil || r.usage == nil || r.maxCalls <= 0 {
		return Allowed, nil
	}

	since := r.now().Add(-r.window)
	count, err := r.usage.CountUsageSince(ctx, actorID, since)
	if err != nil {
		return Exceeded, fmt.Errorf("count usage for %s: %w", actorID, err)
	}
	if count >= r.maxCalls {
		return Exceeded, nil
	}
	return Allowed, nil
}
