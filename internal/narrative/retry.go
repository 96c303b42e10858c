package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"FieldOps/internal/ports"
)

// RetryPolicy bounds calls to the text service.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy mirrors the 1s/2s/4s schedule with three attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		MaxDelay:       4 * time.Second,
		AttemptTimeout: 20 * time.Second,
	}
}

// Delay returns the backoff before attempt+1 (attempt is 1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	delay := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && (delay > p.MaxDelay || delay <= 0) {
		delay = p.MaxDelay
	}
	return delay
}

type temporary interface {
	Temporary() bool
}

var transientMarkers = []string{"429", "500", "502", "503", "504", "econnreset", "connection reset", "timeout", "unavailable"}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var tmp temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type sleeper func(ctx context.Context, d time.Duration) error

// callWithRetry invokes gen until it succeeds, fails permanently, or the
// attempts are exhausted. It returns the number of attempts made.
func callWithRetry(ctx context.Context, gen ports.TextGenerator, prompt string, policy RetryPolicy, sleep sleeper, logger *slog.Logger) (string, int, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := generateOnce(ctx, gen, prompt, policy.AttemptTimeout)
		if err == nil {
			return text, attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", attempt, fmt.Errorf("attempt %d: %w", attempt, ctx.Err())
		}
		if !IsTransient(err) {
			return "", attempt, fmt.Errorf("attempt %d: permanent failure: %w", attempt, err)
		}
		if attempt == attempts {
			break
		}

		delay := policy.Delay(attempt)
		if logger != nil {
			logger.Warn("text service call failed, retrying",
				"provider", gen.Name(), "attempt", attempt, "max_attempts", attempts, "delay", delay, "error", err)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", attempt, fmt.Errorf("backoff interrupted: %w", err)
		}
	}

	return "", attempts, fmt.Errorf("retries exhausted after %d attempts: %w", attempts, lastErr)
}

func generateOnce(ctx context.Context, gen ports.TextGenerator, prompt string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return gen.Generate(ctx, prompt)
}
