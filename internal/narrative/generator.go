// Package narrative turns structured prompts into validated structured
// responses through an external text service, falling back to
// deterministic templates whenever the service cannot be used.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"FieldOps/internal/domain"
	"FieldOps/internal/ports"
)

// Fallback reasons.
const (
	ReasonUnconfigured   = "generator_unconfigured"
	ReasonRateLimited    = "rate_limited"
	ReasonRateCheck      = "rate_check_failed"
	ReasonServiceFailure = "service_failure"
	ReasonMalformed      = "malformed_response"
)

// ErrMissingField is wrapped by validators when a required field is empty.
var ErrMissingField = errors.New("required field missing")

// Request describes one narrative call.
type Request[T any] struct {
	Kind    domain.NarrativeKind
	ActorID string
	// Subject is recorded in the usage log.
	Subject string
	// CacheKey enables the response cache when non-empty.
	CacheKey string
	Prompt   string
	// Validate rejects responses missing required fields.
	Validate func(T) error
	// Fallback synthesizes the deterministic result.
	Fallback func() T
}

// Outcome tells the caller how the value was produced.
type Outcome struct {
	Fallback bool
	Cached   bool
	Reason   string
	Attempts int
}

// Result is always usable: on any failure Value holds the fallback.
type Result[T any] struct {
	Value T
	Outcome
}

// GeneratorDeps wires the generator collaborators.
type GeneratorDeps struct {
	Text    ports.TextGenerator
	Cache   *Cache
	Limiter *RateLimiter
	Usage   ports.UsageRepository
	Policy  RetryPolicy
	Logger  *slog.Logger
	Now     func() time.Time
	Sleep   func(ctx context.Context, d time.Duration) error
}

// Generator is shared by every AI-assisted call site.
type Generator struct {
	text    ports.TextGenerator
	cache   *Cache
	limiter *RateLimiter
	usage   ports.UsageRepository
	policy  RetryPolicy
	logger  *slog.Logger
	now     func() time.Time
	sleep   sleeper
}

// NewGenerator constructs a generator. A nil Text routes every call to its fallback.
func NewGenerator(deps GeneratorDeps) *Generator {
	g := &Generator{
		text:    deps.Text,
		cache:   deps.Cache,
		limiter: deps.Limiter,
		usage:   deps.Usage,
		policy:  deps.Policy,
		logger:  deps.Logger,
		now:     deps.Now,
		sleep:   deps.Sleep,
	}
	if g.policy.MaxAttempts == 0 {
		g.policy = DefaultRetryPolicy()
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.sleep == nil {
		g.sleep = sleepContext
	}
	return g
}

// Generate runs req through cache, rate limiter, text service and
// validation. It never fails: any problem yields req.Fallback() tagged
// with Outcome.Fallback.
func Generate[T any](ctx context.Context, g *Generator, req Request[T]) Result[T] {
	if g == nil || g.text == nil {
		return fallback(g, req, ReasonUnconfigured, 0, nil)
	}

	decision, err := g.limiter.Check(ctx, req.ActorID)
	if err != nil {
		return fallback(g, req, ReasonRateCheck, 0, err)
	}
	if decision == Exceeded {
		return fallback(g, req, ReasonRateLimited, 0, nil)
	}

	if value, ok := fromCache(ctx, g, req); ok {
		return Result[T]{Value: value, Outcome: Outcome{Cached: true}}
	}

	raw, attempts, err := callWithRetry(ctx, g.text, req.Prompt, g.policy, g.sleep, g.logger)
	if err != nil {
		return fallback(g, req, ReasonServiceFailure, attempts, err)
	}

	value, block, err := decode(raw, req.Validate)
	if err != nil {
		return fallback(g, req, ReasonMalformed, attempts, err)
	}

	record(ctx, g, req, block)
	return Result[T]{Value: value, Outcome: Outcome{Attempts: attempts}}
}

func fromCache[T any](ctx context.Context, g *Generator, req Request[T]) (T, bool) {
	var zero T
	cached, ok, err := g.cache.Get(ctx, req.CacheKey)
	if err != nil {
		g.warn("cache lookup failed", "kind", req.Kind, "key", req.CacheKey, "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	value, _, err := decode(cached, req.Validate)
	if err != nil {
		g.warn("cached response rejected", "kind", req.Kind, "key", req.CacheKey, "error", err)
		return zero, false
	}
	g.debug("cache hit", "kind", req.Kind, "key", req.CacheKey)
	return value, true
}

func record[T any](ctx context.Context, g *Generator, req Request[T], block string) {
	if err := g.cache.Set(ctx, req.CacheKey, block); err != nil {
		g.warn("cache write failed", "kind", req.Kind, "key", req.CacheKey, "error", err)
	}
	if g.usage == nil {
		return
	}

	rec := domain.UsageRecord{
		ID:       domain.NewEventID(),
		ActorID:  req.ActorID,
		Kind:     req.Kind,
		Subject:  req.Subject,
		Provider: g.text.Name(),
		At:       g.now(),
	}
	if err := g.usage.AppendUsage(ctx, rec); err != nil {
		g.warn("usage record failed", "kind", req.Kind, "actor", req.ActorID, "error", err)
	}
}

func decode[T any](raw string, validate func(T) error) (T, string, error) {
	var value T
	block, err := ExtractJSON(raw)
	if err != nil {
		return value, "", err
	}
	if err := json.Unmarshal([]byte(block), &value); err != nil {
		return value, "", fmt.Errorf("decode response: %w", err)
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return value, "", err
		}
	}
	return value, block, nil
}

func fallback[T any](g *Generator, req Request[T], reason string, attempts int, cause error) Result[T] {
	if g != nil {
		args := []any{"kind", req.Kind, "actor", req.ActorID, "reason", reason}
		if cause != nil {
			args = append(args, "error", cause)
		}
		g.warn("narrative fallback", args...)
	}

	var value T
	if req.Fallback != nil {
		value = req.Fallback()
	}
	return Result[T]{Value: value, Outcome: Outcome{Fallback: true, Reason: reason, Attempts: attempts}}
}

// Field pairs a response field name with its decoded value.
type Field struct {
	Name  string
	Value string
}

// Required builds a Field for Require.
func Required(name, value string) Field {
	return Field{Name: name, Value: value}
}

// Require returns ErrMissingField for the first blank field.
func Require(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
		}
	}
	return nil
}

func (g *Generator) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}

func (g *Generator) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
