package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FieldOps/internal/domain"
)

type opener struct {
	Line string `json:"line"`
}

func openerRequest(actor, key string) Request[opener] {
	return Request[opener]{
		Kind:     domain.KindOpener,
		ActorID:  actor,
		Subject:  key,
		CacheKey: key,
		Prompt:   "write an opener",
		Validate: func(o opener) error { return Require(Required("line", o.Line)) },
		Fallback: func() opener { return opener{Line: "Hi, quick question?"} },
	}
}

type harness struct {
	text   *scriptedText
	cache  *memoryCache
	usage  *memoryUsage
	sleeps []time.Duration
	now    time.Time
}

func newHarness(maxCalls int, replies ...scriptedReply) (*harness, *Generator) {
	h := &harness{
		text:  &scriptedText{replies: replies},
		cache: newMemoryCache(),
		usage: &memoryUsage{},
		now:   time.Date(2025, time.November, 18, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	g := NewGenerator(GeneratorDeps{
		Text:    h.text,
		Cache:   NewCache(h.cache, 0, clock),
		Limiter: NewRateLimiter(h.usage, time.Hour, maxCalls, clock),
		Usage:   h.usage,
		Policy:  DefaultRetryPolicy(),
		Now:     clock,
		Sleep: func(_ context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return nil
		},
	})
	return h, g
}

func TestGenerateSuccessCachesAndRecordsUsage(t *testing.T) {
	h, g := newHarness(50, scriptedReply{text: "Sure!\n```json\n{\"line\": \"Hey, walk-in cooler check?\"}\n```"})
	ctx := context.Background()

	res := Generate(ctx, g, openerRequest("tech-1", "opener-loc-1"))
	require.False(t, res.Fallback)
	assert.False(t, res.Cached)
	assert.Equal(t, "Hey, walk-in cooler check?", res.Value.Line)
	assert.Equal(t, 1, res.Attempts)

	require.Len(t, h.usage.records, 1)
	assert.Equal(t, domain.KindOpener, h.usage.records[0].Kind)
	assert.Equal(t, "scripted", h.usage.records[0].Provider)

	again := Generate(ctx, g, openerRequest("tech-1", "opener-loc-1"))
	assert.True(t, again.Cached)
	assert.Equal(t, "Hey, walk-in cooler check?", again.Value.Line)
	assert.Equal(t, 1, h.text.calls(), "cached lookup must not reach the service")
}

func TestGenerateRateLimitRoutesToFallback(t *testing.T) {
	h, g := newHarness(2, scriptedReply{text: `{"line": "generated"}`})
	ctx := context.Background()

	first := Generate(ctx, g, openerRequest("tech-1", "opener-a"))
	second := Generate(ctx, g, openerRequest("tech-1", "opener-b"))
	require.False(t, first.Fallback)
	require.False(t, second.Fallback)

	third := Generate(ctx, g, openerRequest("tech-1", "opener-c"))
	assert.True(t, third.Fallback)
	assert.Equal(t, ReasonRateLimited, third.Reason)
	assert.Equal(t, "Hi, quick question?", third.Value.Line)
	assert.Equal(t, 2, h.text.calls(), "third call must not invoke the service")

	other := Generate(ctx, g, openerRequest("tech-2", "opener-d"))
	assert.False(t, other.Fallback, "limit is per actor")

	h.now = h.now.Add(61 * time.Minute)
	later := Generate(ctx, g, openerRequest("tech-1", "opener-e"))
	assert.False(t, later.Fallback, "window slides forward")
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	h, g := newHarness(50,
		scriptedReply{err: statusErr{code: 503}},
		scriptedReply{err: errors.New("read: connection reset by peer")},
		scriptedReply{text: `{"line": "third time lucky"}`},
	)

	res := Generate(context.Background(), g, openerRequest("tech-1", ""))
	require.False(t, res.Fallback)
	assert.Equal(t, "third time lucky", res.Value.Line)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, h.sleeps)
}

func TestGeneratePermanentFailureDoesNotRetry(t *testing.T) {
	h, g := newHarness(50, scriptedReply{err: statusErr{code: 400}})

	res := Generate(context.Background(), g, openerRequest("tech-1", ""))
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonServiceFailure, res.Reason)
	assert.Equal(t, 1, h.text.calls())
	assert.Empty(t, h.sleeps)
	assert.Empty(t, h.usage.records)
}

func TestGenerateExhaustedRetriesFallsBack(t *testing.T) {
	h, g := newHarness(50, scriptedReply{err: statusErr{code: 429}})

	res := Generate(context.Background(), g, openerRequest("tech-1", "opener-x"))
	assert.True(t, res.Fallback)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, h.text.calls())
	assert.Empty(t, h.cache.entries)
}

func TestGenerateMalformedResponses(t *testing.T) {
	cases := map[string]string{
		"no json":       "I cannot help with that.",
		"missing field": `{"other": "value"}`,
		"broken json":   `{"line": }`,
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			h, g := newHarness(50, scriptedReply{text: reply})
			res := Generate(context.Background(), g, openerRequest("tech-1", "opener-y"))
			assert.True(t, res.Fallback)
			assert.Equal(t, ReasonMalformed, res.Reason)
			assert.Equal(t, "Hi, quick question?", res.Value.Line)
			assert.Empty(t, h.cache.entries)
			assert.Empty(t, h.usage.records)
		})
	}
}

func TestGenerateWithoutTextServiceUsesFallback(t *testing.T) {
	g := NewGenerator(GeneratorDeps{})
	res := Generate(context.Background(), g, openerRequest("tech-1", ""))
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonUnconfigured, res.Reason)
}

func TestGenerateRateCheckFailureFallsBack(t *testing.T) {
	h, g := newHarness(5, scriptedReply{text: `{"line": "x"}`})
	h.usage.err = errors.New("disk full")

	res := Generate(context.Background(), g, openerRequest("tech-1", ""))
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonRateCheck, res.Reason)
	assert.Zero(t, h.text.calls())
}
