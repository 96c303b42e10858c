package narrative

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	block, err := ExtractJSON("Here you go:\n```json\n{\"a\": {\"b\": 1}}\n```\nThanks")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, block)

	_, err = ExtractJSON("no object here")
	assert.ErrorIs(t, err, ErrNoJSONBlock)
}

func TestNormalizeNoteSharesKeys(t *testing.T) {
	t.Parallel()

	a := "Owner wants a quote, call back at 3:30 PM on 2025-11-18 about $3,000 job, 2 hours"
	b := "owner wants a quote, call back at 10:15 am on 2025-12-01 about $12,500.00 job, 45 minutes"

	assert.Equal(t, NormalizeNote(a), NormalizeNote(b))
	assert.Equal(t, FollowUpKey(a, 4), FollowUpKey(b, 4))
	assert.NotEqual(t, FollowUpKey(a, 4), FollowUpKey(a, 5))
	assert.Equal(t, "intel-loc-12", SubjectKey("intel", "LOC 12"))
}

func TestRetryPolicyDelay(t *testing.T) {
	t.Parallel()

	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 4*time.Second, p.Delay(10), "capped by MaxDelay")
	assert.Zero(t, p.Delay(0))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", statusErr{code: 503})))
	assert.True(t, IsTransient(errors.New("Error 429, Message: quota")))
	assert.True(t, IsTransient(errors.New("dial tcp: i/o timeout")))
	assert.False(t, IsTransient(statusErr{code: 401}))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("invalid api key")))
	assert.False(t, IsTransient(nil))
}

func TestCacheTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 18, 9, 0, 0, 0, time.UTC)
	repo := newMemoryCache()
	ctx := context.Background()

	forever := NewCache(repo, 0, func() time.Time { return now })
	require.NoError(t, forever.Set(ctx, "k", "v"))

	now = now.Add(365 * 24 * time.Hour)
	v, ok, err := forever.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	bounded := NewCache(repo, 24*time.Hour, func() time.Time { return now })
	_, ok, err = bounded.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry older than ttl is a miss")
}
