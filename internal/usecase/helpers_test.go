package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"FieldOps/internal/domain"
	"FieldOps/internal/infrastructure/storage"
	"FieldOps/internal/narrative"
)

// 09:00 in Memphis.
var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(context.Background(), storage.DriverSQLite, filepath.Join(t.TempDir(), "fieldops.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(at time.Time) *clock { return &clock{now: at} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// errUnavailable is a retryable service failure.
type errUnavailable struct{}

func (errUnavailable) Error() string   { return "503 service unavailable" }
func (errUnavailable) Temporary() bool { return true }

type fakeText struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (f *fakeText) Name() string { return "fake" }

func (f *fakeText) Generate(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, f.err
}

func (f *fakeText) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func downText() *fakeText { return &fakeText{err: errUnavailable{}} }

func newGenerator(store *storage.Store, text *fakeText, now func() time.Time) *narrative.Generator {
	deps := narrative.GeneratorDeps{
		Cache:   narrative.NewCache(store, 0, now),
		Limiter: narrative.NewRateLimiter(store, time.Hour, 50, now),
		Usage:   store,
		Policy:  narrative.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond},
		Now:     now,
		Sleep:   func(context.Context, time.Duration) error { return nil },
	}
	if text != nil {
		deps.Text = text
	}
	return narrative.NewGenerator(deps)
}

// northOf returns the latitude kmNorth kilometres north of lat.
func northOf(lat, kmNorth float64) float64 {
	return lat + kmNorth/111.19492664455873
}

func seedItems(t *testing.T, store *storage.Store, items ...domain.WorkItem) {
	t.Helper()
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = testNow.Add(-30 * 24 * time.Hour)
		}
		require.NoError(t, store.UpsertWorkItem(context.Background(), item))
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, digest)
	return n.err
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

var errBrokenActor = errors.New("actor document corrupted")
