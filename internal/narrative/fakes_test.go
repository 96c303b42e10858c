package narrative

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"FieldOps/internal/domain"
)

type scriptedReply struct {
	text string
	err  error
}

type scriptedText struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
}

func (s *scriptedText) Name() string { return "scripted" }

func (s *scriptedText) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply.text, reply.err
}

func (s *scriptedText) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type cacheEntry struct {
	value string
	at    time.Time
}

type memoryCache struct {
	entries map[string]cacheEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]cacheEntry{}}
}

func (m *memoryCache) GetCached(_ context.Context, key string) (string, time.Time, bool, error) {
	e, ok := m.entries[key]
	return e.value, e.at, ok, nil
}

func (m *memoryCache) SetCached(_ context.Context, key, value string, at time.Time) error {
	m.entries[key] = cacheEntry{value: value, at: at}
	return nil
}

type memoryUsage struct {
	records []domain.UsageRecord
	err     error
}

func (m *memoryUsage) AppendUsage(_ context.Context, rec domain.UsageRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryUsage) CountUsageSince(_ context.Context, actorID string, since time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, r := range m.records {
		if r.ActorID == actorID && !r.At.Before(since) {
			n++
		}
	}
	return n, nil
}

type statusErr struct {
	code int
}

func (e statusErr) Error() string   { return "status " + strconv.Itoa(e.code) }
func (e statusErr) Temporary() bool { return e.code == 429 || e.code >= 500 }
