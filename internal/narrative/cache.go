package narrative

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"FieldOps/internal/ports"
)

// Cache stores validated narrative responses by subject key.
//
// Entries never expire unless a TTL is configured: callers must key narrowly
// enough (item id, normalized note) that a stale answer is still acceptable.
// The table grows without bound.
type Cache struct {
	repo ports.CacheRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewCache wraps a cache repository. ttl <= 0 keeps entries forever.
func NewCache(repo ports.CacheRepository, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{repo: repo, ttl: ttl, now: now}
}

// Get returns the cached value for key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.repo == nil || key == "" {
		return "", false, nil
	}

	value, storedAt, found, err := c.repo.GetCached(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !found {
		return "", false, nil
	}
	if c.ttl > 0 && c.now().Sub(storedAt) >= c.ttl {
		return "", false, nil
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if c == nil || c.repo == nil || key == "" {
		return nil
	}
	if err := c.repo.SetCached(ctx, key, value, c.now()); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

var (
	clockExpr    = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s?(am|pm)?`)
	isoDateExpr  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	amountExpr   = regexp.MustCompile(`\$[\d,]+(\.\d{2})?`)
	durationExpr = regexp.MustCompile(`(?i)\d+\s?(hours?|minutes?|days?)`)
	numberExpr   = regexp.MustCompile(`\b\d+\b`)
)

// NormalizeNote lowercases a note and replaces volatile tokens so that
// notes differing only in times, dates, amounts or counts share a cache key.
func NormalizeNote(note string) string {
	normalized := strings.ToLower(note)
	normalized = clockExpr.ReplaceAllString(normalized, "TIME")
	normalized = isoDateExpr.ReplaceAllString(normalized, "DATE")
	normalized = amountExpr.ReplaceAllString(normalized, "AMOUNT")
	normalized = durationExpr.ReplaceAllString(normalized, "DURATION")
	normalized = numberExpr.ReplaceAllString(normalized, "NUM")
	return strings.TrimSpace(normalized)
}

// FollowUpKey derives the cache key for follow-up guidance.
func FollowUpKey(note string, score int) string {
	sum := sha256.Sum256([]byte(NormalizeNote(note) + "-" + strconv.Itoa(score)))
	return "followup-" + hex.EncodeToString(sum[:16])
}

// SubjectKey derives a cache key for a per-subject narrative such as an
// opening line or pre-visit intel.
func SubjectKey(prefix, subject string) string {
	subject = strings.ToLower(strings.Join(strings.Fields(subject), "-"))
	return prefix + "-" + subject
}
