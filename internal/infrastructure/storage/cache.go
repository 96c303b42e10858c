package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// GetCached returns a stored narrative response.
func (s *Store) GetCached(ctx context.Context, key string) (string, time.Time, bool, error) {
	row, err := s.queryRow(ctx, s.sb.Select("value", "stored_at").From("narrative_cache").Where(sq.Eq{"cache_key": key}))
	if err != nil {
		return "", time.Time{}, false, err
	}

	var (
		value    string
		storedAt int64
	)
	err = row.Scan(&value, &storedAt)
	if isNoRows(err) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("get cached %s: %w", key, err)
	}
	return value, fromMillis(storedAt), true, nil
}

// SetCached overwrites the response stored under key.
func (s *Store) SetCached(ctx context.Context, key, value string, at time.Time) error {
	q := s.sb.Insert("narrative_cache").
		Columns("cache_key", "value", "stored_at").
		Values(key, value, millis(at)).
		Suffix("ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("set cached %s: %w", key, err)
	}
	return nil
}
