package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

// AppendUsage logs one successful text-service call.
func (s *Store) AppendUsage(ctx context.Context, rec domain.UsageRecord) error {
	q := s.sb.Insert("usage_log").
		Columns("id", "actor_id", "kind", "subject", "provider", "at").
		Values(rec.ID, rec.ActorID, string(rec.Kind), rec.Subject, rec.Provider, millis(rec.At))

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	return nil
}

// CountUsageSince counts the actor's calls at or after since.
func (s *Store) CountUsageSince(ctx context.Context, actorID string, since time.Time) (int, error) {
	row, err := s.queryRow(ctx, s.sb.Select("COUNT(*)").From("usage_log").
		Where(sq.Eq{"actor_id": actorID}).
		Where(sq.GtOrEq{"at": millis(since)}))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return n, nil
}
