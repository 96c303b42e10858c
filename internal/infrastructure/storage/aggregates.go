package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

// GetAggregate loads the actor's running statistics.
func (s *Store) GetAggregate(ctx context.Context, actorID string) (domain.PerformanceAggregate, bool, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select("total_pending", "total_completed", "total_attempted", "mean_score", "total_interactions", "last_activity_at").
		From("aggregates").
		Where(sq.Eq{"actor_id": actorID}))
	if err != nil {
		return domain.PerformanceAggregate{}, false, err
	}

	agg := domain.PerformanceAggregate{ActorID: actorID}
	var last sql.NullInt64
	err = row.Scan(&agg.TotalPending, &agg.TotalCompleted, &agg.TotalAttempted, &agg.MeanScore, &agg.TotalInteractions, &last)
	if isNoRows(err) {
		return agg, false, nil
	}
	if err != nil {
		return domain.PerformanceAggregate{}, false, fmt.Errorf("get aggregate %s: %w", actorID, err)
	}
	agg.LastActivityAt = timePtr(last)
	return agg, true, nil
}

// ApplyAggregate adds the counter deltas atomically and overwrites the
// mean and interaction count. Two concurrent writers can lose a mean update.
func (s *Store) ApplyAggregate(ctx context.Context, u domain.AggregateUpdate) error {
	q := s.sb.Insert("aggregates").
		Columns("actor_id", "total_completed", "total_attempted", "mean_score", "total_interactions", "last_activity_at").
		Values(u.ActorID, u.CompletedDelta, u.AttemptedDelta, u.MeanScore, u.TotalInteractions, millis(u.At)).
		Suffix("ON CONFLICT (actor_id) DO UPDATE SET " +
			"total_completed = aggregates.total_completed + excluded.total_completed, " +
			"total_attempted = aggregates.total_attempted + excluded.total_attempted, " +
			"mean_score = excluded.mean_score, " +
			"total_interactions = excluded.total_interactions, " +
			"last_activity_at = excluded.last_activity_at")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("apply aggregate %s: %w", u.ActorID, err)
	}
	return nil
}

// SetPendingCount stores a freshly recounted pending total.
func (s *Store) SetPendingCount(ctx context.Context, actorID string, pending int) error {
	q := s.sb.Insert("aggregates").
		Columns("actor_id", "total_pending").
		Values(actorID, pending).
		Suffix("ON CONFLICT (actor_id) DO UPDATE SET total_pending = excluded.total_pending")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("set pending count %s: %w", actorID, err)
	}
	return nil
}
