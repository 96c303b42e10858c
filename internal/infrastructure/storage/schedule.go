package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

var actionColumns = []string{"id", "actor_id", "work_item_id", "work_item_name", "scheduled_at", "action", "reason", "status", "created_at", "completed_at"}

func scanAction(row rowScanner) (domain.ScheduledAction, error) {
	var (
		a                      domain.ScheduledAction
		status                 string
		scheduledAt, createdAt int64
		completedAt            sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.ActorID, &a.WorkItemID, &a.WorkItemName, &scheduledAt, &a.Action, &a.Reason,
		&status, &createdAt, &completedAt); err != nil {
		return domain.ScheduledAction{}, err
	}
	a.Status = domain.ActionStatus(status)
	a.ScheduledAt = fromMillis(scheduledAt)
	a.CreatedAt = fromMillis(createdAt)
	a.CompletedAt = timePtr(completedAt)
	return a, nil
}

// ListScheduledActions returns actions in [from, to) ordered by time.
// A zero to leaves the range open-ended.
func (s *Store) ListScheduledActions(ctx context.Context, actorID string, status domain.ActionStatus, from, to time.Time) ([]domain.ScheduledAction, error) {
	q := s.sb.Select(actionColumns...).From("scheduled_actions").
		Where(sq.Eq{"actor_id": actorID, "status": string(status)}).
		Where(sq.GtOrEq{"scheduled_at": millis(from)}).
		OrderBy("scheduled_at", "id")
	if !to.IsZero() {
		q = q.Where(sq.Lt{"scheduled_at": millis(to)})
	}

	actions, err := queryAll(ctx, s, q, scanAction)
	if err != nil {
		return nil, fmt.Errorf("list scheduled actions of %s: %w", actorID, err)
	}
	return actions, nil
}

// AddScheduledAction stores a new commitment.
func (s *Store) AddScheduledAction(ctx context.Context, a domain.ScheduledAction) error {
	status := a.Status
	if status == "" {
		status = domain.ActionPending
	}

	q := s.sb.Insert("scheduled_actions").
		Columns(actionColumns...).
		Values(a.ID, a.ActorID, a.WorkItemID, a.WorkItemName, millis(a.ScheduledAt), a.Action, a.Reason,
			string(status), millis(a.CreatedAt), nullMillis(a.CompletedAt))

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("add scheduled action: %w", err)
	}
	return nil
}

// CompleteScheduledAction marks the actor's action done.
func (s *Store) CompleteScheduledAction(ctx context.Context, actorID, actionID string, at time.Time) error {
	q := s.sb.Update("scheduled_actions").
		Set("status", string(domain.ActionDone)).
		Set("completed_at", millis(at)).
		Where(sq.Eq{"id": actionID, "actor_id": actorID})

	if err := s.execOne(ctx, q, domain.NotFound("scheduled action", actionID)); err != nil {
		return fmt.Errorf("complete scheduled action: %w", err)
	}
	return nil
}
