package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

// GetDigest loads the digest stored for actorID on date.
func (s *Store) GetDigest(ctx context.Context, actorID, date string) (domain.DigestRecord, error) {
	id := domain.DigestID(actorID, date)
	row, err := s.queryRow(ctx, s.sb.
		Select("actor_id", "day", "content", "fallback", "generated_at", "viewed_at", "dismissed", "dismissed_at").
		From("digests").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.DigestRecord{}, err
	}

	var (
		rec                   domain.DigestRecord
		content               string
		generatedAt           int64
		viewedAt, dismissedAt sql.NullInt64
	)
	err = row.Scan(&rec.ActorID, &rec.Date, &content, &rec.Fallback, &generatedAt, &viewedAt, &rec.Dismissed, &dismissedAt)
	if isNoRows(err) {
		return domain.DigestRecord{}, domain.NotFound("digest", id)
	}
	if err != nil {
		return domain.DigestRecord{}, fmt.Errorf("get digest %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(content), &rec.Content); err != nil {
		return domain.DigestRecord{}, fmt.Errorf("decode digest %s: %w", id, err)
	}
	rec.GeneratedAt = fromMillis(generatedAt)
	rec.ViewedAt = timePtr(viewedAt)
	rec.DismissedAt = timePtr(dismissedAt)
	return rec, nil
}

// InsertDigestIfAbsent stores rec unless the day already has a digest.
// It reports whether rec was written.
func (s *Store) InsertDigestIfAbsent(ctx context.Context, rec domain.DigestRecord) (bool, error) {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return false, fmt.Errorf("encode digest: %w", err)
	}

	q := s.sb.Insert("digests").
		Columns("id", "actor_id", "day", "content", "fallback", "generated_at", "viewed_at", "dismissed", "dismissed_at").
		Values(rec.ID(), rec.ActorID, rec.Date, string(content), rec.Fallback, millis(rec.GeneratedAt),
			nullMillis(rec.ViewedAt), rec.Dismissed, nullMillis(rec.DismissedAt)).
		Suffix("ON CONFLICT (id) DO NOTHING")

	res, err := s.exec(ctx, q)
	if err != nil {
		return false, fmt.Errorf("insert digest %s: %w", rec.ID(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkDigestViewed stamps the first view of a digest.
func (s *Store) MarkDigestViewed(ctx context.Context, actorID, date string, at time.Time) error {
	q := s.sb.Update("digests").
		Set("viewed_at", millis(at)).
		Where(sq.Eq{"id": domain.DigestID(actorID, date), "viewed_at": nil})

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("mark digest viewed: %w", err)
	}
	return nil
}

// DismissDigest hides a digest. The first dismissal time is kept.
func (s *Store) DismissDigest(ctx context.Context, actorID, date string, at time.Time) error {
	id := domain.DigestID(actorID, date)
	q := s.sb.Update("digests").
		Set("dismissed", true).
		Set("dismissed_at", sq.Expr("COALESCE(dismissed_at, ?)", millis(at))).
		Where(sq.Eq{"id": id})

	if err := s.execOne(ctx, q, domain.NotFound("digest", id)); err != nil {
		return fmt.Errorf("dismiss digest: %w", err)
	}
	return nil
}

// SaveFeedback stores a feedback submission and one history row per item.
func (s *Store) SaveFeedback(ctx context.Context, fb domain.DigestFeedback) (err error) {
	items := fb.Items
	if items == nil {
		items = []domain.ItemFeedback{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode feedback items: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feedback tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := s.sb.Insert("digest_feedback").
		Columns("id", "digest_id", "actor_id", "items", "helpfulness", "comments", "created_at").
		Values(fb.ID, fb.DigestID, fb.ActorID, string(encoded), fb.Helpfulness, fb.Comments, millis(fb.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	for _, item := range items {
		query, args, err = s.sb.Insert("suggestion_history").
			Columns("id", "feedback_id", "actor_id", "item_type", "item_id", "user_action", "outcome", "notes", "score", "created_at").
			Values(domain.NewEventID(), fb.ID, fb.ActorID, item.ItemType, item.ItemID, item.Action, item.Outcome, item.Notes, item.Score, millis(fb.CreatedAt)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build statement: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert suggestion history: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit feedback: %w", err)
	}
	return nil
}

// CountSuggestionHistory counts stored item reactions of an actor.
func (s *Store) CountSuggestionHistory(ctx context.Context, actorID string) (int, error) {
	row, err := s.queryRow(ctx, s.sb.Select("COUNT(*)").From("suggestion_history").Where(sq.Eq{"actor_id": actorID}))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count suggestion history: %w", err)
	}
	return n, nil
}
