package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

var interactionColumns = []string{"id", "work_item_id", "actor_id", "ts", "opening_line", "score", "note", "media_refs", "outcome"}

func scanInteraction(row rowScanner) (domain.InteractionRecord, error) {
	var (
		rec   domain.InteractionRecord
		ts    int64
		media string
	)
	if err := row.Scan(&rec.ID, &rec.WorkItemID, &rec.ActorID, &ts, &rec.OpeningLine, &rec.Score, &rec.Note, &media, &rec.Outcome); err != nil {
		return domain.InteractionRecord{}, err
	}
	rec.Timestamp = fromMillis(ts)
	if err := json.Unmarshal([]byte(media), &rec.MediaRefs); err != nil {
		return domain.InteractionRecord{}, fmt.Errorf("decode media refs of %s: %w", rec.ID, err)
	}
	return rec, nil
}

// AppendInteraction stores an immutable visit record.
func (s *Store) AppendInteraction(ctx context.Context, rec domain.InteractionRecord) error {
	refs := rec.MediaRefs
	if refs == nil {
		refs = []string{}
	}
	media, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("encode media refs: %w", err)
	}

	q := s.sb.Insert("interactions").
		Columns(interactionColumns...).
		Values(rec.ID, rec.WorkItemID, rec.ActorID, millis(rec.Timestamp), rec.OpeningLine, rec.Score, rec.Note, string(media), rec.Outcome)

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// ListActorInteractions returns the actor's records since the given time, newest first.
func (s *Store) ListActorInteractions(ctx context.Context, actorID string, since time.Time) ([]domain.InteractionRecord, error) {
	q := s.sb.Select(interactionColumns...).From("interactions").
		Where(sq.Eq{"actor_id": actorID}).
		Where(sq.GtOrEq{"ts": millis(since)}).
		OrderBy("ts DESC", "id DESC")

	recs, err := queryAll(ctx, s, q, scanInteraction)
	if err != nil {
		return nil, fmt.Errorf("list interactions of %s: %w", actorID, err)
	}
	return recs, nil
}

// ListItemInteractions returns the latest records for a work item, newest first.
func (s *Store) ListItemInteractions(ctx context.Context, workItemID string, limit int) ([]domain.InteractionRecord, error) {
	q := s.sb.Select(interactionColumns...).From("interactions").
		Where(sq.Eq{"work_item_id": workItemID}).
		OrderBy("ts DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	recs, err := queryAll(ctx, s, q, scanInteraction)
	if err != nil {
		return nil, fmt.Errorf("list interactions of item %s: %w", workItemID, err)
	}
	return recs, nil
}
