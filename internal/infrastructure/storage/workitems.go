package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

var workItemColumns = []string{"id", "name", "address", "category", "lat", "lng", "status", "last_visited_at", "last_score", "created_at"}

func scanWorkItem(row rowScanner) (domain.WorkItem, error) {
	var (
		item      domain.WorkItem
		status    string
		visitedAt sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Address, &item.Category, &item.Lat, &item.Lng,
		&status, &visitedAt, &item.LastScore, &createdAt); err != nil {
		return domain.WorkItem{}, err
	}
	item.Status = domain.WorkItemStatus(status)
	item.LastVisitedAt = timePtr(visitedAt)
	item.CreatedAt = fromMillis(createdAt)
	return item, nil
}

// ListWorkItems returns items with the given status in insertion order.
func (s *Store) ListWorkItems(ctx context.Context, status domain.WorkItemStatus) ([]domain.WorkItem, error) {
	q := s.sb.Select(workItemColumns...).From("work_items").
		Where(sq.Eq{"status": string(status)}).
		OrderBy("seq")

	items, err := queryAll(ctx, s, q, scanWorkItem)
	if err != nil {
		return nil, fmt.Errorf("list %s work items: %w", status, err)
	}
	return items, nil
}

// GetWorkItem loads a single item.
func (s *Store) GetWorkItem(ctx context.Context, id string) (domain.WorkItem, error) {
	row, err := s.queryRow(ctx, s.sb.Select(workItemColumns...).From("work_items").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.WorkItem{}, err
	}
	item, err := scanWorkItem(row)
	if isNoRows(err) {
		return domain.WorkItem{}, domain.NotFound("work item", id)
	}
	if err != nil {
		return domain.WorkItem{}, fmt.Errorf("get work item %s: %w", id, err)
	}
	return item, nil
}

// GetWorkItems loads the items that exist among ids.
func (s *Store) GetWorkItems(ctx context.Context, ids []string) (map[string]domain.WorkItem, error) {
	out := make(map[string]domain.WorkItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	items, err := queryAll(ctx, s, s.sb.Select(workItemColumns...).From("work_items").Where(sq.Eq{"id": ids}), scanWorkItem)
	if err != nil {
		return nil, fmt.Errorf("get work items: %w", err)
	}
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

// CountWorkItems counts items with the given status.
func (s *Store) CountWorkItems(ctx context.Context, status domain.WorkItemStatus) (int, error) {
	row, err := s.queryRow(ctx, s.sb.Select("COUNT(*)").From("work_items").Where(sq.Eq{"status": string(status)}))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s work items: %w", status, err)
	}
	return n, nil
}

// RecordVisit transitions an item after a logged interaction.
func (s *Store) RecordVisit(ctx context.Context, id string, status domain.WorkItemStatus, visitedAt time.Time, score int) error {
	q := s.sb.Update("work_items").
		Set("status", string(status)).
		Set("last_visited_at", millis(visitedAt)).
		Set("last_score", score).
		Where(sq.Eq{"id": id})

	if err := s.execOne(ctx, q, domain.NotFound("work item", id)); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// UpsertWorkItem inserts an item or refreshes its descriptive fields.
// Status and visit fields of an existing item are left alone.
func (s *Store) UpsertWorkItem(ctx context.Context, item domain.WorkItem) error {
	status := item.Status
	if status == "" {
		status = domain.StatusPending
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	q := s.sb.Insert("work_items").
		Columns("id", "name", "address", "category", "lat", "lng", "status", "last_score", "created_at").
		Values(item.ID, item.Name, item.Address, item.Category, item.Lat, item.Lng, string(status), item.LastScore, millis(createdAt)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = excluded.name, address = excluded.address, " +
			"category = excluded.category, lat = excluded.lat, lng = excluded.lng")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert work item %s: %w", item.ID, err)
	}
	return nil
}
