package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"FieldOps/internal/domain"
)

var actorColumns = []string{"id", "name", "last_lat", "last_lng", "position_at", "digest_enabled"}

func scanActor(row rowScanner) (domain.Actor, error) {
	var (
		a          domain.Actor
		lat, lng   sql.NullFloat64
		positionAt sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Name, &lat, &lng, &positionAt, &a.DigestEnabled); err != nil {
		return domain.Actor{}, err
	}
	a.LastLat = floatPtr(lat)
	a.LastLng = floatPtr(lng)
	a.PositionAt = timePtr(positionAt)
	return a, nil
}

// GetActor loads an actor profile.
func (s *Store) GetActor(ctx context.Context, id string) (domain.Actor, error) {
	row, err := s.queryRow(ctx, s.sb.Select(actorColumns...).From("actors").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Actor{}, err
	}
	a, err := scanActor(row)
	if isNoRows(err) {
		return domain.Actor{}, domain.NotFound("actor", id)
	}
	if err != nil {
		return domain.Actor{}, fmt.Errorf("get actor %s: %w", id, err)
	}
	return a, nil
}

// ListActors returns every actor ordered by id.
func (s *Store) ListActors(ctx context.Context) ([]domain.Actor, error) {
	actors, err := queryAll(ctx, s, s.sb.Select(actorColumns...).From("actors").OrderBy("id"), scanActor)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return actors, nil
}

// UpsertActor stores the full actor profile.
func (s *Store) UpsertActor(ctx context.Context, a domain.Actor) error {
	q := s.sb.Insert("actors").
		Columns(actorColumns...).
		Values(a.ID, a.Name, a.LastLat, a.LastLng, nullMillis(a.PositionAt), a.DigestEnabled).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = excluded.name, last_lat = excluded.last_lat, " +
			"last_lng = excluded.last_lng, position_at = excluded.position_at, digest_enabled = excluded.digest_enabled")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert actor %s: %w", a.ID, err)
	}
	return nil
}

// UpdatePosition records the actor's last known coordinates, creating the
// actor on first sight.
func (s *Store) UpdatePosition(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	q := s.sb.Insert("actors").
		Columns("id", "last_lat", "last_lng", "position_at").
		Values(id, lat, lng, millis(at)).
		Suffix("ON CONFLICT (id) DO UPDATE SET last_lat = excluded.last_lat, " +
			"last_lng = excluded.last_lng, position_at = excluded.position_at")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("update position of %s: %w", id, err)
	}
	return nil
}

// SetDigestEnabled toggles daily digest generation for the actor.
func (s *Store) SetDigestEnabled(ctx context.Context, id string, enabled bool) error {
	q := s.sb.Insert("actors").
		Columns("id", "digest_enabled").
		Values(id, enabled).
		Suffix("ON CONFLICT (id) DO UPDATE SET digest_enabled = excluded.digest_enabled")

	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("set digest preference of %s: %w", id, err)
	}
	return nil
}
