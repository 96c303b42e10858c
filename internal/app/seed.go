package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"FieldOps/internal/domain"
	"FieldOps/internal/geo"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	WorkItems []SeedWorkItem `yaml:"workItems"`
	Actors    []SeedActor    `yaml:"actors"`
}

// SeedWorkItem is one location row.
type SeedWorkItem struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Address  string  `yaml:"address"`
	Category string  `yaml:"category"`
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
}

// SeedActor is one field agent row. DigestEnabled defaults to true.
type SeedActor struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	DigestEnabled *bool  `yaml:"digestEnabled"`
}

// SeedStore is what the loader writes into.
type SeedStore interface {
	UpsertWorkItem(ctx context.Context, item domain.WorkItem) error
	GetActor(ctx context.Context, id string) (domain.Actor, error)
	UpsertActor(ctx context.Context, actor domain.Actor) error
}

// SeedSummary counts the upserted rows.
type SeedSummary struct {
	WorkItems int
	Actors    int
}

// ReadSeed parses and validates a seed file.
func ReadSeed(fs afero.Fs, path string) (SeedFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(seed.WorkItems))
	for i, item := range seed.WorkItems {
		if item.ID == "" {
			return SeedFile{}, domain.Invalid("workItems", "entry %d has no id", i)
		}
		if _, dup := seen[item.ID]; dup {
			return SeedFile{}, domain.Invalid("workItems", "duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
		if !geo.ValidLatLng(item.Lat, item.Lng) {
			return SeedFile{}, domain.Invalid("workItems", "%s has coordinates out of range", item.ID)
		}
	}
	for i, actor := range seed.Actors {
		if actor.ID == "" {
			return SeedFile{}, domain.Invalid("actors", "entry %d has no id", i)
		}
	}
	return seed, nil
}

// ApplySeed upserts the seed rows. Existing work items keep their visit
// state and existing actors keep their last known position.
func ApplySeed(ctx context.Context, store SeedStore, seed SeedFile, now time.Time) (SeedSummary, error) {
	var summary SeedSummary

	for _, row := range seed.WorkItems {
		item := domain.WorkItem{
			ID:        row.ID,
			Name:      row.Name,
			Address:   row.Address,
			Category:  row.Category,
			Lat:       row.Lat,
			Lng:       row.Lng,
			Status:    domain.StatusPending,
			CreatedAt: now,
		}
		if err := store.UpsertWorkItem(ctx, item); err != nil {
			return summary, fmt.Errorf("seed work item %s: %w", row.ID, err)
		}
		summary.WorkItems++
	}

	for _, row := range seed.Actors {
		actor, err := store.GetActor(ctx, row.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			actor = domain.Actor{ID: row.ID, DigestEnabled: true}
		case err != nil:
			return summary, fmt.Errorf("seed actor %s: %w", row.ID, err)
		}
		actor.Name = row.Name
		if row.DigestEnabled != nil {
			actor.DigestEnabled = *row.DigestEnabled
		}
		if err := store.UpsertActor(ctx, actor); err != nil {
			return summary, fmt.Errorf("seed actor %s: %w", row.ID, err)
		}
		summary.Actors++
	}

	return summary, nil
}
