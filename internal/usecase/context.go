package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"FieldOps/internal/domain"
	"FieldOps/internal/geo"
	"FieldOps/internal/insight"
	"FieldOps/internal/ports"
)

// ContextDeps wires the context gatherer.
type ContextDeps struct {
	WorkItems    ports.WorkItemRepository
	Interactions ports.InteractionRepository
	Schedule     ports.ScheduleRepository
	Actors       ports.ActorRepository
	// DefaultPosition stands in for actors who never reported one.
	DefaultPosition geo.Point
	Location        *time.Location
	Logger          *slog.Logger
}

// ContextGatherer assembles the snapshot the detectors read.
type ContextGatherer struct {
	workItems    ports.WorkItemRepository
	interactions ports.InteractionRepository
	schedule     ports.ScheduleRepository
	actors       ports.ActorRepository
	position     geo.Point
	location     *time.Location
	logger       *slog.Logger
}

// NewContextGatherer constructs the gatherer.
func NewContextGatherer(deps ContextDeps) *ContextGatherer {
	return &ContextGatherer{
		workItems:    deps.WorkItems,
		interactions: deps.Interactions,
		schedule:     deps.Schedule,
		actors:       deps.Actors,
		position:     deps.DefaultPosition,
		location:     locationOrUTC(deps.Location),
		logger:       loggerOrDiscard(deps.Logger),
	}
}

// DayBounds returns the start of now's calendar day in loc and the start of the next.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Gather reads everything the detectors need for actorID at now. The
// pending pool is store-wide, not scoped to the actor.
func (g *ContextGatherer) Gather(ctx context.Context, actorID string, now time.Time) (insight.Snapshot, error) {
	if strings.TrimSpace(actorID) == "" {
		return insight.Snapshot{}, domain.Invalid("actorId", "required")
	}

	snap := insight.Snapshot{
		ActorID:  actorID,
		Now:      now,
		Location: g.location,
		Position: g.position,
	}
	start, end := DayBounds(now, g.location)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		actor, err := g.actors.GetActor(egCtx, actorID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		snap.ActorName = actor.Name
		if actor.HasPosition() {
			snap.Position = geo.Point{Lat: *actor.LastLat, Lng: *actor.LastLng}
		}
		return nil
	})
	eg.Go(func() error {
		items, err := g.workItems.ListWorkItems(egCtx, domain.StatusPending)
		snap.PendingItems = items
		return err
	})
	eg.Go(func() error {
		actions, err := g.schedule.ListScheduledActions(egCtx, actorID, domain.ActionPending, start, end)
		snap.ScheduledToday = actions
		return err
	})
	eg.Go(func() error {
		recent, err := g.interactions.ListActorInteractions(egCtx, actorID, now.Add(-insight.RecentWindow))
		snap.Recent = recent
		return err
	})
	eg.Go(func() error {
		n, err := g.workItems.CountWorkItems(egCtx, domain.StatusCompleted)
		snap.CompletedCount = n
		return err
	})
	if err := eg.Wait(); err != nil {
		return insight.Snapshot{}, fmt.Errorf("gather context for %s: %w", actorID, err)
	}

	items, err := g.resolveItems(ctx, snap)
	if err != nil {
		return insight.Snapshot{}, fmt.Errorf("gather context for %s: %w", actorID, err)
	}
	snap.Items = items

	g.logger.Debug("context gathered",
		"actor", actorID,
		"pending", len(snap.PendingItems),
		"scheduled_today", len(snap.ScheduledToday),
		"recent", len(snap.Recent),
	)
	return snap, nil
}

// resolveItems maps every referenced work item id, whatever its status.
func (g *ContextGatherer) resolveItems(ctx context.Context, snap insight.Snapshot) (map[string]domain.WorkItem, error) {
	items := make(map[string]domain.WorkItem, len(snap.PendingItems))
	for _, item := range snap.PendingItems {
		items[item.ID] = item
	}

	var missing []string
	seen := make(map[string]bool)
	want := func(id string) {
		if _, ok := items[id]; ok || seen[id] || id == "" {
			return
		}
		seen[id] = true
		missing = append(missing, id)
	}
	for _, rec := range snap.Recent {
		want(rec.WorkItemID)
	}
	for _, action := range snap.ScheduledToday {
		want(action.WorkItemID)
	}
	if len(missing) == 0 {
		return items, nil
	}

	found, err := g.workItems.GetWorkItems(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, item := range found {
		items[id] = item
	}
	return items, nil
}
