package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FieldOps/internal/domain"
	"FieldOps/internal/geo"
)

func TestGatherSnapshot(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	loc := chicago(t)
	defaultPos := geo.Point{Lat: 35.1495, Lng: -90.0490}

	seedItems(t, store,
		domain.WorkItem{ID: "p1", Name: "Pending One", Lat: 35.1, Lng: -90},
		domain.WorkItem{ID: "p2", Name: "Pending Two", Lat: 35.2, Lng: -90},
		domain.WorkItem{ID: "done", Name: "Customer", Category: "bakery", Lat: 35.3, Lng: -90, Status: domain.StatusCompleted},
	)
	require.NoError(t, store.AppendInteraction(ctx, domain.InteractionRecord{
		ID: "r-recent", WorkItemID: "done", ActorID: "rep", Timestamp: testNow.Add(-2 * 24 * time.Hour), Score: 5,
	}))
	require.NoError(t, store.AppendInteraction(ctx, domain.InteractionRecord{
		ID: "r-old", WorkItemID: "p1", ActorID: "rep", Timestamp: testNow.Add(-8 * 24 * time.Hour), Score: 2,
	}))
	require.NoError(t, store.AppendInteraction(ctx, domain.InteractionRecord{
		ID: "r-other", WorkItemID: "p2", ActorID: "someone-else", Timestamp: testNow.Add(-time.Hour), Score: 4,
	}))

	// Today in Chicago runs from 05:00 UTC on the 10th to 05:00 UTC on the 11th.
	for id, at := range map[string]time.Time{
		"yesterday": time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC),
		"today":     time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
		"tonight":   time.Date(2026, 3, 11, 4, 30, 0, 0, time.UTC),
		"tomorrow":  time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, store.AddScheduledAction(ctx, domain.ScheduledAction{
			ID: id, ActorID: "rep", WorkItemID: "ghost-item", WorkItemName: "Ghost", ScheduledAt: at, Action: "Return", CreatedAt: testNow,
		}))
	}

	gatherer := NewContextGatherer(ContextDeps{
		WorkItems:       store,
		Interactions:    store,
		Schedule:        store,
		Actors:          store,
		DefaultPosition: defaultPos,
		Location:        loc,
	})

	snap, err := gatherer.Gather(ctx, "rep", testNow)
	require.NoError(t, err)

	assert.Equal(t, defaultPos, snap.Position)
	assert.Empty(t, snap.ActorName)
	assert.Equal(t, []string{"p1", "p2"}, itemIDs(snap.PendingItems))
	assert.Equal(t, 1, snap.CompletedCount)

	require.Len(t, snap.Recent, 1)
	assert.Equal(t, "r-recent", snap.Recent[0].ID)

	var scheduled []string
	for _, a := range snap.ScheduledToday {
		scheduled = append(scheduled, a.ID)
	}
	assert.Equal(t, []string{"today", "tonight"}, scheduled)

	assert.Contains(t, snap.Items, "done")
	assert.Equal(t, "bakery", snap.Items["done"].Category)
	assert.NotContains(t, snap.Items, "ghost-item")

	require.NoError(t, store.UpsertActor(ctx, domain.Actor{ID: "rep", Name: "Rep", LastLat: ptr(35.0), LastLng: ptr(-89.9), DigestEnabled: true}))
	snap, err = gatherer.Gather(ctx, "rep", testNow)
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 35.0, Lng: -89.9}, snap.Position)
	assert.Equal(t, "Rep", snap.ActorName)
}

func TestDayBoundsFollowLocalCalendar(t *testing.T) {
	loc := chicago(t)
	start, end := DayBounds(time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), loc)
	assert.True(t, start.Equal(time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC)), "start %s", start)
	assert.True(t, end.Equal(time.Date(2026, 3, 11, 5, 0, 0, 0, time.UTC)), "end %s", end)
}

func itemIDs(items []domain.WorkItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
