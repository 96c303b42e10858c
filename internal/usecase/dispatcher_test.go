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

func TestNextMissionAssignsNearestPendingItem(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	text := &fakeText{reply: "Sure! ```json\n{\"openingLine\": \"Hi, walk-in cooler holding temp?\"}\n```"}

	seedItems(t, store,
		domain.WorkItem{ID: "one-km", Name: "Blues Diner", Lat: northOf(35.1, 1.0), Lng: -90.0},
		domain.WorkItem{ID: "near", Name: "Beale BBQ", Lat: northOf(35.1, 0.4), Lng: -90.0},
		domain.WorkItem{ID: "far", Name: "River Sushi", Lat: northOf(35.1, 2.3), Lng: -90.0},
	)

	d := NewDispatcher(DispatcherDeps{
		WorkItems: store,
		Actors:    store,
		Generator: newGenerator(store, text, func() time.Time { return testNow }),
		Now:       func() time.Time { return testNow },
	})

	got, err := d.NextMission(ctx, "rep-1", 35.1, -90.0)
	require.NoError(t, err)
	require.False(t, got.NoneAvailable)
	require.NotNil(t, got.Mission)

	assert.Equal(t, "near", got.Mission.Item.ID)
	assert.InDelta(t, 0.4, got.Mission.DistanceKm, 1e-6)
	assert.InDelta(t, 0.4*domain.KmToMiles, got.Mission.DistanceMile, 1e-6)
	assert.Equal(t, "Hi, walk-in cooler holding temp?", got.Mission.OpeningLine)
	assert.False(t, got.Mission.Fallback)

	actor, err := store.GetActor(ctx, "rep-1")
	require.NoError(t, err)
	require.True(t, actor.HasPosition())
	assert.InDelta(t, 35.1, *actor.LastLat, 1e-9)
}

func TestNextMissionEmptyPoolIsNotAnError(t *testing.T) {
	store := openStore(t)
	d := NewDispatcher(DispatcherDeps{WorkItems: store, Actors: store})

	got, err := d.NextMission(context.Background(), "rep-1", 35.1, -90.0)
	require.NoError(t, err)
	assert.True(t, got.NoneAvailable)
	assert.Nil(t, got.Mission)
	assert.Equal(t, NoneAvailableMessage, got.Message)
}

func TestNextMissionRejectsInvalidInputBeforeStoreAccess(t *testing.T) {
	// Nil repositories panic if touched.
	d := NewDispatcher(DispatcherDeps{})

	cases := []struct {
		name     string
		actor    string
		lat, lng float64
	}{
		{"latitude too high", "rep", 90.5, 0},
		{"latitude too low", "rep", -91, 0},
		{"longitude out of range", "rep", 10, 180.01},
		{"missing actor", " ", 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.NextMission(context.Background(), tc.actor, tc.lat, tc.lng)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestNextMissionFallsBackToTemplateOpener(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	seedItems(t, store, domain.WorkItem{ID: "w1", Name: "Corner Cafe", Lat: 35.11, Lng: -90.01})

	d := NewDispatcher(DispatcherDeps{WorkItems: store, Actors: store, Generator: newGenerator(store, nil, nil)})

	first, err := d.NextMission(ctx, "rep", 35.1, -90.0)
	require.NoError(t, err)
	second, err := d.NextMission(ctx, "rep", 35.2, -90.0)
	require.NoError(t, err)

	assert.True(t, first.Mission.Fallback)
	assert.Equal(t, first.Mission.OpeningLine, second.Mission.OpeningLine)
	assert.Contains(t, first.Mission.OpeningLine, "commercial kitchen")
}

func TestNextMissionExcludesVisitedItems(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	seedItems(t, store,
		domain.WorkItem{ID: "a", Lat: northOf(35.1, 0.1), Lng: -90.0},
		domain.WorkItem{ID: "b", Lat: northOf(35.1, 0.2), Lng: -90.0},
		domain.WorkItem{ID: "c", Lat: northOf(35.1, 5.0), Lng: -90.0},
	)
	d := NewDispatcher(DispatcherDeps{WorkItems: store, Actors: store})
	ledger := NewLedger(LedgerDeps{WorkItems: store, Interactions: store, Aggregates: store, Schedule: store})

	_, err := ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "a", Score: 5})
	require.NoError(t, err)
	_, err = ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "b", Score: 2})
	require.NoError(t, err)

	got, err := d.NextMission(ctx, "rep", 35.1, -90.0)
	require.NoError(t, err)
	require.NotNil(t, got.Mission)
	assert.Equal(t, "c", got.Mission.Item.ID)
}

func TestNearestPrefersFirstOfEqualCandidates(t *testing.T) {
	items := []domain.WorkItem{
		{ID: "east", Lat: 0, Lng: 1},
		{ID: "west", Lat: 0, Lng: -1},
	}
	item, km := Nearest(geo.Point{}, items)
	assert.Equal(t, "east", item.ID)
	assert.InDelta(t, geo.DistanceKm(geo.Point{}, geo.Point{Lng: 1}), km, 1e-9)
}

func TestMissionIntel(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown item", func(t *testing.T) {
		store := openStore(t)
		d := NewDispatcher(DispatcherDeps{WorkItems: store, Actors: store})
		_, err := d.MissionIntel(ctx, "rep", "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("generated and cached", func(t *testing.T) {
		store := openStore(t)
		seedItems(t, store, domain.WorkItem{ID: "w1", Name: "Sushi Bar", Category: "restaurant", Lat: 35.1, Lng: -90})
		text := &fakeText{reply: `{"briefing":"Sushi needs precise temps.","likelyEquipment":["Sushi case"],"painPoints":["Fish spoilage"],"suggestedOpener":"How is your sushi case holding 38F?"}`}
		d := NewDispatcher(DispatcherDeps{WorkItems: store, Actors: store, Generator: newGenerator(store, text, nil)})

		first, err := d.MissionIntel(ctx, "rep", "w1")
		require.NoError(t, err)
		assert.False(t, first.Fallback)
		assert.Equal(t, []string{"Sushi case"}, first.Intel.LikelyEquipment)

		second, err := d.MissionIntel(ctx, "rep", "w1")
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.Intel, second.Intel)
		assert.Equal(t, 1, text.Calls())
	})

	t.Run("malformed reply falls back", func(t *testing.T) {
		store := openStore(t)
		seedItems(t, store, domain.WorkItem{ID: "w1", Name: "Flower Shop", Lat: 35.1, Lng: -90})
		text := &fakeText{reply: `{"briefing":"Florists need humidity control."}`}
		d := NewDispatcher(DispatcherDeps{WorkItems: store, Actors: store, Generator: newGenerator(store, text, nil)})

		got, err := d.MissionIntel(ctx, "rep", "w1")
		require.NoError(t, err)
		assert.True(t, got.Fallback)
		assert.Equal(t, "Target is Flower Shop. Standard commercial refrigeration setup likely.", got.Intel.Briefing)
		assert.Len(t, got.Intel.LikelyEquipment, 3)
	})
}
