package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FieldOps/internal/domain"
	"FieldOps/internal/infrastructure/storage"
)

func newTestLedger(store *storage.Store, text *fakeText, clk *clock) *Ledger {
	return NewLedger(LedgerDeps{
		WorkItems:    store,
		Interactions: store,
		Aggregates:   store,
		Schedule:     store,
		Generator:    newGenerator(store, text, clk.Now),
		Now:          clk.Now,
	})
}

func TestLogInteractionRunningMean(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	clk := newClock(testNow)
	seedItems(t, store,
		domain.WorkItem{ID: "a", Lat: 35.1, Lng: -90},
		domain.WorkItem{ID: "b", Lat: 35.2, Lng: -90},
		domain.WorkItem{ID: "c", Lat: 35.3, Lng: -90},
	)
	ledger := newTestLedger(store, nil, clk)

	wantMeans := []float64{5.0, 4.0, 4.0}
	for i, step := range []struct {
		item  string
		score int
	}{{"a", 5}, {"b", 3}, {"c", 4}} {
		clk.Advance(time.Minute)
		res, err := ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: step.item, Score: step.score})
		require.NoError(t, err)
		assert.InDelta(t, wantMeans[i], res.Aggregate.MeanScore, 1e-9)

		stored, err := ledger.KPIs(ctx, "rep")
		require.NoError(t, err)
		assert.InDelta(t, wantMeans[i], stored.MeanScore, 1e-9)
		assert.Equal(t, i+1, stored.TotalInteractions)
	}

	kpis, err := ledger.KPIs(ctx, "rep")
	require.NoError(t, err)
	assert.Equal(t, 2, kpis.TotalCompleted)
	assert.Equal(t, 1, kpis.TotalAttempted)
	assert.Zero(t, kpis.TotalPending)
}

func TestLogInteractionTransitionsStatus(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	clk := newClock(testNow)
	seedItems(t, store,
		domain.WorkItem{ID: "strong", Lat: 35.1, Lng: -90},
		domain.WorkItem{ID: "weak", Lat: 35.2, Lng: -90},
		domain.WorkItem{ID: "untouched", Lat: 35.3, Lng: -90},
	)
	ledger := newTestLedger(store, nil, clk)

	res, err := ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "strong", Score: 4})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, 2, res.Aggregate.TotalPending)

	res, err = ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "weak", Score: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAttempted, res.Status)
	assert.Equal(t, 1, res.Aggregate.TotalPending)

	weak, err := store.GetWorkItem(ctx, "weak")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAttempted, weak.Status)
	assert.Equal(t, 3, weak.LastScore)
	require.NotNil(t, weak.LastVisitedAt)

	// A later strong revisit completes an attempted item; completed stays completed.
	res, err = ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "weak", Score: 5})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Status)
	res, err = ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "strong", Score: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Status)
}

func TestLogInteractionKeepsTypedAngleBrackets(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	clk := newClock(testNow)
	seedItems(t, store, domain.WorkItem{ID: "w1", Name: "Beale BBQ", Lat: 35.1, Lng: -90})
	ledger := newTestLedger(store, nil, clk)

	note := "Temp reading was<owner wants a quote, call back"
	res, err := ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "w1", Score: 3, Note: note})
	require.NoError(t, err)
	assert.Equal(t, note, res.Interaction.Note)
	assert.Equal(t, PriorityHigh, res.Guidance.LeadPriority)
	assert.Equal(t, "scheduled-return", res.Guidance.NextMissionType)

	recs, err := store.ListItemInteractions(ctx, "w1", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, note, recs[0].Note)
}

func TestLogInteractionSucceedsWhenServiceIsDown(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	clk := newClock(testNow)
	seedItems(t, store, domain.WorkItem{ID: "w1", Name: "Beale BBQ", Lat: 35.1, Lng: -90})
	text := downText()
	ledger := newTestLedger(store, text, clk)

	res, err := ledger.LogInteraction(ctx, LogRequest{
		ActorID:     "rep",
		WorkItemID:  "w1",
		OpeningLine: "Hi, quick question?",
		Score:       5,
		Note:        "<p>Owner interested,<br>wants an estimate</p>",
		MediaRefs:   []string{"https://cdn.example.com/cooler.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, text.Calls())
	assert.True(t, res.GuidanceOutcome.Fallback)
	assert.Equal(t, PriorityCritical, res.Guidance.LeadPriority)
	assert.Equal(t, "follow-up", res.Guidance.NextMissionType)
	assert.NotEmpty(t, res.Guidance.Analysis)
	assert.Nil(t, res.ScheduledAction)

	assert.Equal(t, "Owner interested,\nwants an estimate", res.Interaction.Note)
	assert.Equal(t, domain.DefaultOutcome, res.Interaction.Outcome)

	recs, err := store.ListItemInteractions(ctx, "w1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.Interaction.ID, recs[0].ID)

	item, err := store.GetWorkItem(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, item.Status)

	kpis, err := ledger.KPIs(ctx, "rep")
	require.NoError(t, err)
	assert.Equal(t, 1, kpis.TotalInteractions)
}

func TestLogInteractionSchedulesProposedFollowUp(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	clk := newClock(testNow)
	seedItems(t, store, domain.WorkItem{ID: "w1", Name: "Beale BBQ", Lat: 35.1, Lng: -90})

	at := testNow.Add(26 * time.Hour).Format(time.RFC3339)
	text := &fakeText{reply: `{"analysis":"Manager asked for a return visit.","immediateAction":"Move on.",` +
		`"scheduledAction":{"time":"` + at + `","action":"Return to meet the owner","reason":"Owner is in tomorrow"},` +
		`"leadPriority":"high","nextMissionType":"scheduled-return","aiCommand":"Come back tomorrow."}`}
	ledger := newTestLedger(store, text, clk)

	res, err := ledger.LogInteraction(ctx, LogRequest{ActorID: "rep", WorkItemID: "w1", Score: 3, Note: "come back tomorrow at 3:30 pm"})
	require.NoError(t, err)
	assert.False(t, res.GuidanceOutcome.Fallback)
	require.NotNil(t, res.ScheduledAction)

	actions, err := store.ListScheduledActions(ctx, "rep", domain.ActionPending, testNow, time.Time{})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "Return to meet the owner", actions[0].Action)
	assert.Equal(t, "Beale BBQ", actions[0].WorkItemName)
	assert.True(t, actions[0].ScheduledAt.Equal(testNow.Add(26*time.Hour)))
}

func TestLogInteractionValidation(t *testing.T) {
	// Nil repositories panic if touched.
	ledger := NewLedger(LedgerDeps{Limits: Limits{MaxNoteLength: 10, MaxOpeningLineLength: 5, MaxOutcomeLength: 5, MaxMediaRefs: 1}})

	cases := []struct {
		name string
		req  LogRequest
	}{
		{"missing actor", LogRequest{WorkItemID: "w", Score: 3}},
		{"missing item", LogRequest{ActorID: "a", Score: 3}},
		{"score too low", LogRequest{ActorID: "a", WorkItemID: "w", Score: 0}},
		{"score too high", LogRequest{ActorID: "a", WorkItemID: "w", Score: 6}},
		{"note too long", LogRequest{ActorID: "a", WorkItemID: "w", Score: 3, Note: strings.Repeat("x", 11)}},
		{"opening line too long", LogRequest{ActorID: "a", WorkItemID: "w", Score: 3, OpeningLine: "hello there"}},
		{"outcome too long", LogRequest{ActorID: "a", WorkItemID: "w", Score: 3, Outcome: "rejected"}},
		{"too many media refs", LogRequest{ActorID: "a", WorkItemID: "w", Score: 3, MediaRefs: []string{"https://a.io/1", "https://a.io/2"}}},
		{"relative media ref", LogRequest{ActorID: "a", WorkItemID: "w", Score: 3, MediaRefs: []string{"/photos/1.jpg"}}},
		{"non-http media ref", LogRequest{ActorID: "a", WorkItemID: "w", Score: 3, MediaRefs: []string{"ftp://a.io/1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.LogInteraction(context.Background(), tc.req)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLogInteractionUnknownWorkItem(t *testing.T) {
	store := openStore(t)
	ledger := newTestLedger(store, nil, newClock(testNow))

	_, err := ledger.LogInteraction(context.Background(), LogRequest{ActorID: "rep", WorkItemID: "ghost", Score: 4})
	require.ErrorIs(t, err, domain.ErrNotFound)

	recs, err := store.ListActorInteractions(context.Background(), "rep", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestKPIsForFreshActor(t *testing.T) {
	store := openStore(t)
	ledger := newTestLedger(store, nil, newClock(testNow))

	kpis, err := ledger.KPIs(context.Background(), "newbie")
	require.NoError(t, err)
	assert.Equal(t, domain.PerformanceAggregate{ActorID: "newbie"}, kpis)
}
