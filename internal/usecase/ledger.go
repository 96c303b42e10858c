package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"FieldOps/internal/domain"
	"FieldOps/internal/narrative"
	"FieldOps/internal/notes"
	"FieldOps/internal/ports"
)

// Lead priorities reported by follow-up guidance.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Limits caps the free-form fields of a logged interaction.
type Limits struct {
	MaxNoteLength        int
	MaxOpeningLineLength int
	MaxOutcomeLength     int
	MaxMediaRefs         int
}

// DefaultLimits returns the stock field caps.
func DefaultLimits() Limits {
	return Limits{
		MaxNoteLength:        5000,
		MaxOpeningLineLength: 500,
		MaxOutcomeLength:     64,
		MaxMediaRefs:         10,
	}
}

// LedgerDeps wires the ledger collaborators.
type LedgerDeps struct {
	WorkItems    ports.WorkItemRepository
	Interactions ports.InteractionRepository
	Aggregates   ports.AggregateRepository
	Schedule     ports.ScheduleRepository
	Generator    *narrative.Generator
	Limits       Limits
	// FollowUpTimeout bounds the guidance call after the write sequence.
	FollowUpTimeout time.Duration
	Location        *time.Location
	Logger          *slog.Logger
	Now             func() time.Time
}

// Ledger records visit outcomes and maintains per-actor aggregates.
type Ledger struct {
	workItems       ports.WorkItemRepository
	interactions    ports.InteractionRepository
	aggregates      ports.AggregateRepository
	schedule        ports.ScheduleRepository
	generator       *narrative.Generator
	limits          Limits
	followUpTimeout time.Duration
	location        *time.Location
	logger          *slog.Logger
	now             func() time.Time
}

// NewLedger constructs the interaction ledger.
func NewLedger(deps LedgerDeps) *Ledger {
	limits := deps.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	timeout := deps.FollowUpTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Ledger{
		workItems:       deps.WorkItems,
		interactions:    deps.Interactions,
		aggregates:      deps.Aggregates,
		schedule:        deps.Schedule,
		generator:       deps.Generator,
		limits:          limits,
		followUpTimeout: timeout,
		location:        locationOrUTC(deps.Location),
		logger:          loggerOrDiscard(deps.Logger),
		now:             clockOrNow(deps.Now),
	}
}

// LogRequest is one visit outcome reported by an actor.
type LogRequest struct {
	ActorID     string   `yaml:"actorId"`
	WorkItemID  string   `yaml:"workItemId"`
	OpeningLine string   `yaml:"openingLine"`
	Score       int      `yaml:"score"`
	Note        string   `yaml:"note"`
	MediaRefs   []string `yaml:"mediaRefs"`
	Outcome     string   `yaml:"outcome"`
}

// ScheduledGuidance is a follow-up the guidance proposes.
type ScheduledGuidance struct {
	Time   string `json:"time"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Guidance is the tactical advice returned after a logged visit.
type Guidance struct {
	Analysis        string             `json:"analysis"`
	ImmediateAction string             `json:"immediateAction"`
	ScheduledAction *ScheduledGuidance `json:"scheduledAction"`
	LeadPriority    string             `json:"leadPriority"`
	NextMissionType string             `json:"nextMissionType"`
	Command         string             `json:"aiCommand"`
}

// LogResult reports everything the write sequence produced.
type LogResult struct {
	Interaction     domain.InteractionRecord
	Status          domain.WorkItemStatus
	Aggregate       domain.PerformanceAggregate
	Guidance        Guidance
	GuidanceOutcome narrative.Outcome
	// ScheduledAction is set when the guidance created a follow-up.
	ScheduledAction *domain.ScheduledAction
}

// LogInteraction validates req, then appends the record, transitions the
// work item, folds the score into the actor's aggregate and recounts the
// pending pool. Any failure in that sequence fails the call. Follow-up
// guidance runs last under its own deadline and never fails the call.
func (l *Ledger) LogInteraction(ctx context.Context, req LogRequest) (LogResult, error) {
	if err := l.validate(req); err != nil {
		return LogResult{}, err
	}

	item, err := l.workItems.GetWorkItem(ctx, req.WorkItemID)
	if err != nil {
		return LogResult{}, err
	}

	now := l.now()
	outcome := strings.TrimSpace(req.Outcome)
	if outcome == "" {
		outcome = domain.DefaultOutcome
	}
	refs := req.MediaRefs
	if refs == nil {
		refs = []string{}
	}

	rec := domain.InteractionRecord{
		ID:          domain.NewRecordID(now),
		WorkItemID:  item.ID,
		ActorID:     req.ActorID,
		Timestamp:   now,
		OpeningLine: strings.TrimSpace(req.OpeningLine),
		Score:       req.Score,
		Note:        notes.PlainText(req.Note),
		MediaRefs:   refs,
		Outcome:     outcome,
	}
	if err := l.interactions.AppendInteraction(ctx, rec); err != nil {
		return LogResult{}, fmt.Errorf("log interaction: %w", err)
	}

	status := domain.NextStatus(item.Status, req.Score)
	if err := l.workItems.RecordVisit(ctx, item.ID, status, now, req.Score); err != nil {
		return LogResult{}, fmt.Errorf("log interaction: %w", err)
	}

	agg, err := l.applyAggregate(ctx, req.ActorID, req.Score, now)
	if err != nil {
		return LogResult{}, fmt.Errorf("log interaction: %w", err)
	}

	l.logger.Info("interaction logged",
		"actor", req.ActorID,
		"work_item", item.ID,
		"score", req.Score,
		"status", status,
	)

	result := LogResult{Interaction: rec, Status: status, Aggregate: agg}
	result.Guidance, result.GuidanceOutcome = l.followUp(ctx, item, rec, agg.TotalPending)
	result.ScheduledAction = l.scheduleFollowUp(ctx, item, rec, result.Guidance)
	return result, nil
}

func (l *Ledger) validate(req LogRequest) error {
	if strings.TrimSpace(req.ActorID) == "" {
		return domain.Invalid("actorId", "required")
	}
	if strings.TrimSpace(req.WorkItemID) == "" {
		return domain.Invalid("workItemId", "required")
	}
	if req.Score < domain.MinScore || req.Score > domain.MaxScore {
		return domain.Invalid("score", "must be between %d and %d, got %d", domain.MinScore, domain.MaxScore, req.Score)
	}
	if n := utf8.RuneCountInString(req.Note); n > l.limits.MaxNoteLength {
		return domain.Invalid("note", "%d characters exceeds the limit of %d", n, l.limits.MaxNoteLength)
	}
	if n := utf8.RuneCountInString(req.OpeningLine); n > l.limits.MaxOpeningLineLength {
		return domain.Invalid("openingLine", "%d characters exceeds the limit of %d", n, l.limits.MaxOpeningLineLength)
	}
	if n := utf8.RuneCountInString(req.Outcome); n > l.limits.MaxOutcomeLength {
		return domain.Invalid("outcome", "%d characters exceeds the limit of %d", n, l.limits.MaxOutcomeLength)
	}
	if len(req.MediaRefs) > l.limits.MaxMediaRefs {
		return domain.Invalid("mediaRefs", "%d references exceeds the limit of %d", len(req.MediaRefs), l.limits.MaxMediaRefs)
	}
	for i, ref := range req.MediaRefs {
		if !validMediaRef(ref) {
			return domain.Invalid(fmt.Sprintf("mediaRefs[%d]", i), "not an absolute http(s) URL: %q", ref)
		}
	}
	return nil
}

func validMediaRef(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// applyAggregate folds score into the stored aggregate and stores a fresh
// pending count. The mean is read, recomputed and overwritten, so concurrent
// logs for one actor can lose an update.
func (l *Ledger) applyAggregate(ctx context.Context, actorID string, score int, now time.Time) (domain.PerformanceAggregate, error) {
	agg, _, err := l.aggregates.GetAggregate(ctx, actorID)
	if err != nil {
		return domain.PerformanceAggregate{}, err
	}
	agg.ActorID = actorID

	update := agg.Apply(score, now)
	if err := l.aggregates.ApplyAggregate(ctx, update); err != nil {
		return domain.PerformanceAggregate{}, err
	}

	pending, err := l.workItems.CountWorkItems(ctx, domain.StatusPending)
	if err != nil {
		return domain.PerformanceAggregate{}, fmt.Errorf("recount pending: %w", err)
	}
	if err := l.aggregates.SetPendingCount(ctx, actorID, pending); err != nil {
		return domain.PerformanceAggregate{}, err
	}

	agg.TotalCompleted += update.CompletedDelta
	agg.TotalAttempted += update.AttemptedDelta
	agg.MeanScore = update.MeanScore
	agg.TotalInteractions = update.TotalInteractions
	agg.TotalPending = pending
	agg.LastActivityAt = &now
	return agg, nil
}

func (l *Ledger) followUp(ctx context.Context, item domain.WorkItem, rec domain.InteractionRecord, pending int) (Guidance, narrative.Outcome) {
	ctx, cancel := context.WithTimeout(ctx, l.followUpTimeout)
	defer cancel()

	history, err := l.interactions.ListItemInteractions(ctx, item.ID, 6)
	if err != nil {
		l.logger.Warn("follow-up history unavailable", "work_item", item.ID, "error", err)
	}
	previous := make([]domain.InteractionRecord, 0, len(history))
	for _, h := range history {
		if h.ID != rec.ID {
			previous = append(previous, h)
		}
	}
	if len(previous) > 5 {
		previous = previous[:5]
	}

	customers, err := l.workItems.CountWorkItems(ctx, domain.StatusCompleted)
	if err != nil {
		l.logger.Warn("customer count unavailable", "error", err)
	}

	res := narrative.Generate(ctx, l.generator, narrative.Request[Guidance]{
		Kind:     domain.KindFollowUp,
		ActorID:  rec.ActorID,
		Subject:  item.ID,
		CacheKey: narrative.FollowUpKey(rec.Note, rec.Score),
		Prompt: followUpPrompt(followUpContext{
			Item:      item,
			Note:      rec.Note,
			Score:     rec.Score,
			At:        rec.Timestamp,
			Location:  l.location,
			History:   previous,
			Customers: customers,
			Pending:   pending,
		}),
		Validate: func(g Guidance) error {
			return narrative.Require(
				narrative.Required("analysis", g.Analysis),
				narrative.Required("immediateAction", g.ImmediateAction),
				narrative.Required("aiCommand", g.Command),
			)
		},
		Fallback: func() Guidance { return fallbackGuidance(rec.Note, rec.Score) },
	})
	if res.Fallback {
		l.logger.Warn("follow-up guidance degraded", "work_item", item.ID, "reason", res.Reason)
	}
	return res.Value, res.Outcome
}

// scheduleFollowUp stores the follow-up proposed by guidance when it names a
// future time. Failures are logged and ignored.
func (l *Ledger) scheduleFollowUp(ctx context.Context, item domain.WorkItem, rec domain.InteractionRecord, g Guidance) *domain.ScheduledAction {
	if l.schedule == nil || g.ScheduledAction == nil || strings.TrimSpace(g.ScheduledAction.Action) == "" {
		return nil
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(g.ScheduledAction.Time))
	if err != nil {
		l.logger.Debug("follow-up time not usable", "work_item", item.ID, "time", g.ScheduledAction.Time)
		return nil
	}
	if !at.After(rec.Timestamp) {
		return nil
	}

	action := domain.ScheduledAction{
		ID:           domain.NewRecordID(rec.Timestamp),
		ActorID:      rec.ActorID,
		WorkItemID:   item.ID,
		WorkItemName: item.DisplayName(),
		ScheduledAt:  at,
		Action:       g.ScheduledAction.Action,
		Reason:       g.ScheduledAction.Reason,
		Status:       domain.ActionPending,
		CreatedAt:    rec.Timestamp,
	}
	if err := l.schedule.AddScheduledAction(ctx, action); err != nil {
		l.logger.Warn("follow-up scheduling failed", "work_item", item.ID, "error", err)
		return nil
	}
	return &action
}

// KPIs returns the actor's aggregate, zero-valued when nothing was logged yet.
func (l *Ledger) KPIs(ctx context.Context, actorID string) (domain.PerformanceAggregate, error) {
	if strings.TrimSpace(actorID) == "" {
		return domain.PerformanceAggregate{}, domain.Invalid("actorId", "required")
	}
	agg, _, err := l.aggregates.GetAggregate(ctx, actorID)
	if err != nil {
		return domain.PerformanceAggregate{}, fmt.Errorf("load kpis: %w", err)
	}
	agg.ActorID = actorID
	return agg, nil
}
