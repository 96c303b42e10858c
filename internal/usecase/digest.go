package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"FieldOps/internal/domain"
	"FieldOps/internal/insight"
	"FieldOps/internal/narrative"
	"FieldOps/internal/ports"
)

// DigestDeps wires the digest orchestrator.
type DigestDeps struct {
	Digests   ports.DigestRepository
	Actors    ports.ActorRepository
	Context   *ContextGatherer
	Generator *narrative.Generator
	Notifiers []ports.Notifier
	Location  *time.Location
	// Concurrency bounds parallel generation in RunDaily.
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// DigestService produces at most one digest per actor per calendar day.
type DigestService struct {
	digests     ports.DigestRepository
	actors      ports.ActorRepository
	context     *ContextGatherer
	generator   *narrative.Generator
	notifiers   []ports.Notifier
	location    *time.Location
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewDigestService constructs the orchestrator.
func NewDigestService(deps DigestDeps) *DigestService {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DigestService{
		digests:     deps.Digests,
		actors:      deps.Actors,
		context:     deps.Context,
		generator:   deps.Generator,
		notifiers:   deps.Notifiers,
		location:    locationOrUTC(deps.Location),
		concurrency: concurrency,
		logger:      loggerOrDiscard(deps.Logger),
		now:         clockOrNow(deps.Now),
	}
}

// DigestView is a digest as returned to a reader.
type DigestView struct {
	Record       domain.DigestRecord
	GeneratedNow bool
}

// Today returns the calendar day of now in the digest timezone.
func (s *DigestService) Today(now time.Time) string {
	return now.In(s.location).Format(domain.DateLayout)
}

// GetDailyDigest returns today's digest, generating it when absent. A stored
// digest is returned unchanged; the first read stamps it viewed.
func (s *DigestService) GetDailyDigest(ctx context.Context, actorID string) (DigestView, error) {
	if strings.TrimSpace(actorID) == "" {
		return DigestView{}, domain.Invalid("actorId", "required")
	}

	now := s.now()
	date := s.Today(now)

	rec, err := s.digests.GetDigest(ctx, actorID, date)
	switch {
	case err == nil:
		if rec.ViewedAt == nil {
			if err := s.digests.MarkDigestViewed(ctx, actorID, date, now); err != nil {
				s.logger.Warn("mark digest viewed failed", "actor", actorID, "date", date, "error", err)
			}
		}
		return DigestView{Record: rec}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return DigestView{}, fmt.Errorf("load digest: %w", err)
	}

	s.logger.Info("no digest stored, generating on demand", "actor", actorID, "date", date)
	rec, created, err := s.Generate(ctx, actorID, now)
	if err != nil {
		return DigestView{}, err
	}
	return DigestView{Record: rec, GeneratedNow: created}, nil
}

// Generate builds and stores the digest for actorID's current day unless one
// exists. It returns the stored record and whether this call created it.
// Narrative failures store the fallback digest; only store failures are returned.
func (s *DigestService) Generate(ctx context.Context, actorID string, now time.Time) (domain.DigestRecord, bool, error) {
	date := s.Today(now)

	snap, err := s.context.Gather(ctx, actorID, now)
	if err != nil {
		return domain.DigestRecord{}, false, err
	}
	signals := insight.Detect(snap)

	res := narrative.Generate(ctx, s.generator, narrative.Request[domain.DigestContent]{
		Kind:    domain.KindDigest,
		ActorID: actorID,
		Subject: domain.DigestID(actorID, date),
		Prompt:  digestPrompt(snap, signals),
		Validate: func(c domain.DigestContent) error {
			return narrative.Require(
				narrative.Required("greeting", c.Greeting),
				narrative.Required("closingMessage", c.ClosingMessage),
			)
		},
		Fallback: func() domain.DigestContent { return fallbackDigest(snap, signals) },
	})

	created, err := s.digests.InsertDigestIfAbsent(ctx, domain.DigestRecord{
		ActorID:     actorID,
		Date:        date,
		Content:     res.Value,
		Fallback:    res.Fallback,
		GeneratedAt: now,
	})
	if err != nil {
		return domain.DigestRecord{}, false, fmt.Errorf("store digest: %w", err)
	}

	stored, err := s.digests.GetDigest(ctx, actorID, date)
	if err != nil {
		return domain.DigestRecord{}, false, fmt.Errorf("reload digest: %w", err)
	}

	s.logger.Info("digest ready",
		"actor", actorID,
		"date", date,
		"created", created,
		"fallback", stored.Fallback,
		"time_sensitive", len(signals.TimeSensitive),
		"hot_leads", len(signals.HotLeads),
	)
	return stored, created, nil
}

// RunSummary counts what a scheduled run did.
type RunSummary struct {
	Generated int
	Existing  int
	Skipped   int
	Failed    int
}

// RunDaily generates today's digest for every actor with digests enabled.
// A failing actor is logged and counted; the batch always continues.
func (s *DigestService) RunDaily(ctx context.Context, trigger time.Time) (RunSummary, error) {
	actors, err := s.actors.ListActors(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("list actors: %w", err)
	}

	var (
		mu      sync.Mutex
		summary RunSummary
	)
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	var eg errgroup.Group
	eg.SetLimit(s.concurrency)
	for _, actor := range actors {
		if !actor.DigestEnabled {
			s.logger.Debug("digest disabled, skipping", "actor", actor.ID)
			count(&summary.Skipped)
			continue
		}

		eg.Go(func() error {
			rec, created, err := s.Generate(ctx, actor.ID, trigger)
			if err != nil {
				s.logger.Error("digest generation failed", "actor", actor.ID, "error", err)
				count(&summary.Failed)
				return nil
			}
			if !created {
				count(&summary.Existing)
				return nil
			}
			count(&summary.Generated)
			s.push(ctx, actor, rec)
			return nil
		})
	}
	_ = eg.Wait()

	s.logger.Info("daily digest run complete",
		"generated", summary.Generated,
		"existing", summary.Existing,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *DigestService) push(ctx context.Context, actor domain.Actor, rec domain.DigestRecord) {
	if len(s.notifiers) == 0 {
		return
	}
	message := RenderDigest(actor, rec)
	for _, n := range s.notifiers {
		if err := n.PublishDigest(ctx, message); err != nil {
			s.logger.Warn("digest push failed", "actor", actor.ID, "error", err)
		}
	}
}

// RenderDigest formats a digest as plain text for push channels.
func RenderDigest(actor domain.Actor, rec domain.DigestRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily digest for %s, %s\n\n%s\n", actor.GreetingName(), rec.Date, rec.Content.Greeting)
	if rec.Content.Summary != "" {
		fmt.Fprintf(&b, "%s\n", rec.Content.Summary)
	}

	sections := []struct {
		title   string
		entries []domain.DigestEntry
	}{
		{"Time-sensitive", rec.Content.TimeSensitive},
		{"Hot leads", rec.Content.HotLeads},
		{"Ideas", rec.Content.Ideas},
		{"Patterns", rec.Content.Patterns},
	}
	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", section.title)
		for _, e := range section.entries {
			fmt.Fprintf(&b, "- %s: %s\n", e.Title, e.Message)
			if e.Suggestion != "" {
				fmt.Fprintf(&b, "  %s\n", e.Suggestion)
			}
		}
	}

	if rec.Content.ClosingMessage != "" {
		fmt.Fprintf(&b, "\n%s\n", rec.Content.ClosingMessage)
	}
	return b.String()
}

// Dismiss hides the digest of date, today when date is empty. Repeated
// dismissals keep the first timestamp.
func (s *DigestService) Dismiss(ctx context.Context, actorID, date string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.Invalid("actorId", "required")
	}
	now := s.now()
	if date == "" {
		date = s.Today(now)
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.Invalid("date", "expected YYYY-MM-DD, got %q", date)
	}
	return s.digests.DismissDigest(ctx, actorID, date, now)
}

// FeedbackRequest is the actor's reaction to a digest.
type FeedbackRequest struct {
	ActorID     string                `yaml:"actorId"`
	DigestID    string                `yaml:"digestId"`
	Items       []domain.ItemFeedback `yaml:"items"`
	Helpfulness string                `yaml:"helpfulness"`
	Comments    string                `yaml:"comments"`
}

// RecordFeedback stores the feedback and returns its id.
func (s *DigestService) RecordFeedback(ctx context.Context, req FeedbackRequest) (string, error) {
	if strings.TrimSpace(req.ActorID) == "" {
		return "", domain.Invalid("actorId", "required")
	}
	if strings.TrimSpace(req.DigestID) == "" {
		return "", domain.Invalid("digestId", "required")
	}
	for i, item := range req.Items {
		if item.Score < 0 || item.Score > domain.MaxScore {
			return "", domain.Invalid(fmt.Sprintf("items[%d].efficacyScore", i), "must be between 0 and %d", domain.MaxScore)
		}
	}

	fb := domain.DigestFeedback{
		ID:          domain.NewEventID(),
		DigestID:    req.DigestID,
		ActorID:     req.ActorID,
		Items:       req.Items,
		Helpfulness: req.Helpfulness,
		Comments:    req.Comments,
		CreatedAt:   s.now(),
	}
	if err := s.digests.SaveFeedback(ctx, fb); err != nil {
		return "", fmt.Errorf("record feedback: %w", err)
	}
	s.logger.Info("digest feedback recorded", "actor", req.ActorID, "digest", req.DigestID, "items", len(req.Items))
	return fb.ID, nil
}
