package ports

import (
	"context"
	"time"

	"FieldOps/internal/domain"
)

// WorkItemRepository reads and transitions locations.
type WorkItemRepository interface {
	// ListWorkItems returns items with the given status in store order.
	ListWorkItems(ctx context.Context, status domain.WorkItemStatus) ([]domain.WorkItem, error)
	GetWorkItem(ctx context.Context, id string) (domain.WorkItem, error)
	GetWorkItems(ctx context.Context, ids []string) (map[string]domain.WorkItem, error)
	CountWorkItems(ctx context.Context, status domain.WorkItemStatus) (int, error)
	RecordVisit(ctx context.Context, id string, status domain.WorkItemStatus, visitedAt time.Time, score int) error
	UpsertWorkItem(ctx context.Context, item domain.WorkItem) error
}

// InteractionRepository appends and queries immutable visit records.
type InteractionRepository interface {
	AppendInteraction(ctx context.Context, rec domain.InteractionRecord) error
	// ListActorInteractions returns the actor's records since the given time, newest first.
	ListActorInteractions(ctx context.Context, actorID string, since time.Time) ([]domain.InteractionRecord, error)
	// ListItemInteractions returns the latest records for a work item, newest first.
	ListItemInteractions(ctx context.Context, workItemID string, limit int) ([]domain.InteractionRecord, error)
}

// AggregateRepository stores per-actor performance aggregates.
// Counter deltas are atomic; the mean is a plain overwrite.
type AggregateRepository interface {
	GetAggregate(ctx context.Context, actorID string) (domain.PerformanceAggregate, bool, error)
	ApplyAggregate(ctx context.Context, update domain.AggregateUpdate) error
	SetPendingCount(ctx context.Context, actorID string, pending int) error
}

// ScheduleRepository manages actor commitments.
type ScheduleRepository interface {
	ListScheduledActions(ctx context.Context, actorID string, status domain.ActionStatus, from, to time.Time) ([]domain.ScheduledAction, error)
	AddScheduledAction(ctx context.Context, action domain.ScheduledAction) error
	CompleteScheduledAction(ctx context.Context, actorID, actionID string, at time.Time) error
}

// ActorRepository stores agents, positions and digest preferences.
type ActorRepository interface {
	GetActor(ctx context.Context, id string) (domain.Actor, error)
	ListActors(ctx context.Context) ([]domain.Actor, error)
	UpsertActor(ctx context.Context, actor domain.Actor) error
	UpdatePosition(ctx context.Context, id string, lat, lng float64, at time.Time) error
	SetDigestEnabled(ctx context.Context, id string, enabled bool) error
}

// DigestRepository persists one digest per actor per day.
type DigestRepository interface {
	GetDigest(ctx context.Context, actorID, date string) (domain.DigestRecord, error)
	// InsertDigestIfAbsent stores rec unless a digest for the same day exists.
	InsertDigestIfAbsent(ctx context.Context, rec domain.DigestRecord) (bool, error)
	MarkDigestViewed(ctx context.Context, actorID, date string, at time.Time) error
	DismissDigest(ctx context.Context, actorID, date string, at time.Time) error
	SaveFeedback(ctx context.Context, feedback domain.DigestFeedback) error
}

// CacheRepository is a persistent key/value response cache without eviction.
type CacheRepository interface {
	GetCached(ctx context.Context, key string) (value string, storedAt time.Time, found bool, err error)
	SetCached(ctx context.Context, key, value string, at time.Time) error
}

// UsageRepository records text-service calls for auditing and rate limiting.
type UsageRepository interface {
	AppendUsage(ctx context.Context, rec domain.UsageRecord) error
	CountUsageSince(ctx context.Context, actorID string, since time.Time) (int, error)
}

// TextGenerator is the external completion service.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier pushes digests to Telegram, Slack or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
