// Package insight holds the pure signal detectors that feed the daily
// digest. Every detector reads a Snapshot and never touches storage.
package insight

import (
	"time"

	"FieldOps/internal/domain"
	"FieldOps/internal/geo"
)

// Snapshot is everything the detectors may look at for one actor.
type Snapshot struct {
	ActorID   string
	ActorName string
	Now       time.Time
	// Location is the timezone used for calendar days and hours of day.
	Location *time.Location
	Position geo.Point

	// PendingItems is the store-wide pending pool, in store order.
	PendingItems []domain.WorkItem
	// ScheduledToday holds the actor's pending actions for the current day.
	ScheduledToday []domain.ScheduledAction
	// Recent holds the actor's interactions from the trailing 7 days, newest first.
	Recent []domain.InteractionRecord
	// Items resolves every work item referenced by Recent or PendingItems.
	Items          map[string]domain.WorkItem
	CompletedCount int
}

// RecentWindow is how far back Recent reaches.
const RecentWindow = 7 * 24 * time.Hour

func (s Snapshot) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s Snapshot) item(id string) (domain.WorkItem, bool) {
	item, ok := s.Items[id]
	return item, ok
}

func hoursSince(now, then time.Time) int {
	return int(now.Sub(then).Hours() + 0.5)
}
