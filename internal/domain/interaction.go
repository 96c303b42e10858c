package domain

import "time"

// Outcome score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// DefaultOutcome labels a visit when the caller sends none.
const DefaultOutcome = "visited"

// InteractionRecord is the immutable log of one visit.
type InteractionRecord struct {
	ID          string
	WorkItemID  string
	ActorID     string
	Timestamp   time.Time
	OpeningLine string
	Score       int
	Note        string
	MediaRefs   []string
	Outcome     string
}
