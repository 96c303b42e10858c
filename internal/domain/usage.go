package domain

import "time"

// NarrativeKind names the call site of a narrative request.
type NarrativeKind string

const (
	KindOpener   NarrativeKind = "opener"
	KindIntel    NarrativeKind = "intel"
	KindFollowUp NarrativeKind = "follow_up"
	KindDigest   NarrativeKind = "digest"
)

// UsageRecord is appended for every successful call to the text service.
type UsageRecord struct {
	ID       string
	ActorID  string
	Kind     NarrativeKind
	Subject  string
	Provider string
	At       time.Time
}
