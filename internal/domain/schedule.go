package domain

import "time"

// ActionStatus enumerates scheduled action states.
type ActionStatus string

const (
	ActionPending ActionStatus = "pending"
	ActionDone    ActionStatus = "done"
)

// ScheduledAction is an actor-owned commitment to revisit a work item.
type ScheduledAction struct {
	ID           string
	ActorID      string
	WorkItemID   string
	WorkItemName string
	ScheduledAt  time.Time
	Action       string
	Reason       string
	Status       ActionStatus
	CreatedAt    time.Time
	CompletedAt  *time.Time
}
