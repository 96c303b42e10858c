package domain

import "time"

// WorkItemStatus enumerates the visit lifecycle of a location.
type WorkItemStatus string

const (
	StatusPending   WorkItemStatus = "pending"
	StatusAttempted WorkItemStatus = "attempted"
	StatusCompleted WorkItemStatus = "completed"
)

// CompletionThreshold is the lowest outcome score that completes a work item.
const CompletionThreshold = 4

// WorkItem is a physical location eligible for a field visit.
type WorkItem struct {
	ID            string
	Name          string
	Address       string
	Category      string
	Lat           float64
	Lng           float64
	Status        WorkItemStatus
	LastVisitedAt *time.Time
	LastScore     int
	CreatedAt     time.Time
}

// Valid reports whether s is one of the known statuses.
func (s WorkItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAttempted, StatusCompleted:
		return true
	default:
		return false
	}
}

// NextStatus returns the status an item moves to after a visit scored with score.
// Completed is terminal; nothing ever returns to pending.
func NextStatus(current WorkItemStatus, score int) WorkItemStatus {
	if current == StatusCompleted {
		return StatusCompleted
	}
	if score >= CompletionThreshold {
		return StatusCompleted
	}
	return StatusAttempted
}

// DisplayName falls back to the identifier for unnamed seed rows.
func (w WorkItem) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.ID
}
