package domain

import "time"

// PerformanceAggregate holds per-actor running statistics derived from interactions.
type PerformanceAggregate struct {
	ActorID           string
	TotalPending      int
	TotalCompleted    int
	TotalAttempted    int
	MeanScore         float64
	TotalInteractions int
	LastActivityAt    *time.Time
}

// AggregateUpdate is the write produced by one logged interaction.
// Counter deltas are applied atomically by the store; MeanScore and
// TotalInteractions overwrite whatever is stored.
type AggregateUpdate struct {
	ActorID           string
	CompletedDelta    int
	AttemptedDelta    int
	MeanScore         float64
	TotalInteractions int
	At                time.Time
}

// Apply folds score into the aggregate using the incremental mean
// mean' = (mean*(n-1) + score) / n with n the post-increment interaction count.
func (p PerformanceAggregate) Apply(score int, at time.Time) AggregateUpdate {
	n := p.TotalInteractions + 1
	mean := (p.MeanScore*float64(n-1) + float64(score)) / float64(n)

	update := AggregateUpdate{
		ActorID:           p.ActorID,
		MeanScore:         mean,
		TotalInteractions: n,
		At:                at,
	}
	if score >= CompletionThreshold {
		update.CompletedDelta = 1
	} else {
		update.AttemptedDelta = 1
	}
	return update
}
