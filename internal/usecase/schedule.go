package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FieldOps/internal/domain"
	"FieldOps/internal/ports"
)

// ScheduleService exposes an actor's pending commitments.
type ScheduleService struct {
	schedule ports.ScheduleRepository
	now      func() time.Time
}

// NewScheduleService constructs the service.
func NewScheduleService(schedule ports.ScheduleRepository, now func() time.Time) *ScheduleService {
	return &ScheduleService{schedule: schedule, now: clockOrNow(now)}
}

// Upcoming lists every pending action of the actor ordered by time.
func (s *ScheduleService) Upcoming(ctx context.Context, actorID string) ([]domain.ScheduledAction, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.Invalid("actorId", "required")
	}
	actions, err := s.schedule.ListScheduledActions(ctx, actorID, domain.ActionPending, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list upcoming actions: %w", err)
	}
	return actions, nil
}

// Complete marks one of the actor's actions done.
func (s *ScheduleService) Complete(ctx context.Context, actorID, actionID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.Invalid("actorId", "required")
	}
	if strings.TrimSpace(actionID) == "" {
		return domain.Invalid("actionId", "required")
	}
	return s.schedule.CompleteScheduledAction(ctx, actorID, actionID, s.now())
}
