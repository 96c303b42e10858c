package usecase

import (
	"context"
	"errors"
	"strings"

	"FieldOps/internal/domain"
	"FieldOps/internal/ports"
)

// Preferences are the per-actor settings the engine reads.
type Preferences struct {
	DigestEnabled bool
}

// PreferenceService reads and updates actor preferences.
type PreferenceService struct {
	actors ports.ActorRepository
}

// NewPreferenceService constructs the service.
func NewPreferenceService(actors ports.ActorRepository) *PreferenceService {
	return &PreferenceService{actors: actors}
}

// Get returns the actor's preferences; unknown actors get the defaults.
func (s *PreferenceService) Get(ctx context.Context, actorID string) (Preferences, error) {
	if strings.TrimSpace(actorID) == "" {
		return Preferences{}, domain.Invalid("actorId", "required")
	}
	actor, err := s.actors.GetActor(ctx, actorID)
	if errors.Is(err, domain.ErrNotFound) {
		return Preferences{DigestEnabled: true}, nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return Preferences{DigestEnabled: actor.DigestEnabled}, nil
}

// SetDigestEnabled toggles the daily digest for the actor.
func (s *PreferenceService) SetDigestEnabled(ctx context.Context, actorID string, enabled bool) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.Invalid("actorId", "required")
	}
	return s.actors.SetDigestEnabled(ctx, actorID, enabled)
}
