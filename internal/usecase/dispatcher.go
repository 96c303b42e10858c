package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"FieldOps/internal/domain"
	"FieldOps/internal/geo"
	"FieldOps/internal/narrative"
	"FieldOps/internal/ports"
)

// NoneAvailableMessage accompanies an empty pending pool.
const NoneAvailableMessage = "No pending work items found. Great job!"

// DispatcherDeps wires the dispatcher collaborators.
type DispatcherDeps struct {
	WorkItems ports.WorkItemRepository
	Actors    ports.ActorRepository
	Generator *narrative.Generator
	Logger    *slog.Logger
	Now       func() time.Time
}

// Dispatcher hands out the nearest pending work item.
//
// The pending pool is global. Two actors dispatching at the same moment can
// both receive the same item; nothing claims it until an interaction is logged.
type Dispatcher struct {
	workItems ports.WorkItemRepository
	actors    ports.ActorRepository
	generator *narrative.Generator
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher constructs the dispatch use case.
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	return &Dispatcher{
		workItems: deps.WorkItems,
		actors:    deps.Actors,
		generator: deps.Generator,
		logger:    loggerOrDiscard(deps.Logger),
		now:       clockOrNow(deps.Now),
	}
}

type openerResponse struct {
	OpeningLine string `json:"openingLine"`
}

// NextMission assigns the pending item nearest to (lat, lng) and attaches an
// opening line. An empty pool yields NoneAvailable, not an error.
func (d *Dispatcher) NextMission(ctx context.Context, actorID string, lat, lng float64) (domain.Assignment, error) {
	if strings.TrimSpace(actorID) == "" {
		return domain.Assignment{}, domain.Invalid("actorId", "required")
	}
	if !geo.ValidLatLng(lat, lng) {
		return domain.Assignment{}, domain.Invalid("position", "latitude must be in [-90,90] and longitude in [-180,180], got (%v, %v)", lat, lng)
	}

	now := d.now()
	if d.actors != nil {
		if err := d.actors.UpdatePosition(ctx, actorID, lat, lng, now); err != nil {
			d.logger.Warn("position update failed", "actor", actorID, "error", err)
		}
	}

	pending, err := d.workItems.ListWorkItems(ctx, domain.StatusPending)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("load pending work items: %w", err)
	}
	if len(pending) == 0 {
		d.logger.Info("pending pool empty", "actor", actorID)
		return domain.Assignment{NoneAvailable: true, Message: NoneAvailableMessage}, nil
	}

	item, km := Nearest(geo.Point{Lat: lat, Lng: lng}, pending)

	res := narrative.Generate(ctx, d.generator, narrative.Request[openerResponse]{
		Kind:     domain.KindOpener,
		ActorID:  actorID,
		Subject:  item.ID,
		CacheKey: narrative.SubjectKey("opener", item.ID),
		Prompt:   openerPrompt(item),
		Validate: func(r openerResponse) error {
			return narrative.Require(narrative.Required("openingLine", r.OpeningLine))
		},
		Fallback: func() openerResponse {
			return openerResponse{OpeningLine: fallbackOpener(item)}
		},
	})

	d.logger.Info("mission assigned",
		"actor", actorID,
		"work_item", item.ID,
		"distance_km", km,
		"fallback", res.Fallback,
	)

	return domain.Assignment{
		Mission: &domain.Mission{
			Item:         item,
			OpeningLine:  res.Value.OpeningLine,
			Fallback:     res.Fallback,
			DistanceKm:   km,
			DistanceMile: km * domain.KmToMiles,
		},
	}, nil
}

// Nearest returns the candidate closest to from. The first of several
// equidistant candidates wins. candidates must not be empty.
func Nearest(from geo.Point, candidates []domain.WorkItem) (domain.WorkItem, float64) {
	best := -1
	shortest := math.Inf(1)
	for i, item := range candidates {
		km := geo.DistanceKm(from, geo.Point{Lat: item.Lat, Lng: item.Lng})
		if km < shortest {
			best, shortest = i, km
		}
	}
	if best < 0 {
		return candidates[0], geo.DistanceKm(from, geo.Point{Lat: candidates[0].Lat, Lng: candidates[0].Lng})
	}
	return candidates[best], shortest
}

// Intel is the pre-visit briefing for a work item.
type Intel struct {
	Briefing        string   `json:"briefing"`
	LikelyEquipment []string `json:"likelyEquipment"`
	PainPoints      []string `json:"painPoints"`
	SuggestedOpener string   `json:"suggestedOpener"`
}

// IntelResult carries the briefing and how it was produced.
type IntelResult struct {
	Item  domain.WorkItem
	Intel Intel
	narrative.Outcome
}

// MissionIntel prepares a briefing before the actor visits workItemID.
func (d *Dispatcher) MissionIntel(ctx context.Context, actorID, workItemID string) (IntelResult, error) {
	if strings.TrimSpace(actorID) == "" {
		return IntelResult{}, domain.Invalid("actorId", "required")
	}
	if strings.TrimSpace(workItemID) == "" {
		return IntelResult{}, domain.Invalid("workItemId", "required")
	}

	item, err := d.workItems.GetWorkItem(ctx, workItemID)
	if err != nil {
		return IntelResult{}, err
	}

	res := narrative.Generate(ctx, d.generator, narrative.Request[Intel]{
		Kind:     domain.KindIntel,
		ActorID:  actorID,
		Subject:  item.ID,
		CacheKey: narrative.SubjectKey("intel", item.ID),
		Prompt:   intelPrompt(item),
		Validate: func(in Intel) error {
			return narrative.Require(
				narrative.Required("briefing", in.Briefing),
				narrative.Required("suggestedOpener", in.SuggestedOpener),
			)
		},
		Fallback: func() Intel { return fallbackIntel(item) },
	})

	return IntelResult{Item: item, Intel: res.Value, Outcome: res.Outcome}, nil
}
