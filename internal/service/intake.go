package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"helphop/internal/domain"
	"helphop/internal/geo"
	"helphop/pkg/e"
)

type intakeService struct {
	repo      IncidentRepository
	publisher Publisher
	logger    *slog.Logger
	center    geo.Point
	radiusKm  float64
}

func NewIntakeService(
	repo IncidentRepository,
	publisher Publisher,
	logger *slog.Logger,
	center geo.Point,
	radiusKm float64,
) IntakeService {
	if radiusKm <= 0 {
		radiusKm = 50
	}
	return &intakeService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		center:    center,
		radiusKm:  radiusKm,
	}
}

// Submit validates the report, applies the radius policy against the rescue
// center and, on acceptance, persists the incident and hands it to the
// publisher. The publisher handoff never affects the result.
func (s *intakeService) Submit(ctx context.Context, req domain.SubmitSOSRequest) (domain.SubmitSOSResult, error) {
	if req.UserID == "" {
		return domain.SubmitSOSResult{}, fmt.Errorf("service.Submit: %w", e.ErrMissingUserID)
	}
	if req.Location == nil {
		s.logger.Warn("missing location", slog.String("user_id", req.UserID))
		return domain.SubmitSOSResult{}, fmt.Errorf("service.Submit: %w", e.ErrInvalidCoordinates)
	}
	loc := *req.Location

	s.logger.Info("sos submit START",
		slog.String("user_id", req.UserID),
		slog.Float64("lat", loc.Lat),
		slog.Float64("lng", loc.Lng),
	)

	if loc.Lat < -90 || loc.Lat > 90 ||
		loc.Lng < -180 || loc.Lng > 180 {
		s.logger.Warn("invalid coordinates",
			slog.String("user_id", req.UserID),
			slog.Float64("lat", loc.Lat),
			slog.Float64("lng", loc.Lng),
		)
		return domain.SubmitSOSResult{}, fmt.Errorf("service.Submit: %w", e.ErrInvalidCoordinates)
	}

	distance := geo.DistanceKm(loc, s.center)

	if distance > s.radiusKm {
		s.logger.Info("sos rejected by radius policy",
			slog.String("user_id", req.UserID),
			slog.Float64("distance_km", distance),
			slog.Float64("radius_km", s.radiusKm),
		)
		return domain.SubmitSOSResult{
			Rejected:   true,
			Reason:     "outside rescue radius",
			DistanceKm: distance,
		}, nil
	}

	bearing := geo.BearingDegrees(loc, s.center)
	direction := geo.DirectionLabel(bearing)

	incident := &domain.Incident{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Type:       req.Type,
		Message:    req.Message,
		Location:   loc,
		DistanceKm: distance,
		Direction:  direction,
		Status:     domain.IncidentPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		s.logger.Error("repo.Create failed", slog.Any("error", err))
		return domain.SubmitSOSResult{}, err
	}

	// fire-and-forget: the broadcast channel owns delivery and retries
	if err := s.publisher.Broadcast(ctx, incident); err != nil {
		s.logger.Error("broadcast handoff failed",
			slog.String("incident_id", incident.ID.String()),
			slog.Any("error", err),
		)
	} else {
		s.logger.Info("broadcast enqueued", slog.String("incident_id", incident.ID.String()))
	}

	s.logger.Info("sos submit END",
		slog.String("incident_id", incident.ID.String()),
		slog.Float64("distance_km", distance),
		slog.String("direction", direction),
	)

	return domain.SubmitSOSResult{
		DistanceKm: distance,
		Direction:  direction,
		Incident:   incident,
	}, nil
}
