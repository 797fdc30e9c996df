package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"helphop/internal/domain"
	"helphop/pkg/e"
)

type lifecycleService struct {
	repo   IncidentRepository
	logger *slog.Logger
}

func NewLifecycleService(repo IncidentRepository, logger *slog.Logger) LifecycleService {
	return &lifecycleService{repo: repo, logger: logger}
}

// transition is the single path for every state change. The repository
// enforces atomicity and terminality; rescuerID is set only for the
// broadcasted transition.
func (s *lifecycleService) transition(ctx context.Context, id uuid.UUID, to domain.IncidentStatus, rescuerID string) (*domain.Incident, error) {
	inc, err := s.repo.Transition(ctx, id, to, rescuerID)
	if err != nil {
		s.logger.Warn("transition failed",
			slog.String("incident_id", id.String()),
			slog.String("to", string(to)),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.Info("incident transitioned",
		slog.String("incident_id", id.String()),
		slog.String("status", string(inc.Status)),
	)
	return inc, nil
}

func (s *lifecycleService) AssignRescuer(ctx context.Context, id uuid.UUID, rescuerID string) (*domain.Incident, error) {
	if rescuerID == "" {
		return nil, fmt.Errorf("service.AssignRescuer: %w", e.ErrInvalidInput)
	}
	return s.transition(ctx, id, domain.IncidentBroadcasted, rescuerID)
}

func (s *lifecycleService) Accept(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.transition(ctx, id, domain.IncidentAccepted, "")
}

func (s *lifecycleService) Reject(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.transition(ctx, id, domain.IncidentRejected, "")
}

func (s *lifecycleService) Resolve(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.transition(ctx, id, domain.IncidentResolved, "")
}

func (s *lifecycleService) ListPending(ctx context.Context) ([]*domain.Incident, error) {
	return s.repo.ListPending(ctx)
}

func (s *lifecycleService) List(ctx context.Context, page, limit int) ([]*domain.Incident, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *lifecycleService) ListByUser(ctx context.Context, userID string) ([]*domain.Incident, error) {
	if userID == "" {
		return nil, fmt.Errorf("service.ListByUser: %w", e.ErrMissingUserID)
	}
	return s.repo.ListByUser(ctx, userID)
}
