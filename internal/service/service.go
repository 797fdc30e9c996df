package service

import (
	"context"

	"github.com/google/uuid"

	"helphop/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// IntakeService accepts SOS reports from the field.
type IntakeService interface {
	Submit(ctx context.Context, req domain.SubmitSOSRequest) (domain.SubmitSOSResult, error)
}

// LifecycleService moves stored incidents through the rescue workflow.
type LifecycleService interface {
	AssignRescuer(ctx context.Context, id uuid.UUID, rescuerID string) (*domain.Incident, error)
	Accept(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Reject(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Resolve(ctx context.Context, id uuid.UUID) (*domain.Incident, error)

	ListPending(ctx context.Context) ([]*domain.Incident, error)
	List(ctx context.Context, page, limit int) ([]*domain.Incident, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Incident, error)
}

type StatsService interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.IncidentStats, error)
}

// IncidentRepository is the single source of truth for incidents.
// Transition must be an atomic read-modify-write: it fails with
// e.ErrNotFound for an unknown id and e.ErrTerminalState when the current
// status is terminal, and never creates a record.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.IncidentStatus, rescuerID string) (*domain.Incident, error)
	ListPending(ctx context.Context) ([]*domain.Incident, error)
	List(ctx context.Context, page, limit int) ([]*domain.Incident, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Incident, error)
}

// Publisher hands an accepted incident off to the rescuer-facing channel.
// Best effort: callers log a failed handoff and move on.
type Publisher interface {
	Broadcast(ctx context.Context, incident *domain.Incident) error
}

type StatsRepository interface {
	CountByStatus(ctx context.Context, minutes int) (map[domain.IncidentStatus]int64, error)
}

type Service struct {
	Intake    IntakeService
	Lifecycle LifecycleService
	Stats     StatsService
}

func NewService(intake IntakeService, lifecycle LifecycleService, stats StatsService) *Service {
	return &Service{
		Intake:    intake,
		Lifecycle: lifecycle,
		Stats:     stats,
	}
}
