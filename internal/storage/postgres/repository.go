package postgres

import (
	"context"

	"github.com/google/uuid"

	"helphop/internal/domain"
)

type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.IncidentStatus, rescuerID string) (*domain.Incident, error)
	ListPending(ctx context.Context) ([]*domain.Incident, error)
	List(ctx context.Context, page, limit int) ([]*domain.Incident, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Incident, error)
}

type StatsRepository interface {
	CountByStatus(ctx context.Context, minutes int) (map[domain.IncidentStatus]int64, error)
}

func (p *Postgres) Incidents() IncidentRepository { return p.Incident }
func (p *Postgres) Stats() StatsRepository        { return p.Stat }
