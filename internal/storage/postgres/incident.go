package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helphop/internal/domain"
	"helphop/pkg/e"
)

const incidentColumns = `
		id,
		user_id,
		type,
		message,
		ST_Y(geo_point::geometry) AS lat,
		ST_X(geo_point::geometry) AS lng,
		distance_km,
		direction,
		status,
		rescuer_id,
		created_at`

type IncidentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentRepo(pool *pgxpool.Pool, logger *slog.Logger) *IncidentRepo {
	return &IncidentRepo{pool: pool, logger: logger}
}

func (p *IncidentRepo) Create(ctx context.Context, incident *domain.Incident) error {
	const op = "postgres.Incident.Create"

	const query = `
		INSERT INTO incidents (id, user_id, type, message, geo_point, distance_km, direction, status, rescuer_id, created_at)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7, $8, $9, $10, $11)
	`

	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}
	if incident.Status == "" {
		incident.Status = domain.IncidentPending
	}

	_, err := p.pool.Exec(ctx, query,
		incident.ID,
		incident.UserID,
		incident.Type,
		incident.Message,
		incident.Location.Lng,
		incident.Location.Lat,
		incident.DistanceKm,
		incident.Direction,
		incident.Status,
		incident.RescuerID,
		incident.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *IncidentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.Get"

	query := `SELECT` + incidentColumns + ` FROM incidents WHERE id = $1`

	inc, err := scanIncident(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return inc, nil
}

// Transition applies a guarded state change in a single UPDATE so two
// concurrent rescuers cannot both move the same incident. A zero-row
// result is disambiguated with a follow-up Get: unknown id is ErrNotFound,
// a terminal current status is ErrTerminalState.
func (p *IncidentRepo) Transition(ctx context.Context, id uuid.UUID, to domain.IncidentStatus, rescuerID string) (*domain.Incident, error) {
	const op = "postgres.Incident.Transition"

	query := `
		UPDATE incidents
		SET status = $2,
			rescuer_id = CASE WHEN $3 <> '' THEN $3 ELSE rescuer_id END
		WHERE id = $1 AND status NOT IN ('resolved', 'rejected')
		RETURNING` + incidentColumns

	inc, err := scanIncident(p.pool.QueryRow(ctx, query, id, to, rescuerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_, getErr := p.Get(ctx, id)
			return nil, disambiguateNoRows(op, getErr)
		}
		p.logger.Error("db update failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("id", id.String()),
			slog.String("to", string(to)),
		)
		return nil, e.WrapError(ctx, op, err)
	}

	return inc, nil
}

func (p *IncidentRepo) ListPending(ctx context.Context) ([]*domain.Incident, error) {
	const op = "postgres.Incident.ListPending"

	query := `SELECT` + incidentColumns + `
		FROM incidents
		WHERE status = 'pending'
		ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	return collectIncidents(ctx, op, rows, p.logger)
}

func (p *IncidentRepo) List(ctx context.Context, page, limit int) ([]*domain.Incident, int64, error) {
	const op = "postgres.Incident.List"

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	const countQuery = `SELECT COUNT(*) FROM incidents`

	var total int64
	if err := p.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		p.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	query := `SELECT` + incidentColumns + `
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := p.pool.Query(ctx, query, limit, offset)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	incidents, err := collectIncidents(ctx, op, rows, p.logger)
	if err != nil {
		return nil, 0, err
	}
	return incidents, total, nil
}

func (p *IncidentRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Incident, error) {
	const op = "postgres.Incident.ListByUser"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	query := `SELECT` + incidentColumns + `
		FROM incidents
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	return collectIncidents(ctx, op, rows, p.logger)
}

// disambiguateNoRows classifies a zero-row guarded UPDATE using the outcome
// of the follow-up Get. A row that still exists is in a terminal status; a
// missing row is not found; any other Get failure is a store error and must
// not be reported as either.
func disambiguateNoRows(op string, getErr error) error {
	switch {
	case getErr == nil:
		return fmt.Errorf("%s: %w", op, e.ErrTerminalState)
	case errors.Is(getErr, e.ErrNotFound):
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	default:
		return getErr
	}
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID,
		&inc.UserID,
		&inc.Type,
		&inc.Message,
		&inc.Location.Lat,
		&inc.Location.Lng,
		&inc.DistanceKm,
		&inc.Direction,
		&inc.Status,
		&inc.RescuerID,
		&inc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func collectIncidents(ctx context.Context, op string, rows pgx.Rows, logger *slog.Logger) ([]*domain.Incident, error) {
	var incidents []*domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return incidents, nil
}
