package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-intake/internal/domain"
)

// Querier is the part of *pgxpool.Pool the postgres store uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresIncidentRepository struct {
	pool Querier
}

// NewPostgresIncidentRepository instantiates repository.
func NewPostgresIncidentRepository(pool Querier) IncidentRepository {
	return &postgresIncidentRepository{pool: pool}
}

func (r *postgresIncidentRepository) Append(ctx context.Context, incident *domain.Incident) error {
	payload, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("encode incident: %w", err)
	}

	const query = `
        INSERT INTO incidents (payload, created_at)
        VALUES ($1, $2)
        RETURNING id`
	return r.pool.QueryRow(ctx, query, payload, incident.CreatedAt.Time).Scan(&incident.ID)
}

func (r *postgresIncidentRepository) ListAll(ctx context.Context) ([]domain.Incident, error) {
	const query = `SELECT id, payload, created_at FROM incidents ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

// scanIncidents trusts the id and created_at columns over the payload copy.
func scanIncidents(rows pgx.Rows) ([]domain.Incident, error) {
	result := []domain.Incident{}
	for rows.Next() {
		var (
			incident  domain.Incident
			id        int64
			payload   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &payload, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &incident); err != nil {
			return nil, fmt.Errorf("decode incident %d: %w", id, err)
		}
		incident.ID = id
		incident.CreatedAt = domain.NewTimestamp(createdAt)
		result = append(result, incident)
	}
	return result, rows.Err()
}
