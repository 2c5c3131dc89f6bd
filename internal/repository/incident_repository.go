package repository

import (
	"context"

	"github.com/spec-kit/incident-intake/internal/domain"
)

// IncidentRepository is an append-only incident log.
type IncidentRepository interface {
	// Append assigns the incident's ID and persists it.
	Append(ctx context.Context, incident *domain.Incident) error
	// ListAll returns every stored incident in insertion order.
	ListAll(ctx context.Context) ([]domain.Incident, error)
}
