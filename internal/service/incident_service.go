package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-intake/internal/domain"
	"github.com/spec-kit/incident-intake/internal/events"
	"github.com/spec-kit/incident-intake/internal/repository"
)

// ErrListingDisabled is returned by List when no store is configured.
var ErrListingDisabled = errors.New("incident listing not available")

// IncidentService coordinates incident intake.
type IncidentService struct {
	normalizer *Normalizer
	incidents  repository.IncidentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IncidentDependencies bundles collaborators for the incident service.
// A nil IncidentRepo yields an echo-only service.
type IncidentDependencies struct {
	Normalizer   *Normalizer
	IncidentRepo repository.IncidentRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		normalizer: deps.Normalizer,
		incidents:  deps.IncidentRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Persistent reports whether ingested incidents are stored.
func (s *IncidentService) Persistent() bool {
	return s.incidents != nil
}

// Ingest normalizes payload and, when a store is configured, appends it.
func (s *IncidentService) Ingest(ctx context.Context, payload map[string]any) (*domain.Incident, error) {
	incident := s.normalizer.Normalize(payload)

	if s.incidents != nil {
		if err := s.incidents.Append(ctx, incident); err != nil {
			return nil, fmt.Errorf("append incident: %w", err)
		}
	}

	s.logger.Info("incident ingested",
		zap.Int64("incident_id", incident.ID),
		zap.Any("ticket_number", incident.TicketNumber),
		zap.Bool("persisted", s.incidents != nil))

	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentCreated,
		IncidentID: incident.ID,
		Payload: events.IncidentCreatedPayload{
			Incident:  *incident,
			Persisted: s.incidents != nil,
		},
	})
	return incident, nil
}

// List returns every stored incident.
func (s *IncidentService) List(ctx context.Context) ([]domain.Incident, error) {
	if s.incidents == nil {
		return nil, ErrListingDisabled
	}
	incidents, err := s.incidents.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

func (s *IncidentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("incident_id", event.IncidentID),
			zap.Error(err))
	}
}
