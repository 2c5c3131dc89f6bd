package events

import (
	"time"

	"github.com/spec-kit/incident-intake/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated EventType = "incident_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID int64       `json:"incident_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload carries the created incident and whether a store accepted it.
type IncidentCreatedPayload struct {
	Incident  domain.Incident `json:"incident"`
	Persisted bool            `json:"persisted"`
}
