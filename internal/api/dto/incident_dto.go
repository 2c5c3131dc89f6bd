package dto

import (
	"github.com/spec-kit/incident-intake/internal/domain"
)

// WebhookResponse is returned for an accepted webhook delivery.
type WebhookResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Incident *domain.Incident `json:"incident"`
}

// IncidentListResponse is returned by the listing endpoint.
type IncidentListResponse struct {
	Success   bool              `json:"success"`
	Incidents []domain.Incident `json:"incidents"`
}

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
