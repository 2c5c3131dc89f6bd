package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-intake/internal/api/dto"
	"github.com/spec-kit/incident-intake/internal/service"
	apperrors "github.com/spec-kit/incident-intake/pkg/util"
)

const incidentReceivedMessage = "Incident received"

// IncidentsHandler serves the webhook and listing endpoints.
type IncidentsHandler struct {
	service *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidentService *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{service: incidentService}
}

// Receive POST /api/webhook/casos.
func (h *IncidentsHandler) Receive(c *fiber.Ctx) error {
	payload, err := service.DecodePayload(c.Body())
	if err != nil {
		return apperrors.NewMalformedBody(err)
	}

	incident, err := h.service.Ingest(c.UserContext(), payload)
	if err != nil {
		return apperrors.NewStoreWriteError(err)
	}
	return c.JSON(dto.WebhookResponse{
		Success:  true,
		Message:  incidentReceivedMessage,
		Incident: incident,
	})
}

// List GET /api/incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	incidents, err := h.service.List(c.UserContext())
	if errors.Is(err, service.ErrListingDisabled) {
		return apperrors.NewNotFound("route not found")
	}
	if err != nil {
		return apperrors.NewStoreReadError(err)
	}
	return c.JSON(dto.IncidentListResponse{Success: true, Incidents: incidents})
}

// MethodNotAllowed answers known paths hit with an unsupported method.
func MethodNotAllowed(c *fiber.Ctx) error {
	return apperrors.NewMethodNotAllowed("method not allowed")
}

// NotFound answers every unmatched route.
func NotFound(c *fiber.Ctx) error {
	return apperrors.NewNotFound("route not found")
}
