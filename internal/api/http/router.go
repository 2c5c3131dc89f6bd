package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-intake/internal/api/http/handlers"
)

// Route paths.
const (
	WebhookPath   = "/api/webhook/casos"
	IncidentsPath = "/api/incidents"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Incidents *handlers.IncidentsHandler
	// EnableListing exposes GET /api/incidents; only the server target stores incidents.
	EnableListing bool
}

// RegisterRoutes wires HTTP routes. It must run after RegisterMiddlewares.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
		app.Get("/metrics", cfg.Health.Metrics)
	}

	app.Post(WebhookPath, cfg.Incidents.Receive)
	app.All(WebhookPath, handlers.MethodNotAllowed)

	if cfg.EnableListing {
		app.Get(IncidentsPath, cfg.Incidents.List)
		app.All(IncidentsPath, handlers.MethodNotAllowed)
	}

	app.Use(handlers.NotFound)
}
