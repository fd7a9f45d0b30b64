package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ashleeec/quibly/internal/config"
	"github.com/ashleeec/quibly/internal/handler"
	"github.com/ashleeec/quibly/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	SessionHandler    *handler.SessionHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments"))
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions"))
	}

	app.Get("/metrics", observability.MetricsHandler())
}
