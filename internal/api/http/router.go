package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/frostline-games/support-agent/internal/api/http/handlers"
	"github.com/frostline-games/support-agent/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Stats          *handlers.StatsHandler
	Cases          *handlers.CasesHandler
	Digests        *handlers.DigestsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")
	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Post("/auth/token", cfg.Auth.IssueToken)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/stats/overview", cfg.Stats.Overview)
	protected.Get("/cases", cfg.Cases.ListCases)
	protected.Get("/cases/:id", cfg.Cases.GetCase)
	protected.Get("/digests", cfg.Digests.ListDigests)
	protected.Get("/digests/:id", cfg.Digests.GetDigest)
}
