package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/ticketflow/internal/api/http/handlers"
	"github.com/ticketflow/ticketflow/internal/auth"
	"github.com/ticketflow/ticketflow/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Tickets *handlers.TicketsHandler
	Users   *handlers.UsersHandler
	Gate    *auth.Gate
}

// RegisterRoutes wires HTTP routes. The gate's CORS handling covers
// every route; token verification covers everything below the auth
// endpoints, and delete additionally requires the admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.CORS)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	tickets := app.Group("/tickets", cfg.Gate.Authenticate)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Delete)

	app.Get("/users", cfg.Gate.Authenticate, cfg.Users.List)
}
