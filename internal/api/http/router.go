package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sai1305/customer-support-ticketing-system/internal/api/http/handlers"
	"github.com/Sai1305/customer-support-ticketing-system/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/signup", cfg.Auth.Signup)
	app.Post("/login", cfg.Auth.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authed.Get("/logout", cfg.Auth.Logout)
	authed.Get("/profile", cfg.Auth.GetProfile)
	authed.Put("/profile", cfg.Auth.UpdateProfile)

	tickets := authed.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Delete)

	admin := authed.Group("/admin", auth.RequireAdmin())
	admin.Post("/export", cfg.Admin.Export)
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Get("/tickets/:id/audit", cfg.Admin.TicketAudit)

	api := authed.Group("/api", auth.RequireAdmin())
	api.Get("/dashboard-stats", cfg.Admin.DashboardStats)
	api.Get("/analytics-data", cfg.Admin.AnalyticsData)
	api.Get("/users", cfg.Admin.ListUsers)
}
