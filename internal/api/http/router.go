package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
	Tickets *handlers.TicketsHandler
	IT      *handlers.ITTicketsHandler
	Manager *handlers.ManagerHandler
	Session *auth.SessionMiddleware
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The session middleware runs on every
// route and never rejects; the per-group gates decide access.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Use(cfg.Session.Handle)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	account := app.Group("/account", auth.RequireAuthenticated())
	account.Get("/", cfg.Account.Me)
	account.Post("/password", cfg.Account.ChangePassword)
	account.Delete("/", cfg.Account.DeleteAccount)

	tickets := app.Group("/tickets", auth.RequireAuthenticated())
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Put("/:id", cfg.Tickets.EditTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	it := app.Group("/it", auth.RequireLevel(auth.LevelAdmin))
	it.Get("/tickets", cfg.IT.Dashboard)
	it.Patch("/tickets/:id", cfg.IT.Transition)

	manager := app.Group("/manager", auth.RequireLevel(auth.LevelManager))
	manager.Get("/report", cfg.Manager.Report)
	manager.Get("/accounts", cfg.Manager.ListAccounts)
	manager.Put("/accounts/:id/role", cfg.Manager.SetRole)
}
