package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/strategy-hub/internal/api/http/handlers"
	"github.com/spec-kit/strategy-hub/internal/auth"
	"github.com/spec-kit/strategy-hub/internal/observability"
)

// NewApp returns a fiber app whose routing is exact: case-sensitive and
// slash-strict, the same spelling the access rules are written in.
func NewApp(name string, logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:       name,
		CaseSensitive: true,
		StrictRouting: true,
		ErrorHandler:  ErrorHandler(logger),
	})
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Catalog       *handlers.CatalogHandler
	Admin         *handlers.AdminHandler
	Authenticator *auth.Authenticator
	AccessPolicy  *auth.AccessPolicy
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Every request passes the authenticator
// and the access policy before reaching a handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Authenticator.Handle, cfg.AccessPolicy.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/guest", cfg.Auth.Guest)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	users := app.Group("/api/users")
	users.Get("/me", cfg.Users.Me)

	catalog := app.Group("/api/catalog")
	catalog.Get("/:kind", cfg.Catalog.List)
	catalog.Get("/:kind/:id", cfg.Catalog.Get)
	catalog.Post("/:kind", cfg.Catalog.Create)
	catalog.Delete("/:kind/:id", cfg.Catalog.Delete)

	admin := app.Group("/api/admin")
	admin.Post("/tokens/revoke", cfg.Admin.RevokeToken)
}
