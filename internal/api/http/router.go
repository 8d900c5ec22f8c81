package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/melcoco/registration-service/internal/api/http/handlers"
	"github.com/melcoco/registration-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Register *handlers.RegisterHandler
	Health   *handlers.HealthHandler
	Verify   *handlers.VerifyHandler
	Debug    *handlers.DebugHandler
	Admin    *handlers.AdminHandler
	AdminKey *auth.AdminKeyMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Post("/register", cfg.Register.Register)

	app.Get("/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/verify", cfg.Verify.Confirm)

	debugGroup := app.Group("/debug")
	debugGroup.Get("/email/test", cfg.Debug.EmailTest)
	debugGroup.Get("/email/verify", cfg.Debug.EmailVerify)
	debugGroup.Get("/metrics", cfg.Debug.Metrics)

	adminGroup := app.Group("/admin", cfg.AdminKey.Handle)
	adminGroup.Get("/users", cfg.Admin.ListUsers)
	adminGroup.Post("/users/:uid/password", cfg.Admin.ResetPassword)
}
