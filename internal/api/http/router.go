package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tablepos/internal/api/http/handlers"
	"github.com/spec-kit/tablepos/internal/auth"
	"github.com/spec-kit/tablepos/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tables         *handlers.TablesHandler
	Orders         *handlers.OrdersHandler
	Food           *handlers.FoodHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes under router.
func RegisterRoutes(router fiber.Router, cfg RouteConfig) {
	router.Get("/health/live", cfg.Health.Live)
	router.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := router.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	tables := router.Group("/tables", cfg.AuthMiddleware.Handle)
	tables.Get("/by-location", cfg.Tables.ByLocation)
	tables.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Tables.Create)
	tables.Put("/:id", auth.RequireRole(domain.RoleStaff), cfg.Tables.Update)

	orders := router.Group("/orders", cfg.AuthMiddleware.Handle)
	orders.Get("/", cfg.Orders.List)
	orders.Get("/table/:tableId", cfg.Orders.ByTable)
	orders.Post("/", auth.RequireRole(domain.RoleStaff), cfg.Orders.Create)
	orders.Put("/:id", auth.RequireRole(domain.RoleStaff, domain.RoleKitchen), cfg.Orders.Update)

	food := router.Group("/food", cfg.AuthMiddleware.Handle)
	food.Get("/categories", cfg.Food.Categories)
	food.Get("/dishes/:id", cfg.Food.Dish)
}
