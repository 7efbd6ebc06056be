package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/api/http/handlers"
	"github.com/spec-kit/tablepos/internal/auth"
	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/fixtures"
	"github.com/spec-kit/tablepos/internal/observability"
	"github.com/spec-kit/tablepos/internal/repository"
	"github.com/spec-kit/tablepos/internal/service"
)

// DemoOptions tune the demo backend.
type DemoOptions struct {
	Name    string
	Version string
	TaxRate float64
	Metrics *observability.Metrics
}

// NewDemoApp builds the in-memory demo backend seeded with the bundled fixtures.
func NewDemoApp(ctx context.Context, cfg config.BackendConfig, opts DemoOptions, logger *zap.Logger) (*fiber.App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}

	userRepo := repository.NewUserRepository()
	tableRepo := repository.NewTableRepository()
	orderRepo := repository.NewOrderRepository()
	menuRepo := repository.NewMenuRepository(fixtures.Menu())
	revokedRepo := repository.NewRevokedTokenRepository()

	tokens := auth.NewTokenManager(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLHours)*time.Hour,
	)
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		RevokedRepo: revokedRepo,
		Tokens:      tokens,
	})
	tableService := service.NewTableService(tableRepo)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo: orderRepo,
		TableRepo: tableRepo,
		MenuRepo:  menuRepo,
		TaxRate:   opts.TaxRate,
	})
	menuService := service.NewMenuService(menuRepo)

	for _, u := range fixtures.Users() {
		if err := authService.Seed(ctx, u.User, u.Password); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.User.Username, err)
		}
	}
	for _, t := range fixtures.Tables() {
		table := t
		if err := tableRepo.Create(ctx, &table); err != nil {
			return nil, fmt.Errorf("seed table %s: %w", t.TableNumber, err)
		}
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, logger, opts.Metrics, cfg.RequestTimeout())

	var router fiber.Router = app
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		router = app.Group(cfg.BasePath)
	}
	RegisterRoutes(router, RouteConfig{
		Health:         handlers.NewHealthHandler(opts.Name, opts.Version, opts.Metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tables:         handlers.NewTablesHandler(tableService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Food:           handlers.NewFoodHandler(menuService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})

	logger.Info("demo backend ready",
		zap.Int("users", len(fixtures.Users())),
		zap.Int("tables", len(fixtures.Tables())),
		zap.String("base_path", cfg.BasePath))
	return app, nil
}
