// Package app wires the core services and controllers together.
package app

import (
	"fmt"

	"github.com/homemeal/homemeal-backend/config"
	"github.com/homemeal/homemeal-backend/internal/app/controller"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/service"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	redisclient "github.com/homemeal/homemeal-backend/pkg/redis"
	"gorm.io/gorm"
)

type App struct {
	Registry  session.Registry
	Metrics   *metrics.Metrics
	Validator *validation.Validator

	AuthService    service.AuthService
	CatalogService service.CatalogService
	CartService    service.CartService
	OrderService   service.OrderService

	Auth    *controller.AuthController
	Catalog *controller.CatalogController
	Cart    *controller.CartController
	Order   *controller.OrderController
}

func New(cfg *config.Config, db *gorm.DB, registry session.Registry, m *metrics.Metrics) *App {
	v := validation.New(cfg.Validation, cfg.Catalog.Categories)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	authService := service.NewAuthService(db, userRepo, cartRepo, registry, v, cfg.Auth.BcryptCost, m)
	catalogService := service.NewCatalogService(db, itemRepo, v, m)
	cartService := service.NewCartService(db, cartRepo, itemRepo, v, m)
	orderService := service.NewOrderService(db, orderRepo, cartRepo, itemRepo, m)

	authMiddleware := middleware.NewAuthMiddleware(registry)

	return &App{
		Registry:       registry,
		Metrics:        m,
		Validator:      v,
		AuthService:    authService,
		CatalogService: catalogService,
		CartService:    cartService,
		OrderService:   orderService,
		Auth:           controller.NewAuthController(authService, authMiddleware, m),
		Catalog:        controller.NewCatalogController(catalogService, v, authMiddleware, m),
		Cart:           controller.NewCartController(cartService, v, authMiddleware, m),
		Order:          controller.NewOrderController(orderService, authMiddleware, m),
	}
}

// NewRegistry builds the session registry selected by cfg. The returned close func
// releases any connection the registry holds.
func NewRegistry(cfg *config.Config) (session.Registry, func() error, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		if err := redisclient.Init(&cfg.Redis); err != nil {
			return nil, nil, err
		}
		logger.Info("Using Redis session registry", map[string]interface{}{
			"addr":    cfg.Redis.Addr(),
			"timeout": cfg.Session.Timeout.String(),
		})
		return session.NewRedisRegistry(redisclient.GetClient(), cfg.Session.Timeout, nil), redisclient.Close, nil
	case config.SessionBackendMemory, "":
		logger.Info("Using in-memory session registry", map[string]interface{}{
			"timeout": cfg.Session.Timeout.String(),
		})
		return session.NewMemoryRegistry(cfg.Session.Timeout, nil), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
}
