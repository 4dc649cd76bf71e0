package controller

import (
	"context"
	"testing"
	"time"

	"github.com/homemeal/homemeal-backend/config"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/service"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	"github.com/homemeal/homemeal-backend/internal/db"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type controllers struct {
	auth    *AuthController
	catalog *CatalogController
	cart    *CartController
	order   *OrderController
	metrics *metrics.Metrics
}

func setupControllers(t *testing.T) *controllers {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	v := validation.New(config.ValidationConfig{
		MinPasswordLength:    8,
		MinNameLength:        2,
		MaxNameLength:        50,
		MaxDescriptionLength: 500,
		MinPrice:             decimal.RequireFromString("0.01"),
		MaxPrice:             decimal.RequireFromString("9999.99"),
		MaxQuantity:          999,
	}, config.DefaultCategories)

	m := metrics.New(prometheus.NewRegistry())
	registry := session.NewMemoryRegistry(time.Hour, nil)
	authMiddleware := middleware.NewAuthMiddleware(registry)

	users := repository.NewUserRepository(testDB)
	items := repository.NewItemRepository(testDB)
	carts := repository.NewCartRepository(testDB)
	orders := repository.NewOrderRepository(testDB)

	return &controllers{
		auth:    NewAuthController(service.NewAuthService(testDB, users, carts, registry, v, bcrypt.MinCost, m), authMiddleware, m),
		catalog: NewCatalogController(service.NewCatalogService(testDB, items, v, m), v, authMiddleware, m),
		cart:    NewCartController(service.NewCartService(testDB, carts, items, v, m), v, authMiddleware, m),
		order:   NewOrderController(service.NewOrderService(testDB, orders, carts, items, m), authMiddleware, m),
		metrics: m,
	}
}

// login registers a user with phone and returns a session token for it.
func (c *controllers) login(t *testing.T, phone string) string {
	t.Helper()
	result := c.auth.Register(RegisterRequest{
		Name:      "Asha Rao",
		Apartment: "B-204",
		Phone:     phone,
		Password:  "Secret123",
	})
	require.True(t, result.Success, result.Messages)

	result = c.auth.Login(context.Background(), LoginRequest{Phone: phone, Password: "Secret123"})
	require.True(t, result.Success, result.Messages)
	return result.Data.(LoginResponse).Token
}

func (c *controllers) createItem(t *testing.T, token, name, price, stock string) uint {
	t.Helper()
	result := c.catalog.CreateItem(context.Background(), token, ItemRequest{
		Name:          name,
		Category:      "Other",
		Price:         price,
		StockQuantity: stock,
	})
	require.True(t, result.Success, result.Messages)
	return result.ID
}
