package app

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/homemeal/homemeal-backend/config"
	"github.com/homemeal/homemeal-backend/internal/app/controller"
	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/db"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/scheduler"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			Backend: config.SessionBackendMemory,
			Timeout: time.Hour,
		},
		Auth:    config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Catalog: config.CatalogConfig{Categories: config.DefaultCategories},
		Validation: config.ValidationConfig{
			MinPasswordLength:    8,
			MinNameLength:        2,
			MaxNameLength:        50,
			MaxDescriptionLength: 500,
			MinPrice:             decimal.RequireFromString("0.01"),
			MaxPrice:             decimal.RequireFromString("9999.99"),
			MaxQuantity:          999,
		},
	}
}

func setupIntegrationTest(t *testing.T, cfg *config.Config) *App {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.Seed(testDB, cfg.Catalog.Categories))

	registry, closeRegistry, err := NewRegistry(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { closeRegistry() })

	return New(cfg, testDB, registry, metrics.New(prometheus.NewRegistry()))
}

func registerAndLogin(t *testing.T, a *App, phone string) string {
	t.Helper()
	ctx := context.Background()

	result := a.Auth.Register(controller.RegisterRequest{
		Name:      "Meera Iyer",
		Apartment: "A-12",
		Phone:     phone,
		Password:  "Secret123",
	})
	require.True(t, result.Success, result.Messages)

	result = a.Auth.Login(ctx, controller.LoginRequest{Phone: phone, Password: "Secret123"})
	require.True(t, result.Success, result.Messages)
	return result.Data.(controller.LoginResponse).Token
}

func findItem(t *testing.T, a *App, token, name string) model.Item {
	t.Helper()
	result := a.Catalog.ListItems(context.Background(), token, controller.ListItemsRequest{Search: name})
	require.True(t, result.Success, result.Messages)
	items := result.Data.([]model.Item)
	require.NotEmpty(t, items)
	return items[0]
}

func runOrderFlow(t *testing.T, a *App) {
	ctx := context.Background()
	first := registerAndLogin(t, a, "9000000001")
	second := registerAndLogin(t, a, "9000000002")

	mangoes := findItem(t, a, first, "Alphonso Mangoes")
	require.Equal(t, 15, mangoes.StockQuantity)

	result := a.Catalog.UpdateItem(ctx, first, mangoes.ID, controller.ItemRequest{
		Name:          mangoes.Name,
		Description:   mangoes.Description,
		Category:      mangoes.Category,
		Price:         mangoes.Price.StringFixed(2),
		StockQuantity: "5",
	})
	require.True(t, result.Success, result.Messages)

	require.True(t, a.Cart.AddToCart(ctx, first, controller.AddToCartRequest{ItemID: mangoes.ID, Quantity: "3"}).Success)
	require.True(t, a.Cart.AddToCart(ctx, second, controller.AddToCartRequest{ItemID: mangoes.ID, Quantity: "3"}).Success)

	result = a.Order.CreateOrder(ctx, first, controller.CreateOrderRequest{})
	require.True(t, result.Success, result.Messages)
	orderID := result.ID

	result = a.Order.CreateOrder(ctx, second, controller.CreateOrderRequest{})
	assert.Equal(t, apperrors.StockUnavailable, result.Code)
	assert.Equal(t, []string{"Some items are no longer available: Alphonso Mangoes (requested: 3, available: 2)"}, result.Messages)

	result = a.Order.CancelOrder(ctx, second, orderID)
	assert.Equal(t, apperrors.ResourceNotFound, result.Code)

	result = a.Order.CancelOrder(ctx, first, orderID)
	require.True(t, result.Success, result.Messages)

	result = a.Order.CreateOrder(ctx, second, controller.CreateOrderRequest{})
	require.True(t, result.Success, result.Messages)

	assert.Equal(t, 2, findItem(t, a, first, "Alphonso Mangoes").StockQuantity)

	result = a.Order.GetStatistics(ctx, first, true)
	require.True(t, result.Success)
	stats := result.Data.(model.OrderStatistics)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)

	assert.Equal(t, float64(2), testutil.ToFloat64(a.Metrics.OrdersCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.OrdersCancelled))
}

func TestIntegration_MemoryRegistry(t *testing.T) {
	a := setupIntegrationTest(t, testConfig())
	runOrderFlow(t, a)

	_, ok := a.Registry.(*session.MemoryRegistry)
	assert.True(t, ok)
}

func TestIntegration_RedisRegistry(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Session.Backend = config.SessionBackendRedis
	cfg.Redis = config.RedisConfig{Host: host, Port: port}

	a := setupIntegrationTest(t, cfg)
	_, ok := a.Registry.(*session.RedisRegistry)
	require.True(t, ok)

	runOrderFlow(t, a)

	ctx := context.Background()
	sweeper := scheduler.NewSessionSweeper(a.Registry, "", a.Metrics)
	_, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(a.Metrics.ActiveSessions))

	// Redis drops the keys once their TTL passes.
	mr.FastForward(2 * time.Hour)
	_, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, testutil.ToFloat64(a.Metrics.ActiveSessions))
}

func TestIntegration_SessionRequired(t *testing.T) {
	a := setupIntegrationTest(t, testConfig())
	ctx := context.Background()

	results := []apperrors.Result{
		a.Catalog.ListItems(ctx, "", controller.ListItemsRequest{}),
		a.Cart.GetCart(ctx, "not-a-token"),
		a.Order.CreateOrder(ctx, "Bearer nope", controller.CreateOrderRequest{}),
		a.Auth.GetProfile(ctx, ""),
	}
	for _, result := range results {
		assert.False(t, result.Success)
		assert.Equal(t, apperrors.AuthSessionInvalid, result.Code)
		assert.NotEmpty(t, result.Messages)
	}
}

func TestNewRegistry_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Backend = "memcached"

	_, _, err := NewRegistry(cfg)
	assert.Error(t, err)
}
