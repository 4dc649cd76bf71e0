package service

import (
	"sync"
	"testing"
	"time"

	"github.com/homemeal/homemeal-backend/config"
	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	"github.com/homemeal/homemeal-backend/internal/db"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	db       *gorm.DB
	users    repository.UserRepository
	items    repository.ItemRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	metrics  *metrics.Metrics
	clock    *testClock
	registry session.Registry

	auth    AuthService
	catalog CatalogService
	cart    CartService
	order   OrderService
}

func newTestValidator() *validation.Validator {
	return validation.New(config.ValidationConfig{
		MinPasswordLength:    8,
		MinNameLength:        2,
		MaxNameLength:        50,
		MaxDescriptionLength: 500,
		MinPrice:             decimal.RequireFromString("0.01"),
		MaxPrice:             decimal.RequireFromString("9999.99"),
		MaxQuantity:          999,
	}, config.DefaultCategories)
}

func setupTestEnv(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	env := &testEnv{
		db:      testDB,
		users:   repository.NewUserRepository(testDB),
		items:   repository.NewItemRepository(testDB),
		carts:   repository.NewCartRepository(testDB),
		orders:  repository.NewOrderRepository(testDB),
		metrics: metrics.New(prometheus.NewRegistry()),
		clock:   &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	env.registry = session.NewMemoryRegistry(time.Hour, env.clock.Now)

	v := newTestValidator()
	env.auth = NewAuthService(testDB, env.users, env.carts, env.registry, v, bcrypt.MinCost, env.metrics)
	env.catalog = NewCatalogService(testDB, env.items, v, env.metrics)
	env.cart = NewCartService(env.db, env.carts, env.items, v, env.metrics)
	env.order = NewOrderService(testDB, env.orders, env.carts, env.items, env.metrics)
	return env
}

func (e *testEnv) createUser(t *testing.T, name, phone string) *model.User {
	t.Helper()
	user, err := e.auth.Register(RegisterInput{
		Name:      name,
		Apartment: "A-101",
		Phone:     phone,
		Password:  "Secret123",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createItem(t *testing.T, name, price string, stock int) *model.Item {
	t.Helper()
	item, err := e.catalog.CreateItem(ItemInput{
		Name:          name,
		Description:   name + " from the kitchen",
		Category:      "Other",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) stockOf(t *testing.T, itemID uint) int {
	t.Helper()
	item, err := e.items.FindByID(itemID)
	require.NoError(t, err)
	return item.StockQuantity
}
