package service

import (
	"sync"
	"testing"

	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	soup := env.createItem(t, "Tomato Soup", "3.50", 5)

	entry, err := env.cart.AddItem(user.ID, soup.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Quantity)
	assert.Equal(t, "3.50", entry.Price.StringFixed(2))

	again, err := env.cart.AddItem(user.ID, soup.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, again.ID)
	assert.Equal(t, 5, again.Quantity)

	entries, err := env.cart.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Tomato Soup", entries[0].Item.Name)

	// Adding to the cart never touches stock.
	assert.Equal(t, 5, env.stockOf(t, soup.ID))
}

func TestCartService_AddItem_Rejections(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	soup := env.createItem(t, "Tomato Soup", "3.50", 5)

	_, err := env.cart.AddItem(user.ID, soup.ID, 4)
	require.NoError(t, err)

	tests := []struct {
		name    string
		itemID  uint
		qty     int
		wantErr error
		wantMsg string
	}{
		{name: "Zero quantity", itemID: soup.ID, qty: 0, wantErr: apperrors.ErrValidation, wantMsg: "Quantity must be a positive whole number"},
		{name: "Above maximum", itemID: soup.ID, qty: 1000, wantErr: apperrors.ErrValidation, wantMsg: "Quantity cannot exceed 999"},
		{name: "Unknown item", itemID: 9999, qty: 1, wantErr: apperrors.ErrNotFound, wantMsg: "Item not found"},
		{name: "More than stock", itemID: soup.ID, qty: 6, wantErr: apperrors.ErrInsufficientStock, wantMsg: "Insufficient stock. Available: 5"},
		{name: "Combined quantity over stock", itemID: soup.ID, qty: 2, wantErr: apperrors.ErrInsufficientStock, wantMsg: "Insufficient stock. Available: 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.cart.AddItem(user.ID, tt.itemID, tt.qty)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}

	count, err := env.cart.ItemCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestCartService_AddItem_ConcurrentReAdds(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	soup := env.createItem(t, "Tomato Soup", "3.50", 100)

	const adds = 20
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.cart.AddItem(user.ID, soup.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := env.cart.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, adds, entries[0].Quantity)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	other := env.createUser(t, "Vikram Shah", "9123456780")
	soup := env.createItem(t, "Tomato Soup", "3.50", 5)

	entry, err := env.cart.AddItem(user.ID, soup.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.cart.UpdateQuantity(user.ID, entry.ID, 5))

	err = env.cart.UpdateQuantity(user.ID, entry.ID, 6)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	err = env.cart.UpdateQuantity(user.ID, entry.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = env.cart.UpdateQuantity(other.ID, entry.ID, 2)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Cart item not found", err.Error())

	err = env.cart.UpdateQuantity(user.ID, 9999, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	count, err := env.cart.ItemCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	other := env.createUser(t, "Vikram Shah", "9123456780")
	soup := env.createItem(t, "Tomato Soup", "3.50", 5)
	bread := env.createItem(t, "Garlic Bread", "2.00", 5)

	entry, err := env.cart.AddItem(user.ID, soup.ID, 1)
	require.NoError(t, err)
	_, err = env.cart.AddItem(user.ID, bread.ID, 1)
	require.NoError(t, err)

	err = env.cart.Remove(other.ID, entry.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, env.cart.Remove(user.ID, entry.ID))
	err = env.cart.Remove(user.ID, entry.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	removed, err := env.cart.Clear(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = env.cart.Clear(user.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCartService_TotalUsesSnapshotPrice(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	soup := env.createItem(t, "Tomato Soup", "3.50", 10)
	bread := env.createItem(t, "Garlic Bread", "0.10", 10)

	total, err := env.cart.Total(user.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	_, err = env.cart.AddItem(user.ID, soup.ID, 2)
	require.NoError(t, err)
	_, err = env.cart.AddItem(user.ID, bread.ID, 3)
	require.NoError(t, err)

	_, err = env.catalog.UpdateItem(soup.ID, ItemInput{
		Name:          "Tomato Soup",
		Category:      "Other",
		Price:         decimal.RequireFromString("9.99"),
		StockQuantity: 10,
	})
	require.NoError(t, err)

	total, err = env.cart.Total(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.30", total.StringFixed(2))
}

func TestCartService_CheckAvailability(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "Asha Rao", "9876543210")
	soup := env.createItem(t, "Tomato Soup", "3.50", 5)
	bread := env.createItem(t, "Garlic Bread", "2.00", 5)

	_, err := env.cart.AddItem(user.ID, soup.ID, 3)
	require.NoError(t, err)
	_, err = env.cart.AddItem(user.ID, bread.ID, 2)
	require.NoError(t, err)

	shortages, err := env.cart.CheckAvailability(user.ID)
	require.NoError(t, err)
	assert.Empty(t, shortages)

	_, err = env.catalog.AdjustStock(soup.ID, -4)
	require.NoError(t, err)

	shortages, err = env.cart.CheckAvailability(user.ID)
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, "Tomato Soup", shortages[0].Name)
	assert.Equal(t, 3, shortages[0].Requested)
	assert.Equal(t, 1, shortages[0].Available)
}
