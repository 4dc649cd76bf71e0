package controller

import (
	"context"
	"testing"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogController_CreateAndList(t *testing.T) {
	c := setupControllers(t)
	ctx := context.Background()
	token := c.login(t, "9876543210")

	c.createItem(t, token, "Veg Biryani", "7.50", "12")
	c.createItem(t, token, "Raita", "1.25", "30")

	result := c.catalog.ListItems(ctx, token, ListItemsRequest{SortBy: "price", SortOrder: "DESC"})
	require.True(t, result.Success)
	items := result.Data.([]model.Item)
	require.Len(t, items, 2)
	assert.Equal(t, "Veg Biryani", items[0].Name)

	result = c.catalog.ListItems(ctx, "", ListItemsRequest{})
	assert.Equal(t, apperrors.AuthSessionInvalid, result.Code)

	result = c.catalog.Categories(ctx, token)
	require.True(t, result.Success)
	assert.Contains(t, result.Data.([]string), "Beverages")
}

func TestCatalogController_CreateItem_Invalid(t *testing.T) {
	c := setupControllers(t)
	ctx := context.Background()
	token := c.login(t, "9876543210")

	result := c.catalog.CreateItem(ctx, token, ItemRequest{Name: "Raita", Category: "Other", Price: "abc", StockQuantity: "2.5"})
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Price must be a valid number", "Stock quantity must be a whole number"}, result.Messages)

	result = c.catalog.CreateItem(ctx, token, ItemRequest{Name: "Raita", Category: "Pizza", Price: "1.25", StockQuantity: "3"})
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Invalid category"}, result.Messages)
}

func TestCatalogController_UpdateAndAdjust(t *testing.T) {
	c := setupControllers(t)
	ctx := context.Background()
	token := c.login(t, "9876543210")
	id := c.createItem(t, token, "Veg Biryani", "7.50", "12")

	result := c.catalog.UpdateItem(ctx, token, id, ItemRequest{Name: "Veg Biryani", Category: "Other", Price: "8.00", StockQuantity: "4"})
	require.True(t, result.Success, result.Messages)
	assert.Equal(t, id, result.ID)

	result = c.catalog.AdjustStock(ctx, token, id, -5)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Insufficient stock. Available: 4"}, result.Messages)

	result = c.catalog.AdjustStock(ctx, token, id, -4)
	require.True(t, result.Success)
	assert.Equal(t, map[string]int{"stock_quantity": 0}, result.Data)

	result = c.catalog.GetItem(ctx, token, 9999)
	assert.Equal(t, apperrors.ResourceNotFound, result.Code)
}
