package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusCancelled, false},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusReady, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_CancellableAndTerminal(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.False(t, OrderStatusPreparing.Cancellable())
	assert.False(t, OrderStatusCompleted.Cancellable())

	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusReady.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Preparing")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPreparing, status)

	_, err = ParseOrderStatus("shipping")
	assert.Error(t, err)
}

func TestSubtotals(t *testing.T) {
	entry := CartEntry{Quantity: 3, Price: decimal.RequireFromString("2.10")}
	assert.True(t, entry.Subtotal().Equal(decimal.RequireFromString("6.30")))

	line := OrderItem{Quantity: 7, Price: decimal.RequireFromString("0.10")}
	assert.True(t, line.Subtotal().Equal(decimal.RequireFromString("0.70")))
}
