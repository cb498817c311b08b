package models_test

import (
	"testing"

	"candleshop/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		stock int
		want  models.ProductStatus
	}{
		{0, models.StatusOutOfStock},
		{1, models.StatusLowStock},
		{5, models.StatusLowStock},
		{10, models.StatusLowStock},
		{11, models.StatusInStock},
		{500, models.StatusInStock},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.DeriveStatus(tt.stock), "stock %d", tt.stock)
	}
}

func TestDeriveStatus_ExhaustiveRange(t *testing.T) {
	for s := 0; s <= 100; s++ {
		status := models.DeriveStatus(s)
		assert.Equal(t, s == 0, status == models.StatusOutOfStock, "stock %d", s)
		assert.Equal(t, s > 0 && s <= 10, status == models.StatusLowStock, "stock %d", s)
		assert.Equal(t, s > 10, status == models.StatusInStock, "stock %d", s)
	}
}

func TestCartTotal(t *testing.T) {
	cart := models.Cart{Items: []models.CartItem{
		{ID: "a", Price: 24.99, Quantity: 2},
		{ID: "b", Price: 10, Quantity: 0},
	}}
	assert.InDelta(t, 49.98, cart.Total(), 0.0001)
}

func TestOrderItemCount(t *testing.T) {
	order := models.Order{Items: []models.OrderItem{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, order.ItemCount())
	assert.True(t, models.ValidOrderStatus(models.OrderShipped))
	assert.False(t, models.ValidOrderStatus("pending"))
}
