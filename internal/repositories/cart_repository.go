package repositories

import (
	"context"

	"candleshop/internal/models"
)

// CartRepository persists shopping carts. Get returns an empty cart for an
// unknown ID.
type CartRepository interface {
	Get(ctx context.Context, cartID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, cartID string) error
}
