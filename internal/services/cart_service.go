package services

import (
	"context"
	"fmt"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
)

// CartService manages storefront shopping carts.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	now      func() time.Time
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products, now: time.Now}
}

// GetCart returns the cart, empty if it was never saved.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.carts.Get(ctx, cartID)
}

// AddItem puts one unit of a product in the cart. A product already in the
// cart has its quantity raised by one.
func (s *CartService) AddItem(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == product.ID {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item := models.CartItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Quantity: 1,
		}
		if product.ImageURL != nil {
			item.Image = *product.ImageURL
		}
		cart.Items = append(cart.Items, item)
	}
	return s.save(ctx, cart)
}

// UpdateQuantity sets the quantity of a cart line, floored at 0.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	if quantity < 0 {
		quantity = 0
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			return s.save(ctx, cart)
		}
	}
	return nil, fmt.Errorf("cart item %s: %w", itemID, repositories.ErrNotFound)
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return s.save(ctx, cart)
}

// ClearCart empties the cart.
func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	if err := s.carts.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	return cart, nil
}
