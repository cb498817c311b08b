package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"candleshop/internal/models"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// RedisCartRepository stores each cart as a JSON value under cart:<id>.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepository creates a cart repository. A zero ttl keeps carts forever.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	val, err := r.client.Get(ctx, cartKeyPrefix+cartID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &models.Cart{ID: cartID, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	var cart models.Cart
	if err := json.Unmarshal(val, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", cartID, err)
	}
	return &cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", cart.ID, err)
	}
	if err := r.client.Set(ctx, cartKeyPrefix+cart.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+cartID).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", cartID, err)
	}
	return nil
}
