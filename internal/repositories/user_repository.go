package repositories

import (
	"context"

	"candleshop/internal/models"
)

// UserRepository defines the interface for back-office account data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
