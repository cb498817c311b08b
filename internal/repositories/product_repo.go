package repositories

import (
	"context"
	"errors"
	"fmt"

	"candleshop/internal/models"
)

// ErrNotFound is returned when a document does not exist in the store.
var ErrNotFound = errors.New("not found")

// Fields is a partial document update keyed by store field name
// (see the models.Field* constants).
type Fields map[string]interface{}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, orderBy string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context, orderBy string) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

var sortableFields = map[string]bool{
	"":                       true,
	models.FieldName:         true,
	models.FieldCategory:     true,
	models.FieldPrice:        true,
	models.FieldStock:        true,
	models.FieldCreatedAt:    true,
	models.FieldUpdatedAt:    true,
	models.FieldProductCount: true,
}

func checkOrderBy(orderBy string) error {
	if !sortableFields[orderBy] {
		return fmt.Errorf("unsupported order field %q", orderBy)
	}
	return nil
}
