package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"candleshop/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products sorted by orderBy, or by creation time when empty.
func (r *MockProductRepository) GetAll(_ context.Context, orderBy string) ([]models.Product, error) {
	if err := checkOrderBy(orderBy); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.SliceStable(productList, func(i, j int) bool {
		return lessProduct(productList[i], productList[j], orderBy)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update applies a patch to an existing product.
func (r *MockProductRepository) Update(_ context.Context, id string, fields Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s for update: %w", id, ErrNotFound)
	}
	if err := product.Apply(fields); err != nil {
		return fmt.Errorf("failed to update product %s: %w", id, err)
	}
	r.products[id] = product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func lessProduct(a, b models.Product, orderBy string) bool {
	switch orderBy {
	case models.FieldName:
		return a.Name < b.Name
	case models.FieldCategory:
		return a.Category < b.Category
	case models.FieldPrice:
		return a.Price < b.Price
	case models.FieldStock:
		return a.Stock < b.Stock
	case models.FieldUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
