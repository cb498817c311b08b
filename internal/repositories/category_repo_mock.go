package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"candleshop/internal/models"

	"github.com/google/uuid"
)

// MockCategoryRepository is an in-memory implementation of CategoryRepository.
type MockCategoryRepository struct {
	categories map[string]models.Category
	mu         sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]models.Category),
	}
}

func (r *MockCategoryRepository) GetAll(_ context.Context, orderBy string) ([]models.Category, error) {
	if err := checkOrderBy(orderBy); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		list = append(list, c)
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch orderBy {
		case models.FieldName:
			return a.Name < b.Name
		case models.FieldProductCount:
			return a.ProductCount < b.ProductCount
		case models.FieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return list, nil
}

func (r *MockCategoryRepository) GetByID(_ context.Context, id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return &category, nil
}

func (r *MockCategoryRepository) Create(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *MockCategoryRepository) Update(_ context.Context, id string, fields Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[id]
	if !ok {
		return fmt.Errorf("category with ID %s for update: %w", id, ErrNotFound)
	}
	if err := category.Apply(fields); err != nil {
		return fmt.Errorf("failed to update category %s: %w", id, err)
	}
	r.categories[id] = category
	return nil
}

func (r *MockCategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("category with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.categories, id)
	return nil
}
