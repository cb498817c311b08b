package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo        repositories.CategoryRepository
	view        *CatalogView
	events      EventPublisher
	invalidator CacheInvalidator
	now         func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, view *CatalogView, events EventPublisher, invalidator CacheInvalidator) *CategoryService {
	return &CategoryService{
		repo:        repo,
		view:        view,
		events:      events,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// GetAllCategories retrieves all categories ordered by name.
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx, models.FieldName)
}

// GetCategoryByID retrieves a single category by its ID.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory stores a new, empty category. Name and description are
// required; names are not required to be unique.
func (s *CategoryService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	errs := ValidationErrors{}
	if name == "" {
		errs["name"] = "Category name is required"
	}
	if description == "" {
		errs["description"] = "Category description is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	now := s.now()
	category := &models.Category{
		Name:         name,
		Description:  description,
		ProductCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("%w: create category: %v", ErrWrite, err)
	}
	s.view.PutCategory(*category)

	s.afterChange(ctx, EventCategoryCreated, CatalogEvent{CategoryID: category.ID, Category: category.Name})
	return category, nil
}

// UpdateCategory renames or re-describes a category. Products that reference
// the old name are left as they are.
func (s *CategoryService) UpdateCategory(ctx context.Context, id, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationErrors{"name": "Category name is required"}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	description = strings.TrimSpace(description)
	err = s.repo.Update(ctx, id, repositories.Fields{
		models.FieldName:        name,
		models.FieldDescription: description,
		models.FieldUpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update category %s: %v", ErrWrite, id, err)
	}

	updated := *existing
	updated.Name = name
	updated.Description = description
	updated.UpdatedAt = now
	s.view.PutCategory(updated)

	s.afterChange(ctx, EventCategoryUpdated, CatalogEvent{
		CategoryID:       id,
		Category:         name,
		PreviousCategory: existing.Name,
	})
	return &updated, nil
}

// DeleteCategory removes a category. Its products are not deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete category %s: %v", ErrWrite, id, err)
	}
	s.view.RemoveCategory(id)

	s.afterChange(ctx, EventCategoryDeleted, CatalogEvent{CategoryID: id})
	return nil
}

func (s *CategoryService) afterChange(ctx context.Context, routingKey string, event CatalogEvent) {
	event.OccurredAt = s.now()
	invalidate(ctx, s.invalidator)
	publish(ctx, s.events, routingKey, event)
}
