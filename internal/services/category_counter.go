package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
	"candleshop/pkg/metrics"
)

// CategoryCounter keeps Category.ProductCount in line with product
// membership. Counts are read from the CatalogView, written to the store,
// and mirrored back into the view once the write succeeded.
type CategoryCounter struct {
	repo repositories.CategoryRepository
	view *CatalogView
	now  func() time.Time
}

// NewCategoryCounter creates a new CategoryCounter.
func NewCategoryCounter(repo repositories.CategoryRepository, view *CatalogView) *CategoryCounter {
	return &CategoryCounter{
		repo: repo,
		view: view,
		now:  time.Now,
	}
}

// OnProductCreated increments the count of the named category.
func (c *CategoryCounter) OnProductCreated(ctx context.Context, categoryName string) error {
	return c.adjust(ctx, categoryName, 1)
}

// OnProductDeleted decrements the count of the named category, never below 0.
func (c *CategoryCounter) OnProductDeleted(ctx context.Context, categoryName string) error {
	return c.adjust(ctx, categoryName, -1)
}

// OnProductRecategorized moves one unit of count from oldName to newName.
// The two writes are independent; if the decrement fails the increment is
// not attempted.
func (c *CategoryCounter) OnProductRecategorized(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if err := c.adjust(ctx, oldName, -1); err != nil {
		return err
	}
	return c.adjust(ctx, newName, 1)
}

func (c *CategoryCounter) adjust(ctx context.Context, categoryName string, delta int) error {
	direction := "increment"
	if delta < 0 {
		direction = "decrement"
	}

	category, ok := c.view.CategoryByName(categoryName)
	if !ok {
		log.Printf("Category %q not found in catalog view, %s skipped", categoryName, direction)
		metrics.CountAdjustments.WithLabelValues(direction, "skipped").Inc()
		return nil
	}

	count := category.ProductCount + delta
	if count < 0 {
		count = 0
	}
	now := c.now()
	err := c.repo.Update(ctx, category.ID, repositories.Fields{
		models.FieldProductCount: count,
		models.FieldUpdatedAt:    now,
	})
	if err != nil {
		metrics.CountAdjustments.WithLabelValues(direction, "failed").Inc()
		return fmt.Errorf("failed to %s product count of category %q: %w", direction, categoryName, err)
	}

	c.view.SetProductCount(category.ID, count, now)
	metrics.CountAdjustments.WithLabelValues(direction, "ok").Inc()
	return nil
}

// Reconcile recomputes every category count from the product collection,
// writes the ones that differ and reloads the view. It returns the number
// of categories corrected.
func (c *CategoryCounter) Reconcile(ctx context.Context, products repositories.ProductRepository) (int, error) {
	prods, err := products.GetAll(ctx, models.FieldCreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}
	cats, err := c.repo.GetAll(ctx, models.FieldName)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}

	actual := make(map[string]int)
	for _, p := range prods {
		actual[p.Category]++
	}

	corrected := 0
	now := c.now()
	for i := range cats {
		want := actual[cats[i].Name]
		if cats[i].ProductCount == want {
			continue
		}
		err := c.repo.Update(ctx, cats[i].ID, repositories.Fields{
			models.FieldProductCount: want,
			models.FieldUpdatedAt:    now,
		})
		if err != nil {
			return corrected, fmt.Errorf("failed to correct product count of category %q: %w", cats[i].Name, err)
		}
		log.Printf("Corrected product count of category %q: %d -> %d", cats[i].Name, cats[i].ProductCount, want)
		cats[i].ProductCount = want
		cats[i].UpdatedAt = now
		corrected++
		metrics.ReconcileCorrections.Inc()
	}

	c.view.Replace(cats, prods)
	return corrected, nil
}
