package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
)

// CatalogView is the in-memory snapshot of categories and of the products
// listed under each category name. It mirrors the store optimistically: it
// is only changed after the matching store write succeeded and is never
// re-read from the store except by Load.
//
// The mutex keeps the maps memory-safe for concurrent HTTP handlers; it does
// not make a read-compute-write of a product count atomic.
type CatalogView struct {
	mu         sync.RWMutex
	categories []models.Category
	products   map[string][]models.Product
}

// NewCatalogView creates an empty view.
func NewCatalogView() *CatalogView {
	return &CatalogView{products: make(map[string][]models.Product)}
}

// Load replaces the view with the current store contents, categories
// ordered by name and products by creation time.
func (v *CatalogView) Load(ctx context.Context, categories repositories.CategoryRepository, products repositories.ProductRepository) error {
	cats, err := categories.GetAll(ctx, models.FieldName)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	prods, err := products.GetAll(ctx, models.FieldCreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	v.Replace(cats, prods)
	return nil
}

// Replace swaps the whole snapshot.
func (v *CatalogView) Replace(categories []models.Category, products []models.Product) {
	byCategory := make(map[string][]models.Product)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	cats := make([]models.Category, len(categories))
	copy(cats, categories)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.categories = cats
	v.products = byCategory
}

// Categories returns a copy of the categories in view order.
func (v *CatalogView) Categories() []models.Category {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Category, len(v.categories))
	copy(out, v.categories)
	return out
}

// CategoryByName returns the first category with the given name. Names are
// not unique in the store.
func (v *CatalogView) CategoryByName(name string) (models.Category, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, c := range v.categories {
		if c.Name == name {
			return c, true
		}
	}
	return models.Category{}, false
}

// ProductsIn returns a copy of the products listed under a category name.
func (v *CatalogView) ProductsIn(name string) []models.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	list := v.products[name]
	out := make([]models.Product, len(list))
	copy(out, list)
	return out
}

// ProductCount returns how many products the view lists in total.
func (v *CatalogView) ProductCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n := 0
	for _, list := range v.products {
		n += len(list)
	}
	return n
}

// PutCategory inserts a category or replaces the one with the same ID.
func (v *CatalogView) PutCategory(category models.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.categories {
		if v.categories[i].ID == category.ID {
			v.categories[i] = category
			return
		}
	}
	v.categories = append(v.categories, category)
}

// RemoveCategory drops a category. Products listed under its name stay.
func (v *CatalogView) RemoveCategory(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.categories {
		if v.categories[i].ID == id {
			v.categories = append(v.categories[:i], v.categories[i+1:]...)
			return
		}
	}
}

// SetProductCount records a product count that was written to the store.
func (v *CatalogView) SetProductCount(categoryID string, count int, at time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.categories {
		if v.categories[i].ID == categoryID {
			v.categories[i].ProductCount = count
			v.categories[i].UpdatedAt = at
			return
		}
	}
}

// AddProduct appends a product to its category's list.
func (v *CatalogView) AddProduct(p models.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products[p.Category] = append(v.products[p.Category], p)
}

// ReplaceProduct swaps old for updated. An unchanged category keeps the
// product's position; a changed one moves it to the end of the new list.
func (v *CatalogView) ReplaceProduct(old, updated models.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if old.Category == updated.Category {
		list := v.products[old.Category]
		for i := range list {
			if list[i].ID == old.ID {
				list[i] = updated
				return
			}
		}
		v.products[updated.Category] = append(list, updated)
		return
	}
	v.removeLocked(old)
	v.products[updated.Category] = append(v.products[updated.Category], updated)
}

// RemoveProduct drops a product from its category's list.
func (v *CatalogView) RemoveProduct(p models.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removeLocked(p)
}

// MoveProduct removes p from its source list and appends it, with the
// target category set, to the destination list.
func (v *CatalogView) MoveProduct(p models.Product, target string, at time.Time) models.Product {
	moved := p
	moved.Category = target
	moved.UpdatedAt = at

	v.mu.Lock()
	defer v.mu.Unlock()
	v.removeLocked(p)
	v.products[target] = append(v.products[target], moved)
	return moved
}

func (v *CatalogView) removeLocked(p models.Product) {
	list := v.products[p.Category]
	for i := range list {
		if list[i].ID == p.ID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(v.products, p.Category)
		return
	}
	v.products[p.Category] = list
}
