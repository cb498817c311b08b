package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
	"candleshop/pkg/cache"
)

const (
	storefrontCategoriesKey = "storefront:categories"
	storefrontProductsKey   = "storefront:products"
)

// StorefrontService serves the public catalog through a read-through cache.
// Catalog writes call Invalidate.
type StorefrontService struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	cache      cache.Cache
	ttl        time.Duration
}

// NewStorefrontService creates a new StorefrontService.
func NewStorefrontService(categories repositories.CategoryRepository, products repositories.ProductRepository, c cache.Cache, ttl time.Duration) *StorefrontService {
	return &StorefrontService{
		categories: categories,
		products:   products,
		cache:      c,
		ttl:        ttl,
	}
}

// Categories returns all categories ordered by name.
func (s *StorefrontService) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if s.fromCache(ctx, storefrontCategoriesKey, &cats) {
		return cats, nil
	}
	cats, err := s.categories.GetAll(ctx, models.FieldName)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	s.toCache(ctx, storefrontCategoriesKey, cats)
	return cats, nil
}

// Products returns all products, newest first, optionally limited to one
// category name.
func (s *StorefrontService) Products(ctx context.Context, category string) ([]models.Product, error) {
	prods, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return prods, nil
	}
	filtered := make([]models.Product, 0)
	for _, p := range prods {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Product returns a single product.
func (s *StorefrontService) Product(ctx context.Context, id string) (*models.Product, error) {
	prods, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range prods {
		if prods[i].ID == id {
			return &prods[i], nil
		}
	}
	return nil, fmt.Errorf("product with ID %s: %w", id, repositories.ErrNotFound)
}

// Invalidate drops the cached listings.
func (s *StorefrontService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, storefrontCategoriesKey, storefrontProductsKey); err != nil {
		log.Printf("Warning: failed to invalidate storefront cache: %v", err)
	}
}

func (s *StorefrontService) allProducts(ctx context.Context) ([]models.Product, error) {
	var prods []models.Product
	if s.fromCache(ctx, storefrontProductsKey, &prods) {
		return prods, nil
	}
	all, err := s.products.GetAll(ctx, models.FieldCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	prods = make([]models.Product, len(all))
	for i := range all {
		prods[len(all)-1-i] = all[i]
	}
	s.toCache(ctx, storefrontProductsKey, prods)
	return prods, nil
}

func (s *StorefrontService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("Warning: cache read %s failed: %v", key, err)
		return false
	}
	return found
}

func (s *StorefrontService) toCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		log.Printf("Warning: cache write %s failed: %v", key, err)
	}
}
