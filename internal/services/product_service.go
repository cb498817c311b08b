package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
	"candleshop/pkg/storage"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo        repositories.ProductRepository
	counter     *CategoryCounter
	view        *CatalogView
	blobs       storage.BlobStore
	events      EventPublisher
	invalidator CacheInvalidator
	now         func() time.Time
}

// NewProductService creates a new ProductService. events and invalidator may
// be nil.
func NewProductService(
	repo repositories.ProductRepository,
	counter *CategoryCounter,
	view *CatalogView,
	blobs storage.BlobStore,
	events EventPublisher,
	invalidator CacheInvalidator,
) *ProductService {
	return &ProductService{
		repo:        repo,
		counter:     counter,
		view:        view,
		blobs:       blobs,
		events:      events,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// GetAllProducts retrieves all products, oldest first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx, models.FieldCreatedAt)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProductsByCategory returns the products the catalog view lists under a
// category name.
func (s *ProductService) GetProductsByCategory(ctx context.Context, categoryName string) ([]models.Product, error) {
	return s.view.ProductsIn(categoryName), nil
}

// CreateProduct validates the input, stores the image if a new one was
// selected, writes the product and increments its category's count.
//
// If the count adjustment fails the created product is still returned,
// together with an error wrapping ErrStaleCount.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	input = input.normalized()
	if errs := validateProduct(input); len(errs) > 0 {
		return nil, errs
	}

	imageURL, err := s.resolveImage(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := &models.Product{
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		Status:      models.DeriveStatus(input.Stock),
		Description: input.Description,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: create product: %v", ErrWrite, err)
	}
	s.view.AddProduct(*product)

	countErr := s.counter.OnProductCreated(ctx, product.Category)
	s.afterChange(ctx, EventProductCreated, CatalogEvent{ProductID: product.ID, Category: product.Category})
	if countErr != nil {
		return product, fmt.Errorf("%w: %v", ErrStaleCount, countErr)
	}
	return product, nil
}

// UpdateProduct validates the input and overwrites every field of existing
// except its ID and creation time. The category counts are moved only when
// the category changed and the product write succeeded.
func (s *ProductService) UpdateProduct(ctx context.Context, existing *models.Product, input ProductInput) (*models.Product, error) {
	input = input.normalized()
	if errs := validateProduct(input); len(errs) > 0 {
		return nil, errs
	}

	imageURL, err := s.resolveImage(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := models.DeriveStatus(input.Stock)
	err = s.repo.Update(ctx, existing.ID, repositories.Fields{
		models.FieldName:        input.Name,
		models.FieldCategory:    input.Category,
		models.FieldPrice:       input.Price,
		models.FieldStock:       input.Stock,
		models.FieldStatus:      status,
		models.FieldDescription: input.Description,
		models.FieldImageURL:    imageURL,
		models.FieldUpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update product %s: %v", ErrWrite, existing.ID, err)
	}

	updated := *existing
	updated.Name = input.Name
	updated.Category = input.Category
	updated.Price = input.Price
	updated.Stock = input.Stock
	updated.Status = status
	updated.Description = input.Description
	updated.ImageURL = imageURL
	updated.UpdatedAt = now
	s.view.ReplaceProduct(*existing, updated)

	var countErr error
	if existing.Category != updated.Category {
		countErr = s.counter.OnProductRecategorized(ctx, existing.Category, updated.Category)
	}
	s.afterChange(ctx, EventProductUpdated, CatalogEvent{
		ProductID:        updated.ID,
		Category:         updated.Category,
		PreviousCategory: existing.Category,
	})
	if countErr != nil {
		return &updated, fmt.Errorf("%w: %v", ErrStaleCount, countErr)
	}
	return &updated, nil
}

// DeleteProduct removes the product and decrements its category's count.
func (s *ProductService) DeleteProduct(ctx context.Context, product *models.Product) error {
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete product %s: %v", ErrWrite, product.ID, err)
	}
	s.view.RemoveProduct(*product)

	countErr := s.counter.OnProductDeleted(ctx, product.Category)
	s.afterChange(ctx, EventProductDeleted, CatalogEvent{ProductID: product.ID, Category: product.Category})
	if countErr != nil {
		return fmt.Errorf("%w: %v", ErrStaleCount, countErr)
	}
	return nil
}

// MoveProduct relocates a product to another category. The product write
// happens first; a failed count adjustment afterwards leaves the product
// moved and returns an error wrapping ErrStaleCount. No retry is attempted.
func (s *ProductService) MoveProduct(ctx context.Context, product *models.Product, target string) (*models.Product, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: target category is empty", ErrInvalidMove)
	}
	if target == product.Category {
		return nil, fmt.Errorf("%w: product is already in %q", ErrInvalidMove, target)
	}

	now := s.now()
	err := s.repo.Update(ctx, product.ID, repositories.Fields{
		models.FieldCategory:  target,
		models.FieldUpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: move product %s: %v", ErrWrite, product.ID, err)
	}

	moved := s.view.MoveProduct(*product, target, now)

	countErr := s.counter.OnProductRecategorized(ctx, product.Category, target)
	s.afterChange(ctx, EventProductMoved, CatalogEvent{
		ProductID:        moved.ID,
		Category:         target,
		PreviousCategory: product.Category,
	})
	if countErr != nil {
		return &moved, fmt.Errorf("%w: %v", ErrStaleCount, countErr)
	}
	return &moved, nil
}

// ReconcileCounts recomputes every category count from the stored products
// and reloads the catalog view. It returns the number of corrected
// categories.
func (s *ProductService) ReconcileCounts(ctx context.Context) (int, error) {
	corrected, err := s.counter.Reconcile(ctx, s.repo)
	if err != nil {
		return corrected, err
	}
	log.Printf("Reconciled category product counts, %d corrected", corrected)
	if corrected > 0 {
		invalidate(ctx, s.invalidator)
	}
	publish(ctx, s.events, EventCatalogReconciled, struct {
		Corrected  int       `json:"corrected"`
		OccurredAt time.Time `json:"occurredAt"`
	}{corrected, s.now()})
	return corrected, nil
}

// resolveImage uploads a newly selected file and returns its URL, or returns
// the URL already present on the input.
func (s *ProductService) resolveImage(ctx context.Context, input ProductInput) (*string, error) {
	if input.Image == nil {
		if input.ImageURL == "" {
			return nil, nil
		}
		url := input.ImageURL
		return &url, nil
	}

	objectPath := storage.ProductImagePath(input.Image.Filename, s.now())
	url, err := s.blobs.Upload(ctx, objectPath, input.Image.Data, input.Image.ContentType)
	if err != nil {
		log.Printf("Error uploading product image %s: %v", objectPath, err)
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return &url, nil
}

func (s *ProductService) afterChange(ctx context.Context, routingKey string, event CatalogEvent) {
	event.OccurredAt = s.now()
	invalidate(ctx, s.invalidator)
	publish(ctx, s.events, routingKey, event)
}
