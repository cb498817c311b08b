package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"candleshop/internal/services"
)

var seedCategories = []struct{ name, description string }{
	{"Scented Candles", "Aromatic candles with various fragrances"},
	{"Unscented Candles", "Classic candles without added fragrance"},
	{"Gift Sets", "Curated collections of candles and accessories"},
	{"Seasonal Collections", "Limited edition holiday and seasonal candles"},
}

var seedProducts = []services.ProductInput{
	{
		Name:        "Lavender Dreams Candle",
		Category:    "Scented Candles",
		Price:       24.99,
		Stock:       45,
		Description: "Hand-poured soy candle with calming lavender essential oil",
		ImageURL:    "/images/lavender-dreams.jpg",
	},
	{
		Name:        "Vanilla Bean & Honey",
		Category:    "Scented Candles",
		Price:       29.99,
		Stock:       12,
		Description: "Warm vanilla bean blended with golden wildflower honey",
		ImageURL:    "/images/vanilla-bean-honey.jpg",
	},
	{
		Name:        "Ocean Breeze Collection",
		Category:    "Gift Sets",
		Price:       49.99,
		Stock:       0,
		Description: "Three coastal scented candles in a reusable gift box",
		ImageURL:    "/images/ocean-breeze.jpg",
	},
}

// Seed fills an empty catalog with the demo categories and products. It does
// nothing when categories already exist. Products are created through the
// product service so category counts are maintained the normal way.
func (a *App) Seed(ctx context.Context) error {
	existing, err := a.Categories.GetAllCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing categories: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("Catalog already has %d categories, skipping seed", len(existing))
		return nil
	}

	for _, c := range seedCategories {
		if _, err := a.Categories.CreateCategory(ctx, c.name, c.description); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.name, err)
		}
	}
	for _, p := range seedProducts {
		product, err := a.Products.CreateProduct(ctx, p)
		if err != nil && !errors.Is(err, services.ErrStaleCount) {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		log.Printf("Seeded product: %s (ID: %s)", product.Name, product.ID)
	}
	return nil
}
