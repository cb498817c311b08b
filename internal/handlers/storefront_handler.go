package handlers

import (
	"candleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StorefrontHandler serves the public catalog.
type StorefrontHandler struct {
	service *services.StorefrontService
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(service *services.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{service: service}
}

// RegisterRoutes registers the public catalog routes with the Fiber app.
func (h *StorefrontHandler) RegisterRoutes(router fiber.Router) {
	store := router.Group("/store")
	store.Get("/categories", h.HandleGetCategories)
	store.Get("/products", h.HandleGetProducts)
	store.Get("/products/:id", h.HandleGetProduct)
}

func (h *StorefrontHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, "retrieving categories", err)
	}
	return c.JSON(categories)
}

// HandleGetProducts lists products, newest first, filtered by ?category=.
func (h *StorefrontHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.Products(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondError(c, "retrieving products", err)
	}
	return c.JSON(products)
}

func (h *StorefrontHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.Product(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "retrieving product", err)
	}
	return c.JSON(product)
}
