package handlers

import (
	"fmt"
	"net/url"

	"candleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service  *services.CategoryService
	products *services.ProductService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, products *services.ProductService) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		products: products,
	}
}

// RegisterRoutes registers the category routes with the Fiber app.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Post("/reconcile", h.HandleReconcile)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
	categoryRoutes.Get("/:name/products", h.HandleGetCategoryProducts)
}

// CategoryRequest is the body of a category create or update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleGetCategories retrieves all categories ordered by name.
func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return respondError(c, "retrieving categories", err)
	}
	return c.JSON(categories)
}

// HandleGetCategoryByID retrieves a single category.
func (h *CategoryHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	category, err := h.service.GetCategoryByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "retrieving category", err)
	}
	return c.JSON(category)
}

// HandleGetCategoryProducts lists the products filed under a category name.
func (h *CategoryHandler) HandleGetCategoryProducts(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return badBody(c, err)
	}
	products, err := h.products.GetProductsByCategory(c.UserContext(), name)
	if err != nil {
		return respondError(c, "retrieving category products", err)
	}
	return c.JSON(products)
}

// HandleCreateCategory creates a new category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	category, err := h.service.CreateCategory(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return respondError(c, "creating category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory renames or re-describes a category.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), req.Name, req.Description)
	if err != nil {
		return respondError(c, "updating category", err)
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes a category. Its products are kept.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, "deleting category", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category %s deleted successfully", id),
	})
}

// HandleReconcile recomputes every category product count.
func (h *CategoryHandler) HandleReconcile(c *fiber.Ctx) error {
	corrected, err := h.products.ReconcileCounts(c.UserContext())
	if err != nil {
		return respondError(c, "reconciling product counts", err)
	}
	return c.JSON(fiber.Map{
		"message":   "Product counts reconciled",
		"corrected": corrected,
	})
}
