package handlers

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"candleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ImageFormField is the multipart field carrying a new product image.
const ImageFormField = "file-upload"

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Post("/validate", h.HandleValidateProduct)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/move", h.HandleMoveProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, "retrieving products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "retrieving product", err)
	}
	return c.JSON(product)
}

// HandleValidateProduct runs the product form checks without saving.
func (h *ProductHandler) HandleValidateProduct(c *fiber.Ctx) error {
	input, err := parseProductInput(c)
	if err != nil {
		return badBody(c, err)
	}
	errs := h.service.Validate(input)
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}
	return c.JSON(fiber.Map{"message": "Product is valid", "errors": fiber.Map{}})
}

// HandleCreateProduct creates a new product from JSON or a multipart form.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, err := parseProductInput(c)
	if err != nil {
		return badBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if product == nil {
		return respondError(c, "creating product", err)
	}
	return respondWithWarning(c, fiber.StatusCreated, "Product created successfully", product, err)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	ctx := c.UserContext()
	existing, err := h.service.GetProductByID(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, "retrieving product", err)
	}

	input, err := parseProductInput(c)
	if err != nil {
		return badBody(c, err)
	}

	product, err := h.service.UpdateProduct(ctx, existing, input)
	if product == nil {
		return respondError(c, "updating product", err)
	}
	return respondWithWarning(c, fiber.StatusOK, "Product updated successfully", product, err)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	ctx := c.UserContext()
	existing, err := h.service.GetProductByID(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, "retrieving product", err)
	}

	err = h.service.DeleteProduct(ctx, existing)
	if err != nil && !isStaleCount(err) {
		return respondError(c, "deleting product", err)
	}
	return respondWithWarning(c, fiber.StatusOK, "Product deleted successfully", nil, err)
}

// MoveRequest is the body of a move-product request.
type MoveRequest struct {
	Category string `json:"category"`
}

// HandleMoveProduct moves a product to another category.
func (h *ProductHandler) HandleMoveProduct(c *fiber.Ctx) error {
	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	ctx := c.UserContext()
	existing, err := h.service.GetProductByID(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, "retrieving product", err)
	}

	product, err := h.service.MoveProduct(ctx, existing, req.Category)
	if product == nil {
		return respondError(c, "moving product", err)
	}
	return respondWithWarning(c, fiber.StatusOK, fmt.Sprintf("Product moved to %s", product.Category), product, err)
}

// parseProductInput reads the product form from a JSON body or from a
// multipart form with an optional image file.
func parseProductInput(c *fiber.Ctx) (services.ProductInput, error) {
	var input services.ProductInput
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		err := c.BodyParser(&input)
		return input, err
	}

	input.Name = c.FormValue("name")
	input.Category = c.FormValue("category")
	input.Description = c.FormValue("description")
	input.ImageURL = c.FormValue("imageUrl")
	input.Price = parseFloatField(c.FormValue("price"))
	input.Stock = parseIntField(c.FormValue("stock"))

	fh, err := c.FormFile(ImageFormField)
	if err != nil {
		// No file selected.
		return input, nil
	}
	f, err := fh.Open()
	if err != nil {
		return input, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return input, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	input.Image = &services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Data:        data,
	}
	return input, nil
}

// parseFloatField returns 0 for an unparsable or non-finite value so
// validation reports it.
func parseFloatField(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// parseIntField returns -1 for an unparsable value so validation reports it.
// Out-of-range values are clamped to the nearest int.
func parseIntField(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if errors.Is(err, strconv.ErrRange) {
		return n
	}
	if err != nil {
		return -1
	}
	return n
}
