package handlers

import (
	"candleshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles storefront cart and checkout requests.
type CartHandler struct {
	carts    *services.CartService
	orders   *services.OrderService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, orders *services.OrderService) *CartHandler {
	return &CartHandler{carts: carts, orders: orders, validate: validator.New()}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts/:cartId")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:itemId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:itemId", h.HandleRemoveItem)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// AddItemRequest is the body of an add-to-cart request.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// UpdateItemRequest is the body of a quantity change.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.carts.GetCart(c.UserContext(), c.Params("cartId"))
	if err != nil {
		return respondError(c, "retrieving cart", err)
	}
	return c.JSON(fiber.Map{"cart": cart, "total": cart.Total()})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	cart, err := h.carts.AddItem(c.UserContext(), c.Params("cartId"), req.ProductID)
	if err != nil {
		return respondError(c, "adding item to cart", err)
	}
	return c.JSON(fiber.Map{"cart": cart, "total": cart.Total()})
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	cart, err := h.carts.UpdateQuantity(c.UserContext(), c.Params("cartId"), c.Params("itemId"), *req.Quantity)
	if err != nil {
		return respondError(c, "updating cart item", err)
	}
	return c.JSON(fiber.Map{"cart": cart, "total": cart.Total()})
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.carts.RemoveItem(c.UserContext(), c.Params("cartId"), c.Params("itemId"))
	if err != nil {
		return respondError(c, "removing cart item", err)
	}
	return c.JSON(fiber.Map{"cart": cart, "total": cart.Total()})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.carts.ClearCart(c.UserContext(), c.Params("cartId")); err != nil {
		return respondError(c, "clearing cart", err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// HandleCheckout places an order for the cart contents.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	order, err := h.orders.Checkout(c.UserContext(), c.Params("cartId"), input)
	if err != nil {
		return respondError(c, "placing order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
