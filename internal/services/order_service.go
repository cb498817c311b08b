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
)

// ErrInsufficientStock is returned by Checkout when a cart line asks for more
// units than the product has.
var ErrInsufficientStock = errors.New("insufficient stock")

// CheckoutInput carries the customer details of an order.
type CheckoutInput struct {
	Customer string `json:"customer" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// OrderEvent is the payload of order events.
type OrderEvent struct {
	OrderID    string             `json:"orderId"`
	Email      string             `json:"email"`
	Status     models.OrderStatus `json:"status"`
	Total      float64            `json:"total"`
	Items      int                `json:"items"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	carts       repositories.CartRepository
	events      EventPublisher
	now         func() time.Time
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, carts repositories.CartRepository, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		events:      events,
		now:         time.Now,
	}
}

// GetAllOrders retrieves all orders, newest first. A non-empty status keeps
// only orders in that status.
func (s *OrderService) GetAllOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return orders, nil
	}
	filtered := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if strings.EqualFold(string(o.Status), string(status)) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// Checkout turns a cart into an order. Lines with quantity 0 are ignored,
// prices are taken from the current products, and the cart is cleared once
// the order was stored.
func (s *OrderService) Checkout(ctx context.Context, cartID string, input CheckoutInput) (*models.Order, error) {
	input.Customer = strings.TrimSpace(input.Customer)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	errs := ValidationErrors{}
	if err := validate.Struct(input); err != nil {
		if validate.Var(input.Customer, "required") != nil {
			errs["customer"] = "Customer name is required"
		}
		if validate.Var(input.Email, "required,email") != nil {
			errs["email"] = "A valid email address is required"
		}
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}

	var items []models.OrderItem
	for _, line := range cart.Items {
		if line.Quantity > 0 {
			items = append(items, models.OrderItem{ProductID: line.ID, Quantity: line.Quantity})
		}
	}
	if len(items) == 0 {
		errs["cart"] = "Your cart is empty"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var total float64
	for i := range items {
		product, err := s.productRepo.GetByID(ctx, items[i].ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", items[i].ProductID, err)
		}
		if product.Stock < items[i].Quantity {
			return nil, fmt.Errorf("%w for product %s (requested: %d, available: %d)", ErrInsufficientStock, product.Name, items[i].Quantity, product.Stock)
		}
		items[i].Name = product.Name
		items[i].Price = product.Price
		total += product.Price * float64(items[i].Quantity)
	}

	now := s.now()
	order := &models.Order{
		Customer:  input.Customer,
		Email:     input.Email,
		Items:     items,
		Total:     total,
		Status:    models.OrderProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrWrite, err)
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		log.Printf("Warning: order %s created but cart %s not cleared: %v", order.ID, cartID, err)
	}

	publish(ctx, s.events, EventOrderCreated, s.event(order))
	return order, nil
}

// UpdateOrderStatus moves an order to another fulfilment status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ValidationErrors{"status": fmt.Sprintf("Invalid order status: %s", status)}
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update status of order %s: %v", ErrWrite, id, err)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventOrderStatusUpdated, s.event(order))
	return order, nil
}

func (s *OrderService) event(order *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:    order.ID,
		Email:      order.Email,
		Status:     order.Status,
		Total:      order.Total,
		Items:      order.ItemCount(),
		OccurredAt: s.now(),
	}
}
