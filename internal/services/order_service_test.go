package services_test

import (
	"context"
	"errors"
	"testing"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
	"candleshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type shopFixture struct {
	products *repositories.MockProductRepository
	carts    *repositories.MockCartRepository
	orders   *repositories.MockOrderRepository
	cart     *services.CartService
	order    *services.OrderService
}

func newShopFixture(t *testing.T, events services.EventPublisher) *shopFixture {
	t.Helper()
	ctx := context.Background()
	f := &shopFixture{
		products: repositories.NewMockProductRepository(),
		carts:    repositories.NewMockCartRepository(),
		orders:   repositories.NewMockOrderRepository(),
	}
	image := "https://cdn.example.com/vanilla.jpg"
	require.NoError(t, f.products.Create(ctx, &models.Product{ID: "vanilla", Name: "Vanilla Bean", Price: 19.5, Stock: 3, ImageURL: &image}))
	require.NoError(t, f.products.Create(ctx, &models.Product{ID: "cedar", Name: "Cedar Wood", Price: 22, Stock: 20}))
	f.cart = services.NewCartService(f.carts, f.products)
	f.order = services.NewOrderService(f.orders, f.products, f.carts, events)
	return f
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t, nil)

	cart, err := f.cart.AddItem(ctx, "cart-1", "vanilla")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, "https://cdn.example.com/vanilla.jpg", cart.Items[0].Image)

	cart, err = f.cart.AddItem(ctx, "cart-1", "vanilla")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = f.cart.AddItem(ctx, "cart-1", "cedar")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.InDelta(t, 61.0, cart.Total(), 0.001)

	_, err = f.cart.AddItem(ctx, "cart-1", "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_UpdateQuantityFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t, nil)

	_, err := f.cart.AddItem(ctx, "cart-1", "cedar")
	require.NoError(t, err)

	cart, err := f.cart.UpdateQuantity(ctx, "cart-1", "cedar", -4)
	require.NoError(t, err)
	assert.Equal(t, 0, cart.Items[0].Quantity)

	cart, err = f.cart.UpdateQuantity(ctx, "cart-1", "cedar", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	_, err = f.cart.UpdateQuantity(ctx, "cart-1", "vanilla", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t, nil)

	_, _ = f.cart.AddItem(ctx, "cart-1", "cedar")
	_, _ = f.cart.AddItem(ctx, "cart-1", "vanilla")

	cart, err := f.cart.RemoveItem(ctx, "cart-1", "cedar")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "vanilla", cart.Items[0].ID)

	require.NoError(t, f.cart.ClearCart(ctx, "cart-1"))
	cart, err = f.cart.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()
	events := new(MockEventPublisher)
	f := newShopFixture(t, events)

	_, _ = f.cart.AddItem(ctx, "cart-1", "cedar")
	_, _ = f.cart.AddItem(ctx, "cart-1", "cedar")
	_, _ = f.cart.AddItem(ctx, "cart-1", "vanilla")
	_, _ = f.cart.UpdateQuantity(ctx, "cart-1", "vanilla", 0)

	// The price at checkout wins over the one captured in the cart.
	require.NoError(t, f.products.Update(ctx, "cedar", repositories.Fields{models.FieldPrice: 25.0}))

	events.On("Publish", ctx, services.EventOrderCreated, mock.MatchedBy(func(e services.OrderEvent) bool {
		return e.Items == 2 && e.Status == models.OrderProcessing
	})).Return(nil).Once()

	order, err := f.order.Checkout(ctx, "cart-1", services.CheckoutInput{Customer: "Sarah Johnson", Email: "Sarah.J@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, "sarah.j@example.com", order.Email)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Cedar Wood", order.Items[0].Name)
	assert.InDelta(t, 50.0, order.Total, 0.001)
	events.AssertExpectations(t)

	cart, err := f.cart.GetCart(ctx, "cart-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestOrderService_CheckoutRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t, nil)

	_, err := f.order.Checkout(ctx, "empty-cart", services.CheckoutInput{Customer: "", Email: "nope"})
	var verrs services.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"cart", "customer", "email"}, sortedKeys(verrs))

	for i := 0; i < 4; i++ {
		_, _ = f.cart.AddItem(ctx, "cart-2", "vanilla")
	}
	_, err = f.order.Checkout(ctx, "cart-2", services.CheckoutInput{Customer: "Mike", Email: "mike@example.com"})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	orders, err := f.order.GetAllOrders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t, nil)

	_, _ = f.cart.AddItem(ctx, "cart-1", "cedar")
	order, err := f.order.Checkout(ctx, "cart-1", services.CheckoutInput{Customer: "Emma Davis", Email: "emma@example.com"})
	require.NoError(t, err)

	updated, err := f.order.UpdateOrderStatus(ctx, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	_, err = f.order.UpdateOrderStatus(ctx, order.ID, "pending")
	var verrs services.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	_, err = f.order.UpdateOrderStatus(ctx, "missing", models.OrderDelivered)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	shipped, err := f.order.GetAllOrders(ctx, "shipped")
	require.NoError(t, err)
	assert.Len(t, shipped, 1)
	processing, err := f.order.GetAllOrders(ctx, models.OrderProcessing)
	require.NoError(t, err)
	assert.Empty(t, processing)
}

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t, nil)
	view := services.NewCatalogView()
	view.Replace(catalog(), []models.Product{{ID: "1", Category: "Gift Sets"}, {ID: "2", Category: "Gift Sets"}})

	for _, o := range []models.Order{
		{Email: "a@example.com", Status: models.OrderProcessing},
		{Email: "A@example.com", Status: models.OrderShipped},
		{Email: "b@example.com", Status: models.OrderDelivered},
		{Email: "c@example.com", Status: models.OrderCancelled},
	} {
		o := o
		require.NoError(t, f.orders.Create(ctx, &o))
	}

	stats, err := services.NewDashboardService(view, f.orders).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &services.DashboardStats{TotalProducts: 2, TotalCategories: 3, ActiveOrders: 2, TotalCustomers: 3}, stats)
}
