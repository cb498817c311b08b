package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"candleshop/internal/database"
	"candleshop/internal/handlers"
	"candleshop/internal/middleware"
	"candleshop/internal/models"
	"candleshop/internal/repositories"
	"candleshop/internal/services"
	"candleshop/pkg/cache"
	"candleshop/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@candleshop.test"
	adminPassword = "wick-and-wax"
)

type testEnv struct {
	app      *fiber.App
	view     *services.CatalogView
	products repositories.ProductRepository
	token    string
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services, seeded with three categories and an admin account.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.Migrate(db))

	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	cartRepo := repositories.NewMockCartRepository()

	view := services.NewCatalogView()
	require.NoError(t, view.Load(ctx, categoryRepo, productRepo))

	storefront := services.NewStorefrontService(categoryRepo, productRepo, cache.NewMemoryCache(), time.Minute)
	counter := services.NewCategoryCounter(categoryRepo, view)
	blobs := storage.NewDiskStore(afero.NewMemMapFs(), "uploads", "/uploads")

	productService := services.NewProductService(productRepo, counter, view, blobs, nil, storefront)
	categoryService := services.NewCategoryService(categoryRepo, view, nil, storefront)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, nil)
	cartService := services.NewCartService(cartRepo, productRepo)
	authService := services.NewAuthService(userRepo, "test_jwt_secret", time.Hour)

	for _, name := range []string{"Scented Candles", "Unscented Candles", "Gift Sets"} {
		_, err := categoryService.CreateCategory(ctx, name, name+" collection")
		require.NoError(t, err)
	}
	_, err = authService.CreateAdmin(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewStorefrontHandler(storefront).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, orderService).RegisterRoutes(apiV1)

	admin := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewProductHandler(productService).RegisterRoutes(admin)
	handlers.NewCategoryHandler(categoryService, productService).RegisterRoutes(admin)
	handlers.NewOrderHandler(orderService).RegisterRoutes(admin)
	handlers.NewDashboardHandler(services.NewDashboardService(view, orderRepo)).RegisterRoutes(admin)

	env := &testEnv{app: app, view: view, products: productRepo}
	env.token = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// do sends a JSON request, authenticated with the admin token when auth is set.
func (e *testEnv) do(t *testing.T, method, path string, payload interface{}, auth bool) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) categoryCounts(t *testing.T) map[string]int {
	t.Helper()
	resp := e.do(t, http.MethodGet, "/api/v1/categories", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []models.Category
	decode(t, resp, &categories)
	counts := map[string]int{}
	for _, c := range categories {
		counts[c.Name] = c.ProductCount
	}
	return counts
}

func (e *testEnv) createProduct(t *testing.T, name, category string, stock int) models.Product {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        name,
		"category":    category,
		"price":       19.99,
		"stock":       stock,
		"description": "Hand-poured soy wax candle",
		"imageUrl":    "/images/candle.jpg",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Data models.Product `json:"data"`
	}
	decode(t, resp, &body)
	return body.Data
}

func TestAuthLoginAndAccess(t *testing.T) {
	env := setupApp(t)

	// Wrong password
	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    adminEmail,
		"password": "not-the-password",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// No token
	resp = env.do(t, http.MethodGet, "/api/v1/products", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Bad header format
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Token "+env.token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Cookie
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookie, Value: env.token})
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Bearer
	resp = env.do(t, http.MethodGet, "/api/v1/products", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProductLifecycleKeepsCountsInStep(t *testing.T) {
	env := setupApp(t)

	lavender := env.createProduct(t, "Lavender Dreams", "Scented Candles", 45)
	assert.Equal(t, models.StatusInStock, lavender.Status)
	env.createProduct(t, "Vanilla Bean", "Scented Candles", 3)
	assert.Equal(t, 2, env.categoryCounts(t)["Scented Candles"])

	// Update with a category change
	resp := env.do(t, http.MethodPut, "/api/v1/products/"+lavender.ID, map[string]interface{}{
		"name":        "Lavender Dreams",
		"category":    "Unscented Candles",
		"price":       21.50,
		"stock":       0,
		"description": "Hand-poured soy wax candle",
		"imageUrl":    "/images/candle.jpg",
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		Data models.Product `json:"data"`
	}
	decode(t, resp, &updated)
	assert.Equal(t, "Unscented Candles", updated.Data.Category)
	assert.Equal(t, models.StatusOutOfStock, updated.Data.Status)

	counts := env.categoryCounts(t)
	assert.Equal(t, 1, counts["Scented Candles"])
	assert.Equal(t, 1, counts["Unscented Candles"])

	// Move
	resp = env.do(t, http.MethodPost, "/api/v1/products/"+lavender.ID+"/move", handlers.MoveRequest{Category: "Gift Sets"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	counts = env.categoryCounts(t)
	assert.Equal(t, 0, counts["Unscented Candles"])
	assert.Equal(t, 1, counts["Gift Sets"])

	// Moving to the same category is rejected
	resp = env.do(t, http.MethodPost, "/api/v1/products/"+lavender.ID+"/move", handlers.MoveRequest{Category: "Gift Sets"}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Products by category
	resp = env.do(t, http.MethodGet, "/api/v1/categories/Gift%20Sets/products", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inGiftSets []models.Product
	decode(t, resp, &inGiftSets)
	require.Len(t, inGiftSets, 1)
	assert.Equal(t, lavender.ID, inGiftSets[0].ID)

	// Delete
	resp = env.do(t, http.MethodDelete, "/api/v1/products/"+lavender.ID, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, env.categoryCounts(t)["Gift Sets"])

	resp = env.do(t, http.MethodGet, "/api/v1/products/"+lavender.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateProductValidation(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "ab",
		"price":       0,
		"stock":       -2,
		"description": "short",
	}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Product name must be at least 3 characters long", body.Errors["name"])
	assert.Equal(t, "Price must be greater than 0", body.Errors["price"])
	assert.Equal(t, "Stock cannot be negative", body.Errors["stock"])
	assert.Equal(t, "Please select a category", body.Errors["category"])
	assert.Equal(t, "Description must be at least 10 characters long", body.Errors["description"])
	assert.Equal(t, "Please upload a product image", body.Errors["image"])

	// Nothing was written and no count moved.
	all, err := env.products.GetAll(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
	for name, count := range env.categoryCounts(t) {
		assert.Zero(t, count, name)
	}

	// The validate endpoint reports without saving.
	resp = env.do(t, http.MethodPost, "/api/v1/products/validate", map[string]interface{}{
		"name":        "Cedar Glow",
		"category":    "Scented Candles",
		"price":       12,
		"stock":       4,
		"description": "Cedarwood and amber in a tin",
		"imageUrl":    "/images/cedar.jpg",
	}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// postMultipart sends the product form as multipart/form-data, with a PNG
// image part when image is set.
func (e *testEnv) postMultipart(t *testing.T, fields map[string]string, image bool) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="seaside pillar.png"`, handlers.ImageFormField))
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func seasideForm() map[string]string {
	return map[string]string{
		"name":        "Seaside Pillar",
		"category":    "Gift Sets",
		"price":       "34.00",
		"stock":       "8",
		"description": "Tall pillar candle with sea salt notes",
	}
}

func TestCreateProductMultipartUpload(t *testing.T) {
	env := setupApp(t)

	resp := env.postMultipart(t, seasideForm(), true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data models.Product `json:"data"`
	}
	decode(t, resp, &body)
	require.NotNil(t, body.Data.ImageURL)
	assert.Contains(t, *body.Data.ImageURL, "/uploads/products/")
	assert.Contains(t, *body.Data.ImageURL, "seaside_pillar.png")
	assert.Equal(t, models.StatusLowStock, body.Data.Status)
	assert.Equal(t, 1, env.categoryCounts(t)["Gift Sets"])
}

func TestCreateProductMultipartRejectsInfinitePrice(t *testing.T) {
	env := setupApp(t)

	for _, price := range []string{"Inf", "+Inf", "-Infinity", "NaN"} {
		form := seasideForm()
		form["price"] = price
		resp := env.postMultipart(t, form, true)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, price)

		var body struct {
			Errors map[string]string `json:"errors"`
		}
		decode(t, resp, &body)
		assert.Equal(t, map[string]string{"price": "Price must be greater than 0"}, body.Errors, price)
	}

	all, err := env.products.GetAll(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 0, env.categoryCounts(t)["Gift Sets"])

	// Listings still encode.
	resp := env.do(t, http.MethodGet, "/api/v1/products", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = env.do(t, http.MethodGet, "/api/v1/store/products", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateProductMultipartClampsHugeStock(t *testing.T) {
	env := setupApp(t)

	form := seasideForm()
	form["stock"] = "99999999999999999999"
	resp := env.postMultipart(t, form, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data models.Product `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, math.MaxInt, body.Data.Stock)
	assert.Equal(t, models.StatusInStock, body.Data.Status)

	form["stock"] = "-99999999999999999999"
	resp = env.postMultipart(t, form, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, resp, &invalid)
	assert.Equal(t, "Stock cannot be negative", invalid.Errors["stock"])
}

func TestReconcileEndpoint(t *testing.T) {
	env := setupApp(t)
	env.createProduct(t, "Birch Taper", "Unscented Candles", 20)

	// Insert a product behind the services' back so the stored count drifts.
	require.NoError(t, env.products.Create(context.Background(), &models.Product{
		Name:        "Stray Votive",
		Category:    "Unscented Candles",
		Price:       4,
		Stock:       30,
		Description: "Inserted without the counter",
	}))
	assert.Equal(t, 1, env.categoryCounts(t)["Unscented Candles"])

	resp := env.do(t, http.MethodPost, "/api/v1/categories/reconcile", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, float64(1), body["corrected"])
	assert.Equal(t, 2, env.categoryCounts(t)["Unscented Candles"])
}

func TestCategoryCRUD(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": ""}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Seasonal Collections"}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, resp, &invalid)
	assert.Equal(t, "Category description is required", invalid.Errors["description"])

	resp = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{
		"name":        "Seasonal Collections",
		"description": "Limited edition holiday and seasonal candles",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Category
	decode(t, resp, &created)
	assert.Zero(t, created.ProductCount)

	// A product can now be filed under the new category.
	env.createProduct(t, "Pumpkin Spice", "Seasonal Collections", 15)
	assert.Equal(t, 1, env.categoryCounts(t)["Seasonal Collections"])

	resp = env.do(t, http.MethodDelete, "/api/v1/categories/"+created.ID, nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/categories/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStorefrontCartAndCheckout(t *testing.T) {
	env := setupApp(t)
	wick := env.createProduct(t, "Cotton Wick Jar", "Unscented Candles", 25)
	env.createProduct(t, "Amber Noir", "Scented Candles", 5)

	resp := env.do(t, http.MethodGet, "/api/v1/store/products?category=Unscented%20Candles", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.Product
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, wick.ID, listed[0].ID)

	// Add twice, the second add bumps the quantity.
	for i := 0; i < 2; i++ {
		resp = env.do(t, http.MethodPost, "/api/v1/carts/cart-1/items", map[string]string{"productId": wick.ID}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp = env.do(t, http.MethodGet, "/api/v1/carts/cart-1", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cartBody struct {
		Cart  models.Cart `json:"cart"`
		Total float64     `json:"total"`
	}
	decode(t, resp, &cartBody)
	require.Len(t, cartBody.Cart.Items, 1)
	assert.Equal(t, 2, cartBody.Cart.Items[0].Quantity)
	assert.InDelta(t, 39.98, cartBody.Total, 0.001)

	// Checkout needs customer details.
	resp = env.do(t, http.MethodPost, "/api/v1/carts/cart-1/checkout", map[string]string{"customer": "Ada"}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/carts/cart-1/checkout", map[string]string{
		"customer": "Ada Lovelace",
		"email":    "ada@example.com",
	}, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.InDelta(t, 39.98, order.Total, 0.001)

	// Admin side
	resp = env.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", map[string]string{"status": "Shipped"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/orders?status=shipped", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decode(t, resp, &orders)
	assert.Len(t, orders, 1)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats services.DashboardStats
	decode(t, resp, &stats)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 3, stats.TotalCategories)
	assert.Equal(t, 1, stats.ActiveOrders)
	assert.Equal(t, 1, stats.TotalCustomers)
}
