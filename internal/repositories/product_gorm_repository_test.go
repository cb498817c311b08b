package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"candleshop/internal/models"
	"candleshop/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Category{}, &models.Order{}, &models.User{}))
	return db
}

func TestGORMProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	now := time.Now().UTC().Truncate(time.Second)
	product := &models.Product{
		Name:        "Lavender Dreams Candle",
		Category:    "Scented Candles",
		Price:       24.99,
		Stock:       45,
		Status:      models.StatusInStock,
		Description: "Hand-poured soy candle with lavender oil",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Create(ctx, product))
	assert.NotEmpty(t, product.ID)

	fetched, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, fetched.Name)
	assert.Nil(t, fetched.ImageURL)

	url := "https://cdn.example.com/lavender.png"
	err = repo.Update(ctx, product.ID, repositories.Fields{
		models.FieldCategory:  "Gift Sets",
		models.FieldStock:     3,
		models.FieldStatus:    models.StatusLowStock,
		models.FieldImageURL:  &url,
		models.FieldUpdatedAt: now.Add(time.Minute),
	})
	require.NoError(t, err)

	fetched, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gift Sets", fetched.Category)
	assert.Equal(t, 3, fetched.Stock)
	assert.Equal(t, models.StatusLowStock, fetched.Status)
	require.NotNil(t, fetched.ImageURL)
	assert.Equal(t, url, *fetched.ImageURL)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err = repo.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMProductRepository_MissingDocuments(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	err := repo.Update(ctx, "missing", repositories.Fields{models.FieldStock: 1})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Delete(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.GetAll(ctx, "price; DROP TABLE products")
	assert.Error(t, err)
}

func TestGORMCategoryRepository_OrderedList(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCategoryRepository(openTestDB(t))

	for _, name := range []string{"Seasonal Collections", "Gift Sets", "Scented Candles"} {
		require.NoError(t, repo.Create(ctx, &models.Category{Name: name}))
	}

	categories, err := repo.GetAll(ctx, models.FieldName)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Gift Sets", categories[0].Name)
	assert.Equal(t, "Scented Candles", categories[1].Name)
	assert.Equal(t, "Seasonal Collections", categories[2].Name)

	require.NoError(t, repo.Update(ctx, categories[0].ID, repositories.Fields{models.FieldProductCount: 7}))
	giftSets, err := repo.GetByID(ctx, categories[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 7, giftSets.ProductCount)
}

func TestGORMOrderRepository_ItemsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := &models.Order{
		Customer: "Sarah Johnson",
		Email:    "sarah.j@example.com",
		Items:    []models.OrderItem{{ProductID: "p1", Name: "Lavender", Quantity: 3, Price: 24.99}},
		Total:    74.97,
		Status:   models.OrderProcessing,
	}
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderShipped))
	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, fetched.Status)
	assert.Equal(t, order.Items, fetched.Items)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.OrderShipped), repositories.ErrNotFound)
}
