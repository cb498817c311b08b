// Package app wires the stores, services and HTTP routes of the storefront.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"candleshop/internal/config"
	"candleshop/internal/database"
	"candleshop/internal/handlers"
	"candleshop/internal/middleware"
	"candleshop/internal/repositories"
	"candleshop/internal/services"
	"candleshop/pkg/cache"
	"candleshop/pkg/metrics"
	"candleshop/pkg/rabbitmq"
	"candleshop/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"
)

// Dependencies are the stores and external clients the services run on.
// Events may be nil.
type Dependencies struct {
	Products   repositories.ProductRepository
	Categories repositories.CategoryRepository
	Users      repositories.UserRepository
	Orders     repositories.OrderRepository
	Carts      repositories.CartRepository
	Blobs      storage.BlobStore
	Cache      cache.Cache
	Events     services.EventPublisher
}

// App is a fully wired storefront.
type App struct {
	Config *config.Config
	Fiber  *fiber.App

	View       *services.CatalogView
	Counter    *services.CategoryCounter
	Products   *services.ProductService
	Categories *services.CategoryService
	Storefront *services.StorefrontService
	Carts      *services.CartService
	Orders     *services.OrderService
	Dashboard  *services.DashboardService
	Auth       *services.AuthService

	mq      *rabbitmq.Client
	closers []func() error
}

// New opens every store and client named by cfg and builds the App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	var deps Dependencies
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if err := openStores(ctx, cfg, &deps, &closers); err != nil {
		closeAll()
		return nil, err
	}

	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, client.Close)
		deps.Cache = cache.NewRedisCache(client)
		deps.Carts = repositories.NewRedisCartRepository(client, cfg.CartTTL)
	} else {
		log.Println("REDIS_ADDR not set, using in-memory cache and carts")
		deps.Cache = cache.NewMemoryCache()
		deps.Carts = repositories.NewMockCartRepository()
	}

	switch cfg.BlobDriver {
	case config.BlobS3:
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3AccessKey,
			Secret:   cfg.S3SecretKey,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3PublicURL,
		})
		if err != nil {
			closeAll()
			return nil, err
		}
		deps.Blobs = s3Store
	default:
		deps.Blobs = storage.NewDiskStore(afero.NewOsFs(), cfg.UploadDir, cfg.UploadURL)
	}

	var mq *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			closeAll()
			return nil, err
		}
		mq = client
		closers = append(closers, client.Close)
		deps.Events = client
	} else {
		log.Println("RABBITMQ_URL not set, domain events are disabled")
	}

	a, err := Build(ctx, cfg, deps)
	if err != nil {
		closeAll()
		return nil, err
	}
	a.mq = mq
	a.closers = closers
	return a, nil
}

func openStores(ctx context.Context, cfg *config.Config, deps *Dependencies, closers *[]func() error) error {
	if cfg.StoreDriver == config.StoreMemory {
		deps.Products = repositories.NewMockProductRepository()
		deps.Categories = repositories.NewMockCategoryRepository()
		deps.Users = repositories.NewMockUserRepository()
		deps.Orders = repositories.NewMockOrderRepository()
		return nil
	}

	// Accounts and orders always live in the SQL store.
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	*closers = append(*closers, func() error { return database.Close(db) })
	if err := database.Migrate(db); err != nil {
		return err
	}
	deps.Users = repositories.NewGORMUserRepository(db)
	deps.Orders = repositories.NewGORMOrderRepository(db)

	if cfg.StoreDriver == config.StoreMongo {
		client, mdb, err := repositories.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		*closers = append(*closers, func() error { return client.Disconnect(context.Background()) })
		if err := repositories.EnsureMongoIndexes(ctx, mdb); err != nil {
			return err
		}
		deps.Products = repositories.NewMongoProductRepository(mdb)
		deps.Categories = repositories.NewMongoCategoryRepository(mdb)
		return nil
	}

	deps.Products = repositories.NewGORMProductRepository(db)
	deps.Categories = repositories.NewGORMCategoryRepository(db)
	return nil
}

// Build wires services and routes on top of deps and loads the catalog view.
func Build(ctx context.Context, cfg *config.Config, deps Dependencies) (*App, error) {
	view := services.NewCatalogView()
	if err := view.Load(ctx, deps.Categories, deps.Products); err != nil {
		return nil, err
	}

	storefront := services.NewStorefrontService(deps.Categories, deps.Products, deps.Cache, cfg.CacheTTL)
	counter := services.NewCategoryCounter(deps.Categories, view)

	a := &App{
		Config:     cfg,
		View:       view,
		Counter:    counter,
		Storefront: storefront,
		Products:   services.NewProductService(deps.Products, counter, view, deps.Blobs, deps.Events, storefront),
		Categories: services.NewCategoryService(deps.Categories, view, deps.Events, storefront),
		Carts:      services.NewCartService(deps.Carts, deps.Products),
		Orders:     services.NewOrderService(deps.Orders, deps.Products, deps.Carts, deps.Events),
		Dashboard:  services.NewDashboardService(view, deps.Orders),
		Auth:       services.NewAuthService(deps.Users, cfg.JWTSecret, cfg.TokenTTL),
	}

	if cfg.SeedData {
		if err := a.Seed(ctx); err != nil {
			return nil, err
		}
	}

	a.Fiber = a.routes()
	return a, nil
}

func (a *App) routes() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "candleshop",
		BodyLimit: 6 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware())

	apiV1 := app.Group("/api/v1")

	// Public routes
	handlers.NewAuthHandler(a.Auth).RegisterRoutes(apiV1)
	handlers.NewStorefrontHandler(a.Storefront).RegisterRoutes(apiV1)
	handlers.NewCartHandler(a.Carts, a.Orders).RegisterRoutes(apiV1)

	// Admin routes
	admin := apiV1.Group("", middleware.AuthRequired(a.Auth))
	handlers.NewProductHandler(a.Products).RegisterRoutes(admin)
	handlers.NewCategoryHandler(a.Categories, a.Products).RegisterRoutes(admin)
	handlers.NewOrderHandler(a.Orders).RegisterRoutes(admin)
	handlers.NewDashboardHandler(a.Dashboard).RegisterRoutes(admin)

	if a.Config.BlobDriver == config.BlobLocal {
		app.Static(a.Config.UploadURL, a.Config.UploadDir)
	}

	app.Get("/metrics", metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"store":    a.Config.StoreDriver,
			"events":   a.mq != nil,
			"products": a.View.ProductCount(),
		})
	})

	return app
}

// StartConsumers subscribes to the broker queues. It is a no-op without a
// RabbitMQ connection.
func (a *App) StartConsumers() error {
	if a.mq == nil {
		return nil
	}
	if err := a.mq.Consume("catalog.reconcile", services.RoutingKeyReconcileOrder, false, a.handleReconcileRequest); err != nil {
		return fmt.Errorf("failed to start reconcile consumer: %w", err)
	}
	if err := a.mq.Consume("order.notifications", "order.*", false, handleOrderEvent); err != nil {
		return fmt.Errorf("failed to start order consumer: %w", err)
	}
	return nil
}

// Close releases every store and client opened by New.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
