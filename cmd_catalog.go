package main

import (
	"fmt"

	"candleshop/internal/config"
	"candleshop/internal/database"
	"candleshop/internal/repositories"
	"candleshop/internal/services"
	"candleshop/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

var (
	reconcileAsync bool
	adminEmail     string
	adminPassword  string
)

// candleshop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cfg.StoreDriver == config.StoreMemory {
			fmt.Println("Memory store selected, nothing to migrate")
			return nil
		}

		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer database.Close(db)
		fmt.Println("Running migrations…")
		if err := database.Migrate(db); err != nil {
			return err
		}

		if cfg.StoreDriver == config.StoreMongo {
			client, mdb, err := repositories.ConnectMongo(cmd.Context(), cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return err
			}
			defer client.Disconnect(cmd.Context())
			fmt.Println("Ensuring MongoDB indexes…")
			return repositories.EnsureMongoIndexes(cmd.Context(), mdb)
		}
		return nil
	},
}

// candleshop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo categories and products into an empty catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Println("Running seeders…")
		return a.Seed(cmd.Context())
	},
}

// candleshop reconcile
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every category product count from the products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reconcileAsync {
			return requestReconcile(cmd)
		}

		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		corrected, err := a.Products.ReconcileCounts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Reconciled category counts, %d corrected\n", corrected)
		return nil
	},
}

// requestReconcile asks a running server to reconcile over the broker.
func requestReconcile(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("--async needs RABBITMQ_URL")
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Publish(cmd.Context(), services.RoutingKeyReconcileOrder, map[string]string{"requestedBy": "cli"}); err != nil {
		return err
	}
	fmt.Println("Reconcile request published")
	return nil
}

// candleshop create-admin
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account for the back-office",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Auth.CreateAdmin(cmd.Context(), adminEmail, adminPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Created admin %s (ID: %s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileAsync, "async", false, "publish a reconcile request to the broker instead of running it here")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (at least 8 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
