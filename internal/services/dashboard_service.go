package services

import (
	"context"
	"strings"

	"candleshop/internal/models"
	"candleshop/internal/repositories"
)

// DashboardStats are the headline numbers of the admin dashboard.
type DashboardStats struct {
	TotalProducts   int `json:"totalProducts"`
	TotalCategories int `json:"totalCategories"`
	ActiveOrders    int `json:"activeOrders"`
	TotalCustomers  int `json:"totalCustomers"`
}

// DashboardService aggregates the dashboard numbers.
type DashboardService struct {
	view   *CatalogView
	orders repositories.OrderRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(view *CatalogView, orders repositories.OrderRepository) *DashboardService {
	return &DashboardService{view: view, orders: orders}
}

// Stats counts products and categories from the catalog view, and active
// orders (processing or shipped) and distinct customer emails from the
// order store.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalProducts:   s.view.ProductCount(),
		TotalCategories: len(s.view.Categories()),
	}
	customers := make(map[string]struct{})
	for _, o := range orders {
		if o.Status == models.OrderProcessing || o.Status == models.OrderShipped {
			stats.ActiveOrders++
		}
		customers[strings.ToLower(o.Email)] = struct{}{}
	}
	stats.TotalCustomers = len(customers)
	return stats, nil
}
