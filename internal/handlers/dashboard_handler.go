package handlers

import (
	"candleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the admin dashboard numbers.
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers the dashboard route with the Fiber app.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleGetStats)
}

func (h *DashboardHandler) HandleGetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, "retrieving dashboard", err)
	}
	return c.JSON(stats)
}
