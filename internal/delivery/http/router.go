package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/collisions/internal/domain"
	"github.com/smartcity/collisions/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, dashboardSvc *service.DashboardService, source domain.RowSource) {
	handler := NewHandler(dashboardSvc, source)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/dashboard", handler.GetDashboard)

		collisions := api.Group("/collisions")
		collisions.Get("/points", handler.GetPoints)
		collisions.Get("/hour", handler.GetHourWindow)
		collisions.Get("/raw", handler.GetRawData)

		api.Get("/streets/top", handler.GetTopStreets)
	}
}
