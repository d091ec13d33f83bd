package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/collisions/internal/domain"
	"github.com/smartcity/collisions/internal/service"
	"github.com/smartcity/collisions/pkg/utils"
)

const (
	defaultRawLimit = 100
	maxRawLimit     = 1000
)

// healthChecker is implemented by sources that can report connectivity
type healthChecker interface {
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
	source       domain.RowSource
}

// NewHandler creates a new handler
func NewHandler(dashboardSvc *service.DashboardService, source domain.RowSource) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
		source:       source,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if hc, ok := h.source.(healthChecker); ok {
		if err := hc.Health(c.Context()); err != nil {
			log.Printf("Health check failed: %v", err)
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"service": "collisions-dashboard",
		"source":  h.source.Name(),
		"version": "1.0.0",
	})
}

// GetDashboard returns every view for the selected parameters
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	threshold, err := queryInt(c, "injured", 0)
	if err != nil {
		return err
	}
	hour, err := queryInt(c, "hour", 0)
	if err != nil {
		return err
	}
	precision, err := queryInt(c, "precision", service.DefaultGeohashPrecision)
	if err != nil {
		return err
	}
	category, err := queryCategory(c)
	if err != nil {
		return err
	}

	data, err := h.dashboardSvc.Overview(c.Context(), domain.Params{
		InjuredThreshold: threshold,
		Hour:             hour,
		Category:         category,
		Precision:        precision,
	})
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetPoints returns collision locations with at least N injured people
func (h *Handler) GetPoints(c *fiber.Ctx) error {
	threshold, err := queryInt(c, "injured", 0)
	if err != nil {
		return err
	}

	view, err := h.dashboardSvc.Points(c.Context(), threshold)
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
		"count":   len(view.Points),
	})
}

// GetHourWindow returns the hexagon points, minute histogram and density for one hour
func (h *Handler) GetHourWindow(c *fiber.Ctx) error {
	hour, err := queryInt(c, "hour", 0)
	if err != nil {
		return err
	}
	precision, err := queryInt(c, "precision", service.DefaultGeohashPrecision)
	if err != nil {
		return err
	}

	window, err := h.dashboardSvc.HourWindow(c.Context(), hour, precision)
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    window,
	})
}

// GetTopStreets returns the streets with the most injured road users
func (h *Handler) GetTopStreets(c *fiber.Ctx) error {
	category, err := queryCategory(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", domain.DefaultTopLimit)
	if err != nil {
		return err
	}

	view, err := h.dashboardSvc.TopStreets(c.Context(), category, limit)
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}

// GetRawData returns a page of the canonical table
func (h *Handler) GetRawData(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", defaultRawLimit)
	if err != nil {
		return err
	}
	limit = utils.ClampInt(limit, 1, maxRawLimit)

	var hour *int
	if c.Query("hour") != "" {
		v, err := queryInt(c, "hour", 0)
		if err != nil {
			return err
		}
		hour = &v
	}

	view, err := h.dashboardSvc.RawRows(c.Context(), hour, limit)
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
		"count":   len(view.Rows),
	})
}

func queryInt(c *fiber.Ctx, key string, defaultValue int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s: %q", key, v))
	}
	return n, nil
}

func queryCategory(c *fiber.Ctx) (domain.Category, error) {
	v := c.Query("category")
	if v == "" {
		return domain.Pedestrians, nil
	}
	var category domain.Category
	if err := category.UnmarshalText([]byte(v)); err != nil {
		labels := make([]string, 0, len(domain.Categories))
		for _, cat := range domain.Categories {
			labels = append(labels, cat.String())
		}
		return 0, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Invalid category %q, expected one of: %s", v, strings.Join(labels, ", ")))
	}
	return category, nil
}

// toFiberError maps service errors onto HTTP status codes
func toFiberError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSourceUnavailable):
		log.Printf("Collision source unavailable: %v", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "Collision data source unavailable")
	default:
		log.Printf("Request failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
}

// ErrorHandler renders every error as a JSON body
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
