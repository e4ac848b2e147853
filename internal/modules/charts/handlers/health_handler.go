package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chartgen/chartgen-api/internal/modules/charts/services"
)

// HealthHandler handles liveness and info requests
type HealthHandler struct {
	appName      string
	appVersion   string
	chartService *services.ChartService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(appName, appVersion string, chartService *services.ChartService) *HealthHandler {
	return &HealthHandler{
		appName:      appName,
		appVersion:   appVersion,
		chartService: chartService,
	}
}

// GetHealth godoc
// @Summary Health check
// @Description Report service liveness and the configured model provider
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"service":      h.appName,
		"version":      h.appVersion,
		"llm_provider": h.chartService.ProviderName(),
	})
}

// Root godoc
// @Summary Service info
// @Description Welcome message with links to the API surface
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to " + h.appName,
		"version": h.appVersion,
		"endpoints": fiber.Map{
			"upload":          "POST /api/data/upload/{session_id}",
			"session":         "GET /api/data/sessions/{session_id}",
			"generate":        "POST /api/charts/generate/{session_id}",
			"supported_types": "GET /api/charts/supported-types",
			"health":          "GET /health",
		},
	})
}
