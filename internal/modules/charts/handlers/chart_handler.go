package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chartgen/chartgen-api/internal/core/chartspec"
	"github.com/chartgen/chartgen-api/internal/core/llm"
	"github.com/chartgen/chartgen-api/internal/core/render"
	"github.com/chartgen/chartgen-api/internal/modules/charts/models"
	"github.com/chartgen/chartgen-api/internal/modules/charts/repositories"
	"github.com/chartgen/chartgen-api/internal/modules/charts/services"
)

// ChartHandler handles chart generation HTTP requests
type ChartHandler struct {
	chartService *services.ChartService
}

// NewChartHandler creates a new chart handler
func NewChartHandler(chartService *services.ChartService) *ChartHandler {
	return &ChartHandler{
		chartService: chartService,
	}
}

// GenerateChart godoc
// @Summary Generate a chart from natural language
// @Description Ask the configured model for a chart specification and render it against the session's data
// @Tags Charts
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body models.ChartGenerationRequest true "Chart request"
// @Success 200 {object} models.ChartResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/charts/generate/{session_id} [post]
func (h *ChartHandler) GenerateChart(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	var req models.ChartGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	query := strings.TrimSpace(req.UserQuery)
	if len(query) < models.MinQueryLength || len(query) > models.MaxQueryLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_query must be between 10 and 1000 characters",
		})
	}
	req.UserQuery = query

	result, err := h.chartService.GenerateChart(c.Context(), sessionID, &req)
	if err != nil {
		return h.mapGenerationError(c, sessionID, err)
	}

	log.Printf("✅ Chart generated for session %s", sessionID)

	return c.JSON(result)
}

func (h *ChartHandler) mapGenerationError(c *fiber.Ctx, sessionID string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrUnknownSession):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	case errors.Is(err, chartspec.ErrInvalidSpec):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, llm.ErrEmptyOutput),
		errors.Is(err, llm.ErrMalformedOutput),
		errors.Is(err, llm.ErrInvalidJSON):
		log.Printf("🤖 Model failure for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate chart specification from the model",
		})
	case errors.Is(err, render.ErrRender):
		log.Printf("❌ Render failure for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		log.Printf("❌ Chart generation failed for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Chart generation failed",
		})
	}
}

// GetSupportedTypes godoc
// @Summary List supported chart options
// @Description Enumerate chart types, aggregations and color schemes
// @Tags Charts
// @Produce json
// @Success 200 {object} models.SupportedTypesResponse
// @Router /api/charts/supported-types [get]
func (h *ChartHandler) GetSupportedTypes(c *fiber.Ctx) error {
	return c.JSON(models.SupportedTypesResponse{
		ChartTypes: chartspec.SupportedChartTypes,
		Aggregations: []string{
			string(chartspec.AggSum), string(chartspec.AggMean), string(chartspec.AggCount),
			string(chartspec.AggMin), string(chartspec.AggMax), string(chartspec.AggNone),
		},
		ColorSchemes: []string{
			string(chartspec.SchemeDefault), string(chartspec.SchemeViridis),
			string(chartspec.SchemePlasma), string(chartspec.SchemeCoolwarm),
		},
	})
}
