package services

import (
	"context"

	"github.com/chartgen/chartgen-api/internal/core/chartspec"
	"github.com/chartgen/chartgen-api/internal/core/llm"
	"github.com/chartgen/chartgen-api/internal/core/render"
	"github.com/chartgen/chartgen-api/internal/modules/charts/models"
	"github.com/chartgen/chartgen-api/internal/modules/charts/repositories"
	"github.com/chartgen/chartgen-api/internal/shared/utils"
)

// ChartService orchestrates session lookup, model call, normalization and
// rendering for one chart request.
type ChartService struct {
	sessions repositories.SessionRepo
	llm      *llm.Service
	engine   *render.Engine
}

func NewChartService(sessions repositories.SessionRepo, llmService *llm.Service, engine *render.Engine) *ChartService {
	return &ChartService{
		sessions: sessions,
		llm:      llmService,
		engine:   engine,
	}
}

// GenerateChart runs the full pipeline for a stored session.
func (s *ChartService) GenerateChart(ctx context.Context, sessionID string, req *models.ChartGenerationRequest) (*models.ChartResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.RequestSpec(ctx, req.UserQuery, session.Metadata)
	if err != nil {
		return nil, err
	}

	spec, err := chartspec.Normalize(raw, session.Metadata)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Render(session.Frame, spec)
	if err != nil {
		return nil, err
	}

	utils.LogInfo("chart generated", map[string]interface{}{
		"session_id": sessionID,
		"chart_type": spec.ChartType,
		"warnings":   len(result.Warnings),
	})

	response := &models.ChartResponse{
		ChartHTML: result.HTML,
		ChartJSON: result.JSON,
		Warnings:  result.Warnings,
	}
	if req.IncludeSpec == nil || *req.IncludeSpec {
		response.ChartSpec = result.Spec
	}
	return response, nil
}

func (s *ChartService) ProviderName() string {
	return s.llm.GetProviderName()
}
