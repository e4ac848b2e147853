package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chartgen/chartgen-api/internal/core/chartspec"
	"github.com/chartgen/chartgen-api/internal/core/dataset"
	"github.com/chartgen/chartgen-api/internal/shared/utils"
)

// Service turns natural language chart requests into raw chart intents.
type Service struct {
	provider LLMProvider
}

func NewService(cfg ProviderConfig) (*Service, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{provider: provider}, nil
}

// NewServiceWithProvider wires an existing provider, used by tests.
func NewServiceWithProvider(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

// RequestSpec asks the model for a chart specification for the query and
// decodes the JSON document embedded in its answer.
func (s *Service) RequestSpec(ctx context.Context, userQuery string, meta dataset.Metadata) (chartspec.RawIntent, error) {
	systemPrompt := BuildChartPrompt(meta)

	utils.LogInfo("requesting chart spec from model", map[string]interface{}{
		"provider": s.provider.GetProviderName(),
		"query":    userQuery,
	})

	text, err := s.provider.GenerateResponse(ctx, systemPrompt, userQuery)
	if err != nil {
		return nil, err
	}

	doc, err := ExtractJSON(text)
	if err != nil {
		utils.LogError("model output had no JSON document", err, map[string]interface{}{
			"output": text,
		})
		return nil, err
	}

	var raw chartspec.RawIntent
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrInvalidJSON, err, doc)
	}
	return raw, nil
}

func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
