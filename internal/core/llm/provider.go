package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable marks transport-level failures reaching the model.
	ErrUnavailable = errors.New("llm provider unavailable")
	// ErrEmptyOutput marks a response with no usable text.
	ErrEmptyOutput = errors.New("llm returned empty output")
	// ErrMalformedOutput marks text with no extractable JSON document.
	ErrMalformedOutput = errors.New("no valid JSON found in llm output")
	// ErrInvalidJSON marks an extracted document that fails to parse.
	ErrInvalidJSON = errors.New("llm output is not valid JSON")
)

// RequestTimeout bounds a single model call.
const RequestTimeout = 40 * time.Second

// LLMProvider is the contract every model backend implements.
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// ProviderType identifies a model backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// ProviderConfig carries the settings a provider needs.
type ProviderConfig struct {
	Type        ProviderType
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider builds the configured model backend.
func NewProvider(cfg ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case ProviderOllama:
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Type)
	}
}
