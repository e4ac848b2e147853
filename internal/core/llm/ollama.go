package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaProvider talks to an Ollama-style /api/chat endpoint with raw HTTP.
// Local model servers wrap their output in a handful of envelope shapes, so
// the response body is unwrapped tolerantly instead of decoded into one type.
type OllamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaProvider(cfg ProviderConfig) *OllamaProvider {
	return &OllamaProvider{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		client:   &http.Client{Timeout: RequestTimeout},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *OllamaProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model: p.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	content := UnwrapContent(raw)
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyOutput
	}
	return content, nil
}

func (p *OllamaProvider) GetProviderName() string {
	return "ollama"
}

// UnwrapContent pulls the assistant text out of whichever envelope the model
// server used: {"message": {"content": ...}}, an OpenAI-style choices list, a
// bare list of message objects, top-level content/text fields, or plain text.
func UnwrapContent(raw []byte) string {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return string(raw)
	}

	switch v := payload.(type) {
	case map[string]interface{}:
		if msg, ok := v["message"].(map[string]interface{}); ok {
			if s, ok := msg["content"].(string); ok {
				return s
			}
		}
		for _, key := range []string{"choices", "messages"} {
			if list, ok := v[key].([]interface{}); ok {
				if s := joinListContent(list); s != "" {
					return s
				}
			}
		}
		if s, ok := v["content"].(string); ok {
			return s
		}
		if s, ok := v["text"].(string); ok {
			return s
		}
		return string(raw)
	case []interface{}:
		if s := joinListContent(v); s != "" {
			return s
		}
		return string(raw)
	default:
		return string(raw)
	}
}

func joinListContent(list []interface{}) string {
	parts := []string{}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if msg, ok := m["message"].(map[string]interface{}); ok {
			if s, ok := msg["content"].(string); ok {
				parts = append(parts, s)
				continue
			}
		}
		if s, ok := m["content"].(string); ok {
			parts = append(parts, s)
			continue
		}
		if s, ok := m["text"].(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
