package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/config"
)

const defaultOllamaURL = "http://localhost:11434"

var defaultModels = map[string]string{
	"openai": "gpt-4o-mini",
	"claude": "claude-3-5-haiku-latest",
	"gemini": "gemini-1.5-flash",
	"ollama": "llama3.1",
}

// NewClient builds the configured provider. Provider "none" (or empty) returns a nil
// client and the engine runs on rules alone.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	switch provider {
	case "", "none":
		logger.Info("LLM disabled, using rule-based classification only")
		return nil, nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, model, cfg.BaseURL), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, model, cfg.BaseURL), nil

	case "ollama":
		// Ollama exposes an OpenAI-compatible API under /v1.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by Ollama, required by the client
		}
		logger.Info("initializing Ollama via OpenAI-compatible API", zap.String("base_url", baseURL), zap.String("model", model))
		return NewOpenAIClient(apiKey, model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
