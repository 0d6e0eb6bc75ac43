package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/dyike/AdvisorGo/config"
)

const defaultDeepSeekModel = "deepseek-chat"

// NewChatModel builds the chat model shared by every agent of one run.
// OpenRouter is reached through the OpenAI-compatible client; the routing
// prefix is stripped from the model id before it goes on the wire.
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.ToolCallingChatModel, error) {
	switch cfg.Provider {
	case config.ProviderDeepSeek:
		name := strings.TrimSpace(cfg.Model)
		if name == "" || strings.HasPrefix(name, "openrouter/") {
			name = defaultDeepSeekModel
		}
		cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      cfg.DeepSeekAPIKey,
			Model:       name,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("create deepseek model: %w", err)
		}
		log.Printf("[Agents] using deepseek model %s", name)
		return cm, nil

	case config.ProviderOpenRouter, "":
		wire := config.WireModelID(cfg.Model)
		if wire == "" {
			return nil, fmt.Errorf("create openrouter model: empty model id")
		}
		maxTokens := cfg.MaxTokens
		temperature := cfg.Temperature
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       wire,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("create openrouter model: %w", err)
		}
		log.Printf("[Agents] using openrouter model %s", wire)
		return cm, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
