package config

import (
	"fmt"
	"strings"

	"github.com/dyike/AdvisorGo/internal/models"
)

const openRouterPrefix = "openrouter/"

// NormalizeModelID makes sure the id carries the provider routing prefix.
func NormalizeModelID(model string) string {
	normalized := strings.TrimSpace(model)
	if normalized == "" {
		return normalized
	}
	if normalized == "openrouter/free" {
		return "openrouter/openrouter/free"
	}
	if strings.HasPrefix(normalized, openRouterPrefix) {
		return normalized
	}
	return openRouterPrefix + normalized
}

// WireModelID strips the routing prefix added by NormalizeModelID, giving
// the id OpenRouter expects on the wire.
func WireModelID(model string) string {
	return strings.TrimPrefix(NormalizeModelID(model), openRouterPrefix)
}

// CandidateModels returns the primary model followed by the fallbacks,
// deduplicated with first occurrence kept.
func (l LLMConfig) CandidateModels() []string {
	var out []string
	seen := map[string]bool{}
	add := func(m string) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		out = append(out, m)
	}
	add(l.Model)
	for _, m := range l.FallbackModels {
		add(m)
	}
	return out
}

// ValidationError lists every required setting that is missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required configuration: %s. Check your .env file before running the crew.",
		strings.Join(e.Missing, ", "))
}

// ValidateRun checks the model settings and run inputs before any network
// activity.
func ValidateRun(llm LLMConfig, in *models.Inputs) error {
	var missing []string
	if llm.Provider == ProviderDeepSeek {
		if strings.TrimSpace(llm.DeepSeekAPIKey) == "" {
			missing = append(missing, "DEEPSEEK_API_KEY")
		}
	} else if strings.TrimSpace(llm.APIKey) == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	if strings.TrimSpace(llm.Model) == "" {
		missing = append(missing, "OPENROUTER_MODEL")
	}
	if in == nil || strings.TrimSpace(in.Ticker) == "" {
		missing = append(missing, "COMPANY_TICKER (or inputs['ticker'])")
	}
	if in == nil || strings.TrimSpace(in.CompanyName) == "" {
		missing = append(missing, "COMPANY_NAME (or inputs['company_name'])")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Validate checks value ranges that do not depend on run inputs.
func (c *Config) Validate() error {
	if c.Runner.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if c.NewsLookbackDays < 1 || c.NewsLookbackDays > 365 {
		return fmt.Errorf("news lookback days must be between 1 and 365")
	}
	if c.AnalysisHorizonDays < 1 {
		return fmt.Errorf("analysis horizon days must be positive")
	}
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderDeepSeek:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	switch c.MarketData.Source {
	case SourceYahoo, SourceLongport:
	default:
		return fmt.Errorf("unsupported market data source %q", c.MarketData.Source)
	}
	return nil
}
