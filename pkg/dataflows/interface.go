package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dyike/AdvisorGo/config"
)

// MarketDataSource opens per-symbol handles on a market data backend.
type MarketDataSource interface {
	Open(ctx context.Context, symbol string) (Ticker, error)
}

// Ticker is a handle on one fully-qualified symbol.
type Ticker interface {
	Symbol() string
	Info(ctx context.Context) (Info, error)
	// History returns daily bars covering the trailing period, oldest first.
	History(ctx context.Context, period time.Duration) ([]Bar, error)
	Statements(ctx context.Context) (*Statements, error)
}

// WebSearchProvider runs a web search and returns normalized articles.
type WebSearchProvider interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]Article, error)
}

// NewMarketDataSource builds the configured market data backend.
func NewMarketDataSource(cfg *config.Config) (MarketDataSource, error) {
	switch strings.ToLower(cfg.MarketData.Source) {
	case "", config.SourceYahoo:
		cache := NewCacheManager(filepath.Join(cfg.DataCacheDir, "yahoo_finance"), 6*time.Hour, cfg.CacheEnabled)
		return NewYahooFinanceClient(cache), nil
	case config.SourceLongport:
		return NewLongportClient(cfg.MarketData)
	default:
		return nil, fmt.Errorf("unsupported market data source %q", cfg.MarketData.Source)
	}
}

// NewWebSearchProvider picks direct Exa when an API key is configured and
// falls back to the Docker MCP bridge otherwise.
func NewWebSearchProvider(cfg config.SearchConfig) WebSearchProvider {
	if strings.TrimSpace(cfg.ExaAPIKey) != "" {
		return NewExaClient(cfg.ExaAPIKey, WithExaBaseURL(cfg.ExaBaseURL))
	}
	return NewDockerMCPClient(WithDockerBinary(cfg.DockerBinary))
}
