package evidence

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/pkg/dataflows"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	MinPriorityResults = 3
	MaxArticles        = 15

	MinLookbackDays = 1
	MaxLookbackDays = 365
)

var (
	GlobalPriorityDomains = []string{"reuters.com", "bloomberg.com", "wsj.com"}
	IndiaPriorityDomains  = []string{
		"economictimes.indiatimes.com",
		"moneycontrol.com",
		"livemint.com",
		"business-standard.com",
		"reuters.com",
	}
)

// NewsRequest is the input of a company news search.
type NewsRequest struct {
	Ticker       string `json:"ticker"`
	CompanyName  string `json:"company_name"`
	LookbackDays int    `json:"lookback_days"`
	Market       string `json:"market"`
}

// NewsBundle is the news payload handed to the news agent.
type NewsBundle struct {
	Ticker               string              `json:"ticker"`
	CompanyName          string              `json:"company_name"`
	Market               string              `json:"market"`
	LookbackDays         int                 `json:"lookback_days"`
	Query                string              `json:"query"`
	PriorityDomains      []string            `json:"priority_domains"`
	PriorityResultsCount int                 `json:"priority_results_count"`
	TotalResultsCount    int                 `json:"total_results_count"`
	FallbackUsed         bool                `json:"fallback_used"`
	NewsBackend          string              `json:"news_backend"`
	SourceConfidence     string              `json:"source_confidence"`
	Articles             []dataflows.Article `json:"articles"`
	DataQualityNotes     []string            `json:"data_quality_notes"`
}

// NewsSearcher runs the two-tier company news search.
type NewsSearcher struct {
	provider dataflows.WebSearchProvider
	now      func() time.Time
}

func NewNewsSearcher(provider dataflows.WebSearchProvider) *NewsSearcher {
	return &NewsSearcher{provider: provider, now: time.Now}
}

// DetectMarket returns india for .NS/.BO tickers or an India market hint.
func DetectMarket(ticker, hint string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, config.SuffixNSE) || strings.HasSuffix(t, config.SuffixBSE) {
		return config.MarketIndia
	}
	return config.NormalizeMarket(hint)
}

func PriorityDomains(market string) []string {
	if market == config.MarketIndia {
		return IndiaPriorityDomains
	}
	return GlobalPriorityDomains
}

// BaseQuery embeds the company, ticker and topic keywords.
func BaseQuery(companyName, ticker, market string) string {
	if market == config.MarketIndia {
		return fmt.Sprintf("%s (%s) latest earnings guidance outlook NSE BSE India INR rupee regulation SEBI RBI risks capital allocation", companyName, ticker)
	}
	return fmt.Sprintf("%s (%s) latest earnings guidance outlook regulatory risks capital allocation", companyName, ticker)
}

// ClampLookback bounds lookback days to [1, 365].
func ClampLookback(days int) int {
	return min(max(days, MinLookbackDays), MaxLookbackDays)
}

// Search queries the priority domains first and widens to the open web
// when coverage is thin. Transport failures from either tier are returned.
func (s *NewsSearcher) Search(ctx context.Context, req NewsRequest) (*NewsBundle, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	company := strings.TrimSpace(req.CompanyName)
	market := DetectMarket(ticker, req.Market)
	lookback := ClampLookback(req.LookbackDays)
	domains := PriorityDomains(market)

	startDate := s.now().UTC().AddDate(0, 0, -lookback).Format("2006-01-02")
	query := BaseQuery(company, ticker, market)

	notes := []string{}
	confidence := ConfidenceHigh

	priority, err := s.provider.Search(ctx, dataflows.SearchRequest{
		Query:          query,
		StartDate:      startDate,
		IncludeDomains: domains,
	})
	if err != nil {
		return nil, fmt.Errorf("priority news search: %w", err)
	}

	merged := append([]dataflows.Article{}, priority...)
	fallbackUsed := false
	if len(priority) < MinPriorityResults {
		broad, err := s.provider.Search(ctx, dataflows.SearchRequest{
			Query:     query,
			StartDate: startDate,
		})
		if err != nil {
			return nil, fmt.Errorf("broad news search: %w", err)
		}
		merged = append(merged, broad...)
		fallbackUsed = true
		confidence = ConfidenceMedium
		notes = append(notes, "Priority-domain coverage was limited; broad web fallback was used.")
	}

	articles := DeduplicateArticles(merged)
	if len(articles) > MaxArticles {
		articles = articles[:MaxArticles]
	}
	if len(articles) == 0 {
		confidence = ConfidenceLow
		notes = append(notes, "No recent news articles were returned by Exa.")
	}

	log.Printf("[News] %s via %s: priority=%d total=%d confidence=%s",
		ticker, s.provider.Name(), len(priority), len(articles), confidence)

	return &NewsBundle{
		Ticker:               ticker,
		CompanyName:          company,
		Market:               market,
		LookbackDays:         lookback,
		Query:                query,
		PriorityDomains:      append([]string{}, domains...),
		PriorityResultsCount: len(priority),
		TotalResultsCount:    len(articles),
		FallbackUsed:         fallbackUsed,
		NewsBackend:          s.provider.Name(),
		SourceConfidence:     confidence,
		Articles:             articles,
		DataQualityNotes:     notes,
	}, nil
}

// DeduplicateArticles keeps the first article per URL. Articles lacking a
// URL share the "N/A" key, so only the first of them survives.
func DeduplicateArticles(articles []dataflows.Article) []dataflows.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]dataflows.Article, 0, len(articles))
	for _, a := range articles {
		key := strings.TrimSpace(a.URL)
		if key == "" {
			key = NA
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
