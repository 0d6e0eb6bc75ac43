package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dyike/AdvisorGo/internal/models"
)

const (
	MarketGlobal = "global"
	MarketIndia  = "india"

	ExchangeNSE = "NSE"
	ExchangeBSE = "BSE"

	SuffixNSE = ".NS"
	SuffixBSE = ".BO"
)

// NormalizeMarket maps India synonyms to "india" and everything else to "global".
func NormalizeMarket(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "india", "indian", "in", "nse", "bse":
		return MarketIndia
	default:
		return MarketGlobal
	}
}

// NormalizeExchange maps BSE synonyms to "BSE" and everything else to "NSE".
func NormalizeExchange(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BSE", "BO", ".BO":
		return ExchangeBSE
	default:
		return ExchangeNSE
	}
}

// ExchangeSuffix returns the Yahoo suffix for a normalized exchange.
func ExchangeSuffix(exchange string) string {
	if NormalizeExchange(exchange) == ExchangeBSE {
		return SuffixBSE
	}
	return SuffixNSE
}

// NormalizeTicker upper-cases a ticker and, for India, appends the preferred
// exchange suffix. Qualified tickers (containing ".") are left alone.
func NormalizeTicker(ticker, market, exchange string) string {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))
	if normalized == "" || strings.Contains(normalized, ".") {
		return normalized
	}
	if NormalizeMarket(market) == MarketIndia {
		return normalized + ExchangeSuffix(exchange)
	}
	return normalized
}

// BuildInputs normalizes the configured run inputs.
func (c *Config) BuildInputs() *models.Inputs {
	market := NormalizeMarket(c.Market)
	exchange := NormalizeExchange(c.ExchangePreference)
	in := &models.Inputs{
		Ticker:              NormalizeTicker(c.Ticker, market, exchange),
		CompanyName:         strings.TrimSpace(c.CompanyName),
		Market:              market,
		ExchangePreference:  exchange,
		InvestorProfile:     strings.TrimSpace(c.InvestorProfile),
		AnalysisHorizonDays: c.AnalysisHorizonDays,
		NewsLookbackDays:    c.NewsLookbackDays,
		CurrentYear:         strconv.Itoa(time.Now().Year()),
	}
	Normalize(in)
	return in
}

// Normalize applies the input normalization rules in place. Applying it
// twice yields the same values.
func Normalize(in *models.Inputs) {
	in.Market = NormalizeMarket(in.Market)
	in.ExchangePreference = NormalizeExchange(in.ExchangePreference)
	in.Ticker = NormalizeTicker(in.Ticker, in.Market, in.ExchangePreference)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.InvestorProfile = strings.TrimSpace(in.InvestorProfile)
	if in.InvestorProfile == "" {
		in.InvestorProfile = "moderate"
	}
	if in.AnalysisHorizonDays <= 0 {
		in.AnalysisHorizonDays = 365
	}
	if in.NewsLookbackDays <= 0 {
		in.NewsLookbackDays = 30
	}
	if in.CurrentYear == "" {
		in.CurrentYear = strconv.Itoa(time.Now().Year())
	}
}

var triggerKeys = []string{
	"ticker",
	"company_name",
	"market",
	"exchange_preference",
	"investor_profile",
	"analysis_horizon_days",
	"news_lookback_days",
}

// ApplyTrigger overlays a JSON trigger payload onto base and renormalizes.
// Keys that are absent or null keep their configured value.
func ApplyTrigger(base *models.Inputs, raw string) (*models.Inputs, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("no trigger payload provided")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload provided as argument: %w", err)
	}

	in := *base
	for _, key := range triggerKeys {
		val, ok := payload[key]
		if !ok || val == nil {
			continue
		}
		switch key {
		case "ticker":
			in.Ticker = fmt.Sprint(val)
		case "company_name":
			in.CompanyName = fmt.Sprint(val)
		case "market":
			in.Market = fmt.Sprint(val)
		case "exchange_preference":
			in.ExchangePreference = fmt.Sprint(val)
		case "investor_profile":
			in.InvestorProfile = fmt.Sprint(val)
		case "analysis_horizon_days":
			in.AnalysisHorizonDays = PositiveInt(fmt.Sprint(val), 365)
		case "news_lookback_days":
			in.NewsLookbackDays = PositiveInt(fmt.Sprint(val), 30)
		}
	}
	in.TriggerPayload = payload
	Normalize(&in)
	return &in, nil
}
