package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dyike/AdvisorGo/internal/models"
)

func TestLoadFromEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROJECT_DIR", dir)
	t.Setenv("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct:free")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_MODEL_FALLBACKS", " a , ,b,a ")
	t.Setenv("GUI_RATE_LIMIT_RETRIES", "0")
	t.Setenv("NEWS_LOOKBACK_DAYS", "abc")
	t.Setenv("ANALYSIS_HORIZON_DAYS", "90")
	t.Setenv("EXA_API_KEY", "exa-key")

	cfg := newDefaults(dir)
	cfg.loadFromEnv()

	if cfg.ReportPath != filepath.Join(dir, ReportFileName) {
		t.Fatalf("unexpected report path %s", cfg.ReportPath)
	}
	if cfg.LLM.BaseURL != DefaultOpenRouterBaseURL {
		t.Fatalf("expected default base url, got %s", cfg.LLM.BaseURL)
	}
	if got := strings.Join(cfg.LLM.FallbackModels, "|"); got != "a|b|a" {
		t.Fatalf("unexpected fallbacks %q", got)
	}
	if cfg.Runner.MaxAttempts != 3 {
		t.Fatalf("non-positive retries should keep default, got %d", cfg.Runner.MaxAttempts)
	}
	if cfg.NewsLookbackDays != 30 {
		t.Fatalf("invalid lookback should keep default, got %d", cfg.NewsLookbackDays)
	}
	if cfg.AnalysisHorizonDays != 90 {
		t.Fatalf("expected horizon 90, got %d", cfg.AnalysisHorizonDays)
	}
	if cfg.Search.ExaAPIKey != "exa-key" {
		t.Fatalf("exa key not loaded")
	}
}

func TestCandidateModelsDeduplicates(t *testing.T) {
	llm := LLMConfig{Model: "m1", FallbackModels: []string{"m2", "m1", " ", "m3", "m2"}}
	got := strings.Join(llm.CandidateModels(), ",")
	if got != "m1,m2,m3" {
		t.Fatalf("expected m1,m2,m3, got %s", got)
	}
}

func TestNormalizeModelID(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"openrouter/free":        "openrouter/openrouter/free",
		"openrouter/meta/llama":  "openrouter/meta/llama",
		"meta/llama":             "openrouter/meta/llama",
		"  deepseek/deepseek-r1 ": "openrouter/deepseek/deepseek-r1",
	}
	for in, want := range cases {
		if got := NormalizeModelID(in); got != want {
			t.Errorf("NormalizeModelID(%q) = %q, want %q", in, got, want)
		}
	}
	if got := WireModelID("meta/llama"); got != "meta/llama" {
		t.Errorf("WireModelID stripped wrong: %q", got)
	}
}

func TestNormalizeInputs(t *testing.T) {
	tests := []struct {
		name     string
		ticker   string
		market   string
		exchange string
		want     string
	}{
		{"global bare", " ms ", "global", "NSE", "MS"},
		{"india nse", "reliance", "IN", "", "RELIANCE.NS"},
		{"india bse", "reliance", "bse", ".bo", "RELIANCE.BO"},
		{"qualified", "tcs.bo", "india", "NSE", "TCS.BO"},
		{"empty", "", "india", "NSE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTicker(tt.ticker, tt.market, tt.exchange)
			if got != tt.want {
				t.Fatalf("NormalizeTicker = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cfg := newDefaults(t.TempDir())
	cfg.Ticker = "reliance"
	cfg.CompanyName = " Reliance Industries "
	cfg.Market = "NSE"
	cfg.ExchangePreference = "bo"

	first := cfg.BuildInputs()
	second := *first
	Normalize(&second)

	if !reflect.DeepEqual(*first, second) {
		t.Fatalf("normalization not idempotent: %+v vs %+v", *first, second)
	}
	if first.Ticker != "RELIANCE.BO" || first.Market != MarketIndia || first.ExchangePreference != ExchangeBSE {
		t.Fatalf("unexpected normalized inputs %+v", *first)
	}
}

func TestValidateRunAggregatesMissing(t *testing.T) {
	err := ValidateRun(LLMConfig{Provider: ProviderOpenRouter}, &models.Inputs{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 4 {
		t.Fatalf("expected 4 missing fields, got %v", verr.Missing)
	}
	msg := err.Error()
	for _, want := range []string{
		"Missing required configuration: OPENROUTER_API_KEY, OPENROUTER_MODEL",
		"COMPANY_TICKER (or inputs['ticker'])",
		"COMPANY_NAME (or inputs['company_name'])",
		"Check your .env file",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}

	ok := ValidateRun(LLMConfig{Model: "m", APIKey: "k"}, &models.Inputs{Ticker: "MS", CompanyName: "Morgan Stanley"})
	if ok != nil {
		t.Fatalf("expected valid config, got %v", ok)
	}
}

func TestApplyTrigger(t *testing.T) {
	base := &models.Inputs{Ticker: "MS", CompanyName: "Morgan Stanley", Market: "global", ExchangePreference: "NSE", NewsLookbackDays: 30, AnalysisHorizonDays: 365}
	in, err := ApplyTrigger(base, `{"ticker":"infy","market":"india","news_lookback_days":14,"company_name":null}`)
	if err != nil {
		t.Fatalf("ApplyTrigger: %v", err)
	}
	if in.Ticker != "INFY.NS" {
		t.Fatalf("expected INFY.NS, got %s", in.Ticker)
	}
	if in.CompanyName != "Morgan Stanley" {
		t.Fatalf("null key should keep base value, got %q", in.CompanyName)
	}
	if in.NewsLookbackDays != 14 {
		t.Fatalf("expected lookback 14, got %d", in.NewsLookbackDays)
	}
	if in.TriggerPayload["ticker"] != "infy" {
		t.Fatalf("trigger payload not retained")
	}
	if base.Ticker != "MS" {
		t.Fatalf("base inputs must not be mutated")
	}

	if _, err := ApplyTrigger(base, "{not json"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
