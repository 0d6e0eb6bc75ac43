package utils

import (
	"strings"
	"testing"
)

func fullContext() map[string]string {
	return map[string]string{
		"Ticker":              "MS",
		"CompanyName":         "Morgan Stanley",
		"Market":              "global",
		"ExchangePreference":  "NSE",
		"InvestorProfile":     "moderate",
		"AnalysisHorizonDays": "365",
		"NewsLookbackDays":    "30",
		"CurrentYear":         "2026",
	}
}

func TestLoadPromptWithContext_AllTemplates(t *testing.T) {
	for _, name := range []string{
		"agents/news_info_explorer",
		"agents/data_explorer",
		"agents/analyst",
		"agents/fin_expert",
		"tasks/get_company_news",
		"tasks/get_company_financials",
		"tasks/analyze_company",
		"tasks/advise_investment",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := LoadPromptWithContext(name, fullContext())
			if err != nil {
				t.Fatalf("LoadPromptWithContext failed: %v", err)
			}
			if strings.Contains(got, "{{") {
				t.Errorf("unreplaced placeholder in %s", name)
			}
		})
	}
}

func TestLoadPromptWithContext_Missing(t *testing.T) {
	if _, err := LoadPromptWithContext("tasks/get_company_news", map[string]string{"Ticker": "MS"}); err == nil {
		t.Fatal("expected error for missing variables")
	}
	if _, err := LoadPrompt("tasks/nope"); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestTaskDescriptions(t *testing.T) {
	cases := map[string]string{
		"tasks/get_company_news":       "Collect recent news",
		"tasks/get_company_financials": "Gather structured financial evidence",
		"tasks/analyze_company":        "Synthesize upstream news",
	}
	for name, want := range cases {
		got, err := LoadPromptWithContext(name, fullContext())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.HasPrefix(got, want) {
			t.Errorf("%s should start with %q", name, want)
		}
	}
}
