package cli

import "testing"

func TestSuggestMarket(t *testing.T) {
	cases := []struct {
		name, ticker, company, market string
		want                          string
		note                          string
	}{
		{"nse suffix", "reliance.ns", "", "global", "india", "Auto-suggestion: switched `Market` to `india` based on ticker/company pattern."},
		{"bse suffix", "500325.BO", "", "", "india", "Auto-suggestion: switched `Market` to `india` based on ticker/company pattern."},
		{"ticker hint", "INFY", "", "global", "india", "Auto-suggestion: switched `Market` to `india` based on ticker/company pattern."},
		{"company keyword", "XYZ", "Bajaj Auto Ltd", "global", "india", "Auto-suggestion: switched `Market` to `india` based on ticker/company pattern."},
		{"already india", "TCS", "", "India", "india", "Market routing: `india`."},
		{"global", "MS", "Morgan Stanley", "global", "global", "Market routing: `global`."},
		{"unknown market", "AAPL", "Apple", "mars", "global", "Market routing: `global`."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, note := SuggestMarket(tc.ticker, tc.company, tc.market)
			if got != tc.want || note != tc.note {
				t.Errorf("SuggestMarket(%q, %q, %q) = %q, %q", tc.ticker, tc.company, tc.market, got, note)
			}
		})
	}
}
