package cli

import (
	"strings"

	"github.com/dyike/AdvisorGo/config"
)

var indiaTickerHints = map[string]bool{
	"RELIANCE": true, "HDFC": true, "HDFCBANK": true, "ICICIBANK": true,
	"SBIN": true, "TCS": true, "INFY": true, "WIPRO": true,
	"LT": true, "LTIM": true, "AXISBANK": true, "KOTAKBANK": true,
	"BAJFINANCE": true, "HINDUNILVR": true, "ITC": true, "MARUTI": true,
	"SUNPHARMA": true, "TITAN": true, "ADANIENT": true, "ADANIPORTS": true,
	"POWERGRID": true, "ULTRACEMCO": true, "ONGC": true, "NTPC": true,
}

var indiaCompanyKeywords = []string{
	"reliance", "hdfc", "icici", "infosys", "adani", "mahindra", "kotak",
	"bajaj", "maruti", "sun pharma", "hindustan unilever", "nifty", "sensex",
}

// LikelyIndian reports whether the ticker or company name looks like an
// Indian listing.
func LikelyIndian(ticker, companyName string) bool {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, config.SuffixNSE) || strings.HasSuffix(t, config.SuffixBSE) {
		return true
	}
	root, _, _ := strings.Cut(t, ".")
	if indiaTickerHints[root] {
		return true
	}
	company := strings.ToLower(strings.TrimSpace(companyName))
	for _, kw := range indiaCompanyKeywords {
		if strings.Contains(company, kw) {
			return true
		}
	}
	return false
}

// SuggestMarket picks the market to route a run to and a note for the user.
func SuggestMarket(ticker, companyName, current string) (string, string) {
	market := config.NormalizeMarket(current)
	if LikelyIndian(ticker, companyName) && market != config.MarketIndia {
		return config.MarketIndia, "Auto-suggestion: switched `Market` to `india` based on ticker/company pattern."
	}
	if market == config.MarketIndia {
		return config.MarketIndia, "Market routing: `india`."
	}
	return config.MarketGlobal, "Market routing: `global`."
}
