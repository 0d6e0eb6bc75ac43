package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
)

// quoteSummaryModules are the quoteSummary modules that carry the profile
// and ratio fields the quote endpoint leaves out.
const quoteSummaryModules = "assetProfile,defaultKeyStatistics,financialData"

type rawNumber struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResult struct {
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
		Country  string `json:"country"`
		Website  string `json:"website"`
		Summary  string `json:"longBusinessSummary"`
	} `json:"assetProfile"`
	DefaultKeyStatistics *struct {
		Beta          rawNumber `json:"beta"`
		ProfitMargins rawNumber `json:"profitMargins"`
		ForwardPE     rawNumber `json:"forwardPE"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		RevenueGrowth rawNumber `json:"revenueGrowth"`
		ProfitMargins rawNumber `json:"profitMargins"`
		CurrentPrice  rawNumber `json:"currentPrice"`
	} `json:"financialData"`
}

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (yf *YahooFinanceClient) fetchProfile(ctx context.Context, symbol string) (Info, error) {
	resp, err := yf.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParam("modules", quoteSummaryModules).
		Get(yf.baseURL + "/v10/finance/quoteSummary/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch profile for %s: status %d", symbol, resp.StatusCode())
	}
	return parseQuoteSummary(resp.Body())
}

// parseQuoteSummary flattens the profile modules into info keys. A ratio
// present in several modules keeps the financialData figure.
func parseQuoteSummary(body []byte) (Info, error) {
	var env quoteSummaryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if env.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("profile api error %s: %s", env.QuoteSummary.Error.Code, env.QuoteSummary.Error.Description)
	}

	info := Info{}
	for _, r := range env.QuoteSummary.Result {
		if p := r.AssetProfile; p != nil {
			putString(info, "sector", p.Sector)
			putString(info, "industry", p.Industry)
			putString(info, "country", p.Country)
			putString(info, "website", p.Website)
			putString(info, "longBusinessSummary", p.Summary)
		}
		if s := r.DefaultKeyStatistics; s != nil {
			putRaw(info, "beta", s.Beta)
			putRaw(info, "profitMargins", s.ProfitMargins)
			putRaw(info, "forwardPE", s.ForwardPE)
		}
		if f := r.FinancialData; f != nil {
			putRaw(info, "revenueGrowth", f.RevenueGrowth)
			putRaw(info, "profitMargins", f.ProfitMargins)
			putRaw(info, "currentPrice", f.CurrentPrice)
		}
	}
	return info, nil
}

// putRaw keeps reported zeros; only an absent raw value is skipped.
func putRaw(info Info, key string, n rawNumber) {
	if n.Raw != nil {
		info[key] = *n.Raw
	}
}
