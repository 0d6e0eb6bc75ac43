package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timeseriesRow binds a Yahoo timeseries type to the statement table and
// row label it populates.
type timeseriesRow struct {
	table func(*Statements) Statement
	label string
}

var timeseriesRows = map[string]timeseriesRow{
	"annualTotalRevenue":                           {func(s *Statements) Statement { return s.AnnualIncome }, "Total Revenue"},
	"annualNetIncome":                              {func(s *Statements) Statement { return s.AnnualIncome }, "Net Income"},
	"annualOperatingIncome":                        {func(s *Statements) Statement { return s.AnnualIncome }, "Operating Income"},
	"annualTotalAssets":                            {func(s *Statements) Statement { return s.AnnualBalance }, "Total Assets"},
	"annualTotalLiabilitiesNetMinorityInterest":    {func(s *Statements) Statement { return s.AnnualBalance }, "Total Liab"},
	"annualCashAndCashEquivalents":                 {func(s *Statements) Statement { return s.AnnualBalance }, "Cash And Cash Equivalents"},
	"annualOperatingCashFlow":                      {func(s *Statements) Statement { return s.AnnualCashFlow }, "Operating Cash Flow"},
	"annualFreeCashFlow":                           {func(s *Statements) Statement { return s.AnnualCashFlow }, "Free Cash Flow"},
	"quarterlyTotalRevenue":                        {func(s *Statements) Statement { return s.QuarterlyIncome }, "Total Revenue"},
	"quarterlyNetIncome":                           {func(s *Statements) Statement { return s.QuarterlyIncome }, "Net Income"},
	"quarterlyTotalAssets":                         {func(s *Statements) Statement { return s.QuarterlyBalance }, "Total Assets"},
	"quarterlyTotalLiabilitiesNetMinorityInterest": {func(s *Statements) Statement { return s.QuarterlyBalance }, "Total Liab"},
	"quarterlyOperatingCashFlow":                   {func(s *Statements) Statement { return s.QuarterlyCash }, "Operating Cash Flow"},
}

type timeseriesEnvelope struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Type []string `json:"type"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue *struct {
		Raw any `json:"raw"`
	} `json:"reportedValue"`
}

func (yf *YahooFinanceClient) fetchTimeseries(ctx context.Context, symbol string) (*Statements, error) {
	types := make([]string, 0, len(timeseriesRows))
	for t := range timeseriesRows {
		types = append(types, t)
	}
	sort.Strings(types)

	now := time.Now()
	resp, err := yf.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"symbol":  symbol,
			"type":    strings.Join(types, ","),
			"period1": strconv.FormatInt(now.AddDate(-6, 0, 0).Unix(), 10),
			"period2": strconv.FormatInt(now.Unix(), 10),
		}).
		Get(yf.baseURL + "/ws/fundamentals-timeseries/v1/finance/timeseries/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("fetch statements for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch statements for %s: status %d", symbol, resp.StatusCode())
	}
	return parseTimeseries(resp.Body())
}

// parseTimeseries converts a timeseries payload into statement tables with
// each row ordered most recent first.
func parseTimeseries(body []byte) (*Statements, error) {
	var env timeseriesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse statements: %w", err)
	}
	if env.Timeseries.Error != nil {
		return nil, fmt.Errorf("statements api error %s: %s", env.Timeseries.Error.Code, env.Timeseries.Error.Description)
	}

	stmts := &Statements{
		AnnualIncome:     Statement{},
		QuarterlyIncome:  Statement{},
		AnnualBalance:    Statement{},
		QuarterlyBalance: Statement{},
		AnnualCashFlow:   Statement{},
		QuarterlyCash:    Statement{},
	}

	for _, result := range env.Timeseries.Result {
		var meta timeseriesMeta
		if raw, ok := result["meta"]; ok {
			_ = json.Unmarshal(raw, &meta)
		}
		for _, typ := range meta.Type {
			row, ok := timeseriesRows[typ]
			if !ok {
				continue
			}
			raw, ok := result[typ]
			if !ok {
				continue
			}
			var points []*timeseriesPoint
			if err := json.Unmarshal(raw, &points); err != nil {
				continue
			}
			filtered := points[:0]
			for _, p := range points {
				if p != nil {
					filtered = append(filtered, p)
				}
			}
			sort.SliceStable(filtered, func(i, j int) bool {
				return filtered[i].AsOfDate > filtered[j].AsOfDate
			})
			cells := make([]any, 0, len(filtered))
			for _, p := range filtered {
				if p.ReportedValue == nil {
					cells = append(cells, nil)
					continue
				}
				cells = append(cells, p.ReportedValue.Raw)
			}
			row.table(stmts)[row.label] = cells
		}
	}
	return stmts, nil
}
