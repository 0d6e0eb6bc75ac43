package evidence

import (
	"fmt"

	"github.com/dyike/AdvisorGo/pkg/dataflows"
)

const (
	StatementIncome   = "income_statement"
	StatementBalance  = "balance_sheet"
	StatementCashFlow = "cash_flow"
)

// StatementSnapshot is the financial statements payload.
type StatementSnapshot struct {
	RequestedTicker  string                      `json:"requested_ticker"`
	Ticker           string                      `json:"ticker"`
	Annual           map[string]map[string]Value `json:"annual"`
	Quarterly        map[string]map[string]Value `json:"quarterly"`
	Deltas           map[string]Value            `json:"deltas"`
	DataQualityNotes []string                    `json:"data_quality_notes"`
}

// CompanyInfo is the company profile payload.
type CompanyInfo struct {
	RequestedTicker  string   `json:"requested_ticker"`
	Ticker           string   `json:"ticker"`
	CompanyName      Value    `json:"company_name"`
	Sector           Value    `json:"sector"`
	Industry         Value    `json:"industry"`
	MarketCap        Value    `json:"market_cap"`
	Beta             Value    `json:"beta"`
	TrailingPE       Value    `json:"trailing_pe"`
	ForwardPE        Value    `json:"forward_pe"`
	RevenueGrowth    Value    `json:"revenue_growth"`
	ProfitMargins    Value    `json:"profit_margins"`
	DataQualityNotes []string `json:"data_quality_notes"`
}

// RowValues returns the cells of the named row, or nil when absent.
func RowValues(stmt dataflows.Statement, label string) []any {
	if len(stmt) == 0 {
		return nil
	}
	cells, _ := stmt.Lookup(label)
	return cells
}

// Extract returns the latest and previous numeric values of a row. Cells
// that cannot be coerced are dropped.
func Extract(stmt dataflows.Statement, label string) (latest, previous Value) {
	var values []float64
	for _, cell := range RowValues(stmt, label) {
		if f, ok := ToFloat(cell); ok {
			values = append(values, f)
		}
	}
	if len(values) > 0 {
		latest = Number(values[0], 4)
	}
	if len(values) > 1 {
		previous = Number(values[1], 4)
	}
	return latest, previous
}

func latestOf(stmt dataflows.Statement, label string) Value {
	v, _ := Extract(stmt, label)
	return v
}

// BuildStatementSnapshot extracts the highlight fields of every statement
// table. Missing rows degrade to N/A; a single note is added when all the
// critical annual fields are unavailable.
func BuildStatementSnapshot(requested, resolved string, stmts *dataflows.Statements, notes []string) *StatementSnapshot {
	if stmts == nil {
		stmts = &dataflows.Statements{}
	}

	revenue, revenuePrev := Extract(stmts.AnnualIncome, "Total Revenue")
	netIncome, netIncomePrev := Extract(stmts.AnnualIncome, "Net Income")

	snap := &StatementSnapshot{
		RequestedTicker: requested,
		Ticker:          resolved,
		Annual: map[string]map[string]Value{
			StatementIncome: {
				"total_revenue":    revenue,
				"net_income":       netIncome,
				"operating_income": latestOf(stmts.AnnualIncome, "Operating Income"),
			},
			StatementBalance: {
				"total_assets":         latestOf(stmts.AnnualBalance, "Total Assets"),
				"total_liabilities":    latestOf(stmts.AnnualBalance, "Total Liab"),
				"cash_and_equivalents": latestOf(stmts.AnnualBalance, "Cash And Cash Equivalents"),
			},
			StatementCashFlow: {
				"operating_cash_flow": latestOf(stmts.AnnualCashFlow, "Operating Cash Flow"),
				"free_cash_flow":      latestOf(stmts.AnnualCashFlow, "Free Cash Flow"),
			},
		},
		Quarterly: map[string]map[string]Value{
			StatementIncome: {
				"total_revenue": latestOf(stmts.QuarterlyIncome, "Total Revenue"),
				"net_income":    latestOf(stmts.QuarterlyIncome, "Net Income"),
			},
			StatementBalance: {
				"total_assets":      latestOf(stmts.QuarterlyBalance, "Total Assets"),
				"total_liabilities": latestOf(stmts.QuarterlyBalance, "Total Liab"),
			},
			StatementCashFlow: {
				"operating_cash_flow": latestOf(stmts.QuarterlyCash, "Operating Cash Flow"),
			},
		},
		Deltas: map[string]Value{
			"annual_revenue_growth_pct":    PctChange(revenue, revenuePrev),
			"annual_net_income_growth_pct": PctChange(netIncome, netIncomePrev),
		},
		DataQualityNotes: append([]string{}, notes...),
	}

	critical := []Value{
		snap.Annual[StatementIncome]["total_revenue"],
		snap.Annual[StatementIncome]["net_income"],
		snap.Annual[StatementBalance]["total_assets"],
		snap.Annual[StatementCashFlow]["operating_cash_flow"],
	}
	allMissing := true
	for _, v := range critical {
		if !v.IsNA() {
			allMissing = false
			break
		}
	}
	if allMissing {
		snap.DataQualityNotes = append(snap.DataQualityNotes, "Annual statement fields were not available from yfinance for this ticker.")
	}
	return snap
}

// BuildCompanyInfo maps source info onto the profile payload with one note
// per missing field. Beta is allowed to be missing silently.
func BuildCompanyInfo(requested, resolved string, info dataflows.Info, notes []string) *CompanyInfo {
	ci := &CompanyInfo{
		RequestedTicker:  requested,
		Ticker:           resolved,
		CompanyName:      Serializable(info["longName"]),
		Sector:           Serializable(info["sector"]),
		Industry:         Serializable(info["industry"]),
		MarketCap:        Serializable(info["marketCap"]),
		Beta:             Serializable(info["beta"]),
		TrailingPE:       Serializable(info["trailingPE"]),
		ForwardPE:        Serializable(info["forwardPE"]),
		RevenueGrowth:    Serializable(info["revenueGrowth"]),
		ProfitMargins:    Serializable(info["profitMargins"]),
		DataQualityNotes: append([]string{}, notes...),
	}

	checked := []struct {
		key string
		val Value
	}{
		{"company_name", ci.CompanyName},
		{"sector", ci.Sector},
		{"industry", ci.Industry},
		{"market_cap", ci.MarketCap},
		{"trailing_pe", ci.TrailingPE},
		{"forward_pe", ci.ForwardPE},
		{"revenue_growth", ci.RevenueGrowth},
		{"profit_margins", ci.ProfitMargins},
	}
	for _, c := range checked {
		if c.val.IsNA() {
			ci.DataQualityNotes = append(ci.DataQualityNotes, fmt.Sprintf("Missing value for '%s'.", c.key))
		}
	}
	return ci
}
