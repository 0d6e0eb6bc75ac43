package dataflows

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Info holds company attributes keyed by Yahoo field name (longName,
// marketCap, currentPrice, ...). Absent fields are omitted, never nil.
type Info map[string]any

// Present reports whether key holds a usable value.
func (i Info) Present(key string) bool {
	v, ok := i[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		return s != "" && s != "N/A"
	}
	return true
}

// Statement maps a row label to its period values, most recent first.
// Cells are left untyped; consumers coerce them.
type Statement map[string][]any

// Lookup finds a row by case-insensitive, trimmed label.
func (s Statement) Lookup(label string) ([]any, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	for k, v := range s {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return v, true
		}
	}
	return nil, false
}

// Statements groups the six statement tables of a company.
type Statements struct {
	AnnualIncome     Statement `json:"annual_income"`
	QuarterlyIncome  Statement `json:"quarterly_income"`
	AnnualBalance    Statement `json:"annual_balance"`
	QuarterlyBalance Statement `json:"quarterly_balance"`
	AnnualCashFlow   Statement `json:"annual_cash_flow"`
	QuarterlyCash    Statement `json:"quarterly_cash_flow"`
}

// Bar is one daily price observation.
type Bar struct {
	Date   time.Time        `json:"date"`
	Open   decimal.Decimal  `json:"open"`
	High   decimal.Decimal  `json:"high"`
	Low    decimal.Decimal  `json:"low"`
	Close  *decimal.Decimal `json:"close,omitempty"`
	Volume *int64           `json:"volume,omitempty"`
}

// Article is a normalized web-search hit.
type Article struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
	Summary       string `json:"summary"`
}

// SearchRequest is the provider-neutral search input. IncludeDomains, when
// set, restricts results to those domains.
type SearchRequest struct {
	Query          string
	StartDate      string
	IncludeDomains []string
	NumResults     int
}
