package evidence

import (
	"context"
	"errors"
	"time"

	"github.com/dyike/AdvisorGo/pkg/dataflows"
	"github.com/shopspring/decimal"
)

type fakeTicker struct {
	symbol  string
	info    dataflows.Info
	infoErr error
	bars    []dataflows.Bar
	stmts   *dataflows.Statements
}

func (f *fakeTicker) Symbol() string { return f.symbol }

func (f *fakeTicker) Info(ctx context.Context) (dataflows.Info, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.info == nil {
		return dataflows.Info{}, nil
	}
	return f.info, nil
}

func (f *fakeTicker) History(ctx context.Context, period time.Duration) ([]dataflows.Bar, error) {
	return f.bars, nil
}

func (f *fakeTicker) Statements(ctx context.Context) (*dataflows.Statements, error) {
	if f.stmts == nil {
		return &dataflows.Statements{}, nil
	}
	return f.stmts, nil
}

// fakeSource opens a fakeTicker per known symbol; unknown symbols open as
// empty (invalid) handles unless failOpen is set or the symbol is listed in
// failSymbols.
type fakeSource struct {
	tickers     map[string]*fakeTicker
	failOpen    bool
	failSymbols map[string]bool
	opened      []string
}

func (s *fakeSource) Open(ctx context.Context, symbol string) (dataflows.Ticker, error) {
	s.opened = append(s.opened, symbol)
	if s.failOpen || s.failSymbols[symbol] {
		return nil, errors.New("boom: " + symbol)
	}
	if t, ok := s.tickers[symbol]; ok {
		return t, nil
	}
	return &fakeTicker{symbol: symbol}, nil
}

func closesToBars(closes ...float64) []dataflows.Bar {
	bars := make([]dataflows.Bar, 0, len(closes))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		vol := int64(1000 * (i + 1))
		bars = append(bars, dataflows.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   d,
			High:   d,
			Low:    d,
			Close:  &d,
			Volume: &vol,
		})
	}
	return bars
}
