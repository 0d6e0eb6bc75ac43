package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dyike/AdvisorGo/internal/evidence"
	"github.com/dyike/AdvisorGo/pkg/dataflows"
	"github.com/shopspring/decimal"
)

type stubTicker struct {
	symbol string
	info   dataflows.Info
	bars   []dataflows.Bar
}

func (s *stubTicker) Symbol() string { return s.symbol }
func (s *stubTicker) Info(ctx context.Context) (dataflows.Info, error) {
	return s.info, nil
}
func (s *stubTicker) History(ctx context.Context, period time.Duration) ([]dataflows.Bar, error) {
	return s.bars, nil
}
func (s *stubTicker) Statements(ctx context.Context) (*dataflows.Statements, error) {
	return nil, errors.New("no statements")
}

type stubSource struct {
	tickers map[string]*stubTicker
	err     error
}

func (s *stubSource) Open(ctx context.Context, symbol string) (dataflows.Ticker, error) {
	if s.err != nil {
		return nil, s.err
	}
	if t, ok := s.tickers[symbol]; ok {
		return t, nil
	}
	return &stubTicker{symbol: symbol, info: dataflows.Info{}}, nil
}

type stubProvider struct {
	articles []dataflows.Article
	err      error
}

func (p *stubProvider) Name() string { return dataflows.BackendDirectExa }
func (p *stubProvider) Search(ctx context.Context, req dataflows.SearchRequest) ([]dataflows.Article, error) {
	return p.articles, p.err
}

func bars(closes ...float64) []dataflows.Bar {
	out := make([]dataflows.Bar, 0, len(closes))
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		v := int64(100)
		out = append(out, dataflows.Bar{Date: time.Unix(int64(i)*86400, 0), Close: &d, Volume: &v})
	}
	return out
}

func newMarketTools(src dataflows.MarketDataSource) *MarketTools {
	return NewMarketTools(evidence.NewResolver(src), evidence.SymbolRequest{Market: "india", Exchange: "NSE"})
}

func TestCompanyInfo_ResolvesWithDefaults(t *testing.T) {
	src := &stubSource{tickers: map[string]*stubTicker{
		"RELIANCE.NS": {symbol: "RELIANCE.NS", info: dataflows.Info{"longName": "Reliance Industries Limited", "beta": 0.9}},
	}}
	out, err := newMarketTools(src).CompanyInfo(context.Background(), TickerInput{Ticker: "reliance"})
	if err != nil {
		t.Fatalf("CompanyInfo failed: %v", err)
	}
	ci, ok := out.(*evidence.CompanyInfo)
	if !ok {
		t.Fatalf("expected *evidence.CompanyInfo, got %T", out)
	}
	if ci.Ticker != "RELIANCE.NS" || ci.RequestedTicker != "RELIANCE" {
		t.Errorf("symbols = %s/%s", ci.RequestedTicker, ci.Ticker)
	}
	if !strings.Contains(ci.DataQualityNotes[0], "Resolved ticker 'RELIANCE' to 'RELIANCE.NS'") {
		t.Errorf("resolution note missing: %v", ci.DataQualityNotes)
	}
}

func TestMarketTools_ErrorPayloads(t *testing.T) {
	src := &stubSource{err: errors.New("network down")}
	m := newMarketTools(src)

	tests := []struct {
		name string
		call func(context.Context, TickerInput) (any, error)
		want string
		note string
	}{
		{"info", m.CompanyInfo, "Failed to fetch company info: ", "Company info request failed."},
		{"statements", m.FinancialStatements, "Failed to initialize yfinance ticker: ", "Financial statement fetch failed."},
		{"price", m.StockPrice, "Failed to fetch stock price data: ", "Stock price request failed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.call(context.Background(), TickerInput{Ticker: "ms", Market: "global"})
			if err != nil {
				t.Fatalf("tool must not return an error, got %v", err)
			}
			p, ok := out.(*ErrorPayload)
			if !ok {
				t.Fatalf("expected *ErrorPayload, got %T", out)
			}
			if p.Ticker != "MS" || !strings.HasPrefix(p.Error, tt.want) || !strings.Contains(p.Error, "network down") {
				t.Errorf("payload = %+v", p)
			}
			if len(p.DataQualityNotes) != 1 || p.DataQualityNotes[0] != tt.note {
				t.Errorf("notes = %v", p.DataQualityNotes)
			}
		})
	}
}

func TestFinancialStatements_DegradesOnFetchError(t *testing.T) {
	src := &stubSource{tickers: map[string]*stubTicker{
		"MS": {symbol: "MS", info: dataflows.Info{"symbol": "MS"}},
	}}
	out, err := newMarketTools(src).FinancialStatements(context.Background(), TickerInput{Ticker: "MS", Market: "global"})
	if err != nil {
		t.Fatalf("FinancialStatements failed: %v", err)
	}
	snap, ok := out.(*evidence.StatementSnapshot)
	if !ok {
		t.Fatalf("expected snapshot, got %T", out)
	}
	if len(snap.DataQualityNotes) != 1 {
		t.Errorf("expected single summary note, got %v", snap.DataQualityNotes)
	}
}

func TestStockPriceTool_JSON(t *testing.T) {
	src := &stubSource{tickers: map[string]*stubTicker{
		"MS": {symbol: "MS", info: dataflows.Info{"symbol": "MS"}, bars: bars(100, 110)},
	}}
	tl := newMarketTools(src).NewStockPriceTool()

	info, err := tl.Info(context.Background())
	if err != nil || info.Name != "get_current_stock_price" {
		t.Fatalf("tool info = %+v, %v", info, err)
	}

	raw, err := tl.InvokableRun(context.Background(), `{"ticker":"MS","market":"global"}`)
	if err != nil {
		t.Fatalf("InvokableRun failed: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("tool output is not JSON: %v: %s", err, raw)
	}
	if payload["current_price"] != 110.0 {
		t.Errorf("current_price = %#v", payload["current_price"])
	}
	change := payload["price_change_pct"].(map[string]any)
	if change["1y"] != "N/A" {
		t.Errorf("1y change = %#v", change["1y"])
	}
}

func TestSearchCompanyNews(t *testing.T) {
	n := NewNewsTools(evidence.NewNewsSearcher(&stubProvider{articles: []dataflows.Article{
		{Title: "a", URL: "u1"}, {Title: "b", URL: "u2"}, {Title: "c", URL: "u3"},
	}}), "global", 30)

	out, err := n.SearchCompanyNews(context.Background(), NewsInput{Ticker: "MS", CompanyName: "Morgan Stanley"})
	if err != nil {
		t.Fatalf("SearchCompanyNews failed: %v", err)
	}
	bundle, ok := out.(*evidence.NewsBundle)
	if !ok {
		t.Fatalf("expected bundle, got %T", out)
	}
	if bundle.LookbackDays != 30 || bundle.NewsBackend != "direct_exa_api" || bundle.SourceConfidence != "high" {
		t.Errorf("bundle = %+v", bundle)
	}
}

func TestSearchCompanyNews_TransportFailure(t *testing.T) {
	n := NewNewsTools(evidence.NewNewsSearcher(&stubProvider{err: errors.New("DockerMCP Exa search timed out.")}), "global", 30)

	out, err := n.SearchCompanyNews(context.Background(), NewsInput{Ticker: "ms", CompanyName: "Morgan Stanley"})
	if err != nil {
		t.Fatalf("tool must not return an error, got %v", err)
	}
	p, ok := out.(*ErrorPayload)
	if !ok {
		t.Fatalf("expected *ErrorPayload, got %T", out)
	}
	if !strings.HasPrefix(p.Error, "Failed to search company news: ") || !strings.Contains(p.Error, "timed out") {
		t.Errorf("payload = %+v", p)
	}
}
