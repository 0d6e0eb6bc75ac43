package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/dyike/AdvisorGo/consts"
	"github.com/dyike/AdvisorGo/internal/evidence"
)

// TickerInput is the argument schema shared by the market data tools.
type TickerInput struct {
	Ticker             string `json:"ticker"`
	Market             string `json:"market,omitempty"`
	ExchangePreference string `json:"exchange_preference,omitempty"`
}

// ErrorPayload is returned in place of data when a lookup cannot start.
type ErrorPayload struct {
	Ticker           string   `json:"ticker"`
	Error            string   `json:"error"`
	DataQualityNotes []string `json:"data_quality_notes"`
}

// MarketTools serves company info, statements and price snapshots.
// Defaults fills market and exchange when the model omits them.
type MarketTools struct {
	resolver *evidence.Resolver
	defaults evidence.SymbolRequest
}

func NewMarketTools(resolver *evidence.Resolver, defaults evidence.SymbolRequest) *MarketTools {
	return &MarketTools{resolver: resolver, defaults: defaults}
}

var tickerParams = map[string]*schema.ParameterInfo{
	"ticker": {
		Type:     "string",
		Desc:     "Public ticker symbol, e.g., MS",
		Required: true,
	},
	"market": {
		Type:     "string",
		Desc:     "Optional market context: use 'india' for NSE/BSE routing.",
		Required: false,
	},
	"exchange_preference": {
		Type:     "string",
		Desc:     "Optional preferred exchange for India: NSE or BSE.",
		Required: false,
	},
}

func (m *MarketTools) request(in TickerInput) evidence.SymbolRequest {
	req := evidence.SymbolRequest{Ticker: in.Ticker, Market: in.Market, Exchange: in.ExchangePreference}
	if strings.TrimSpace(req.Market) == "" {
		req.Market = m.defaults.Market
	}
	if strings.TrimSpace(req.Exchange) == "" {
		req.Exchange = m.defaults.Exchange
	}
	return req
}

func failure(ticker, prefix string, err error, note string) *ErrorPayload {
	log.Printf("[Tools] %s for %s: %v", strings.TrimSuffix(prefix, ":"), ticker, err)
	return &ErrorPayload{
		Ticker:           ticker,
		Error:            fmt.Sprintf("%s %v", prefix, err),
		DataQualityNotes: []string{note},
	}
}

// CompanyInfo returns a *evidence.CompanyInfo or an *ErrorPayload.
func (m *MarketTools) CompanyInfo(ctx context.Context, in TickerInput) (any, error) {
	requested := strings.ToUpper(strings.TrimSpace(in.Ticker))
	res, err := m.resolver.Resolve(ctx, m.request(in))
	if err != nil {
		return failure(requested, "Failed to fetch company info:", err, "Company info request failed."), nil
	}
	info, err := res.Ticker.Info(ctx)
	if err != nil {
		return failure(requested, "Failed to fetch company info:", err, "Company info request failed."), nil
	}
	return evidence.BuildCompanyInfo(requested, res.Symbol, info, res.Notes), nil
}

// FinancialStatements returns a *evidence.StatementSnapshot or an
// *ErrorPayload. A statement fetch error after resolution degrades to an
// empty snapshot.
func (m *MarketTools) FinancialStatements(ctx context.Context, in TickerInput) (any, error) {
	requested := strings.ToUpper(strings.TrimSpace(in.Ticker))
	res, err := m.resolver.Resolve(ctx, m.request(in))
	if err != nil {
		return failure(requested, "Failed to initialize yfinance ticker:", err, "Financial statement fetch failed."), nil
	}
	stmts, err := res.Ticker.Statements(ctx)
	if err != nil {
		log.Printf("[Tools] statements unavailable for %s: %v", res.Symbol, err)
		stmts = nil
	}
	return evidence.BuildStatementSnapshot(requested, res.Symbol, stmts, res.Notes), nil
}

// StockPrice returns a *evidence.PriceSnapshot or an *ErrorPayload.
func (m *MarketTools) StockPrice(ctx context.Context, in TickerInput) (any, error) {
	requested := strings.ToUpper(strings.TrimSpace(in.Ticker))
	res, err := m.resolver.Resolve(ctx, m.request(in))
	if err != nil {
		return failure(requested, "Failed to fetch stock price data:", err, "Stock price request failed."), nil
	}
	info, err := res.Ticker.Info(ctx)
	if err != nil {
		return failure(requested, "Failed to fetch stock price data:", err, "Stock price request failed."), nil
	}
	history, err := res.Ticker.History(ctx, evidence.PriceHistoryPeriod)
	if err != nil {
		return failure(requested, "Failed to fetch stock price data:", err, "Stock price request failed."), nil
	}
	snap := evidence.BuildPriceSnapshot(history, info)
	snap.Annotate(requested, res.Symbol, res.Notes)
	return &snap, nil
}

func (m *MarketTools) NewCompanyInfoTool() tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name:        consts.ToolGetCompanyInfo,
			Desc:        "Get company profile and key fundamental metrics for a ticker using yfinance.",
			ParamsOneOf: schema.NewParamsOneOfByParams(tickerParams),
		},
		m.CompanyInfo,
	)
}

func (m *MarketTools) NewFinancialStatementsTool() tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name:        consts.ToolGetFinancialStatement,
			Desc:        "Get annual and quarterly income statement, balance sheet, and cash flow highlights with simple growth deltas.",
			ParamsOneOf: schema.NewParamsOneOfByParams(tickerParams),
		},
		m.FinancialStatements,
	)
}

func (m *MarketTools) NewStockPriceTool() tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name:        consts.ToolGetStockPrice,
			Desc:        "Get current stock price snapshot, 52-week range, volume, and 1m/3m/1y price change percentages.",
			ParamsOneOf: schema.NewParamsOneOfByParams(tickerParams),
		},
		m.StockPrice,
	)
}
