package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/dyike/AdvisorGo/consts"
	"github.com/dyike/AdvisorGo/internal/evidence"
)

type NewsInput struct {
	Ticker       string `json:"ticker"`
	CompanyName  string `json:"company_name"`
	LookbackDays int    `json:"lookback_days,omitempty"`
	Market       string `json:"market,omitempty"`
}

// NewsTools wraps the company news searcher.
type NewsTools struct {
	searcher        *evidence.NewsSearcher
	defaultMarket   string
	defaultLookback int
}

func NewNewsTools(searcher *evidence.NewsSearcher, defaultMarket string, defaultLookback int) *NewsTools {
	return &NewsTools{searcher: searcher, defaultMarket: defaultMarket, defaultLookback: defaultLookback}
}

// SearchCompanyNews returns a *evidence.NewsBundle or an *ErrorPayload.
func (n *NewsTools) SearchCompanyNews(ctx context.Context, in NewsInput) (any, error) {
	req := evidence.NewsRequest{
		Ticker:       in.Ticker,
		CompanyName:  in.CompanyName,
		LookbackDays: in.LookbackDays,
		Market:       in.Market,
	}
	if req.LookbackDays == 0 {
		req.LookbackDays = n.defaultLookback
	}
	if strings.TrimSpace(req.Market) == "" {
		req.Market = n.defaultMarket
	}

	bundle, err := n.searcher.Search(ctx, req)
	if err != nil {
		ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
		return failure(ticker, "Failed to search company news:", err, "News search request failed."), nil
	}
	return bundle, nil
}

func (n *NewsTools) NewSearchCompanyNewsTool() tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: consts.ToolSearchCompanyNews,
			Desc: "Find recent company news. Prioritizes Reuters/Bloomberg/WSJ first, then falls back to broader web results if coverage is insufficient.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Public ticker symbol, e.g., MS",
					Required: true,
				},
				"company_name": {
					Type:     "string",
					Desc:     "Company name, e.g., Morgan Stanley",
					Required: true,
				},
				"lookback_days": {
					Type:     "integer",
					Desc:     "How many days back to search for news (1-365, default: 30)",
					Required: false,
				},
				"market": {
					Type:     "string",
					Desc:     "Optional market context. Use 'india' for NSE/BSE focused sources.",
					Required: false,
				},
			}),
		},
		n.SearchCompanyNews,
	)
}
