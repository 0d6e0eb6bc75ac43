package graph

import (
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/internal/evidence"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/tools"
	"github.com/dyike/AdvisorGo/pkg/dataflows"
)

// NewToolset wires the market data source and search provider selected by
// cfg into the four agent tools. Run inputs supply the market defaults used
// when a model omits them.
func NewToolset(cfg *config.Config, in *models.Inputs) ([]tool.BaseTool, error) {
	source, err := dataflows.NewMarketDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("market data source: %w", err)
	}
	market := tools.NewMarketTools(evidence.NewResolver(source), evidence.SymbolRequest{
		Market:   in.Market,
		Exchange: in.ExchangePreference,
	})

	provider := dataflows.NewWebSearchProvider(cfg.Search)
	news := tools.NewNewsTools(evidence.NewNewsSearcher(provider), in.Market, in.NewsLookbackDays)

	return []tool.BaseTool{
		news.NewSearchCompanyNewsTool(),
		market.NewCompanyInfoTool(),
		market.NewFinancialStatementsTool(),
		market.NewStockPriceTool(),
	}, nil
}
