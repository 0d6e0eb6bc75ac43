package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/internal/evidence"
	"github.com/dyike/AdvisorGo/internal/tools"
	"github.com/dyike/AdvisorGo/pkg/dataflows"
)

// Prints the payloads the market tools would hand to the data explorer.
// Usage: dataflow TICKER [market] [exchange]
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: dataflow TICKER [market] [exchange]")
		os.Exit(2)
	}
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatal(err)
	}

	in := tools.TickerInput{Ticker: os.Args[1]}
	if len(os.Args) > 2 {
		in.Market = os.Args[2]
	}
	if len(os.Args) > 3 {
		in.ExchangePreference = os.Args[3]
	}

	source, err := dataflows.NewMarketDataSource(cfg)
	if err != nil {
		log.Fatal(err)
	}
	market := tools.NewMarketTools(evidence.NewResolver(source), evidence.SymbolRequest{
		Market:   cfg.Market,
		Exchange: cfg.ExchangePreference,
	})

	steps := []struct {
		name string
		run  func(context.Context, tools.TickerInput) (any, error)
	}{
		{"company_info", market.CompanyInfo},
		{"financial_statements", market.FinancialStatements},
		{"stock_price", market.StockPrice},
	}
	for _, step := range steps {
		payload, err := step.run(ctx, in)
		if err != nil {
			log.Fatalf("%s: %v", step.name, err)
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Printf("== %s ==\n%s\n", step.name, data)
	}
}
