package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyike/AdvisorGo/config"
	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
)

// LongportClient serves quotes and candlesticks for US/HK listings. It has
// no statement data, so statement fields degrade to N/A.
type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(cfg config.MarketDataConfig) (*LongportClient, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

// LongportSymbol converts a Yahoo style symbol to Longport's market suffix
// form. India listings are not served.
func LongportSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case symbol == "":
		return "", fmt.Errorf("symbol cannot be empty")
	case strings.HasSuffix(symbol, ".NS"), strings.HasSuffix(symbol, ".BO"):
		return "", fmt.Errorf("longport does not cover india listing %s", symbol)
	case strings.Contains(symbol, "."):
		return symbol, nil
	default:
		return symbol + ".US", nil
	}
}

func (lpc *LongportClient) Open(ctx context.Context, symbol string) (Ticker, error) {
	lpSymbol, err := LongportSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return &longportTicker{client: lpc, symbol: strings.ToUpper(strings.TrimSpace(symbol)), lpSymbol: lpSymbol}, nil
}

type longportTicker struct {
	client   *LongportClient
	symbol   string
	lpSymbol string
}

func (t *longportTicker) Symbol() string { return t.symbol }

func (t *longportTicker) Info(ctx context.Context) (Info, error) {
	infos, err := t.client.quoteCtx.StaticInfo(ctx, []string{t.lpSymbol})
	if err != nil {
		return nil, fmt.Errorf("longport static info for %s: %w", t.lpSymbol, err)
	}
	info := Info{}
	for _, si := range infos {
		if si == nil {
			continue
		}
		putString(info, "symbol", t.symbol)
		putString(info, "longName", si.NameEn)
		putString(info, "shortName", si.NameEn)
		putString(info, "exchange", si.Exchange)
		putString(info, "currency", si.Currency)
	}
	return info, nil
}

func (t *longportTicker) History(ctx context.Context, period time.Duration) ([]Bar, error) {
	count := int32(period.Hours()/24*252/365) + 1
	sticks, err := t.client.quoteCtx.Candlesticks(ctx, t.lpSymbol, quote.PeriodDay, count, quote.AdjustTypeNo)
	if err != nil {
		return nil, fmt.Errorf("longport candlesticks for %s: %w", t.lpSymbol, err)
	}
	bars := make([]Bar, 0, len(sticks))
	for _, s := range sticks {
		if s == nil {
			continue
		}
		open, _ := s.Open.Float64()
		high, _ := s.High.Float64()
		low, _ := s.Low.Float64()
		closeF, _ := s.Close.Float64()
		closeVal := decimal.NewFromFloat(closeF)
		volume := s.Volume
		bars = append(bars, Bar{
			Date:   time.Unix(s.Timestamp, 0).UTC(),
			Open:   decimal.NewFromFloat(open),
			High:   decimal.NewFromFloat(high),
			Low:    decimal.NewFromFloat(low),
			Close:  &closeVal,
			Volume: &volume,
		})
	}
	return bars, nil
}

func (t *longportTicker) Statements(ctx context.Context) (*Statements, error) {
	return &Statements{}, nil
}
