package evidence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/pkg/dataflows"
)

// ErrNoHandle is returned when no candidate symbol could be opened.
var ErrNoHandle = errors.New("unable to initialize ticker handle")

// probeKeys are the info fields that identify a live listing.
var probeKeys = []string{"symbol", "shortName", "longName", "marketCap", "currentPrice", "regularMarketPrice"}

const probeHistory = 5 * 24 * time.Hour

// SymbolRequest is the raw ticker plus routing hints.
type SymbolRequest struct {
	Ticker   string
	Market   string
	Exchange string
}

// Resolved is the outcome of resolution for one tool call.
type Resolved struct {
	Requested string
	Symbol    string
	Notes     []string
	Ticker    dataflows.Ticker
}

// Resolver finds the exchange-qualified symbol a data source recognizes.
type Resolver struct {
	source dataflows.MarketDataSource
}

func NewResolver(source dataflows.MarketDataSource) *Resolver {
	return &Resolver{source: source}
}

// Candidates lists the symbols to try, in order. Qualified tickers and
// global listings yield a single candidate; India listings try the
// preferred exchange, the other exchange, then the bare ticker.
func Candidates(ticker, market, exchange string) []string {
	base := strings.ToUpper(strings.TrimSpace(ticker))
	if base == "" || strings.Contains(base, ".") {
		return []string{base}
	}
	if config.NormalizeMarket(market) != config.MarketIndia {
		return []string{base}
	}

	var ordered []string
	if config.NormalizeExchange(exchange) == config.ExchangeBSE {
		ordered = []string{base + config.SuffixBSE, base + config.SuffixNSE, base}
	} else {
		ordered = []string{base + config.SuffixNSE, base + config.SuffixBSE, base}
	}

	seen := make(map[string]struct{}, len(ordered))
	deduped := ordered[:0]
	for _, sym := range ordered {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		deduped = append(deduped, sym)
	}
	return deduped
}

// Resolve returns the first candidate whose handle probes valid. When none
// validate it degrades to the last candidate that opened, without error.
// An empty ticker resolves to "" with a blank handle and never reaches the
// source.
func (r *Resolver) Resolve(ctx context.Context, req SymbolRequest) (*Resolved, error) {
	requested := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if requested == "" {
		return &Resolved{Ticker: blankTicker{}}, nil
	}
	candidates := Candidates(req.Ticker, req.Market, req.Exchange)

	var (
		fallback    dataflows.Ticker
		fallbackSym string
		lastErr     error
	)
	for _, candidate := range candidates {
		handle, err := r.source.Open(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		fallback, fallbackSym = handle, candidate
		if !looksValid(ctx, handle) {
			continue
		}
		res := &Resolved{Requested: requested, Symbol: candidate, Ticker: handle}
		if candidate != requested {
			res.Notes = append(res.Notes, fmt.Sprintf("Resolved ticker '%s' to '%s' for yfinance lookup.", requested, candidate))
		}
		return res, nil
	}

	if fallback != nil {
		log.Printf("[Resolver] no candidate validated for %q, using %q", requested, fallbackSym)
		return &Resolved{Requested: requested, Symbol: fallbackSym, Ticker: fallback}, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("open ticker %s: %w", requested, lastErr)
	}
	return nil, ErrNoHandle
}

func looksValid(ctx context.Context, handle dataflows.Ticker) bool {
	if info, err := handle.Info(ctx); err == nil {
		for _, key := range probeKeys {
			if info.Present(key) {
				return true
			}
		}
	}
	bars, err := handle.History(ctx, probeHistory)
	return err == nil && len(bars) > 0
}

// blankTicker is the handle of an empty symbol: every field is missing.
type blankTicker struct{}

func (blankTicker) Symbol() string { return "" }

func (blankTicker) Info(context.Context) (dataflows.Info, error) { return dataflows.Info{}, nil }

func (blankTicker) History(context.Context, time.Duration) ([]dataflows.Bar, error) {
	return nil, nil
}

func (blankTicker) Statements(context.Context) (*dataflows.Statements, error) {
	return &dataflows.Statements{}, nil
}
