package dataflows

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
)

const (
	DefaultYahooBaseURL = "https://query2.finance.yahoo.com"
	yahooUserAgent      = "Mozilla/5.0 (compatible; AdvisorGo/1.0)"
)

// YahooFinanceClient reads quotes and history through finance-go, and
// statement rows and the company profile through the Yahoo JSON APIs.
type YahooFinanceClient struct {
	cache   *CacheManager
	http    *resty.Client
	retry   *RetryConfig
	baseURL string
}

type YahooOption func(*YahooFinanceClient)

// WithYahooBaseURL points the timeseries and profile requests at another host.
func WithYahooBaseURL(baseURL string) YahooOption {
	return func(c *YahooFinanceClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithYahooRetry(rc *RetryConfig) YahooOption {
	return func(c *YahooFinanceClient) {
		c.retry = rc
	}
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(cache *CacheManager, opts ...YahooOption) *YahooFinanceClient {
	c := &YahooFinanceClient{
		cache:   cache,
		retry:   DefaultRetryConfig(),
		baseURL: DefaultYahooBaseURL,
		http: resty.New().
			SetTimeout(20*time.Second).
			SetHeader("User-Agent", yahooUserAgent).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open returns a lazy handle; nothing is fetched until a method is called.
func (yf *YahooFinanceClient) Open(ctx context.Context, symbol string) (Ticker, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	return &yahooTicker{client: yf, symbol: symbol}, nil
}

type yahooTicker struct {
	client *YahooFinanceClient
	symbol string
}

func (t *yahooTicker) Symbol() string { return t.symbol }

func (t *yahooTicker) Info(ctx context.Context) (Info, error) {
	yf := t.client

	var cached Info
	if yf.cache.Get("yahoo", "info", t.symbol, &cached) {
		return cached, nil
	}

	info := Info{}
	err := WithRetry(ctx, yf.retry, func() error {
		eq, err := equity.Get(t.symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", t.symbol, err)
		}
		if eq == nil {
			return nil
		}
		putString(info, "symbol", eq.Symbol)
		putString(info, "shortName", eq.ShortName)
		putString(info, "longName", eq.LongName)
		putString(info, "currency", eq.CurrencyID)
		putString(info, "exchange", eq.FullExchangeName)
		putFloat(info, "currentPrice", eq.RegularMarketPrice)
		putFloat(info, "regularMarketPrice", eq.RegularMarketPrice)
		putFloat(info, "marketCap", float64(eq.MarketCap))
		putFloat(info, "trailingPE", eq.TrailingPE)
		putFloat(info, "forwardPE", eq.ForwardPE)
		putFloat(info, "fiftyTwoWeekHigh", eq.FiftyTwoWeekHigh)
		putFloat(info, "fiftyTwoWeekLow", eq.FiftyTwoWeekLow)
		putFloat(info, "averageVolume", float64(eq.AverageDailyVolume3Month))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The quote endpoint has no profile or ratio fields; a failed profile
	// fetch leaves them missing rather than failing the quote.
	var profile Info
	perr := WithRetry(ctx, yf.retry, func() error {
		var err error
		profile, err = yf.fetchProfile(ctx, t.symbol)
		return err
	})
	if perr != nil {
		log.Printf("[Yahoo] profile unavailable for %s: %v", t.symbol, perr)
	}
	mergeMissing(info, profile)

	if len(info) > 0 {
		if err := yf.cache.Set("yahoo", "info", t.symbol, info); err != nil {
			log.Printf("[Yahoo] cache write failed for %s: %v", t.symbol, err)
		}
	}
	return info, nil
}

func (t *yahooTicker) History(ctx context.Context, period time.Duration) ([]Bar, error) {
	yf := t.client
	end := time.Now()
	start := end.Add(-period)

	cacheKey := map[string]string{
		"symbol": t.symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}
	var cached []Bar
	if yf.cache.Get("yahoo", "history", cacheKey, &cached) {
		return cached, nil
	}

	var bars []Bar
	err := WithRetry(ctx, yf.retry, func() error {
		iter := chart.Get(&chart.Params{
			Symbol:   t.symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		})

		bars = bars[:0]
		for iter.Next() {
			b := iter.Bar()
			closeVal := b.Close
			volume := int64(b.Volume)
			bars = append(bars, Bar{
				Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  &closeVal,
				Volume: &volume,
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", t.symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(bars) > 0 {
		if err := yf.cache.Set("yahoo", "history", cacheKey, bars); err != nil {
			log.Printf("[Yahoo] cache write failed for %s: %v", t.symbol, err)
		}
	}
	return bars, nil
}

func (t *yahooTicker) Statements(ctx context.Context) (*Statements, error) {
	yf := t.client

	var cached Statements
	if yf.cache.Get("yahoo", "statements", t.symbol, &cached) {
		return &cached, nil
	}

	var stmts *Statements
	err := WithRetry(ctx, yf.retry, func() error {
		var err error
		stmts, err = yf.fetchTimeseries(ctx, t.symbol)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := yf.cache.Set("yahoo", "statements", t.symbol, stmts); err != nil {
		log.Printf("[Yahoo] cache write failed for %s: %v", t.symbol, err)
	}
	return stmts, nil
}

func putString(info Info, key, val string) {
	if v := strings.TrimSpace(val); v != "" {
		info[key] = v
	}
}

// mergeMissing copies src keys that dst does not already hold.
func mergeMissing(dst, src Info) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

// putFloat skips zero values; finance-go reports missing numbers as 0.
func putFloat(info Info, key string, val float64) {
	if val != 0 {
		info[key] = val
	}
}
