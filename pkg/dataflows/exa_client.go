package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultExaTimeout    = 30 * time.Second
	DefaultExaRateLimit  = 5 // requests per second
	defaultExaNumResults = 10
)

// ExaClient calls the Exa search API directly.
type ExaClient struct {
	apiKey  string
	baseURL string
	http    *resty.Client
	limiter *rate.Limiter
}

type ExaOption func(*ExaClient)

func WithExaBaseURL(baseURL string) ExaOption {
	return func(c *ExaClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithExaRateLimit(requestsPerSecond int) ExaOption {
	return func(c *ExaClient) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

func WithExaTimeout(timeout time.Duration) ExaOption {
	return func(c *ExaClient) {
		c.http.SetTimeout(timeout)
	}
}

func NewExaClient(apiKey string, opts ...ExaOption) *ExaClient {
	c := &ExaClient{
		apiKey:  apiKey,
		baseURL: "https://api.exa.ai",
		http: resty.New().
			SetTimeout(DefaultExaTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		limiter: rate.NewLimiter(rate.Limit(DefaultExaRateLimit), DefaultExaRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ExaClient) Name() string { return BackendDirectExa }

type exaSearchRequest struct {
	Query              string         `json:"query"`
	NumResults         int            `json:"numResults"`
	StartPublishedDate string         `json:"startPublishedDate,omitempty"`
	IncludeDomains     []string       `json:"includeDomains,omitempty"`
	Contents           map[string]any `json:"contents"`
}

func (c *ExaClient) Search(ctx context.Context, req SearchRequest) ([]Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("Exa rate limiter: %v", err), Cause: err}
	}

	n := req.NumResults
	if n <= 0 {
		n = defaultExaNumResults
	}
	body := exaSearchRequest{
		Query:          req.Query,
		NumResults:     n,
		IncludeDomains: req.IncludeDomains,
		Contents: map[string]any{
			"text":    map[string]any{"maxCharacters": 1000},
			"summary": true,
		},
	}
	if req.StartDate != "" {
		body.StartPublishedDate = req.StartDate + "T00:00:00.000Z"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(body).
		Post(c.baseURL + "/search")
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("Exa search request failed: %v", err), Cause: err}
	}
	if resp.IsError() {
		return nil, &ProviderError{
			Provider:   c.Name(),
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(string(resp.Body())),
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("Could not parse Exa response: %v", err), Cause: err}
	}
	return NormalizeResults(raw), nil
}
