package dataflows

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	BackendDirectExa = "direct_exa_api"
	BackendDockerMCP = "dockermcp_exa_tool"

	maxSummaryRunes = 500
	notAvailable    = "N/A"
)

// ProviderError is a transport-level search failure carrying the original
// diagnostic text.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NormalizeResults converts a raw search payload ({"results": [...]}) into
// articles. Missing fields become "N/A" and summaries are truncated.
func NormalizeResults(raw map[string]any) []Article {
	if raw == nil {
		return nil
	}
	records, _ := raw["results"].([]any)
	articles := make([]Article, 0, len(records))
	for _, rec := range records {
		item, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		published := firstPresent(item, "published_date", "publishedDate")
		summary := firstPresent(item, "summary", "text")
		articles = append(articles, Article{
			Title:         safeString(item["title"]),
			URL:           safeString(item["url"]),
			PublishedDate: safeString(published),
			Summary:       truncateRunes(safeString(stripHTML(summary)), maxSummaryRunes),
		})
	}
	return articles
}

func firstPresent(item map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := item[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func safeString(v any) string {
	if v == nil {
		return notAvailable
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return notAvailable
	}
	return s
}

// stripHTML returns the text content of markup; plain strings pass through.
func stripHTML(v any) any {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, "<") {
		return v
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return v
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PriorityQuery ANDs a site: filter over domains onto query.
func PriorityQuery(query string, domains []string) string {
	if len(domains) == 0 {
		return query
	}
	sites := make([]string, 0, len(domains))
	for _, d := range domains {
		sites = append(sites, "site:"+d)
	}
	return query + " (" + strings.Join(sites, " OR ") + ")"
}
