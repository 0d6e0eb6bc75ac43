package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestNormalizeResults(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{
				"title":         "Quarterly results beat",
				"url":           "https://www.reuters.com/a",
				"publishedDate": "2026-09-30",
				"text":          "<p>Revenue <b>rose</b> 12%</p>",
			},
			map[string]any{
				"url":            "https://www.wsj.com/b",
				"published_date": "2026-10-01",
				"summary":        strings.Repeat("é", 600),
			},
			"not a record",
		},
	}

	got := NormalizeResults(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].PublishedDate != "2026-09-30" {
		t.Errorf("publishedDate fallback not applied: %q", got[0].PublishedDate)
	}
	if got[0].Summary != "Revenue rose 12%" {
		t.Errorf("expected markup stripped, got %q", got[0].Summary)
	}
	if got[1].Title != "N/A" {
		t.Errorf("missing title should be N/A, got %q", got[1].Title)
	}
	if n := len([]rune(got[1].Summary)); n != 500 {
		t.Errorf("summary should be truncated to 500 runes, got %d", n)
	}
}

func TestNormalizeResults_NoResults(t *testing.T) {
	if got := NormalizeResults(map[string]any{"error": "x"}); len(got) != 0 {
		t.Fatalf("expected no articles, got %v", got)
	}
	if got := NormalizeResults(nil); got != nil {
		t.Fatalf("expected nil for nil payload, got %v", got)
	}
}

func TestPriorityQuery(t *testing.T) {
	got := PriorityQuery("Acme (ACME) latest earnings", []string{"reuters.com", "wsj.com"})
	want := "Acme (ACME) latest earnings (site:reuters.com OR site:wsj.com)"
	if got != want {
		t.Errorf("PriorityQuery = %q, want %q", got, want)
	}
	if got := PriorityQuery("q", nil); got != "q" {
		t.Errorf("PriorityQuery without domains = %q", got)
	}
}

func TestParseBridgeOutput(t *testing.T) {
	payload, err := ParseBridgeOutput([]byte("Tool call took: 1.2s\n{\"results\":[{\"url\":\"u\"}]}\n"))
	if err != nil {
		t.Fatalf("ParseBridgeOutput failed: %v", err)
	}
	if _, ok := payload["results"]; !ok {
		t.Errorf("expected results key, got %v", payload)
	}

	_, err = ParseBridgeOutput([]byte("no json here"))
	if err == nil || err.Error() != "Could not parse DockerMCP tool output as JSON." {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDockerMCPClient_Search(t *testing.T) {
	var gotArgs []string
	client := NewDockerMCPClient()
	client.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte(`took 2s {"results":[{"title":"t","url":"https://reuters.com/x"}]}`), nil, nil
	}

	articles, err := client.Search(context.Background(), SearchRequest{
		Query:          "Acme (ACME)",
		IncludeDomains: []string{"reuters.com"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(articles) != 1 || articles[0].URL != "https://reuters.com/x" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
	wantLast := "query=Acme (ACME) (site:reuters.com)"
	if len(gotArgs) != 6 || gotArgs[0] != "docker" || gotArgs[5] != wantLast {
		t.Errorf("unexpected command: %q", gotArgs)
	}
}

func TestDockerMCPClient_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
		want string
	}{
		{
			name: "missing binary",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				return nil, nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
			},
			want: "Docker CLI not found. Install Docker Desktop to use DockerMCP Exa fallback.",
		},
		{
			name: "stderr diagnostic",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				return []byte("out"), []byte(" tool not enabled \n"), errors.New("exit status 1")
			},
			want: "DockerMCP Exa search failed: tool not enabled",
		},
		{
			name: "unknown error",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				return nil, nil, errors.New("exit status 2")
			},
			want: "DockerMCP Exa search failed: unknown error",
		},
		{
			name: "timeout",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				<-ctx.Done()
				return nil, nil, ctx.Err()
			},
			want: "DockerMCP Exa search timed out.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewDockerMCPClient(WithDockerTimeout(20 * time.Millisecond))
			client.run = tt.run

			_, err := client.Search(context.Background(), SearchRequest{Query: "q"})
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ProviderError, got %T: %v", err, err)
			}
			if perr.Provider != BackendDockerMCP {
				t.Errorf("provider = %q", perr.Provider)
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestExaClient_Search(t *testing.T) {
	var body exaSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("x-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"title":"A","url":"https://bloomberg.com/a","publishedDate":"2026-10-01","summary":"s"}]}`))
	}))
	defer server.Close()

	client := NewExaClient("secret", WithExaBaseURL(server.URL))
	articles, err := client.Search(context.Background(), SearchRequest{
		Query:          "Acme",
		StartDate:      "2026-09-14",
		IncludeDomains: []string{"bloomberg.com"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "A" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
	if body.StartPublishedDate != "2026-09-14T00:00:00.000Z" {
		t.Errorf("startPublishedDate = %q", body.StartPublishedDate)
	}
	if len(body.IncludeDomains) != 1 || body.IncludeDomains[0] != "bloomberg.com" {
		t.Errorf("includeDomains = %v", body.IncludeDomains)
	}
	if body.Query != "Acme" || body.NumResults != defaultExaNumResults {
		t.Errorf("unexpected request body: %+v", body)
	}
}

func TestExaClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewExaClient("k", WithExaBaseURL(server.URL))
	_, err := client.Search(context.Background(), SearchRequest{Query: "q"})

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", perr.StatusCode)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("diagnostic text lost: %v", err)
	}
}
