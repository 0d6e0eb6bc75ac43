package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dyike/AdvisorGo/internal/storage"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnclassified},
		{"litellm rate limit", errors.New("litellm.RateLimitError: OpenrouterException"), KindRateLimit},
		{"json 429", errors.New(`{"error":{"code":429}}`), KindRateLimit},
		{"status 429", errors.New("error, status code: 429, message: too many"), KindRateLimit},
		{"temporarily", errors.New("Model is Temporarily Rate-Limited upstream"), KindRateLimit},
		{"policy", errors.New("No endpoints found matching your data policy"), KindPolicyBlock},
		{"privacy link", errors.New("Configure: https://openrouter.ai/settings/privacy"), KindPolicyBlock},
		{"wrapped readonly", fmt.Errorf("start run: %w", storage.ErrReadOnly), KindStorageUnavailable},
		{"readonly text", errors.New("attempt to write a readonly database"), KindStorageUnavailable},
		{"other", errors.New("connection refused"), KindUnclassified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
	if !IsRateLimit(errors.New("rate limit")) || !IsPolicyBlock(errors.New("free model publication")) {
		t.Error("helper predicates disagree with Classify")
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := map[int]time.Duration{
		0: 3 * time.Second,
		1: 3 * time.Second,
		2: 8 * time.Second,
		3: 15 * time.Second,
		4: 25 * time.Second,
		9: 25 * time.Second,
	}
	for attempt, want := range cases {
		if got := BackoffDelay(attempt); got != want {
			t.Errorf("BackoffDelay(%d) = %s, want %s", attempt, got, want)
		}
	}
}

func TestCompactError(t *testing.T) {
	if got := CompactError("  a\n\tb   c "); got != "a b c" {
		t.Errorf("unexpected compact text %q", got)
	}
	long := strings.Repeat("x", 400)
	got := CompactError(long)
	if len([]rune(got)) != 360 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation, len=%d", len([]rune(got)))
	}
	exact := strings.Repeat("é", maxCompactErrorRune)
	if got := CompactError(exact); got != exact {
		t.Errorf("text at the limit must not be truncated, got %d runes", len([]rune(got)))
	}
}
