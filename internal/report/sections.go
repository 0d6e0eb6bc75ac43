package report

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dyike/AdvisorGo/internal/agents"
	"github.com/dyike/AdvisorGo/internal/pipeline"
)

const (
	NotFound     = "Not found in report."
	PresentEmpty = "Present but empty."
	RuntimeError = "Not available due to runtime error."

	FieldDataGaps   = "Data Gaps"
	FieldDisclaimer = "Disclaimer"
)

var (
	headingPrefix  = regexp.MustCompile(`^#+\s*`)
	numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)

	aliases = map[string]string{
		"decision":          "Decision (Invest/Do Not Invest/Hold)",
		"confidence":        "Confidence (0-100)",
		"time horizon view": "Time Horizon View (30/90/365 days)",
		"time horizon":      "Time Horizon View (30/90/365 days)",
		"horizon view":      "Time Horizon View (30/90/365 days)",
	}
)

// Sections maps every recommendation field to its report text.
type Sections map[string]string

// Fields returns the recommendation fields in report order.
func Fields() []string {
	return append([]string{}, agents.RecommendationSections...)
}

func filled(value string) Sections {
	s := make(Sections, len(agents.RecommendationSections))
	for _, f := range agents.RecommendationSections {
		s[f] = value
	}
	return s
}

func targets() map[string]string {
	t := make(map[string]string, len(agents.RecommendationSections)+len(aliases))
	for _, f := range agents.RecommendationSections {
		t[strings.ToLower(f)] = f
	}
	for alias, f := range aliases {
		if _, ok := t[alias]; !ok {
			t[alias] = f
		}
	}
	return t
}

// ParseSections splits a markdown report into the recommendation fields.
// A heading line may carry #, a "1." prefix, bold markers and an inline
// value after the first colon.
func ParseSections(markdown string) Sections {
	sections := filled(NotFound)
	if strings.TrimSpace(markdown) == "" {
		return sections
	}

	known := targets()
	var (
		current string
		buffer  []string
	)
	flush := func() {
		if current == "" {
			return
		}
		content := strings.TrimSpace(strings.Join(buffer, "\n"))
		if content == "" {
			content = PresentEmpty
		}
		sections[current] = content
	}

	for _, line := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		title, inline := lineTitle(line, known)
		if title != "" {
			flush()
			current = title
			buffer = buffer[:0]
			if inline != "" {
				buffer = append(buffer, inline)
			}
			continue
		}
		if current != "" {
			buffer = append(buffer, line)
		}
	}
	flush()
	return sections
}

func lineTitle(line string, known map[string]string) (string, string) {
	text := strings.TrimSpace(line)
	text = headingPrefix.ReplaceAllString(text, "")
	text = numberedPrefix.ReplaceAllString(text, "")
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "*"))
	if text == "" {
		return "", ""
	}

	candidate, inline := text, ""
	if left, right, ok := strings.Cut(text, ":"); ok {
		candidate = strings.TrimSpace(left)
		// **Decision:** Invest leaves the closing bold marker on the value
		inline = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(right), "*"))
	}
	key := strings.ToLower(strings.TrimSpace(strings.TrimRight(candidate, ":")))
	return known[key], inline
}

// ErrorSections is shown in place of a report when the run failed.
func ErrorSections(msg string) Sections {
	s := filled(RuntimeError)
	s[FieldDataGaps] = "Run failed before recommendation generation. Error: " + pipeline.CompactError(msg)
	s[FieldDisclaimer] = "This is informational analysis, not financial advice."
	return s
}

// ParseFile reads and parses a report file.
func ParseFile(path string) (Sections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return ParseSections(string(data)), nil
}
