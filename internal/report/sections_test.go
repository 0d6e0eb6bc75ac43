package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleReport = `# Investment Recommendation

## 1. **Decision (Invest/Do Not Invest/Hold)**
Hold

**Confidence:** 62

### Time Horizon
- 30 days: range bound
- 365 days: moderate upside

## Bull Case

## Key Risks
- Rate sensitivity
`

func TestParseSections(t *testing.T) {
	s := ParseSections(sampleReport)

	cases := []struct {
		field string
		want  string
	}{
		{"Decision (Invest/Do Not Invest/Hold)", "Hold"},
		{"Confidence (0-100)", "62"},
		{"Time Horizon View (30/90/365 days)", "- 30 days: range bound\n- 365 days: moderate upside"},
		{"Bull Case", PresentEmpty},
		{"Key Risks", "- Rate sensitivity"},
		{"Bear Case", NotFound},
		{"Disclaimer", NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			if got := s[tc.field]; got != tc.want {
				t.Errorf("%s = %q, want %q", tc.field, got, tc.want)
			}
		})
	}
	if len(s) != len(Fields()) {
		t.Errorf("expected %d fields, got %d", len(Fields()), len(s))
	}
}

func TestParseSections_Empty(t *testing.T) {
	for field, value := range ParseSections("  \n") {
		if value != NotFound {
			t.Errorf("%s = %q", field, value)
		}
	}
}

func TestErrorSections(t *testing.T) {
	s := ErrorSections("boom\n\n  upstream   failed")
	if s[FieldDataGaps] != "Run failed before recommendation generation. Error: boom upstream failed" {
		t.Errorf("unexpected data gaps %q", s[FieldDataGaps])
	}
	if s[FieldDisclaimer] != "This is informational analysis, not financial advice." {
		t.Errorf("unexpected disclaimer %q", s[FieldDisclaimer])
	}
	if s["Bull Case"] != RuntimeError {
		t.Errorf("unexpected bull case %q", s["Bull Case"])
	}

	long := ErrorSections(strings.Repeat("e", 1000))[FieldDataGaps]
	if !strings.HasSuffix(long, "...") {
		t.Error("long errors should be compacted")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := os.WriteFile(path, []byte("Decision: Invest\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s["Decision (Invest/Do Not Invest/Hold)"] != "Invest" {
		t.Errorf("unexpected decision %q", s["Decision (Invest/Do Not Invest/Hold)"])
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}
}
