package dataflows

import (
	"context"
	"testing"
	"time"

	"github.com/dyike/AdvisorGo/config"
)

func TestLongportSymbol(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "aapl", want: "AAPL.US"},
		{in: " 700.HK ", want: "700.HK"},
		{in: "MS.US", want: "MS.US"},
		{in: "RELIANCE.NS", wantErr: true},
		{in: "TCS.BO", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LongportSymbol(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LongportSymbol(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LongportSymbol(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("LongportSymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLongportClient_Info(t *testing.T) {
	cfg := config.DefaultConfig()

	client, err := NewLongportClient(cfg.MarketData)
	if err != nil {
		t.Skipf("Skipping test due to missing Longport API credentials: %v", err)
	}

	ctx := context.Background()
	ticker, err := client.Open(ctx, "700.HK")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info, err := ticker.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if !info.Present("longName") {
		t.Errorf("expected longName in static info, got %v", info)
	}

	bars, err := ticker.History(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	t.Logf("fetched %d candlesticks for %s", len(bars), ticker.Symbol())
}
