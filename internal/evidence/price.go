package evidence

import (
	"math"
	"time"

	"github.com/dyike/AdvisorGo/pkg/dataflows"
)

// Trading-bar horizons for the price change block.
const (
	BarsOneMonth    = 21
	BarsThreeMonths = 63
	BarsOneYear     = 252

	volumeSample = 30
)

// PriceHistoryPeriod is how much history the price tool requests.
const PriceHistoryPeriod = 366 * 24 * time.Hour

type Range52Week struct {
	Low  Value `json:"low"`
	High Value `json:"high"`
}

type PriceChange struct {
	OneMonth    Value `json:"1m"`
	ThreeMonths Value `json:"3m"`
	OneYear     Value `json:"1y"`
}

// PriceSnapshot is the stock price payload.
type PriceSnapshot struct {
	RequestedTicker  string      `json:"requested_ticker"`
	Ticker           string      `json:"ticker"`
	CurrentPrice     Value       `json:"current_price"`
	Range52Week      Range52Week `json:"range_52_week"`
	AverageVolume    Value       `json:"average_volume"`
	PriceChangePct   PriceChange `json:"price_change_pct"`
	DataQualityNotes []string    `json:"data_quality_notes"`
}

// BuildPriceSnapshot derives the price payload from chronological daily
// bars and the source info. Source-reported fields win; history fills the
// gaps. The close-derived 52-week range only spans the history supplied.
func BuildPriceSnapshot(history []dataflows.Bar, info dataflows.Info) PriceSnapshot {
	closes := make([]float64, 0, len(history))
	volumes := make([]float64, 0, len(history))
	for _, bar := range history {
		if bar.Close != nil {
			if f, ok := ToFloat(*bar.Close); ok {
				closes = append(closes, f)
			}
		}
		if bar.Volume != nil {
			volumes = append(volumes, float64(*bar.Volume))
		}
	}

	current, hasCurrent := ToFloat(info["currentPrice"])
	if !hasCurrent && len(closes) > 0 {
		current, hasCurrent = closes[len(closes)-1], true
	}

	high, hasHigh := ToFloat(info["fiftyTwoWeekHigh"])
	low, hasLow := ToFloat(info["fiftyTwoWeekLow"])
	if len(closes) > 0 {
		minC, maxC := closes[0], closes[0]
		for _, c := range closes[1:] {
			minC = min(minC, c)
			maxC = max(maxC, c)
		}
		if !hasHigh {
			high, hasHigh = maxC, true
		}
		if !hasLow {
			low, hasLow = minC, true
		}
	}

	avgVolume, hasVolume := ToFloat(info["averageVolume"])
	if !hasVolume && len(volumes) > 0 {
		sample := volumes
		if len(sample) > volumeSample {
			sample = sample[len(sample)-volumeSample:]
		}
		var sum float64
		for _, v := range sample {
			sum += v
		}
		avgVolume, hasVolume = sum/float64(len(sample)), true
	}

	snap := PriceSnapshot{
		CurrentPrice:  optional(current, hasCurrent),
		Range52Week:   Range52Week{Low: optional(low, hasLow), High: optional(high, hasHigh)},
		AverageVolume: optional(avgVolume, hasVolume),
		PriceChangePct: PriceChange{
			OneMonth:    changeOver(closes, BarsOneMonth),
			ThreeMonths: changeOver(closes, BarsThreeMonths),
			OneYear:     changeOver(closes, BarsOneYear),
		},
		DataQualityNotes: []string{},
	}
	return snap
}

// Annotate fills in the symbols and appends degradation notes.
func (p *PriceSnapshot) Annotate(requested, resolved string, notes []string) {
	p.RequestedTicker = requested
	p.Ticker = resolved
	p.DataQualityNotes = append(append([]string{}, notes...), p.DataQualityNotes...)
	if p.CurrentPrice.IsNA() {
		p.DataQualityNotes = append(p.DataQualityNotes, "Current price was unavailable from yfinance.")
	}
	if p.PriceChangePct.OneYear.IsNA() {
		p.DataQualityNotes = append(p.DataQualityNotes, "Insufficient price history for full 1-year change.")
	}
}

func optional(f float64, ok bool) Value {
	if !ok {
		return NotAvailable()
	}
	return Number(f, 4)
}

// changeOver compares the latest close with the close bars back.
func changeOver(closes []float64, bars int) Value {
	if len(closes) <= bars {
		return NotAvailable()
	}
	last := closes[len(closes)-1]
	prev := closes[len(closes)-1-bars]
	if prev == 0 {
		return NotAvailable()
	}
	return Number((last-prev)/math.Abs(prev)*100, 2)
}
