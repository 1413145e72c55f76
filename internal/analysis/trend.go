package analysis

import (
	"sort"
	"time"

	"hotel-market-backend/internal/model"
)

// Trend windows fixed per consumer. Each caller names its own window; there
// is deliberately no shared default.
const (
	DemandTrendWindowDays = 30
	AlertTrendWindowDays  = 7
)

// Trend computes the percentage price change between the earliest and
// latest samples inside the trailing window [now-windowDays, now].
// Fewer than two in-window samples, or a zero first price, yield 0 — an
// absent signal, not an error. The input is not assumed sorted.
func Trend(history []model.PriceSample, windowDays int, now time.Time) float64 {
	if windowDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -windowDays)

	var window []model.PriceSample
	for _, s := range history {
		if !s.Timestamp.Before(cutoff) && !s.Timestamp.After(now) {
			window = append(window, s)
		}
	}
	if len(window) < 2 {
		return 0
	}

	sort.Slice(window, func(i, j int) bool {
		return window[i].Timestamp.Before(window[j].Timestamp)
	})

	first := window[0].Price
	last := window[len(window)-1].Price
	if first.IsZero() {
		return 0
	}
	pct, _ := last.Sub(first).Div(first).Mul(decimalHundred).Float64()
	return pct
}
