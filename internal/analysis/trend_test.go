package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"hotel-market-backend/internal/model"
)

func sample(daysAgo int, price float64, now time.Time) model.PriceSample {
	return model.PriceSample{
		Timestamp: now.AddDate(0, 0, -daysAgo),
		Price:     decimal.NewFromFloat(price),
		Available: true,
	}
}

func TestTrend(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		history    []model.PriceSample
		windowDays int
		expected   float64
	}{
		{
			name:       "empty history returns zero",
			history:    nil,
			windowDays: 30,
			expected:   0,
		},
		{
			name:       "single sample returns zero",
			history:    []model.PriceSample{sample(5, 100, now)},
			windowDays: 30,
			expected:   0,
		},
		{
			name: "two samples inside window",
			history: []model.PriceSample{
				sample(20, 100, now),
				sample(1, 120, now),
			},
			windowDays: 30,
			expected:   20,
		},
		{
			name: "unsorted input is sorted before use",
			history: []model.PriceSample{
				sample(1, 150, now),
				sample(25, 100, now),
				sample(10, 90, now),
			},
			windowDays: 30,
			expected:   50,
		},
		{
			name: "negative trend",
			history: []model.PriceSample{
				sample(6, 200, now),
				sample(1, 150, now),
			},
			windowDays: 7,
			expected:   -25,
		},
		{
			name: "only one sample inside window returns zero",
			history: []model.PriceSample{
				sample(40, 100, now),
				sample(2, 300, now),
			},
			windowDays: 7,
			expected:   0,
		},
		{
			name: "zero first price returns zero instead of infinity",
			history: []model.PriceSample{
				sample(10, 0, now),
				sample(1, 100, now),
			},
			windowDays: 30,
			expected:   0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Trend(tc.history, tc.windowDays, now), 1e-9)
		})
	}
}

// Adding a sample outside the window must not change the result: windowing
// is exact, using first/last inside the window rather than global extremes.
func TestTrend_WindowingIsExact(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	inWindow := []model.PriceSample{
		sample(25, 100, now),
		sample(2, 110, now),
	}
	base := Trend(inWindow, 30, now)
	assert.InDelta(t, 10, base, 1e-9)

	withOutliers := append([]model.PriceSample{
		sample(200, 10, now),  // ancient, far below the window min
		sample(100, 500, now), // before the window, far above the max
	}, inWindow...)
	assert.InDelta(t, base, Trend(withOutliers, 30, now), 1e-9)
}

func TestTrend_UsesEndpointsNotExtremes(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Min/max inside the window are 50 and 400, but the trend reads the
	// chronological endpoints: 100 -> 200.
	history := []model.PriceSample{
		sample(28, 100, now),
		sample(20, 400, now),
		sample(10, 50, now),
		sample(1, 200, now),
	}
	assert.InDelta(t, 100, Trend(history, 30, now), 1e-9)
}
