package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPrice_SyncsCurrentPrice(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := &Listing{ID: "l-1", CurrentPrice: decimal.NewFromInt(100)}

	appended := RecordPrice(l, PriceSample{
		Timestamp: now,
		Price:     decimal.NewFromInt(140),
		Available: true,
	}, now)

	assert.True(t, appended)
	require.Len(t, l.PriceHistory, 1)
	assert.True(t, l.CurrentPrice.Equal(decimal.NewFromInt(140)))
	assert.Equal(t, "l-1", l.PriceHistory[0].ListingID)
}

func TestRecordPrice_PrunesBeyondRetention(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := &Listing{ID: "l-1"}

	l.PriceHistory = []PriceSample{
		{Timestamp: now.AddDate(0, 0, -400), Price: decimal.NewFromInt(80)},
		{Timestamp: now.AddDate(0, 0, -100), Price: decimal.NewFromInt(90)},
	}

	RecordPrice(l, PriceSample{Timestamp: now, Price: decimal.NewFromInt(120)}, now)

	require.Len(t, l.PriceHistory, 2, "the 400-day-old sample must be pruned")
	for _, s := range l.PriceHistory {
		assert.True(t, s.Timestamp.After(now.AddDate(0, 0, -RetentionDays-1)))
	}
	assert.True(t, l.CurrentPrice.Equal(decimal.NewFromInt(120)))
}

// A sample already older than the retention window is dropped during the
// same append call, not lazily at read time.
func TestRecordPrice_DropsStaleSample(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := &Listing{ID: "l-1", CurrentPrice: decimal.NewFromInt(100)}

	appended := RecordPrice(l, PriceSample{
		Timestamp: now.AddDate(0, 0, -(RetentionDays + 1)),
		Price:     decimal.NewFromInt(55),
	}, now)

	assert.False(t, appended)
	assert.Empty(t, l.PriceHistory)
	assert.True(t, l.CurrentPrice.Equal(decimal.NewFromInt(100)), "a dropped sample must not touch the current price")
}

func TestRecordPrice_CurrentPriceFollowsLatestTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := &Listing{ID: "l-1"}

	RecordPrice(l, PriceSample{Timestamp: now.AddDate(0, 0, -1), Price: decimal.NewFromInt(200)}, now)
	// A late-arriving older sample must not regress the current price.
	RecordPrice(l, PriceSample{Timestamp: now.AddDate(0, 0, -10), Price: decimal.NewFromInt(150)}, now)

	require.Len(t, l.PriceHistory, 2)
	assert.True(t, l.CurrentPrice.Equal(decimal.NewFromInt(200)))
}

func TestListingValidate(t *testing.T) {
	valid := Listing{ID: "a", CurrentPrice: decimal.NewFromInt(100)}
	assert.NoError(t, valid.Validate())

	negative := Listing{ID: "b", CurrentPrice: decimal.NewFromInt(-5)}
	assert.Error(t, negative.Validate())

	badScore := Listing{ID: "c", CurrentPrice: decimal.NewFromInt(100), Rating: &Rating{Score: 11}}
	assert.Error(t, badScore.Validate())

	badReviews := Listing{ID: "d", CurrentPrice: decimal.NewFromInt(100), Rating: &Rating{Score: 8, TotalReviews: -1}}
	assert.Error(t, badReviews.Validate())
}

func TestAvailabilityKnown(t *testing.T) {
	assert.False(t, Availability{}.Known())
	assert.True(t, Availability{LastChecked: time.Now()}.Known())
}
