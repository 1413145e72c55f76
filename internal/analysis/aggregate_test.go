package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-market-backend/internal/model"
)

func priced(id string, typ model.ListingType, price float64) model.Listing {
	return model.Listing{
		ID:           id,
		Name:         "listing " + id,
		Type:         typ,
		City:         "Gramado",
		State:        "RS",
		CurrentPrice: decimal.NewFromFloat(price),
		Availability: model.Availability{IsAvailable: true, LastChecked: time.Now().UTC()},
		IsActive:     true,
	}
}

func TestAggregate_PriceStats(t *testing.T) {
	listings := []model.Listing{
		priced("a", model.TypeHotel, 100),
		priced("b", model.TypeHotel, 200),
		priced("c", model.TypePousada, 300),
	}

	res := Aggregate(listings)

	assert.True(t, res.Price.Average.Equal(decimal.NewFromInt(200)), "average: %s", res.Price.Average)
	assert.True(t, res.Price.Median.Equal(decimal.NewFromInt(200)), "median: %s", res.Price.Median)
	assert.True(t, res.Price.Min.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Price.Max.Equal(decimal.NewFromInt(300)))
	assert.InDelta(t, 200, res.Price.VariationPct, 1e-9)
}

func TestAggregate_MedianLowerOfTwoMiddle(t *testing.T) {
	listings := []model.Listing{
		priced("a", model.TypeHotel, 100),
		priced("b", model.TypeHotel, 200),
		priced("c", model.TypeHotel, 300),
		priced("d", model.TypeHotel, 400),
	}

	res := Aggregate(listings)
	assert.True(t, res.Price.Median.Equal(decimal.NewFromInt(200)), "even count takes the lower middle, got %s", res.Price.Median)
}

func TestAggregate_ByTypeOmitsAbsentTypes(t *testing.T) {
	listings := []model.Listing{
		priced("a", model.TypeHotel, 100),
		priced("b", model.TypeHotel, 300),
		priced("c", model.TypeHostel, 50),
	}

	res := Aggregate(listings)
	require.Len(t, res.Price.ByType, 2)

	byType := make(map[model.ListingType]model.TypePriceStats)
	for _, g := range res.Price.ByType {
		byType[g.Type] = g
	}
	assert.Equal(t, 2, byType[model.TypeHotel].Count)
	assert.True(t, byType[model.TypeHotel].AveragePrice.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, byType[model.TypeHostel].Count)
	assert.NotContains(t, byType, model.TypeResort)
}

func TestAggregate_OccupancyExcludesUnknownAvailability(t *testing.T) {
	known := func(id string, available bool) model.Listing {
		l := priced(id, model.TypeHotel, 100)
		l.Availability = model.Availability{IsAvailable: available, LastChecked: time.Now().UTC()}
		return l
	}
	unknown := func(id string) model.Listing {
		l := priced(id, model.TypeHotel, 100)
		l.Availability = model.Availability{}
		return l
	}

	// 4 known (1 available, 3 occupied) + 2 unknown. The unknown pair
	// stays in the totals but out of the rate's denominator.
	listings := []model.Listing{
		known("a", true), known("b", false), known("c", false), known("d", false),
		unknown("e"), unknown("f"),
	}

	res := Aggregate(listings)
	assert.Equal(t, 6, res.Occupancy.TotalListings)
	assert.Equal(t, 1, res.Occupancy.AvailableListings)
	assert.InDelta(t, 75, res.Occupancy.OccupancyRate, 1e-9)
}

func TestAggregate_RatingBandsPartitionRatedSubset(t *testing.T) {
	rate := func(id string, score float64, reviews int) model.Listing {
		l := priced(id, model.TypeHotel, 100)
		l.Rating = &model.Rating{Score: score, TotalReviews: reviews}
		return l
	}

	listings := []model.Listing{
		rate("a", 4.9, 10),
		rate("b", 5.0, 20), // band boundary: lands in [5,7)
		rate("c", 7.0, 30), // boundary: [7,8.5)
		rate("d", 8.5, 40), // boundary: [8.5,10]
		rate("e", 10.0, 50),
		priced("f", model.TypeHotel, 100), // unrated, outside every band
	}

	res := Aggregate(listings)

	total := 0
	for _, band := range res.Rating.Distribution {
		total += band.Count
	}
	assert.Equal(t, 5, total, "bands must partition exactly the rated subset")

	counts := make(map[string]int)
	for _, band := range res.Rating.Distribution {
		counts[band.Range] = band.Count
	}
	assert.Equal(t, 1, counts["0-5"])
	assert.Equal(t, 1, counts["5-7"])
	assert.Equal(t, 1, counts["7-8.5"])
	assert.Equal(t, 2, counts["8.5-10"])

	assert.Equal(t, 150, res.Rating.TotalReviews)
	assert.InDelta(t, (4.9+5.0+7.0+8.5+10.0)/5, res.Rating.Average, 1e-9)
}

func TestAggregate_EmptyInputReturnsZeroSentinel(t *testing.T) {
	res := Aggregate(nil)

	assert.True(t, res.Price.Average.IsZero())
	assert.Empty(t, res.Price.ByType)
	assert.Zero(t, res.Occupancy.TotalListings)
	assert.Zero(t, res.Occupancy.OccupancyRate)
	assert.Zero(t, res.Rating.Average)
	assert.Empty(t, res.Rating.Distribution)
}
