package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"hotel-market-backend/internal/model"
)

var decimalHundred = decimal.NewFromInt(100)

// ratingBands are the fixed score bands of the rating distribution. The
// last band is closed on both ends.
var ratingBands = []struct {
	label    string
	lo, hi   float64
	closedHi bool
}{
	{label: "0-5", lo: 0, hi: 5},
	{label: "5-7", lo: 5, hi: 7},
	{label: "7-8.5", lo: 7, hi: 8.5},
	{label: "8.5-10", lo: 8.5, hi: 10, closedHi: true},
}

// AggregateResult bundles the descriptive statistics for one city.
type AggregateResult struct {
	Price     model.PriceAnalysis
	Occupancy model.OccupancyAnalysis
	Rating    model.RatingAnalysis
}

// Aggregate computes price, occupancy and rating statistics over one city's
// listings. An empty set returns a zero-valued result, never an error; the
// caller decides whether that is fatal.
func Aggregate(listings []model.Listing) AggregateResult {
	var res AggregateResult
	if len(listings) == 0 {
		return res
	}

	res.Price = priceStats(listings)
	res.Occupancy = occupancyAnalysis(listings)
	res.Rating = ratingStats(listings)
	return res
}

func priceStats(listings []model.Listing) model.PriceAnalysis {
	prices := make([]decimal.Decimal, len(listings))
	for i, l := range listings {
		prices[i] = l.CurrentPrice
	}
	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	min := sorted[0]
	max := sorted[len(sorted)-1]
	// Lower-of-two-middle on even counts, matching the trend calculator's
	// no-interpolation policy.
	median := sorted[(len(sorted)-1)/2]

	variation := 0.0
	if !min.IsZero() {
		variation, _ = max.Sub(min).Div(min).Mul(decimalHundred).Float64()
	}

	stats := model.PriceAnalysis{
		Average:      decimal.Avg(prices[0], prices[1:]...),
		Median:       median,
		Min:          min,
		Max:          max,
		VariationPct: variation,
	}

	for _, t := range typesPresent(listings) {
		var group []decimal.Decimal
		for _, l := range listings {
			if l.Type == t {
				group = append(group, l.CurrentPrice)
			}
		}
		stats.ByType = append(stats.ByType, model.TypePriceStats{
			Type:         t,
			AveragePrice: decimal.Avg(group[0], group[1:]...),
			Count:        len(group),
		})
	}
	return stats
}

// occupancyRate derives the occupancy percentage for a listing set.
// Listings with unknown availability stay out of the denominator so missing
// data cannot skew the rate; they still count toward totals elsewhere.
func occupancyRate(listings []model.Listing) (rate float64, available, known int) {
	for _, l := range listings {
		if !l.Availability.Known() {
			continue
		}
		known++
		if l.Availability.IsAvailable {
			available++
		}
	}
	if known == 0 {
		return 0, 0, 0
	}
	return float64(known-available) / float64(known) * 100, available, known
}

func occupancyAnalysis(listings []model.Listing) model.OccupancyAnalysis {
	rate, available, _ := occupancyRate(listings)
	res := model.OccupancyAnalysis{
		Average:           rate,
		TotalListings:     len(listings),
		AvailableListings: available,
		OccupancyRate:     rate,
	}
	for _, t := range typesPresent(listings) {
		var group []model.Listing
		for _, l := range listings {
			if l.Type == t {
				group = append(group, l)
			}
		}
		typeRate, _, _ := occupancyRate(group)
		res.ByType = append(res.ByType, model.TypeOccupancy{
			Type:          t,
			OccupancyRate: typeRate,
			Count:         len(group),
		})
	}
	return res
}

func ratingStats(listings []model.Listing) model.RatingAnalysis {
	var res model.RatingAnalysis
	var rated []model.Listing
	for _, l := range listings {
		if l.Rating != nil {
			rated = append(rated, l)
			res.TotalReviews += l.Rating.TotalReviews
		}
	}

	if len(rated) > 0 {
		var sum float64
		for _, l := range rated {
			sum += l.Rating.Score
		}
		res.Average = sum / float64(len(rated))
	}

	// Bands partition exactly the rated subset; percentages are of rated
	// listings, not of all listings.
	for _, band := range ratingBands {
		count := 0
		for _, l := range rated {
			s := l.Rating.Score
			if s >= band.lo && (s < band.hi || (band.closedHi && s <= band.hi)) {
				count++
			}
		}
		pct := 0.0
		if len(rated) > 0 {
			pct = float64(count) / float64(len(rated)) * 100
		}
		res.Distribution = append(res.Distribution, model.ScoreBand{
			Range:      band.label,
			Count:      count,
			Percentage: pct,
		})
	}
	return res
}

// typesPresent returns the listing types that actually occur, in a stable
// order. Absent types are omitted, not zero-filled.
func typesPresent(listings []model.Listing) []model.ListingType {
	seen := make(map[model.ListingType]bool)
	var types []model.ListingType
	for _, l := range listings {
		if !seen[l.Type] {
			seen[l.Type] = true
			types = append(types, l.Type)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
