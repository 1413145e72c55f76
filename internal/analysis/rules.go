package analysis

import (
	"fmt"
	"time"

	"hotel-market-backend/internal/model"
)

// RuleInput is everything the rule tables may read. Rules are pure over
// these precomputed results; they never touch the store or the listings.
type RuleInput struct {
	TotalListings int
	// SurgeListings counts listings whose 7-day trend exceeds +20%.
	SurgeListings int
	Occupancy     model.OccupancyAnalysis
	Price         model.PriceAnalysis
	Demand        model.DemandAnalysis
	Now           time.Time
}

// SurgeCount counts listings whose trailing 7-day price trend exceeds +20%.
func SurgeCount(listings []model.Listing, now time.Time) int {
	n := 0
	for _, l := range listings {
		if Trend(l.PriceHistory, AlertTrendWindowDays, now) > 20 {
			n++
		}
	}
	return n
}

type alertRule struct {
	alertType model.AlertType
	severity  model.Severity
	// fires returns whether the rule triggers, plus message and affected count.
	fires func(in RuleInput) (bool, string, int)
}

// alertRules is additive: new rules are appended, existing ones are never
// edited in place.
var alertRules = []alertRule{
	{
		alertType: model.AlertPriceSurge,
		severity:  model.SeverityHigh,
		fires: func(in RuleInput) (bool, string, int) {
			// Strictly more than 30% of listings; the boundary does not fire.
			if float64(in.SurgeListings) <= 0.3*float64(in.TotalListings) {
				return false, "", 0
			}
			msg := fmt.Sprintf("%d listings with significant price increase (>20%%) in the last week", in.SurgeListings)
			return true, msg, in.SurgeListings
		},
	},
	{
		alertType: model.AlertLowAvailability,
		severity:  model.SeverityHigh,
		fires: func(in RuleInput) (bool, string, int) {
			if in.Occupancy.OccupancyRate <= 80 {
				return false, "", 0
			}
			msg := fmt.Sprintf("high occupancy rate: %.1f%%", in.Occupancy.OccupancyRate)
			return true, msg, in.Occupancy.TotalListings - in.Occupancy.AvailableListings
		},
	},
}

type recommendationRule struct {
	category string
	title    string
	priority model.Severity
	// fires returns whether the rule triggers and the description.
	fires func(in RuleInput) (bool, string)
}

var recommendationRules = []recommendationRule{
	{
		category: "demand",
		title:    "High demand detected",
		priority: model.SeverityHigh,
		fires: func(in RuleInput) (bool, string) {
			if in.Demand.Level != model.DemandHigh && in.Demand.Level != model.DemandVeryHigh {
				return false, ""
			}
			return true, "Consider adjusting prices or expanding capacity given the high demand"
		},
	},
	{
		category: "pricing",
		title:    "Wide price spread",
		priority: model.SeverityMedium,
		fires: func(in RuleInput) (bool, string) {
			if in.Price.VariationPct <= 100 {
				return false, ""
			}
			return true, "Prices vary significantly across listings; review repositioning opportunities"
		},
	},
}

// EvaluateRules runs every alert and recommendation rule independently over
// the same input. Deterministic and side-effect free; either slice may be
// empty.
func EvaluateRules(in RuleInput) ([]model.Alert, []model.Recommendation) {
	var alerts []model.Alert
	for _, r := range alertRules {
		if ok, msg, affected := r.fires(in); ok {
			alerts = append(alerts, model.Alert{
				Type:             r.alertType,
				Severity:         r.severity,
				Message:          msg,
				AffectedListings: affected,
				CreatedAt:        in.Now,
			})
		}
	}

	var recs []model.Recommendation
	for _, r := range recommendationRules {
		if ok, desc := r.fires(in); ok {
			recs = append(recs, model.Recommendation{
				Category:    r.category,
				Title:       r.title,
				Description: desc,
				Priority:    r.priority,
			})
		}
	}
	return alerts, recs
}
