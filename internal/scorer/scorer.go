// Package scorer computes the deterministic 0-100 supplier performance
// score and its five-level category. It is the local fallback when the AI
// analyzer is unavailable, so it must stay pure and reproducible.
package scorer

import (
	"math"

	"github.com/sells-group/supplier-cli/internal/model"
)

// Category thresholds, inclusive lower bounds.
const (
	thresholdExcellent = 85
	thresholdGood      = 70
	thresholdAverage   = 50
	thresholdPoor      = 30
)

// Score computes the weighted performance score for one supplier record.
//
// Each component is normalized to [0,1]: quality against its 0-10 scale,
// delivery delay against a 30-day ceiling, price against a 1000 ceiling.
// Lower price always scores better; that is a known simplification carried
// over from the observed behavior (it ignores value-for-money) and is not
// to be silently corrected here.
func Score(s model.Supplier) int {
	return ScoreWith(DefaultWeights(), s)
}

// ScoreWith computes the performance score using explicit weights.
func ScoreWith(w Weights, s model.Supplier) int {
	qualityScore := clamp01(s.Quality / 10)
	deliveryScore := clamp01(1 - float64(s.DeliveryDelay)/w.DelayCeilingDays)
	priceScore := clamp01(1 - s.Price/w.PriceCeiling)

	weighted := qualityScore*w.Quality + deliveryScore*w.Delivery + priceScore*w.Price

	score := int(math.Round(weighted * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Categorize maps a performance score to its category tier.
func Categorize(score int) model.Category {
	switch {
	case score >= thresholdExcellent:
		return model.CategoryExcellent
	case score >= thresholdGood:
		return model.CategoryGood
	case score >= thresholdAverage:
		return model.CategoryAverage
	case score >= thresholdPoor:
		return model.CategoryPoor
	default:
		return model.CategoryCritical
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
