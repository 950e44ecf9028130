package churn

import (
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Item is one transcript's sentiment verdict. Confidence is the model score
// in 0..1; the signed contribution to the average is +confidence for
// positive, -confidence for negative, 0 for neutral.
type Item struct {
	Label      types.Sentiment
	Confidence float64
}

// Aggregate rolls per-transcript sentiments into an account-level summary.
// The churn-risk thresholds overlap at the boundaries, so they must be
// evaluated in the order written here: first match wins.
func Aggregate(items []Item) types.ChurnAggregate {
	agg := types.ChurnAggregate{ChurnRisk: types.ChurnLow}
	if len(items) == 0 {
		return agg
	}

	var sum float64
	for _, it := range items {
		switch it.Label {
		case types.SentimentPositive:
			agg.Distribution.Positive++
			sum += it.Confidence
		case types.SentimentNegative:
			agg.Distribution.Negative++
			sum -= it.Confidence
		default:
			agg.Distribution.Neutral++
		}
	}

	total := len(items)
	agg.AnalyzedCount = total
	agg.AverageSentiment = sum / float64(total)

	ratio := float64(agg.Distribution.Negative) / float64(total)
	switch {
	case ratio > 0.5:
		agg.ChurnRisk = types.ChurnCritical
	case ratio > 0.3 || agg.AverageSentiment < -0.3:
		agg.ChurnRisk = types.ChurnHigh
	case ratio > 0.15 || agg.AverageSentiment < -0.1:
		agg.ChurnRisk = types.ChurnMedium
	default:
		agg.ChurnRisk = types.ChurnLow
	}
	return agg
}
