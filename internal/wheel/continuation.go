package wheel

import (
	"math"
	"time"

	"options-wheel-lab/internal/analytics"
	"options-wheel-lab/internal/domain"
)

// Rating is the qualitative sustainability tier derived from a continuation
// score.
type Rating string

const (
	RatingLow    Rating = "Low"
	RatingMedium Rating = "Medium"
	RatingHigh   Rating = "High"
)

// weights for the continuation blend. Trend, volatility, frequency and
// assignment terms always apply; diversification only makes sense across
// symbols and is zeroed out in the per-symbol view.
type continuationWeights struct {
	trend, volatility, frequency, diversification, assignment float64
}

var (
	aggregateWeights = continuationWeights{trend: 0.3, volatility: 0.25, frequency: 0.2, diversification: 0.15, assignment: 0.1}
	perSymbolWeights = continuationWeights{trend: 0.2, volatility: 0.3, frequency: 0.3, assignment: 0.2}
)

const (
	// targetTradesPerMonth is the cadence the frequency term normalizes
	// against.
	targetTradesPerMonth = 10.0
	// targetSymbols is full marks for the diversification term.
	targetSymbols = 5.0
	// maxVolatility is the annualized volatility at which the
	// sustainability term bottoms out.
	maxVolatility = 0.5
	// assignmentRateCap bounds the assignment penalty.
	assignmentRateCap = 0.8
)

// ContinuationScore rates whether the current wheel cadence can keep going:
// is performance trending up, is volatility contained, is the account
// trading and diversifying enough, and are assignments under control.
type ContinuationScore struct {
	WCS    float64
	Rating Rating

	PerformanceTrend     int // +1 improving, -1 deteriorating, 0 unknown
	VolatilityScore      float64
	TradingFrequency     float64 // trades per month
	FrequencyScore       float64
	NumSymbols           int
	DiversificationScore float64
	AssignmentRatePct    float64
	AssignmentManagement float64
}

func (c *Calculator) continuation(trades []*domain.Trade, expired []*domain.ExpiredOptionRecord, weights continuationWeights) ContinuationScore {
	var score ContinuationScore
	if len(trades) == 0 {
		score.Rating = RatingLow
		return score
	}

	// Trend and volatility read the whole equity line; they are not
	// decomposable per symbol and carry over unchanged into symbol reports.
	score.PerformanceTrend = performanceTrend(c.snapshots)

	if len(c.snapshots) > 1 {
		vol := analytics.AnnualizedVolatility(analytics.DailyReturns(c.snapshots))
		score.VolatilityScore = math.Max(0, 1-vol/maxVolatility)
	} else {
		score.VolatilityScore = 1
	}

	var minDate, maxDate time.Time
	symbols := make(map[string]struct{})
	for _, t := range trades {
		symbols[t.Symbol] = struct{}{}
		if minDate.IsZero() || t.Date.Before(minDate) {
			minDate = t.Date
		}
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
	}
	months := math.Max(1, float64(domain.DaysBetween(minDate, maxDate))/30)
	score.TradingFrequency = float64(len(trades)) / months
	score.FrequencyScore = math.Min(1, score.TradingFrequency/targetTradesPerMonth)

	score.NumSymbols = len(symbols)
	score.DiversificationScore = math.Min(1, float64(score.NumSymbols)/targetSymbols)

	if len(expired) == 0 {
		score.AssignmentManagement = 1
	} else {
		rate := assignmentRate(expired)
		score.AssignmentRatePct = rate * 100
		score.AssignmentManagement = 1 - math.Min(assignmentRateCap, rate)
	}

	score.WCS = (float64(score.PerformanceTrend+1)/2*weights.trend +
		score.VolatilityScore*weights.volatility +
		score.FrequencyScore*weights.frequency +
		score.DiversificationScore*weights.diversification +
		score.AssignmentManagement*weights.assignment) * 100
	score.Rating = rateContinuation(score.WCS)
	return score
}

func rateContinuation(wcs float64) Rating {
	switch {
	case wcs > 70:
		return RatingHigh
	case wcs > 40:
		return RatingMedium
	default:
		return RatingLow
	}
}

// performanceTrend compares mean equity over the most recent window against
// the same-sized window at the start of the history. Capped at 30 days or
// half the history, whichever is shorter.
func performanceTrend(snapshots []*domain.PortfolioSnapshot) int {
	window := len(snapshots) / 2
	if window > 30 {
		window = 30
	}
	if window < 1 {
		return 0
	}
	recent, early := 0.0, 0.0
	for i := 0; i < window; i++ {
		early += snapshots[i].EquityLinePnL
		recent += snapshots[len(snapshots)-window+i].EquityLinePnL
	}
	if recent > early {
		return 1
	}
	return -1
}
