package wheel

import (
	"math"

	"options-wheel-lab/internal/domain"
)

// CapitalAtRiskPolicy selects which short option legs count toward the
// capital-at-risk denominator of the efficiency score.
type CapitalAtRiskPolicy int

const (
	// CapitalAtRiskAllShortOptions counts short puts and short calls, valuing
	// covered-call collateral at strike as an approximation of the share
	// value. Used for the aggregate view.
	CapitalAtRiskAllShortOptions CapitalAtRiskPolicy = iota
	// CapitalAtRiskShortPutsOnly counts short puts only. Used for the
	// per-symbol view.
	CapitalAtRiskShortPutsOnly
)

// targetDTE is the holding period the time factor normalizes against.
const targetDTE = 45.0

// EfficiencyScore measures how much premium the strategy harvests per unit
// of capital put at risk, discounted by assignments and short holding
// periods.
//
//	WES = premium_yield × (1 − assignment_rate) × time_factor × 100
type EfficiencyScore struct {
	WES float64

	PremiumIncome     float64
	CapitalAtRisk     float64
	PremiumYieldPct   float64
	AssignmentRatePct float64
	AvgDTE            float64
	TimeFactor        float64
}

func (c *Calculator) efficiency(trades []*domain.Trade, expired []*domain.ExpiredOptionRecord, policy CapitalAtRiskPolicy) EfficiencyScore {
	var score EfficiencyScore

	var shorts []*domain.Trade
	for _, t := range trades {
		if t.IsOption() && t.IsShort() {
			shorts = append(shorts, t)
		}
	}
	if len(shorts) == 0 {
		return score
	}

	totalDTE := 0
	for _, t := range shorts {
		score.PremiumIncome += math.Abs(t.Premium)
		if t.Kind == domain.KindPut || policy == CapitalAtRiskAllShortOptions {
			score.CapitalAtRisk += t.Strike * float64(t.Contracts()) * float64(t.Multiplier)
		}
		totalDTE += domain.DaysBetween(t.Date, t.Expiry)
	}
	score.AvgDTE = float64(totalDTE) / float64(len(shorts))
	score.TimeFactor = math.Min(1, score.AvgDTE/targetDTE)

	rate := assignmentRate(expired)
	score.AssignmentRatePct = rate * 100

	if score.CapitalAtRisk > 0 {
		yield := score.PremiumIncome / score.CapitalAtRisk
		score.PremiumYieldPct = yield * 100
		score.WES = yield * (1 - rate) * score.TimeFactor * 100
	}
	return score
}
