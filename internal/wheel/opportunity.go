package wheel

import (
	"math"

	"options-wheel-lab/internal/domain"
)

// benchmarkAnnualRate is the flat buy-and-hold proxy return the strategy is
// compared against. A real benchmark fetch for the most-traded underlying is
// a possible refinement; the flat rate keeps the index self-contained.
const benchmarkAnnualRate = 0.10

// OpportunityScore compares strategy return against the passive benchmark.
//
//	ROI = (strategy_return − benchmark_return) × 100
//
// Available is false in per-symbol reports: the equity line cannot be
// attributed to one underlying, so no per-symbol index is defined.
type OpportunityScore struct {
	Available bool

	ROI                float64
	StrategyReturnPct  float64
	BenchmarkReturnPct float64
	MainSymbol         string
	TradingDays        int
}

func (c *Calculator) opportunity() OpportunityScore {
	score := OpportunityScore{Available: true}
	if len(c.snapshots) == 0 {
		return score
	}

	initial := c.snapshots[0].CumulativeCashFlow
	if math.Abs(initial) < 1 {
		return score
	}
	final := c.snapshots[len(c.snapshots)-1]
	strategyReturn := final.EquityLinePnL / math.Abs(initial)

	counts := make(map[string]int)
	for _, t := range c.trades {
		counts[t.Symbol]++
	}
	if len(counts) == 0 {
		return score
	}
	// Most-traded symbol, ties broken lexicographically for determinism.
	for s, n := range counts {
		if score.MainSymbol == "" || n > counts[score.MainSymbol] ||
			(n == counts[score.MainSymbol] && s < score.MainSymbol) {
			score.MainSymbol = s
		}
	}

	first := c.snapshots[0]
	score.TradingDays = domain.DaysBetween(first.Date, final.Date)
	years := float64(score.TradingDays) / 365.25
	benchmarkReturn := benchmarkAnnualRate * years

	score.StrategyReturnPct = strategyReturn * 100
	score.BenchmarkReturnPct = benchmarkReturn * 100
	score.ROI = (strategyReturn - benchmarkReturn) * 100
	return score
}
