package analytics

import (
	"math"
	"time"

	"options-wheel-lab/internal/domain"
)

// TWRResult holds the chain-linked time-weighted return and its
// annualization. Both are decimal fractions.
type TWRResult struct {
	TWR        float64
	Annualized float64
}

// TWR computes the time-weighted return of the snapshot sequence, removing
// the distorting effect of external cash-flow timing.
//
// Each day carrying a nonzero cash flow closes a sub-period: its return is
// the portfolio value before that day's flow relative to the previous
// sub-period's ending value. The final day force-closes the last open
// sub-period. Sub-periods whose starting value is zero or negative are
// skipped rather than divided by. Sequences shorter than two snapshots
// return zero.
func TWR(snapshots []*domain.PortfolioSnapshot, cashFlows []*domain.CashFlow) TWRResult {
	if len(snapshots) < 2 {
		return TWRResult{}
	}

	flowByDay := sumFlowsByDay(cashFlows)

	var periodReturns []float64
	previous := snapshots[0].PortfolioValue

	for i := 1; i < len(snapshots); i++ {
		snap := snapshots[i]
		flow := flowByDay[snap.Date]
		switch {
		case flow != 0:
			before := snap.PortfolioValue - flow
			if previous > 0 {
				periodReturns = append(periodReturns, before/previous-1)
			}
			previous = snap.PortfolioValue
		case i == len(snapshots)-1:
			if previous > 0 {
				periodReturns = append(periodReturns, snap.PortfolioValue/previous-1)
			}
		}
	}

	twr := 1.0
	for _, r := range periodReturns {
		twr *= 1 + r
	}
	twr -= 1

	days := domain.DaysBetween(snapshots[0].Date, snapshots[len(snapshots)-1].Date)
	years := float64(days) / 365.25
	annualized := twr
	if years > 0 {
		annualized = math.Pow(1+twr, 1/years) - 1
	}

	return TWRResult{TWR: twr, Annualized: annualized}
}

// TWRDailyReturns computes the per-day return series with each day's
// external cash flow backed out, used for the TWR Sharpe ratio.
func TWRDailyReturns(snapshots []*domain.PortfolioSnapshot, cashFlows []*domain.CashFlow) []float64 {
	if len(snapshots) < 2 {
		return nil
	}

	flowByDay := sumFlowsByDay(cashFlows)

	var returns []float64
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].PortfolioValue
		if prev <= 0 {
			continue
		}
		adjusted := snapshots[i].PortfolioValue
		if flow := flowByDay[snapshots[i].Date]; flow != 0 {
			adjusted -= flow
		}
		returns = append(returns, adjusted/prev-1)
	}
	return returns
}

// TWRSharpe computes the Sharpe ratio of the TWR daily-return series with
// the standard annualization constants. Zero if the series is too short or
// has no dispersion.
func TWRSharpe(twrDaily []float64, riskFreeRate float64) float64 {
	if len(twrDaily) < 2 {
		return 0
	}
	mu := computeMean(twrDaily) * TradingDaysPerYear
	sigma := computeStddevPop(twrDaily) * math.Sqrt(TradingDaysPerYear)
	if sigma <= 0 {
		return 0
	}
	return (mu - riskFreeRate) / sigma
}

func sumFlowsByDay(cashFlows []*domain.CashFlow) map[time.Time]float64 {
	byDay := make(map[time.Time]float64, len(cashFlows))
	for _, cf := range cashFlows {
		byDay[domain.Day(cf.Date)] += cf.Amount
	}
	return byDay
}
