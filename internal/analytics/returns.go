// Package analytics computes performance and risk metrics over a completed
// snapshot sequence. All functions are pure and safe to run concurrently
// once the sequence is finalized.
package analytics

import (
	"math"

	"options-wheel-lab/internal/domain"
)

// TradingDaysPerYear is the annualization constant for daily return series.
const TradingDaysPerYear = 252

// DailyReturns computes the simple daily returns of the portfolio value.
// Days whose previous value is zero or negative are skipped rather than
// divided by: a negative base flips the sign of the ratio, so a recovery
// off a negative value would read as a loss. Such days carry no
// meaningful return and are dropped from the series entirely.
func DailyReturns(snapshots []*domain.PortfolioSnapshot) []float64 {
	if len(snapshots) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].PortfolioValue
		// Skip negative bases too, not just zero.
		if prev <= 0 {
			continue
		}
		returns = append(returns, snapshots[i].PortfolioValue/prev-1)
	}
	return returns
}

// AnnualizedVolatility is the sample standard deviation of a daily return
// series scaled to a yearly horizon.
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return computeStddevSample(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddevSample is the sample standard deviation (n-1 denominator),
// used for annualized volatility and downside deviation.
func computeStddevSample(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := computeMean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeStddevPop is the population standard deviation (n denominator),
// used for the TWR Sharpe ratio.
func computeStddevPop(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := computeMean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// computePercentile uses linear interpolation over pre-sorted values.
// p is a fraction (0.05 = 5th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
