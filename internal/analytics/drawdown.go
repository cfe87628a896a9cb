package analytics

import "options-wheel-lab/internal/domain"

// DrawdownSeries computes the running-maximum drawdown of the equity line:
// drawdown[i] = max(equity[0..i]) - equity[i]. Always >= 0.
func DrawdownSeries(snapshots []*domain.PortfolioSnapshot) []float64 {
	if len(snapshots) == 0 {
		return nil
	}
	drawdown := make([]float64, len(snapshots))
	peak := snapshots[0].EquityLinePnL
	for i, snap := range snapshots {
		if snap.EquityLinePnL > peak {
			peak = snap.EquityLinePnL
		}
		drawdown[i] = peak - snap.EquityLinePnL
	}
	return drawdown
}

// MaxDrawdown returns the deepest drawdown in the series.
func MaxDrawdown(drawdown []float64) float64 {
	max := 0.0
	for _, d := range drawdown {
		if d > max {
			max = d
		}
	}
	return max
}

// DrawdownDurations returns the lengths of all maximal runs of consecutive
// strictly-positive drawdown days, in order. A run still open at the end of
// the series counts with its length so far.
func DrawdownDurations(drawdown []float64) []int {
	var durations []int
	current := 0
	for _, d := range drawdown {
		if d > 0 {
			current++
		} else if current > 0 {
			durations = append(durations, current)
			current = 0
		}
	}
	if current > 0 {
		durations = append(durations, current)
	}
	return durations
}

// MaxDrawdownDuration returns the longest consecutive run of in-drawdown days.
func MaxDrawdownDuration(drawdown []float64) int {
	max := 0
	for _, d := range DrawdownDurations(drawdown) {
		if d > max {
			max = d
		}
	}
	return max
}
