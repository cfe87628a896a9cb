package wheel

import (
	"math"

	"options-wheel-lab/internal/analytics"
)

// DrawdownReport summarizes drawdown behavior of the equity line: depth,
// duration, how often drawdowns start, and how strongly the account climbs
// back out.
type DrawdownReport struct {
	MaxDrawdown      float64
	MaxDrawdownPct   float64 // relative to initial capital
	AvgDuration      float64
	MaxDuration      int
	MonthlyFrequency float64
	NumDrawdowns     int
	CurrentDrawdown  float64
	RecoveryFactor   float64 // |final equity| / max drawdown

	Series []float64
}

func (c *Calculator) drawdownReport() DrawdownReport {
	var report DrawdownReport
	if len(c.snapshots) == 0 {
		return report
	}

	drawdown := analytics.DrawdownSeries(c.snapshots)
	report.Series = drawdown
	report.MaxDrawdown = analytics.MaxDrawdown(drawdown)
	report.CurrentDrawdown = drawdown[len(drawdown)-1]

	initialCapital := math.Abs(c.snapshots[0].CumulativeCashFlow)
	if initialCapital > 0 {
		report.MaxDrawdownPct = report.MaxDrawdown / initialCapital * 100
	}

	durations := analytics.DrawdownDurations(drawdown)
	report.NumDrawdowns = len(durations)
	for _, d := range durations {
		report.AvgDuration += float64(d)
		if d > report.MaxDuration {
			report.MaxDuration = d
		}
	}
	if len(durations) > 0 {
		report.AvgDuration /= float64(len(durations))
	}

	totalDays := len(drawdown)
	if totalDays > 0 {
		report.MonthlyFrequency = float64(report.NumDrawdowns) / (float64(totalDays) / 30)
	}

	finalEquity := c.snapshots[len(c.snapshots)-1].EquityLinePnL
	if report.MaxDrawdown > 0 {
		report.RecoveryFactor = math.Abs(finalEquity) / report.MaxDrawdown
	}
	return report
}

// RecoveryScore estimates how reliably the account climbs out of drawdowns.
// A recovery event is a maximal run of in-drawdown days that ends with a new
// equity high; the final run is not an event while it is still open.
type RecoveryScore struct {
	ProbabilityPct  float64
	AvgRecoveryDays float64
	Strength        float64 // rebound magnitude relative to the event's max drawdown
	ConfidencePct   float64
	NumEvents       int
}

func (c *Calculator) recoveryScore() RecoveryScore {
	var score RecoveryScore
	if len(c.snapshots) == 0 {
		return score
	}

	drawdown := analytics.DrawdownSeries(c.snapshots)

	type event struct {
		start, end int
		maxDD      float64
	}
	var events []event
	for i := 0; i < len(drawdown); {
		if drawdown[i] <= 0 {
			i++
			continue
		}
		start := i
		maxDD := 0.0
		for i < len(drawdown) && drawdown[i] > 0 {
			if drawdown[i] > maxDD {
				maxDD = drawdown[i]
			}
			i++
		}
		// An open run at the end of the series has not recovered yet and is
		// not counted either way.
		if i < len(drawdown) {
			events = append(events, event{start: start, end: i, maxDD: maxDD})
		}
	}

	score.NumEvents = len(events)
	if len(events) == 0 {
		// No closed drawdowns observed; treat the account as fully
		// recovering by default.
		score.ProbabilityPct = 100
		score.Strength = 1
		score.ConfidencePct = recoveryConfidence(1, 1, 0) * 100
		return score
	}

	// Every detected event closed with a new high, so each one counts as
	// recovered in this single-pass design.
	probability := 1.0
	score.ProbabilityPct = probability * 100

	totalDays := 0
	strengthSum, strengthN := 0.0, 0
	for _, e := range events {
		totalDays += e.end - e.start
		if e.maxDD > 0 {
			strengthSum += math.Abs(c.snapshots[e.end].EquityLinePnL) / e.maxDD
			strengthN++
		}
	}
	score.AvgRecoveryDays = float64(totalDays) / float64(len(events))
	if strengthN > 0 {
		score.Strength = strengthSum / float64(strengthN)
	}
	score.ConfidencePct = recoveryConfidence(probability, score.Strength, score.AvgRecoveryDays) * 100
	return score
}

// recoveryConfidence blends probability, rebound strength and recovery speed
// with fixed weights into a single 0-1 confidence value.
func recoveryConfidence(probability, strength, avgDays float64) float64 {
	return probability*0.4 +
		math.Min(1, strength/2)*0.3 +
		math.Min(1, 30/math.Max(1, avgDays))*0.3
}
