// Package reporting turns a finished reconstruction run into renderable
// report tables.
package reporting

import (
	"time"

	"options-wheel-lab/internal/analytics"
	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/wheel"
)

// Report is the full analytics report for one reconstruction run.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Journal & history summary
	Summary Summary

	// Performance metrics, in display order
	Performance []MetricRow

	// P&L attribution (sorted by descending share of total)
	Attribution []AttributionRow
	PnLByKind   []KindRow

	// Net position per symbol as of the final day
	Positions []PositionRow

	// Wheel strategy scores
	Wheel         WheelSection
	WheelBySymbol []SymbolWheelRow

	// Expired-option event log (chronological)
	ExpiredOptions []ExpiredOptionRow
}

// Summary describes the journal and the reconstructed history.
type Summary struct {
	TradeCount    int
	CashFlowCount int
	SnapshotDays  int
	SymbolCount   int

	DateRangeStart time.Time
	DateRangeEnd   time.Time

	FinalPortfolioValue float64
	FinalCashBalance    float64
	NetCashFlow         float64
	TotalPnL            float64
}

// MetricRow is one named scalar in the performance table.
type MetricRow struct {
	Name  string
	Value float64
}

// AttributionRow is one symbol's realized P&L contribution.
type AttributionRow struct {
	Symbol     string
	PnL        float64
	PctOfTotal float64
}

// KindRow is one trade kind's realized P&L contribution.
type KindRow struct {
	Kind domain.Kind
	PnL  float64
}

// PositionRow is one symbol's net open quantity plus its already-expired
// option count.
type PositionRow struct {
	Symbol      string
	NetQuantity int
	ExpiredOpts int
}

// WheelSection holds the portfolio-level wheel scores.
type WheelSection struct {
	Efficiency   wheel.EfficiencyScore
	Opportunity  wheel.OpportunityScore
	Continuation wheel.ContinuationScore
	Drawdown     *wheel.DrawdownReport
	Recovery     *wheel.RecoveryScore
}

// SymbolWheelRow is one symbol's wheel scores.
type SymbolWheelRow struct {
	Symbol            string
	WES               float64
	PremiumIncome     float64
	CapitalAtRisk     float64
	AssignmentRatePct float64
	WCS               float64
	Rating            wheel.Rating
}

// ExpiredOptionRow is one row of the expiry event log.
type ExpiredOptionRow struct {
	ExpiryDate    time.Time
	Symbol        string
	Kind          domain.Kind
	Strike        float64
	Premium       float64
	PnL           float64
	WasAssigned   bool
	PriceOnExpiry float64
}

// metricOrder fixes the display order of the performance table. Every name
// must exist in analytics.(*Metrics).Named.
var metricOrder = []string{
	"Total P&L",
	"Total Return %",
	"Annual Return %",
	"Annual Volatility %",
	"Sharpe Ratio",
	"Sortino Ratio",
	"VaR 95% ($)",
	"Max Drawdown $",
	"Max DD Duration (days)",
	"Total Commissions $",
	"Comm Impact %",
	"TWR %",
	"Annualized TWR %",
	"TWR Sharpe Ratio",
}

// performanceRows flattens the metric set into the display order the
// report tables use.
func performanceRows(m *analytics.Metrics) []MetricRow {
	named := m.Named()
	rows := make([]MetricRow, 0, len(metricOrder))
	for _, name := range metricOrder {
		rows = append(rows, MetricRow{Name: name, Value: named[name]})
	}
	return rows
}
