package analytics

import (
	"math"
	"sort"

	"options-wheel-lab/internal/domain"
)

// Metrics is the full performance result set. Percentages are in percent
// units; ratios and dollar figures are plain.
type Metrics struct {
	TotalPnL            float64
	TotalReturnPct      float64
	AnnualReturnPct     float64
	AnnualVolatilityPct float64
	SharpeRatio         float64
	SortinoRatio        float64
	VaR95               float64
	MaxDrawdown         float64
	MaxDrawdownDuration int
	TotalCommissions    float64
	CommissionImpactPct float64
	TWRPct              float64
	AnnualizedTWRPct    float64
	TWRSharpeRatio      float64
	PnLBySymbol         map[string]float64
	PnLByKind           map[domain.Kind]float64
}

// Options configures a Compute pass.
type Options struct {
	// RiskFreeRate is the annualized decimal rate used by Sharpe/Sortino.
	RiskFreeRate float64
	// Marks maps symbol to its latest close; when set, open positions are
	// added to the attribution at mark-to-market value.
	Marks map[string]float64
}

// Compute derives the full performance metric set from a finished snapshot
// sequence. An empty sequence yields the zero Metrics; a single-snapshot
// sequence yields zeros for every return-based metric. No degenerate input
// panics or divides by zero.
func Compute(snapshots []*domain.PortfolioSnapshot, trades []*domain.Trade, cashFlows []*domain.CashFlow, opts Options) *Metrics {
	m := &Metrics{
		PnLBySymbol: make(map[string]float64),
		PnLByKind:   make(map[domain.Kind]float64),
	}
	if len(snapshots) == 0 {
		return m
	}

	last := snapshots[len(snapshots)-1]
	returns := DailyReturns(snapshots)
	rf := opts.RiskFreeRate

	annReturn := computeMean(returns) * TradingDaysPerYear
	annVol := computeStddevSample(returns) * math.Sqrt(TradingDaysPerYear)
	m.AnnualReturnPct = annReturn * 100
	m.AnnualVolatilityPct = annVol * 100

	m.TotalPnL = last.EquityLinePnL
	initialCF := snapshots[0].CumulativeCashFlow
	if initialCF == 0 {
		// Degenerate-capital guard: avoids division by zero at the cost of
		// meaningless percentages for accounts funded after day one.
		initialCF = 1
	}
	m.TotalReturnPct = m.TotalPnL / math.Abs(initialCF) * 100

	if annVol > 0 {
		m.SharpeRatio = (annReturn - rf) / annVol
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downsideDev := computeStddevSample(downside) * math.Sqrt(TradingDaysPerYear)
	if downsideDev > 0 {
		m.SortinoRatio = (annReturn - rf) / downsideDev
	}

	if len(returns) > 0 {
		sorted := make([]float64, len(returns))
		copy(sorted, returns)
		sort.Float64s(sorted)
		m.VaR95 = -computePercentile(sorted, 0.05) * last.PortfolioValue
	}

	drawdown := DrawdownSeries(snapshots)
	m.MaxDrawdown = MaxDrawdown(drawdown)
	m.MaxDrawdownDuration = MaxDrawdownDuration(drawdown)

	for _, t := range trades {
		m.TotalCommissions += t.Commission
	}
	m.CommissionImpactPct = m.TotalCommissions / math.Abs(initialCF) * 100

	m.PnLBySymbol, m.PnLByKind = Attribution(trades, opts.Marks, last.Date)

	twr := TWR(snapshots, cashFlows)
	m.TWRPct = twr.TWR * 100
	m.AnnualizedTWRPct = twr.Annualized * 100
	m.TWRSharpeRatio = TWRSharpe(TWRDailyReturns(snapshots, cashFlows), rf)

	return m
}

// Named returns the scalar metrics keyed by their display names, the shape
// the presentation layer consumes.
func (m *Metrics) Named() map[string]float64 {
	return map[string]float64{
		"Total P&L":              m.TotalPnL,
		"Total Return %":         m.TotalReturnPct,
		"Annual Return %":        m.AnnualReturnPct,
		"Annual Volatility %":    m.AnnualVolatilityPct,
		"Sharpe Ratio":           m.SharpeRatio,
		"Sortino Ratio":          m.SortinoRatio,
		"VaR 95% ($)":            m.VaR95,
		"Max Drawdown $":         m.MaxDrawdown,
		"Max DD Duration (days)": float64(m.MaxDrawdownDuration),
		"Total Commissions $":    m.TotalCommissions,
		"Comm Impact %":          m.CommissionImpactPct,
		"TWR %":                  m.TWRPct,
		"Annualized TWR %":       m.AnnualizedTWRPct,
		"TWR Sharpe Ratio":       m.TWRSharpeRatio,
	}
}
