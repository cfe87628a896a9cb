package reporting

import (
	"sort"
	"time"

	"options-wheel-lab/internal/analytics"
	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/wheel"
)

// Input bundles the artifacts of one reconstruction run.
type Input struct {
	Trades    []*domain.Trade
	CashFlows []*domain.CashFlow
	Snapshots []*domain.PortfolioSnapshot
	Expired   []*domain.ExpiredOptionRecord

	Performance   *analytics.Metrics
	Wheel         *wheel.Report
	WheelBySymbol map[string]*wheel.Report
}

// Generator produces reports from run artifacts.
type Generator struct {
	now func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles the full report.
func (g *Generator) Generate(in Input) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		Summary:     buildSummary(in),
	}

	if in.Performance != nil {
		r.Performance = performanceRows(in.Performance)
		r.Attribution = buildAttribution(in.Performance.PnLBySymbol)
		r.PnLByKind = buildKindRows(in.Performance.PnLByKind)
	}
	if len(in.Snapshots) > 0 {
		asOf := in.Snapshots[len(in.Snapshots)-1].Date
		r.Positions = buildPositionRows(in.Trades, asOf)
	}

	if in.Wheel != nil {
		r.Wheel = WheelSection{
			Efficiency:   in.Wheel.Efficiency,
			Opportunity:  in.Wheel.Opportunity,
			Continuation: in.Wheel.Continuation,
			Drawdown:     in.Wheel.Drawdown,
			Recovery:     in.Wheel.Recovery,
		}
	}
	r.WheelBySymbol = buildSymbolWheelRows(in.WheelBySymbol)
	r.ExpiredOptions = buildExpiredRows(in.Expired)

	return r
}

func buildSummary(in Input) Summary {
	s := Summary{
		TradeCount:    len(in.Trades),
		CashFlowCount: len(in.CashFlows),
		SnapshotDays:  len(in.Snapshots),
	}

	symbols := make(map[string]struct{})
	for _, t := range in.Trades {
		symbols[t.Symbol] = struct{}{}
	}
	s.SymbolCount = len(symbols)

	if len(in.Snapshots) > 0 {
		first := in.Snapshots[0]
		last := in.Snapshots[len(in.Snapshots)-1]
		s.DateRangeStart = first.Date
		s.DateRangeEnd = last.Date
		s.FinalPortfolioValue = last.PortfolioValue
		s.FinalCashBalance = last.CashBalance
		s.NetCashFlow = last.CumulativeCashFlow
		s.TotalPnL = last.EquityLinePnL
	}
	return s
}

func buildAttribution(bySymbol map[string]float64) []AttributionRow {
	shares := analytics.ContributionShares(bySymbol)
	rows := make([]AttributionRow, len(shares))
	for i, sh := range shares {
		rows[i] = AttributionRow{Symbol: sh.Symbol, PnL: sh.PnL, PctOfTotal: sh.PctOfTotal}
	}
	return rows
}

func buildKindRows(byKind map[domain.Kind]float64) []KindRow {
	rows := make([]KindRow, 0, len(byKind))
	for kind, pnl := range byKind {
		rows = append(rows, KindRow{Kind: kind, PnL: pnl})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Kind < rows[j].Kind })
	return rows
}

func buildPositionRows(trades []*domain.Trade, asOf time.Time) []PositionRow {
	net, expiredBySymbol := analytics.NetPositions(trades, asOf)

	symbols := make(map[string]struct{}, len(net))
	for s := range net {
		symbols[s] = struct{}{}
	}
	for s := range expiredBySymbol {
		symbols[s] = struct{}{}
	}

	rows := make([]PositionRow, 0, len(symbols))
	for s := range symbols {
		rows = append(rows, PositionRow{
			Symbol:      s,
			NetQuantity: net[s],
			ExpiredOpts: len(expiredBySymbol[s]),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows
}

func buildSymbolWheelRows(bySymbol map[string]*wheel.Report) []SymbolWheelRow {
	rows := make([]SymbolWheelRow, 0, len(bySymbol))
	for symbol, rep := range bySymbol {
		rows = append(rows, SymbolWheelRow{
			Symbol:            symbol,
			WES:               rep.Efficiency.WES,
			PremiumIncome:     rep.Efficiency.PremiumIncome,
			CapitalAtRisk:     rep.Efficiency.CapitalAtRisk,
			AssignmentRatePct: rep.Efficiency.AssignmentRatePct,
			WCS:               rep.Continuation.WCS,
			Rating:            rep.Continuation.Rating,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows
}

func buildExpiredRows(expired []*domain.ExpiredOptionRecord) []ExpiredOptionRow {
	rows := make([]ExpiredOptionRow, len(expired))
	for i, e := range expired {
		rows[i] = ExpiredOptionRow{
			ExpiryDate:    e.ExpiryDate,
			Symbol:        e.Symbol,
			Kind:          e.Kind,
			Strike:        e.Strike,
			Premium:       e.Premium,
			PnL:           e.PnL,
			WasAssigned:   e.WasAssigned,
			PriceOnExpiry: e.PriceOnExpiry,
		}
	}
	return rows
}
