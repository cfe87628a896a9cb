// Package wheel scores a reconstructed account against the mechanics of an
// options wheel strategy: how efficiently premium is harvested, how the
// strategy compares to a passive benchmark, how it behaves in drawdown, and
// whether the current cadence is sustainable. Scores are computable over the
// whole portfolio or restricted to a single underlying symbol.
package wheel

import (
	"sort"

	"options-wheel-lab/internal/domain"
)

// Calculator binds the outputs of a finished reconstruction run. All score
// methods are pure; a Calculator may be shared across goroutines.
type Calculator struct {
	trades    []*domain.Trade
	cashFlows []*domain.CashFlow
	snapshots []*domain.PortfolioSnapshot
	expired   []*domain.ExpiredOptionRecord
}

func NewCalculator(trades []*domain.Trade, cashFlows []*domain.CashFlow, snapshots []*domain.PortfolioSnapshot, expired []*domain.ExpiredOptionRecord) *Calculator {
	return &Calculator{
		trades:    trades,
		cashFlows: cashFlows,
		snapshots: snapshots,
		expired:   expired,
	}
}

// Report bundles the four scores for one view of the account.
type Report struct {
	Symbol string // empty for the aggregate view

	Efficiency   EfficiencyScore
	Opportunity  OpportunityScore
	Continuation ContinuationScore

	// Drawdown behavior is a property of the whole equity line and cannot be
	// decomposed per symbol; both are nil in per-symbol reports.
	Drawdown *DrawdownReport
	Recovery *RecoveryScore
}

// Symbols returns the distinct underlying symbols seen in the trade log,
// sorted for stable presentation.
func (c *Calculator) Symbols() []string {
	seen := make(map[string]struct{})
	for _, t := range c.trades {
		seen[t.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Aggregate scores the whole portfolio.
func (c *Calculator) Aggregate() *Report {
	dd := c.drawdownReport()
	rec := c.recoveryScore()
	return &Report{
		Efficiency:   c.efficiency(c.trades, c.expired, CapitalAtRiskAllShortOptions),
		Opportunity:  c.opportunity(),
		Continuation: c.continuation(c.trades, c.expired, aggregateWeights),
		Drawdown:     &dd,
		Recovery:     &rec,
	}
}

// Symbol scores the account restricted to trades and expiries of one
// underlying. The opportunity index has no per-symbol definition and comes
// back with Available=false; drawdown scores are omitted entirely.
func (c *Calculator) Symbol(symbol string) *Report {
	trades := filterTrades(c.trades, symbol)
	expired := filterExpired(c.expired, symbol)
	return &Report{
		Symbol:       symbol,
		Efficiency:   c.efficiency(trades, expired, CapitalAtRiskShortPutsOnly),
		Opportunity:  OpportunityScore{Available: false},
		Continuation: c.continuation(trades, expired, perSymbolWeights),
	}
}

// AllBySymbol scores every traded symbol.
func (c *Calculator) AllBySymbol() map[string]*Report {
	reports := make(map[string]*Report)
	for _, s := range c.Symbols() {
		reports[s] = c.Symbol(s)
	}
	return reports
}

func filterTrades(trades []*domain.Trade, symbol string) []*domain.Trade {
	out := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out
}

func filterExpired(expired []*domain.ExpiredOptionRecord, symbol string) []*domain.ExpiredOptionRecord {
	out := make([]*domain.ExpiredOptionRecord, 0, len(expired))
	for _, e := range expired {
		if e.Symbol == symbol {
			out = append(out, e)
		}
	}
	return out
}

func assignmentRate(expired []*domain.ExpiredOptionRecord) float64 {
	if len(expired) == 0 {
		return 0
	}
	assigned := 0
	for _, e := range expired {
		if e.WasAssigned {
			assigned++
		}
	}
	return float64(assigned) / float64(len(expired))
}
