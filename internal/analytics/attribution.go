package analytics

import (
	"math"
	"sort"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/lookup"
)

// TradeNetCashFlow returns the signed cash impact of one journal entry:
// what the trade put into (positive) or took out of (negative) the account.
// Stock: -quantity*price - commission. Options: +premium for short legs,
// -premium for long legs, minus commission.
func TradeNetCashFlow(t *domain.Trade) float64 {
	if t.Kind == domain.KindStock {
		return -float64(t.Quantity)*t.StockPrice - t.Commission
	}
	premium := math.Abs(t.Premium)
	if t.IsShort() {
		return premium - t.Commission
	}
	return -premium - t.Commission
}

// Attribution groups realized net cash flow by symbol and by instrument
// kind. When marks (symbol → latest close) are supplied, open positions as
// of asOf are added at mark-to-market value so closed and open legs compare:
// net stock holdings at the mark, open options at intrinsic (negated for
// short legs).
func Attribution(trades []*domain.Trade, marks map[string]float64, asOf time.Time) (bySymbol map[string]float64, byKind map[domain.Kind]float64) {
	bySymbol = make(map[string]float64)
	byKind = make(map[domain.Kind]float64)

	for _, t := range trades {
		net := TradeNetCashFlow(t)
		bySymbol[t.Symbol] += net
		byKind[t.Kind] += net
	}

	if marks == nil {
		return bySymbol, byKind
	}

	day := domain.Day(asOf)
	shares := make(map[string]int)
	for _, t := range trades {
		switch {
		case t.Kind == domain.KindStock:
			shares[t.Symbol] += t.Quantity
		case t.IsOption() && t.Expiry.After(day):
			value := lookup.Intrinsic(t.Kind, t.Strike, marks[t.Symbol]) * float64(t.Contracts()) * float64(t.Multiplier)
			if t.IsShort() {
				value = -value
			}
			bySymbol[t.Symbol] += value
			byKind[t.Kind] += value
		}
	}
	for symbol, qty := range shares {
		if qty == 0 {
			continue
		}
		value := float64(qty) * marks[symbol]
		bySymbol[symbol] += value
		byKind[domain.KindStock] += value
	}

	return bySymbol, byKind
}

// SymbolShare is one row of the contribution table: a symbol's P&L impact
// and its share of the total.
type SymbolShare struct {
	Symbol     string
	PnL        float64
	PctOfTotal float64
}

// ContributionShares turns a per-symbol attribution into a table sorted by
// descending share of the total. A zero total yields zero percentages.
func ContributionShares(bySymbol map[string]float64) []SymbolShare {
	total := 0.0
	for _, pnl := range bySymbol {
		total += pnl
	}

	shares := make([]SymbolShare, 0, len(bySymbol))
	for symbol, pnl := range bySymbol {
		row := SymbolShare{Symbol: symbol, PnL: pnl}
		if total != 0 {
			row.PctOfTotal = pnl / total * 100
		}
		shares = append(shares, row)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].PctOfTotal != shares[j].PctOfTotal {
			return shares[i].PctOfTotal > shares[j].PctOfTotal
		}
		return shares[i].Symbol < shares[j].Symbol
	})
	return shares
}

// NetPositions returns the net signed quantity per symbol across all
// journal entries (stock shares and option contracts alike), plus the
// option trades already expired as of asOf, grouped by symbol.
func NetPositions(trades []*domain.Trade, asOf time.Time) (map[string]int, map[string][]*domain.Trade) {
	day := domain.Day(asOf)
	positions := make(map[string]int)
	expired := make(map[string][]*domain.Trade)

	for _, t := range trades {
		positions[t.Symbol] += t.Quantity
		if t.IsOption() && t.Expiry.Before(day) {
			expired[t.Symbol] = append(expired[t.Symbol], t)
		}
	}
	return positions, expired
}
