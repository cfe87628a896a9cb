package domain

import "time"

// Position is the net stock holding for one symbol during a simulation run.
// CostBasis is the weighted average over buy lots only: selling (including
// selling short) changes Shares but leaves CostBasis untouched, so a full
// sell-then-rebuy round trip carries a stale basis until the next buy.
// Known limitation, kept to match the account reconstruction semantics.
type Position struct {
	Shares    int
	CostBasis float64
}

// PortfolioSnapshot is one row of the reconstructed daily ledger.
// Snapshots are immutable once produced; the whole sequence is regenerated
// on every recompute.
type PortfolioSnapshot struct {
	Date               time.Time
	PortfolioValue     float64
	StockValue         float64
	OptionsValue       float64 // mark-to-model at intrinsic value; short legs negative
	CashBalance        float64
	DailyCashFlow      float64
	CumulativeCashFlow float64
	EquityLinePnL      float64 // PortfolioValue - CumulativeCashFlow, exact
}

// ExpiredOptionRecord is one row of the expired-option event log, emitted
// when an open option reaches its expiry day.
type ExpiredOptionRecord struct {
	ExpiryDate    time.Time
	Symbol        string
	Kind          Kind
	Strike        float64
	Premium       float64
	PnL           float64
	WasAssigned   bool // short options only
	PriceOnExpiry float64
}

// ClosePrice is one dated closing price in a symbol's historical series.
type ClosePrice struct {
	Date  time.Time
	Close float64
}
