package storage

import (
	"context"
	"time"

	"options-wheel-lab/internal/domain"
)

// TradeStore provides access to the trade journal. Trades are keyed by their
// deterministic content hash (see internal/idhash), which deduplicates
// re-imports of the same journal.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails the entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetBySymbol retrieves all trades for an underlying, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error)

	// GetAll retrieves the full journal, ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.Trade, error)
}

// CashFlowStore provides access to the cash movement journal.
type CashFlowStore interface {
	// Insert adds a new cash flow. Returns ErrDuplicateKey if cash_flow_id exists.
	Insert(ctx context.Context, cf *domain.CashFlow) error

	// InsertBulk adds multiple cash flows atomically. Fails the entire batch
	// on any duplicate.
	InsertBulk(ctx context.Context, flows []*domain.CashFlow) error

	// GetAll retrieves all cash flows, ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.CashFlow, error)

	// GetByDateRange retrieves cash flows within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.CashFlow, error)
}

// SnapshotStore persists the daily snapshot series produced by a
// reconstruction run. A run always recomputes the whole history, so writes
// replace rather than merge.
type SnapshotStore interface {
	// ReplaceAll atomically swaps the stored series for the given one.
	ReplaceAll(ctx context.Context, snapshots []*domain.PortfolioSnapshot) error

	// GetAll retrieves the stored series, ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.PortfolioSnapshot, error)

	// GetByDateRange retrieves snapshots within [start, end] (inclusive),
	// ordered by date ASC.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.PortfolioSnapshot, error)
}

// ExpiredOptionStore persists the expired-option log of a reconstruction
// run, with the same replace-on-rerun semantics as SnapshotStore.
type ExpiredOptionStore interface {
	// ReplaceAll atomically swaps the stored log for the given one.
	ReplaceAll(ctx context.Context, records []*domain.ExpiredOptionRecord) error

	// GetAll retrieves the stored log, ordered by expiry date ASC.
	GetAll(ctx context.Context) ([]*domain.ExpiredOptionRecord, error)

	// GetBySymbol retrieves the log restricted to one underlying, ordered by
	// expiry date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.ExpiredOptionRecord, error)
}
