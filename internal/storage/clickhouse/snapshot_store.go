package clickhouse

import (
	"context"
	"fmt"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse. MergeTree
// does not enforce uniqueness, which fits the replace-on-rerun contract: the
// table is truncated before each batch insert.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// ReplaceAll truncates the stored series and batch-inserts the given one.
func (s *SnapshotStore) ReplaceAll(ctx context.Context, snapshots []*domain.PortfolioSnapshot) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE portfolio_snapshots`); err != nil {
		return fmt.Errorf("truncate portfolio_snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO portfolio_snapshots (
			snapshot_date, portfolio_value, stock_value, options_value,
			cash_balance, daily_cash_flow, cumulative_cash_flow, equity_line_pnl
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		if snap == nil {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			snap.Date, snap.PortfolioValue, snap.StockValue, snap.OptionsValue,
			snap.CashBalance, snap.DailyCashFlow, snap.CumulativeCashFlow, snap.EquityLinePnL,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves the stored series, ordered by date ASC.
func (s *SnapshotStore) GetAll(ctx context.Context) ([]*domain.PortfolioSnapshot, error) {
	query := `
		SELECT snapshot_date, portfolio_value, stock_value, options_value,
		       cash_balance, daily_cash_flow, cumulative_cash_flow, equity_line_pnl
		FROM portfolio_snapshots
		ORDER BY snapshot_date ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByDateRange retrieves snapshots within [start, end] (inclusive).
func (s *SnapshotStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.PortfolioSnapshot, error) {
	query := `
		SELECT snapshot_date, portfolio_value, stock_value, options_value,
		       cash_balance, daily_cash_flow, cumulative_cash_flow, equity_line_pnl
		FROM portfolio_snapshots
		WHERE snapshot_date >= ? AND snapshot_date <= ?
		ORDER BY snapshot_date ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by date range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows chRows) ([]*domain.PortfolioSnapshot, error) {
	var snapshots []*domain.PortfolioSnapshot

	for rows.Next() {
		var snap domain.PortfolioSnapshot

		err := rows.Scan(
			&snap.Date, &snap.PortfolioValue, &snap.StockValue, &snap.OptionsValue,
			&snap.CashBalance, &snap.DailyCashFlow, &snap.CumulativeCashFlow, &snap.EquityLinePnL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap.Date = domain.Day(snap.Date)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}
