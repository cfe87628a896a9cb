package clickhouse

import (
	"context"
	"fmt"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/storage"
)

// ExpiredOptionStore implements storage.ExpiredOptionStore using ClickHouse,
// with the same truncate-then-insert semantics as the snapshot store.
type ExpiredOptionStore struct {
	conn *Conn
}

// NewExpiredOptionStore creates a new ExpiredOptionStore.
func NewExpiredOptionStore(conn *Conn) *ExpiredOptionStore {
	return &ExpiredOptionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ExpiredOptionStore = (*ExpiredOptionStore)(nil)

// ReplaceAll truncates the stored log and batch-inserts the given one.
func (s *ExpiredOptionStore) ReplaceAll(ctx context.Context, records []*domain.ExpiredOptionRecord) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE expired_options`); err != nil {
		return fmt.Errorf("truncate expired_options: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO expired_options (
			expiry_date, symbol, kind, strike, premium, pnl, was_assigned, price_on_expiry
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		assigned := uint8(0)
		if r.WasAssigned {
			assigned = 1
		}
		err = batch.Append(
			r.ExpiryDate, r.Symbol, string(r.Kind), r.Strike,
			r.Premium, r.PnL, assigned, r.PriceOnExpiry,
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

// GetAll retrieves the stored log, ordered by expiry date ASC.
func (s *ExpiredOptionStore) GetAll(ctx context.Context) ([]*domain.ExpiredOptionRecord, error) {
	query := `
		SELECT expiry_date, symbol, kind, strike, premium, pnl, was_assigned, price_on_expiry
		FROM expired_options
		ORDER BY expiry_date ASC, symbol ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query expired options: %w", err)
	}
	defer rows.Close()

	return scanExpiredOptions(rows)
}

// GetBySymbol retrieves the log restricted to one underlying.
func (s *ExpiredOptionStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.ExpiredOptionRecord, error) {
	query := `
		SELECT expiry_date, symbol, kind, strike, premium, pnl, was_assigned, price_on_expiry
		FROM expired_options
		WHERE symbol = ?
		ORDER BY expiry_date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query expired options by symbol: %w", err)
	}
	defer rows.Close()

	return scanExpiredOptions(rows)
}

// scanExpiredOptions scans multiple rows.
func scanExpiredOptions(rows chRows) ([]*domain.ExpiredOptionRecord, error) {
	var records []*domain.ExpiredOptionRecord

	for rows.Next() {
		var r domain.ExpiredOptionRecord
		var kind string
		var assigned uint8

		err := rows.Scan(
			&r.ExpiryDate, &r.Symbol, &kind, &r.Strike,
			&r.Premium, &r.PnL, &assigned, &r.PriceOnExpiry,
		)
		if err != nil {
			return nil, fmt.Errorf("scan expired option row: %w", err)
		}

		r.Kind = domain.Kind(kind)
		r.ExpiryDate = domain.Day(r.ExpiryDate)
		r.WasAssigned = assigned != 0
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired option rows: %w", err)
	}

	return records, nil
}
