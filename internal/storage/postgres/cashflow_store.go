package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/storage"
)

// CashFlowStore implements storage.CashFlowStore using PostgreSQL.
type CashFlowStore struct {
	pool *Pool
}

// NewCashFlowStore creates a new CashFlowStore.
func NewCashFlowStore(pool *Pool) *CashFlowStore {
	return &CashFlowStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CashFlowStore = (*CashFlowStore)(nil)

const insertCashFlowQuery = `
	INSERT INTO cash_flows (cash_flow_id, flow_date, amount, note)
	VALUES ($1, $2, $3, $4)
`

// Insert adds a new cash flow. Returns ErrDuplicateKey if cash_flow_id exists.
func (s *CashFlowStore) Insert(ctx context.Context, cf *domain.CashFlow) error {
	if cf == nil || cf.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertCashFlowQuery, cf.ID, cf.Date, cf.Amount, cf.Note)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert cash flow: %w", err)
	}
	return nil
}

// InsertBulk adds multiple cash flows atomically. Fails entire batch on any duplicate.
func (s *CashFlowStore) InsertBulk(ctx context.Context, flows []*domain.CashFlow) error {
	if len(flows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, cf := range flows {
		if cf == nil || cf.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, insertCashFlowQuery, cf.ID, cf.Date, cf.Amount, cf.Note); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert cash flow in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all cash flows, ordered by date ASC.
func (s *CashFlowStore) GetAll(ctx context.Context) ([]*domain.CashFlow, error) {
	query := `
		SELECT cash_flow_id, flow_date, amount, note
		FROM cash_flows
		ORDER BY flow_date ASC, cash_flow_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all cash flows: %w", err)
	}
	defer rows.Close()

	return scanCashFlows(rows)
}

// GetByDateRange retrieves cash flows within [start, end] (inclusive).
func (s *CashFlowStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.CashFlow, error) {
	query := `
		SELECT cash_flow_id, flow_date, amount, note
		FROM cash_flows
		WHERE flow_date >= $1 AND flow_date <= $2
		ORDER BY flow_date ASC, cash_flow_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get cash flows by date range: %w", err)
	}
	defer rows.Close()

	return scanCashFlows(rows)
}

// scanCashFlows scans multiple rows into a slice of CashFlow.
func scanCashFlows(rows pgx.Rows) ([]*domain.CashFlow, error) {
	var flows []*domain.CashFlow

	for rows.Next() {
		var cf domain.CashFlow
		if err := rows.Scan(&cf.ID, &cf.Date, &cf.Amount, &cf.Note); err != nil {
			return nil, fmt.Errorf("scan cash flow row: %w", err)
		}
		cf.Date = domain.Day(cf.Date)
		flows = append(flows, &cf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cash flow rows: %w", err)
	}

	return flows, nil
}
