package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"options-wheel-lab/internal/domain"
)

func testSnapshot(day int, value float64) *domain.PortfolioSnapshot {
	return &domain.PortfolioSnapshot{
		Date:               domain.NewDate(2024, time.March, day),
		PortfolioValue:     value,
		StockValue:         value * 0.8,
		OptionsValue:       -50,
		CashBalance:        value * 0.2,
		CumulativeCashFlow: 10000,
		EquityLinePnL:      value - 10000,
	}
}

func TestSnapshotStore_ReplaceAllAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	series := []*domain.PortfolioSnapshot{
		testSnapshot(1, 10000),
		testSnapshot(2, 10150),
		testSnapshot(3, 10090),
	}
	require.NoError(t, store.ReplaceAll(ctx, series))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, domain.NewDate(2024, time.March, 1), got[0].Date)
	require.InDelta(t, 10150, got[1].PortfolioValue, 1e-9)
	require.InDelta(t, 90, got[2].EquityLinePnL, 1e-9)
}

func TestSnapshotStore_ReplaceDiscardsPriorRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, []*domain.PortfolioSnapshot{
		testSnapshot(1, 10000),
		testSnapshot(2, 10100),
	}))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.PortfolioSnapshot{
		testSnapshot(1, 9999),
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 9999, got[0].PortfolioValue, 1e-9)
}

func TestSnapshotStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, []*domain.PortfolioSnapshot{
		testSnapshot(1, 10000),
		testSnapshot(2, 10100),
		testSnapshot(3, 10200),
	}))

	got, err := store.GetByDateRange(ctx,
		domain.NewDate(2024, time.March, 2),
		domain.NewDate(2024, time.March, 3),
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, domain.NewDate(2024, time.March, 2), got[0].Date)
}

func TestExpiredOptionStore_RoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExpiredOptionStore(conn)
	ctx := context.Background()

	records := []*domain.ExpiredOptionRecord{
		{
			ExpiryDate:    domain.NewDate(2024, time.March, 15),
			Symbol:        "SPY",
			Kind:          domain.KindPut,
			Strike:        450,
			Premium:       320,
			PnL:           320,
			WasAssigned:   true,
			PriceOnExpiry: 445,
		},
		{
			ExpiryDate:    domain.NewDate(2024, time.March, 15),
			Symbol:        "QQQ",
			Kind:          domain.KindCall,
			Strike:        380,
			Premium:       150,
			PnL:           150,
			WasAssigned:   false,
			PriceOnExpiry: 375,
		},
	}
	require.NoError(t, store.ReplaceAll(ctx, records))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	spy, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	require.Len(t, spy, 1)
	require.True(t, spy[0].WasAssigned)
	require.Equal(t, domain.KindPut, spy[0].Kind)
	require.InDelta(t, 445, spy[0].PriceOnExpiry, 1e-9)

	// A re-run with an empty log leaves the table empty.
	require.NoError(t, store.ReplaceAll(ctx, nil))
	all, err = store.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
