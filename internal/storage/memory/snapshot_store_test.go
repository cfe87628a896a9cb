package memory

import (
	"context"
	"testing"
	"time"

	"options-wheel-lab/internal/domain"
)

func testSnapshot(day int, value float64) *domain.PortfolioSnapshot {
	return &domain.PortfolioSnapshot{
		Date:           domain.NewDate(2024, time.March, day),
		PortfolioValue: value,
	}
}

func TestSnapshotStore_ReplaceAllAndGet(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	first := []*domain.PortfolioSnapshot{testSnapshot(1, 1000), testSnapshot(2, 1100)}
	if err := store.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(all))
	}

	// A re-run replaces, never merges.
	second := []*domain.PortfolioSnapshot{testSnapshot(1, 999)}
	if err := store.ReplaceAll(ctx, second); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, _ = store.GetAll(ctx)
	if len(all) != 1 || all[0].PortfolioValue != 999 {
		t.Errorf("Expected replaced series, got %+v", all)
	}
}

func TestSnapshotStore_GetByDateRange(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	series := []*domain.PortfolioSnapshot{
		testSnapshot(1, 1000),
		testSnapshot(2, 1100),
		testSnapshot(3, 1050),
	}
	if err := store.ReplaceAll(ctx, series); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, domain.NewDate(2024, time.March, 2), domain.NewDate(2024, time.March, 3))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 2 || got[0].PortfolioValue != 1100 {
		t.Errorf("Unexpected range result: %+v", got)
	}
}

func TestSnapshotStore_CopyOnWrite(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	snap := testSnapshot(1, 1000)
	if err := store.ReplaceAll(ctx, []*domain.PortfolioSnapshot{snap}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	snap.PortfolioValue = -1

	all, _ := store.GetAll(ctx)
	if all[0].PortfolioValue != 1000 {
		t.Error("Store shared memory with caller: post-write mutation was visible")
	}
}

func TestExpiredOptionStore_ReplaceAndFilter(t *testing.T) {
	store := NewExpiredOptionStore()
	ctx := context.Background()

	records := []*domain.ExpiredOptionRecord{
		{ExpiryDate: domain.NewDate(2024, time.March, 15), Symbol: "SPY", Kind: domain.KindPut, WasAssigned: true},
		{ExpiryDate: domain.NewDate(2024, time.March, 15), Symbol: "QQQ", Kind: domain.KindCall},
	}
	if err := store.ReplaceAll(ctx, records); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	spy, err := store.GetBySymbol(ctx, "SPY")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(spy) != 1 || !spy[0].WasAssigned {
		t.Errorf("Unexpected SPY records: %+v", spy)
	}

	if err := store.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	all, _ := store.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("Expected empty log after replace, got %d records", len(all))
	}
}
