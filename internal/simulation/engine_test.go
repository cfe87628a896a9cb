package simulation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/marketdata/stub"
)

func day(d int) time.Time {
	return domain.NewDate(2024, time.January, d)
}

// newTestEngine builds an engine with a fixed clock so the day loop covers
// exactly [earliest journal date, clockDay].
func newTestEngine(src *stub.Source, clockDay time.Time) *Engine {
	return NewEngine(Options{
		Source: src,
		Now:    func() time.Time { return clockDay },
	})
}

func mustStockTrade(t *testing.T, date time.Time, symbol string, qty int, price, commission float64) *domain.Trade {
	t.Helper()
	trade, err := domain.NewStockTrade(date, symbol, qty, price, commission, "")
	if err != nil {
		t.Fatalf("stock trade: %v", err)
	}
	return trade
}

func mustOptionTrade(t *testing.T, date time.Time, symbol string, kind domain.Kind, qty int, strike float64, expiry time.Time, premium, commission float64) *domain.Trade {
	t.Helper()
	trade, err := domain.NewOptionTrade(date, symbol, kind, qty, strike, expiry, premium, commission, "")
	if err != nil {
		t.Fatalf("option trade: %v", err)
	}
	return trade
}

func TestRun_EmptyInputs(t *testing.T) {
	engine := newTestEngine(stub.New(), day(10))

	snapshots, expired, err := engine.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 0 || len(expired) != 0 {
		t.Errorf("expected empty outputs, got %d snapshots, %d expired", len(snapshots), len(expired))
	}
}

func TestRun_StockOnly(t *testing.T) {
	// Scenario: one buy, 10 shares @ $100, $1 commission, constant price.
	src := stub.New()
	src.SetConstantPrice("AAPL", day(1), day(5), 100)
	engine := newTestEngine(src, day(5))

	trades := []*domain.Trade{mustStockTrade(t, day(1), "AAPL", 10, 100, 1)}

	snapshots, expired, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("expected no expired options, got %d", len(expired))
	}
	if len(snapshots) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(snapshots))
	}

	for i, snap := range snapshots {
		if snap.CashBalance != -1001 {
			t.Errorf("day %d: expected cash -1001, got %f", i, snap.CashBalance)
		}
		if snap.StockValue != 1000 {
			t.Errorf("day %d: expected stock value 1000, got %f", i, snap.StockValue)
		}
		if snap.PortfolioValue != -1 {
			t.Errorf("day %d: expected portfolio value -1, got %f", i, snap.PortfolioValue)
		}
		if snap.EquityLinePnL != -1 {
			t.Errorf("day %d: expected equity P&L -1, got %f", i, snap.EquityLinePnL)
		}
	}
}

func TestRun_AssignedShortPut(t *testing.T) {
	// Short put, strike 50, premium 200, expiry day 10, ITM at 45.
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(10), 45)
	engine := newTestEngine(src, day(10))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindPut, -1, 50, day(10), 200, 1),
	}

	snapshots, expired, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshots[0].CashBalance != 199 {
		t.Errorf("day 0: expected cash 199, got %f", snapshots[0].CashBalance)
	}

	if len(expired) != 1 {
		t.Fatalf("expected 1 expired record, got %d", len(expired))
	}
	rec := expired[0]
	if !rec.WasAssigned {
		t.Error("expected assignment")
	}
	if rec.PnL != 200 {
		t.Errorf("expected pnl 200, got %f", rec.PnL)
	}
	if rec.PriceOnExpiry != 45 {
		t.Errorf("expected price on expiry 45, got %f", rec.PriceOnExpiry)
	}

	// The synthetic buy of 100 shares @ 50 applies the same day.
	last := snapshots[len(snapshots)-1]
	if last.CashBalance != 199-5000 {
		t.Errorf("expected cash %f after assignment, got %f", 199-5000.0, last.CashBalance)
	}
	if last.StockValue != 4500 {
		t.Errorf("expected stock value 4500 (100 shares @ 45), got %f", last.StockValue)
	}
}

func TestRun_WorthlessShortPut(t *testing.T) {
	// Same as the assignment case but OTM at 55: no synthetic trade.
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(10), 55)
	engine := newTestEngine(src, day(10))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindPut, -1, 50, day(10), 200, 1),
	}

	snapshots, expired, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(expired) != 1 {
		t.Fatalf("expected 1 expired record, got %d", len(expired))
	}
	if expired[0].WasAssigned {
		t.Error("expected no assignment")
	}
	if expired[0].PnL != 200 {
		t.Errorf("expected pnl 200, got %f", expired[0].PnL)
	}

	last := snapshots[len(snapshots)-1]
	if last.CashBalance != 199 {
		t.Errorf("expected cash unchanged at 199, got %f", last.CashBalance)
	}
	if last.StockValue != 0 {
		t.Errorf("expected no stock position, got %f", last.StockValue)
	}
}

func TestRun_AssignedShortCallDeliversShares(t *testing.T) {
	// Covered call: own 100 shares, short call strike 50, ITM at 60.
	// Assignment sells the shares at the strike.
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(10), 60)
	engine := newTestEngine(src, day(10))

	trades := []*domain.Trade{
		mustStockTrade(t, day(1), "XYZ", 100, 40, 0),
		mustOptionTrade(t, day(2), "XYZ", domain.KindCall, -1, 50, day(10), 150, 0),
	}

	snapshots, expired, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(expired) != 1 || !expired[0].WasAssigned {
		t.Fatalf("expected one assigned record, got %+v", expired)
	}

	last := snapshots[len(snapshots)-1]
	// -4000 stock buy +150 premium +5000 delivery at strike.
	if last.CashBalance != 1150 {
		t.Errorf("expected cash 1150, got %f", last.CashBalance)
	}
	if last.StockValue != 0 {
		t.Errorf("expected flat stock position after delivery, got %f", last.StockValue)
	}
}

func TestRun_LongCallExercisedForIntrinsic(t *testing.T) {
	// Long call strike 50, ITM at 58: cash receives intrinsic, pnl nets premium.
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(10), 58)
	engine := newTestEngine(src, day(10))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindCall, 1, 50, day(10), 300, 0),
	}

	snapshots, expired, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(expired) != 1 {
		t.Fatalf("expected 1 expired record, got %d", len(expired))
	}
	if expired[0].WasAssigned {
		t.Error("long options are never assigned")
	}
	// Intrinsic = 8 * 1 * 100 = 800, pnl = 800 - 300 = 500.
	if expired[0].PnL != 500 {
		t.Errorf("expected pnl 500, got %f", expired[0].PnL)
	}
	last := snapshots[len(snapshots)-1]
	if last.CashBalance != -300+800 {
		t.Errorf("expected cash 500, got %f", last.CashBalance)
	}
}

func TestRun_LongPutExpiresWorthless(t *testing.T) {
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(10), 55)
	engine := newTestEngine(src, day(10))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindPut, 1, 50, day(10), 120, 0),
	}

	_, expired, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired record, got %d", len(expired))
	}
	if expired[0].PnL != -120 {
		t.Errorf("expected pnl -120, got %f", expired[0].PnL)
	}
}

func TestRun_ShortOptionLiabilityValuation(t *testing.T) {
	// Open short put ITM before expiry values as a negative options_value.
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(5), 45)
	engine := newTestEngine(src, day(5))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindPut, -1, 50, day(20), 200, 0),
	}

	snapshots, _, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Intrinsic 5 * 1 contract * 100 = 500, short → liability.
	last := snapshots[len(snapshots)-1]
	if last.OptionsValue != -500 {
		t.Errorf("expected options value -500, got %f", last.OptionsValue)
	}
	if last.PortfolioValue != 200-500 {
		t.Errorf("expected portfolio value -300, got %f", last.PortfolioValue)
	}
}

func TestRun_CashFlowConservation(t *testing.T) {
	src := stub.New()
	src.SetConstantPrice("AAPL", day(1), day(20), 100)
	engine := newTestEngine(src, day(20))

	flows := []*domain.CashFlow{
		{Date: day(1), Amount: 10000},
		{Date: day(5), Amount: -2500},
		{Date: day(5), Amount: 300},
		{Date: day(12), Amount: 4200},
	}
	trades := []*domain.Trade{mustStockTrade(t, day(2), "AAPL", 10, 100, 1)}

	snapshots, _, err := engine.Run(context.Background(), trades, flows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dailySum := 0.0
	for _, snap := range snapshots {
		dailySum += snap.DailyCashFlow
	}
	flowSum := 0.0
	for _, cf := range flows {
		flowSum += cf.Amount
	}
	if dailySum != flowSum {
		t.Errorf("daily cash flows sum %f, journal sums %f", dailySum, flowSum)
	}

	// Cumulative consistency and the equity identity, exact on every row.
	for i, snap := range snapshots {
		expected := 0.0
		for _, cf := range flows {
			if !domain.Day(cf.Date).After(snap.Date) {
				expected += cf.Amount
			}
		}
		if snap.CumulativeCashFlow != expected {
			t.Errorf("day %d: cumulative %f, expected %f", i, snap.CumulativeCashFlow, expected)
		}
		if snap.EquityLinePnL != snap.PortfolioValue-snap.CumulativeCashFlow {
			t.Errorf("day %d: equity identity violated", i)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(15), 48)
	engine := newTestEngine(src, day(15))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindPut, -2, 50, day(10), 400, 2),
		mustStockTrade(t, day(3), "XYZ", 50, 49, 1),
	}
	flows := []*domain.CashFlow{{Date: day(1), Amount: 20000}}

	first, firstExp, err := engine.Run(context.Background(), trades, flows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, secondExp, err := engine.Run(context.Background(), trades, flows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) || len(firstExp) != len(secondExp) {
		t.Fatalf("run lengths differ: %d/%d snapshots, %d/%d expired",
			len(first), len(second), len(firstExp), len(secondExp))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Errorf("snapshot %d differs between runs", i)
		}
	}
	for i := range firstExp {
		if *firstExp[i] != *secondExp[i] {
			t.Errorf("expired record %d differs between runs", i)
		}
	}
}

func TestRun_IdempotentAcrossSymbols(t *testing.T) {
	// Closes chosen so the stock-value sum changes in the last bit when the
	// additions happen in a different order.
	src := stub.New()
	src.SetConstantPrice("AAA", day(1), day(5), 0.1)
	src.SetConstantPrice("BBB", day(1), day(5), 0.2)
	src.SetConstantPrice("CCC", day(1), day(5), 0.3)
	engine := newTestEngine(src, day(5))

	trades := []*domain.Trade{
		mustStockTrade(t, day(1), "AAA", 1, 0.1, 0),
		mustStockTrade(t, day(1), "BBB", 1, 0.2, 0),
		mustStockTrade(t, day(1), "CCC", 1, 0.3, 0),
	}
	flows := []*domain.CashFlow{{Date: day(1), Amount: 100}}

	first, _, err := engine.Run(context.Background(), trades, flows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for run := 0; run < 50; run++ {
		next, _, err := engine.Run(context.Background(), trades, flows)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}
		for i := range first {
			if next[i].StockValue != first[i].StockValue {
				t.Fatalf("run %d day %d: stock value %v vs %v",
					run, i, next[i].StockValue, first[i].StockValue)
			}
			if *next[i] != *first[i] {
				t.Fatalf("run %d: snapshot %d differs between runs", run, i)
			}
		}
	}
}

func TestRun_InputTradesNotMutated(t *testing.T) {
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(10), 45)
	engine := newTestEngine(src, day(10))

	trades := []*domain.Trade{
		mustOptionTrade(t, day(1), "XYZ", domain.KindPut, -1, 50, day(10), 200, 1),
	}
	before := *trades[0]

	if _, _, err := engine.Run(context.Background(), trades, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trades) != 1 {
		t.Fatalf("input slice grew to %d entries", len(trades))
	}
	if *trades[0] != before {
		t.Error("input trade mutated by the run")
	}
}

func TestRun_MalformedTradeIsFatal(t *testing.T) {
	engine := newTestEngine(stub.New(), day(10))

	bad := &domain.Trade{Date: day(1), Symbol: "XYZ", Kind: domain.KindPut, Quantity: -1}

	_, _, err := engine.Run(context.Background(), []*domain.Trade{bad}, nil)
	if !errors.Is(err, domain.ErrInvalidTrade) {
		t.Fatalf("expected ErrInvalidTrade, got %v", err)
	}
}

func TestRun_MissingPriceDataValuesAtZero(t *testing.T) {
	// No series for the symbol at all: the position values at zero and the
	// run still completes.
	engine := newTestEngine(stub.New(), day(5))

	trades := []*domain.Trade{mustStockTrade(t, day(1), "GONE", 10, 100, 0)}

	snapshots, _, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := snapshots[len(snapshots)-1]
	if last.StockValue != 0 {
		t.Errorf("expected zero stock value, got %f", last.StockValue)
	}
	if last.CashBalance != -1000 {
		t.Errorf("expected cash -1000, got %f", last.CashBalance)
	}
}

func TestRun_WeightedAverageCostBasis(t *testing.T) {
	src := stub.New()
	src.SetConstantPrice("XYZ", day(1), day(6), 120)
	engine := newTestEngine(src, day(6))

	trades := []*domain.Trade{
		mustStockTrade(t, day(1), "XYZ", 10, 100, 0),
		mustStockTrade(t, day(2), "XYZ", 10, 120, 0),
		// Sell half; basis stays at the blended 110.
		mustStockTrade(t, day(3), "XYZ", -10, 125, 0),
	}

	snapshots, _, err := engine.Run(context.Background(), trades, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cash: -1000 -1200 +1250 = -950; 10 shares left at 120 = 1200.
	last := snapshots[len(snapshots)-1]
	if math.Abs(last.CashBalance-(-950)) > 1e-9 {
		t.Errorf("expected cash -950, got %f", last.CashBalance)
	}
	if math.Abs(last.StockValue-1200) > 1e-9 {
		t.Errorf("expected stock value 1200, got %f", last.StockValue)
	}
}
