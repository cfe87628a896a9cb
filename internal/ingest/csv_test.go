package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"options-wheel-lab/internal/domain"
)

func TestParseTrades(t *testing.T) {
	journal := `date,symbol,kind,quantity,strike,expiry,premium,stock_price,commission,multiplier,note
2024-03-01,spy,put,-1,450,2024-03-15,320,,1.5,,weekly put
2024-03-04,SPY,stock,100,,,,451.20,1,,assignment
2024-03-05,QQQ,call,2,380,2024-04-19,150,,0.5,100,
`

	trades, err := ParseTrades(strings.NewReader(journal))
	if err != nil {
		t.Fatalf("ParseTrades failed: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}

	put := trades[0]
	if put.Symbol != "SPY" {
		t.Errorf("symbol must be upper-cased, got %q", put.Symbol)
	}
	if put.Kind != domain.KindPut || put.Quantity != -1 {
		t.Errorf("unexpected put leg: %+v", put)
	}
	if put.Multiplier != 100 {
		t.Errorf("option multiplier must default to 100, got %d", put.Multiplier)
	}
	if !put.Expiry.Equal(domain.NewDate(2024, time.March, 15)) {
		t.Errorf("unexpected expiry: %v", put.Expiry)
	}
	if put.ID == "" || len(put.ID) != 64 {
		t.Errorf("trade must be stamped with a content-hash id, got %q", put.ID)
	}

	stock := trades[1]
	if stock.Kind != domain.KindStock || stock.Multiplier != 1 {
		t.Errorf("stock multiplier must default to 1: %+v", stock)
	}
	if stock.StockPrice != 451.20 {
		t.Errorf("unexpected stock price: %f", stock.StockPrice)
	}
	if !stock.Expiry.IsZero() {
		t.Errorf("stock trade must have zero expiry")
	}

	if trades[2].Multiplier != 100 {
		t.Errorf("explicit multiplier not honored: %d", trades[2].Multiplier)
	}
}

func TestParseTrades_ColumnOrderFree(t *testing.T) {
	journal := `symbol,quantity,kind,date
SPY,100,stock,2024-03-01
`

	trades, err := ParseTrades(strings.NewReader(journal))
	if err != nil {
		t.Fatalf("ParseTrades failed: %v", err)
	}
	if len(trades) != 1 || trades[0].Symbol != "SPY" || trades[0].Quantity != 100 {
		t.Errorf("unexpected result: %+v", trades[0])
	}
}

func TestParseTrades_MissingRequiredColumn(t *testing.T) {
	journal := `date,symbol,quantity
2024-03-01,SPY,100
`

	_, err := ParseTrades(strings.NewReader(journal))
	if err == nil || !strings.Contains(err.Error(), `"kind"`) {
		t.Errorf("expected missing-column error, got %v", err)
	}
}

func TestParseTrades_InvalidRowIsFatal(t *testing.T) {
	// Option row without a strike must fail with the line number, not be
	// silently skipped.
	journal := `date,symbol,kind,quantity,strike,expiry,premium
2024-03-01,SPY,put,-1,450,2024-03-15,320
2024-03-02,SPY,put,-1,,2024-03-15,320
`

	_, err := ParseTrades(strings.NewReader(journal))
	if err == nil {
		t.Fatal("expected error for invalid row")
	}
	if !errors.Is(err, domain.ErrInvalidTrade) {
		t.Errorf("expected ErrInvalidTrade, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error must name the offending line, got %v", err)
	}
}

func TestParseTrades_IdenticalRowsShareID(t *testing.T) {
	journal := `date,symbol,kind,quantity,strike,expiry,premium
2024-03-01,SPY,put,-1,450,2024-03-15,320
2024-03-01,SPY,put,-1,450,2024-03-15,320
`

	trades, err := ParseTrades(strings.NewReader(journal))
	if err != nil {
		t.Fatalf("ParseTrades failed: %v", err)
	}
	if trades[0].ID != trades[1].ID {
		t.Error("identical rows must hash to the same id so storage rejects the re-import")
	}
}

func TestParseCashFlows(t *testing.T) {
	journal := `date,amount,note
2024-01-02,10000,initial deposit
2024-06-01,-2500,withdrawal

`

	flows, err := ParseCashFlows(strings.NewReader(journal))
	if err != nil {
		t.Fatalf("ParseCashFlows failed: %v", err)
	}
	if len(flows) != 2 {
		t.Fatalf("expected 2 flows, got %d", len(flows))
	}
	if flows[0].Amount != 10000 || flows[0].Note != "initial deposit" {
		t.Errorf("unexpected first flow: %+v", flows[0])
	}
	if flows[1].Amount != -2500 {
		t.Errorf("unexpected second flow: %+v", flows[1])
	}
	if flows[0].ID == "" {
		t.Error("cash flow must be stamped with a content-hash id")
	}
}

func TestParseCashFlows_ZeroAmountIsFatal(t *testing.T) {
	journal := `date,amount
2024-01-02,0
`

	_, err := ParseCashFlows(strings.NewReader(journal))
	if !errors.Is(err, domain.ErrInvalidCashFlow) {
		t.Errorf("expected ErrInvalidCashFlow, got %v", err)
	}
}
