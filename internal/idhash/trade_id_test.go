package idhash

import (
	"testing"
	"time"

	"options-wheel-lab/internal/domain"
)

func sampleTrade() *domain.Trade {
	return &domain.Trade{
		Date:       domain.NewDate(2024, time.March, 1),
		Symbol:     "SPY",
		Kind:       domain.KindPut,
		Quantity:   -1,
		Strike:     450,
		Expiry:     domain.NewDate(2024, time.March, 15),
		Premium:    320,
		Multiplier: 100,
	}
}

func TestComputeTradeID(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Trade)
	}{
		{name: "short put", mutate: func(tr *domain.Trade) {}},
		{name: "stock trade without expiry", mutate: func(tr *domain.Trade) {
			tr.Kind = domain.KindStock
			tr.Quantity = 100
			tr.Strike = 0
			tr.Expiry = time.Time{}
			tr.Premium = 0
			tr.StockPrice = 451.2
		}},
		{name: "long call", mutate: func(tr *domain.Trade) {
			tr.Kind = domain.KindCall
			tr.Quantity = 2
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := sampleTrade()
			tt.mutate(tr)

			got := ComputeTradeID(tr)
			if len(got) != 64 {
				t.Errorf("ComputeTradeID() length = %d, want 64", len(got))
			}

			// Verify determinism: same inputs should produce same output
			if got2 := ComputeTradeID(tr); got != got2 {
				t.Errorf("ComputeTradeID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeID_DifferentInputs(t *testing.T) {
	base := ComputeTradeID(sampleTrade())

	diffSymbol := sampleTrade()
	diffSymbol.Symbol = "QQQ"
	if ComputeTradeID(diffSymbol) == base {
		t.Error("Different symbol should produce different hash")
	}

	diffDate := sampleTrade()
	diffDate.Date = domain.NewDate(2024, time.March, 2)
	if ComputeTradeID(diffDate) == base {
		t.Error("Different date should produce different hash")
	}

	diffQty := sampleTrade()
	diffQty.Quantity = -2
	if ComputeTradeID(diffQty) == base {
		t.Error("Different quantity should produce different hash")
	}

	diffStrike := sampleTrade()
	diffStrike.Strike = 455
	if ComputeTradeID(diffStrike) == base {
		t.Error("Different strike should produce different hash")
	}

	diffExpiry := sampleTrade()
	diffExpiry.Expiry = domain.NewDate(2024, time.March, 22)
	if ComputeTradeID(diffExpiry) == base {
		t.Error("Different expiry should produce different hash")
	}
}

func TestComputeCashFlowID(t *testing.T) {
	cf := &domain.CashFlow{
		Date:   domain.NewDate(2024, time.January, 2),
		Amount: 10000,
		Note:   "initial deposit",
	}

	got := ComputeCashFlowID(cf)
	if len(got) != 64 {
		t.Errorf("ComputeCashFlowID() length = %d, want 64", len(got))
	}
	if got2 := ComputeCashFlowID(cf); got != got2 {
		t.Errorf("ComputeCashFlowID() not deterministic: %s != %s", got, got2)
	}

	diffAmount := &domain.CashFlow{Date: cf.Date, Amount: 5000, Note: cf.Note}
	if ComputeCashFlowID(diffAmount) == got {
		t.Error("Different amount should produce different hash")
	}

	diffNote := &domain.CashFlow{Date: cf.Date, Amount: cf.Amount, Note: "second deposit"}
	if ComputeCashFlowID(diffNote) == got {
		t.Error("Different note should produce different hash")
	}
}
