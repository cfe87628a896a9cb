package domain

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the instrument of a trade.
type Kind string

// Trade kinds.
const (
	KindStock Kind = "stock"
	KindPut   Kind = "put"
	KindCall  Kind = "call"
)

// Default contract multipliers.
const (
	DefaultOptionMultiplier = 100
	DefaultStockMultiplier  = 1
)

// Validation errors.
var (
	ErrInvalidTrade    = errors.New("invalid trade")
	ErrInvalidCashFlow = errors.New("invalid cash flow")
)

// Trade is one executed order in the journal. Exactly one field group is
// meaningful per kind: StockPrice for stock trades, Strike/Expiry/Premium for
// option trades. Construct via NewStockTrade / NewOptionTrade so the
// kind-specific requirements hold; the simulation engine re-validates the
// whole batch before it starts.
type Trade struct {
	ID         string    // deterministic journal id, empty for in-memory batches
	Date       time.Time // execution day, UTC midnight
	Symbol     string
	Kind       Kind
	Quantity   int // signed: negative = short/sold, positive = long/bought
	Strike     float64
	Expiry     time.Time // options only
	Premium    float64   // total premium magnitude for the position
	StockPrice float64   // per-share execution price, stock only
	Commission float64
	Multiplier int
	Note       string
}

// NewStockTrade builds a validated stock trade.
func NewStockTrade(date time.Time, symbol string, quantity int, stockPrice, commission float64, note string) (*Trade, error) {
	t := &Trade{
		Date:       Day(date),
		Symbol:     symbol,
		Kind:       KindStock,
		Quantity:   quantity,
		StockPrice: stockPrice,
		Commission: commission,
		Multiplier: DefaultStockMultiplier,
		Note:       note,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewOptionTrade builds a validated single-leg option trade.
// Quantity is in contracts; negative quantity opens a short position.
func NewOptionTrade(date time.Time, symbol string, kind Kind, quantity int, strike float64, expiry time.Time, premium, commission float64, note string) (*Trade, error) {
	t := &Trade{
		Date:       Day(date),
		Symbol:     symbol,
		Kind:       kind,
		Quantity:   quantity,
		Strike:     strike,
		Expiry:     Day(expiry),
		Premium:    premium,
		Commission: commission,
		Multiplier: DefaultOptionMultiplier,
		Note:       note,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the structural requirements for the trade's kind.
func (t *Trade) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTrade)
	}
	if t.Symbol == "" {
		return fmt.Errorf("%w: missing symbol", ErrInvalidTrade)
	}
	if t.Quantity == 0 {
		return fmt.Errorf("%w: zero quantity for %s", ErrInvalidTrade, t.Symbol)
	}
	if t.Commission < 0 {
		return fmt.Errorf("%w: negative commission for %s", ErrInvalidTrade, t.Symbol)
	}
	switch t.Kind {
	case KindStock:
		if t.StockPrice < 0 {
			return fmt.Errorf("%w: negative stock price for %s", ErrInvalidTrade, t.Symbol)
		}
	case KindPut, KindCall:
		if t.Strike <= 0 {
			return fmt.Errorf("%w: option %s missing strike", ErrInvalidTrade, t.Symbol)
		}
		if t.Expiry.IsZero() {
			return fmt.Errorf("%w: option %s missing expiry", ErrInvalidTrade, t.Symbol)
		}
		if t.Multiplier <= 0 {
			return fmt.Errorf("%w: option %s missing multiplier", ErrInvalidTrade, t.Symbol)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q for %s", ErrInvalidTrade, t.Kind, t.Symbol)
	}
	return nil
}

// IsOption reports whether the trade is a put or call leg.
func (t *Trade) IsOption() bool {
	return t.Kind == KindPut || t.Kind == KindCall
}

// IsShort reports whether the trade opens a short (sold) position.
func (t *Trade) IsShort() bool {
	return t.Quantity < 0
}

// Contracts returns the unsigned contract count for option trades.
func (t *Trade) Contracts() int {
	if t.Quantity < 0 {
		return -t.Quantity
	}
	return t.Quantity
}

// CashFlow is an external deposit (positive) or withdrawal (negative).
type CashFlow struct {
	ID     string
	Date   time.Time // UTC midnight
	Amount float64
	Note   string
}

// Validate checks the structural requirements of a cash flow.
func (c *CashFlow) Validate() error {
	if c.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidCashFlow)
	}
	if c.Amount == 0 {
		return fmt.Errorf("%w: zero amount", ErrInvalidCashFlow)
	}
	return nil
}
