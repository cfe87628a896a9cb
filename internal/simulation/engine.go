// Package simulation reconstructs the daily history of a wheel-strategy
// account from its trade and cash-flow journal.
package simulation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/lookup"
	"options-wheel-lab/internal/marketdata"
)

// defaultWorkers bounds the price-prefetch fan-out.
const defaultWorkers = 10

// Engine replays a journal day by day and produces the snapshot sequence
// and the expired-option event log. The replay is deterministic: identical
// inputs and price data yield identical outputs.
type Engine struct {
	source  marketdata.Source
	now     func() time.Time
	workers int
}

// Options configures an Engine.
type Options struct {
	Source  marketdata.Source
	Now     func() time.Time // injectable clock; defaults to time.Now in UTC
	Workers int              // price-prefetch fan-out, defaults to 10
}

// NewEngine creates a simulation engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		source:  opts.Source,
		now:     opts.Now,
		workers: opts.Workers,
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.workers <= 0 {
		e.workers = defaultWorkers
	}
	return e
}

// Run rebuilds the full daily ledger from the journal.
//
// The walk covers every calendar day from the earliest journal date through
// today. Each day applies that day's cash flows, then its due trades, then
// resolves option expiries (which may schedule same-day synthetic assignment
// trades, applied immediately after), and finally marks the book to model.
//
// Structurally invalid journal entries are fatal and reported before the
// loop starts. Missing price data is never fatal: affected symbols value
// at zero. The input slices are never mutated; the run works on a private
// copy of the schedule.
func (e *Engine) Run(ctx context.Context, trades []*domain.Trade, cashFlows []*domain.CashFlow) ([]*domain.PortfolioSnapshot, []*domain.ExpiredOptionRecord, error) {
	if err := validateInputs(trades, cashFlows); err != nil {
		return nil, nil, err
	}
	if len(trades) == 0 && len(cashFlows) == 0 {
		return nil, nil, nil
	}

	sortedTrades := sortedCopy(trades)
	flows := sortedFlows(cashFlows)

	start := earliestDate(sortedTrades, flows)
	end := domain.Day(e.now())

	prices := e.prefetchSeries(ctx, distinctSymbols(sortedTrades), start, end)

	st := newState(sortedTrades)
	flowsByDay := groupFlowsByDay(flows)

	var snapshots []*domain.PortfolioSnapshot
	var expired []*domain.ExpiredOptionRecord

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		daily := 0.0
		for _, cf := range flowsByDay[day] {
			st.cash += cf.Amount
			st.cumulative += cf.Amount
			daily += cf.Amount
		}

		st.applyDueTrades(day)
		expired = append(expired, st.resolveExpiries(day, prices)...)
		// Assignment trades are scheduled dated today; pick them up before valuation.
		st.applyDueTrades(day)

		snapshots = append(snapshots, st.snapshot(day, daily, prices))
	}

	return snapshots, expired, nil
}

// applyDueTrades applies every not-yet-processed schedule entry dated day.
func (s *state) applyDueTrades(day time.Time) {
	for _, st := range s.due(day) {
		s.applyTrade(st)
	}
}

// applyTrade books one journal entry against cash and positions.
func (s *state) applyTrade(st *scheduledTrade) {
	t := st.trade
	s.cash -= t.Commission

	switch t.Kind {
	case domain.KindStock:
		s.cash -= float64(t.Quantity) * t.StockPrice
		pos := s.position(t.Symbol)
		if t.Quantity > 0 {
			oldCost := float64(pos.Shares) * pos.CostBasis
			newCost := float64(t.Quantity) * t.StockPrice
			total := pos.Shares + t.Quantity
			if total > 0 {
				pos.CostBasis = (oldCost + newCost) / float64(total)
			} else {
				pos.CostBasis = 0
			}
		}
		pos.Shares += t.Quantity

	case domain.KindPut, domain.KindCall:
		premium := math.Abs(t.Premium)
		if t.IsShort() {
			s.cash += premium
		} else {
			s.cash -= premium
		}
		s.openOptions = append(s.openOptions, st)
	}

	s.processed[st.seq] = struct{}{}
}

// resolveExpiries closes every open option whose expiry is day and returns
// the event-log rows. Assigned short options schedule a synthetic stock
// trade at the strike, dated today, commission-free.
func (s *state) resolveExpiries(day time.Time, prices map[string][]domain.ClosePrice) []*domain.ExpiredOptionRecord {
	var records []*domain.ExpiredOptionRecord
	remaining := s.openOptions[:0]

	for _, st := range s.openOptions {
		opt := st.trade
		if !opt.Expiry.Equal(day) {
			remaining = append(remaining, st)
			continue
		}

		priceOnExpiry := lookup.PriceOnOrBefore(prices[opt.Symbol], day)
		premium := math.Abs(opt.Premium)
		record := &domain.ExpiredOptionRecord{
			ExpiryDate:    day,
			Symbol:        opt.Symbol,
			Kind:          opt.Kind,
			Strike:        opt.Strike,
			Premium:       opt.Premium,
			PriceOnExpiry: priceOnExpiry,
		}

		if opt.IsShort() {
			record.WasAssigned = lookup.Intrinsic(opt.Kind, opt.Strike, priceOnExpiry) > 0
			record.PnL = premium
			if record.WasAssigned {
				s.push(assignmentTrade(opt, day))
			}
		} else {
			intrinsic := lookup.Intrinsic(opt.Kind, opt.Strike, priceOnExpiry) * float64(opt.Contracts()) * float64(opt.Multiplier)
			if intrinsic > 0 {
				s.cash += intrinsic
				record.PnL = intrinsic - premium
			} else {
				record.PnL = -premium
			}
		}

		records = append(records, record)
	}

	s.openOptions = remaining
	return records
}

// assignmentTrade synthesizes the stock trade an assignment forces: the
// account buys shares at the strike for an assigned put and delivers them at
// the strike for an assigned call.
func assignmentTrade(opt *domain.Trade, day time.Time) *domain.Trade {
	shares := opt.Contracts() * opt.Multiplier
	if opt.Kind == domain.KindCall {
		shares = -shares
	}
	return &domain.Trade{
		Date:       day,
		Symbol:     opt.Symbol,
		Kind:       domain.KindStock,
		Quantity:   shares,
		StockPrice: opt.Strike,
		Multiplier: domain.DefaultStockMultiplier,
		Note:       fmt.Sprintf("assignment from %s strike %.2f", opt.Kind, opt.Strike),
	}
}

// snapshot marks the book to model as of day and emits the ledger row.
// Open options are valued at pure intrinsic; short legs are a liability.
func (s *state) snapshot(day time.Time, daily float64, prices map[string][]domain.ClosePrice) *domain.PortfolioSnapshot {
	// Sum in sorted symbol order: map iteration order would reorder the
	// float additions and identical runs could differ in the last bit.
	symbols := make([]string, 0, len(s.positions))
	for symbol := range s.positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	stockValue := 0.0
	for _, symbol := range symbols {
		pos := s.positions[symbol]
		if pos.Shares == 0 {
			continue
		}
		stockValue += float64(pos.Shares) * lookup.PriceOnOrBefore(prices[symbol], day)
	}

	optionsValue := 0.0
	for _, st := range s.openOptions {
		opt := st.trade
		price := lookup.PriceOnOrBefore(prices[opt.Symbol], day)
		value := lookup.Intrinsic(opt.Kind, opt.Strike, price) * float64(opt.Contracts()) * float64(opt.Multiplier)
		if opt.IsShort() {
			value = -value
		}
		optionsValue += value
	}

	portfolioValue := stockValue + s.cash + optionsValue
	return &domain.PortfolioSnapshot{
		Date:               day,
		PortfolioValue:     portfolioValue,
		StockValue:         stockValue,
		OptionsValue:       optionsValue,
		CashBalance:        s.cash,
		DailyCashFlow:      daily,
		CumulativeCashFlow: s.cumulative,
		EquityLinePnL:      portfolioValue - s.cumulative,
	}
}

// validateInputs fails fast on structurally invalid journal entries.
func validateInputs(trades []*domain.Trade, cashFlows []*domain.CashFlow) error {
	for i, t := range trades {
		if t == nil {
			return fmt.Errorf("trade %d: %w: nil entry", i, domain.ErrInvalidTrade)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("trade %d: %w", i, err)
		}
	}
	for i, cf := range cashFlows {
		if cf == nil {
			return fmt.Errorf("cash flow %d: %w: nil entry", i, domain.ErrInvalidCashFlow)
		}
		if err := cf.Validate(); err != nil {
			return fmt.Errorf("cash flow %d: %w", i, err)
		}
	}
	return nil
}

// sortedCopy clones the trades and orders them by date, preserving journal
// order within a day. The copies confine all mutation to this run.
func sortedCopy(trades []*domain.Trade) []*domain.Trade {
	out := make([]*domain.Trade, len(trades))
	for i, t := range trades {
		c := *t
		c.Date = domain.Day(c.Date)
		if !c.Expiry.IsZero() {
			c.Expiry = domain.Day(c.Expiry)
		}
		out[i] = &c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func sortedFlows(cashFlows []*domain.CashFlow) []*domain.CashFlow {
	out := make([]*domain.CashFlow, len(cashFlows))
	for i, cf := range cashFlows {
		c := *cf
		c.Date = domain.Day(c.Date)
		out[i] = &c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func groupFlowsByDay(flows []*domain.CashFlow) map[time.Time][]*domain.CashFlow {
	byDay := make(map[time.Time][]*domain.CashFlow, len(flows))
	for _, cf := range flows {
		byDay[cf.Date] = append(byDay[cf.Date], cf)
	}
	return byDay
}

func earliestDate(trades []*domain.Trade, flows []*domain.CashFlow) time.Time {
	var earliest time.Time
	if len(trades) > 0 {
		earliest = trades[0].Date
	}
	if len(flows) > 0 && (earliest.IsZero() || flows[0].Date.Before(earliest)) {
		earliest = flows[0].Date
	}
	return earliest
}
