// Package stub provides a deterministic in-memory marketdata.Source for
// tests and fixtures.
package stub

import (
	"context"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/marketdata"
)

// Source implements marketdata.Source from fixed in-memory series.
type Source struct {
	Prices map[string][]domain.ClosePrice // per symbol, ordered by date ASC
	Rate   float64
}

// New creates an empty stub source with the fallback risk-free rate.
func New() *Source {
	return &Source{
		Prices: make(map[string][]domain.ClosePrice),
		Rate:   marketdata.FallbackRiskFreeRate,
	}
}

var _ marketdata.Source = (*Source)(nil)

// SetConstantPrice fills the symbol's series with one close per calendar day
// over [start, end] at the given price.
func (s *Source) SetConstantPrice(symbol string, start, end time.Time, price float64) {
	var series []domain.ClosePrice
	for d := domain.Day(start); !d.After(domain.Day(end)); d = d.AddDate(0, 0, 1) {
		series = append(series, domain.ClosePrice{Date: d, Close: price})
	}
	s.Prices[symbol] = series
}

// SetPrice appends a single dated close to the symbol's series.
// Closes must be appended in date order.
func (s *Source) SetPrice(symbol string, date time.Time, price float64) {
	s.Prices[symbol] = append(s.Prices[symbol], domain.ClosePrice{Date: domain.Day(date), Close: price})
}

// Series returns the closes within [start-lookback, end] for the symbol.
// Unknown symbols yield an empty series, matching the real source.
func (s *Source) Series(_ context.Context, symbol string, start, end time.Time) ([]domain.ClosePrice, error) {
	from := domain.Day(start).AddDate(0, 0, -marketdata.LookbackDays)
	to := domain.Day(end)

	var out []domain.ClosePrice
	for _, p := range s.Prices[symbol] {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

// RiskFreeRate returns the configured fixed rate.
func (s *Source) RiskFreeRate(_ context.Context) float64 {
	return s.Rate
}
