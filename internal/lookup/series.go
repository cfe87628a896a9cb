// Package lookup provides point-in-time reads over daily price series.
package lookup

import (
	"time"

	"options-wheel-lab/internal/domain"
)

// PriceOnOrBefore returns the most recent close at or before target.
// Returns 0 if the series is empty or has no entry on or before target.
// The zero fallback is the system's MissingMarketData policy: a delisted or
// illiquid symbol must not abort a reconstruction, it values at zero and the
// caller can detect it via a near-zero stock value on a nonzero position.
func PriceOnOrBefore(series []domain.ClosePrice, target time.Time) float64 {
	day := domain.Day(target)
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].Date.After(day) {
			return series[i].Close
		}
	}
	return 0
}

// Intrinsic returns the per-share in-the-money amount of an option at the
// given underlying price. Extrinsic value is never modeled.
func Intrinsic(kind domain.Kind, strike, price float64) float64 {
	switch kind {
	case domain.KindPut:
		if price < strike {
			return strike - price
		}
	case domain.KindCall:
		if price > strike {
			return price - strike
		}
	}
	return 0
}
