// Package marketdata provides historical close prices and the risk-free rate
// to the simulation and analytics layers.
package marketdata

import (
	"context"
	"time"

	"options-wheel-lab/internal/domain"
)

// LookbackDays is the buffer fetched before a requested start date so the
// first simulated days have a prior close to fall back on.
const LookbackDays = 7

// FallbackRiskFreeRate is substituted when the upstream rate source is
// unavailable. Annualized decimal fraction.
const FallbackRiskFreeRate = 0.05

// Source supplies dated close-price series and the annualized risk-free rate.
//
// Series returns closes covering at least [start, end] with a small lookback
// buffer, ordered by date ascending. An unknown or delisted symbol yields an
// empty series and no error; errors are reserved for request construction
// failures. RiskFreeRate never fails: upstream problems degrade to
// FallbackRiskFreeRate, and the value is stable for the duration of one
// analytics computation.
type Source interface {
	Series(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePrice, error)
	RiskFreeRate(ctx context.Context) float64
}
