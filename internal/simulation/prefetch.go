package simulation

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"options-wheel-lab/internal/domain"
)

// prefetchSeries loads one close-price series per symbol through a bounded
// worker pool and waits for all of them before returning: the day loop never
// runs on partial price data. A symbol whose fetch fails resolves to an empty
// series, which the valuation code treats as price 0.
func (e *Engine) prefetchSeries(ctx context.Context, symbols []string, start, end time.Time) map[string][]domain.ClosePrice {
	prices := make(map[string][]domain.ClosePrice, len(symbols))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, symbol := range symbols {
		g.Go(func() error {
			series, err := e.source.Series(ctx, symbol, start, end)
			if err != nil {
				log.Printf("[simulation] %s: price series unavailable, valuing at zero: %v", symbol, err)
				series = nil
			}
			mu.Lock()
			prices[symbol] = series
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait is the fan-in barrier.
	_ = g.Wait()

	return prices
}

// distinctSymbols returns the unique trade symbols in first-seen order.
func distinctSymbols(trades []*domain.Trade) []string {
	seen := make(map[string]struct{}, len(trades))
	var out []string
	for _, t := range trades {
		if _, ok := seen[t.Symbol]; ok {
			continue
		}
		seen[t.Symbol] = struct{}{}
		out = append(out, t.Symbol)
	}
	return out
}
