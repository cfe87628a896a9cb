// Package orchestrator provides end-to-end pipeline coordination.
// It coordinates: journal load → reconstruction → persistence → analytics.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"options-wheel-lab/internal/analytics"
	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/lookup"
	"options-wheel-lab/internal/marketdata"
	"options-wheel-lab/internal/simulation"
	"options-wheel-lab/internal/storage"
	"options-wheel-lab/internal/wheel"
)

// Orchestrator coordinates a full reconstruction run over the stored
// journal.
type Orchestrator struct {
	tradeStore    storage.TradeStore
	cashFlowStore storage.CashFlowStore
	snapshotStore storage.SnapshotStore
	expiredStore  storage.ExpiredOptionStore

	source marketdata.Source
	engine *simulation.Engine

	verbose bool
}

// Options for creating an Orchestrator.
type Options struct {
	TradeStore    storage.TradeStore
	CashFlowStore storage.CashFlowStore
	SnapshotStore storage.SnapshotStore
	ExpiredStore  storage.ExpiredOptionStore

	Source marketdata.Source
	Now    func() time.Time   // injectable clock for the replay horizon
	Engine *simulation.Engine // optional; built from Source and Now when nil

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	engine := opts.Engine
	if engine == nil {
		engine = simulation.NewEngine(simulation.Options{Source: opts.Source, Now: opts.Now})
	}
	return &Orchestrator{
		tradeStore:    opts.TradeStore,
		cashFlowStore: opts.CashFlowStore,
		snapshotStore: opts.SnapshotStore,
		expiredStore:  opts.ExpiredStore,
		source:        opts.Source,
		engine:        engine,
		verbose:       opts.Verbose,
	}
}

// RunResult contains the outputs of a full reconstruction run.
type RunResult struct {
	TradesProcessed    int
	CashFlowsProcessed int
	SnapshotDays       int
	ExpiredOptions     int

	Snapshots []*domain.PortfolioSnapshot
	Expired   []*domain.ExpiredOptionRecord

	Performance   *analytics.Metrics
	Wheel         *wheel.Report
	WheelBySymbol map[string]*wheel.Report
}

// Run executes the full pipeline.
// Phases:
//  1. Load the journal
//  2. Reconstruct the daily history
//  3. Persist the snapshot series and expired-option log
//  4. Compute performance and wheel analytics
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	o.log("Phase 1: Loading journal...")
	trades, err := o.tradeStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load trades) failed: %w", err)
	}
	cashFlows, err := o.cashFlowStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load cash flows) failed: %w", err)
	}
	result.TradesProcessed = len(trades)
	result.CashFlowsProcessed = len(cashFlows)
	o.log("  Found %d trades, %d cash flows", len(trades), len(cashFlows))

	if len(trades) == 0 && len(cashFlows) == 0 {
		return result, nil
	}

	o.log("Phase 2: Reconstructing daily history...")
	snapshots, expired, err := o.engine.Run(ctx, trades, cashFlows)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (reconstruction) failed: %w", err)
	}
	result.Snapshots = snapshots
	result.Expired = expired
	result.SnapshotDays = len(snapshots)
	result.ExpiredOptions = len(expired)
	o.log("  Reconstructed %d days, %d expired options", len(snapshots), len(expired))

	o.log("Phase 3: Persisting reconstruction...")
	if err := o.persist(ctx, snapshots, expired); err != nil {
		return nil, fmt.Errorf("phase 3 (persist) failed: %w", err)
	}

	o.log("Phase 4: Computing analytics...")
	marks := o.latestMarks(ctx, trades, snapshots)
	result.Performance = analytics.Compute(snapshots, trades, cashFlows, analytics.Options{
		RiskFreeRate: o.source.RiskFreeRate(ctx),
		Marks:        marks,
	})

	calc := wheel.NewCalculator(trades, cashFlows, snapshots, expired)
	result.Wheel = calc.Aggregate()
	result.WheelBySymbol = calc.AllBySymbol()

	o.log("Pipeline completed: %d trades, %d days, %d expired options",
		result.TradesProcessed, result.SnapshotDays, result.ExpiredOptions)

	return result, nil
}

func (o *Orchestrator) persist(ctx context.Context, snapshots []*domain.PortfolioSnapshot, expired []*domain.ExpiredOptionRecord) error {
	if o.snapshotStore != nil {
		if err := o.snapshotStore.ReplaceAll(ctx, snapshots); err != nil {
			return fmt.Errorf("persist snapshots: %w", err)
		}
	}
	if o.expiredStore != nil {
		if err := o.expiredStore.ReplaceAll(ctx, expired); err != nil {
			return fmt.Errorf("persist expired options: %w", err)
		}
	}
	return nil
}

// latestMarks resolves one mark price per traded symbol as of the final
// snapshot day, so open positions can be valued in the attribution tables.
// Symbols without price data simply get no mark.
func (o *Orchestrator) latestMarks(ctx context.Context, trades []*domain.Trade, snapshots []*domain.PortfolioSnapshot) map[string]float64 {
	if len(snapshots) == 0 {
		return nil
	}
	asOf := snapshots[len(snapshots)-1].Date

	seen := make(map[string]struct{})
	marks := make(map[string]float64)
	for _, t := range trades {
		if _, ok := seen[t.Symbol]; ok {
			continue
		}
		seen[t.Symbol] = struct{}{}

		series, err := o.source.Series(ctx, t.Symbol, snapshots[0].Date, asOf)
		if err != nil {
			o.log("  No mark for %s: %v", t.Symbol, err)
			continue
		}
		if price := lookup.PriceOnOrBefore(series, asOf); price > 0 {
			marks[t.Symbol] = price
		}
	}
	return marks
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
