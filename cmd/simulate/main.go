// Package main reconstructs the portfolio history from the journal and
// persists the snapshot series and expired-option log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"options-wheel-lab/internal/config"
	"options-wheel-lab/internal/ingest"
	"options-wheel-lab/internal/marketdata"
	"options-wheel-lab/internal/orchestrator"
	"options-wheel-lab/internal/simulation"
	"options-wheel-lab/internal/storage"
	chstore "options-wheel-lab/internal/storage/clickhouse"
	"options-wheel-lab/internal/storage/memory"
	"options-wheel-lab/internal/storage/migrations"
	pgstore "options-wheel-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: search ./config.yaml)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides config)")
	useFixtures := flag.Bool("use-fixtures", false, "Load the journal from CSV files instead of PostgreSQL")
	tradesPath := flag.String("trades", "", "Trades CSV file (fixtures mode)")
	cashFlowsPath := flag.String("cashflows", "", "Cash flows CSV file (fixtures mode)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling run...\n", sig)
		cancel()
	}()

	opts := runOptions{
		configPath:    *configPath,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useFixtures:   *useFixtures,
		tradesPath:    *tradesPath,
		cashFlowsPath: *cashFlowsPath,
		verbose:       *verbose,
	}
	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath    string
	postgresDSN   string
	clickhouseDSN string
	useFixtures   bool
	tradesPath    string
	cashFlowsPath string
	verbose       bool
}

func run(ctx context.Context, opts runOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.postgresDSN != "" {
		cfg.Postgres.DSN = opts.postgresDSN
	}
	if opts.clickhouseDSN != "" {
		cfg.ClickHouse.DSN = opts.clickhouseDSN
	}

	stores, cleanup, err := buildStores(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	source := marketdata.NewStooqSource(marketdata.StooqOptions{
		BaseURL:      cfg.MarketData.BaseURL,
		RateURL:      cfg.MarketData.RateURL,
		FallbackRate: cfg.MarketData.FallbackRiskFree,
		CacheTTL:     cfg.MarketData.CacheTTL(),
		Timeout:      cfg.MarketData.Timeout(),
	})
	engine := simulation.NewEngine(simulation.Options{
		Source:  source,
		Workers: cfg.Simulation.Workers,
	})

	orch := orchestrator.New(orchestrator.Options{
		TradeStore:    stores.trades,
		CashFlowStore: stores.cashFlows,
		SnapshotStore: stores.snapshots,
		ExpiredStore:  stores.expired,
		Source:        source,
		Engine:        engine,
		Verbose:       opts.verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Reconstruction completed:")
	fmt.Printf("  Trades:          %d\n", result.TradesProcessed)
	fmt.Printf("  Cash flows:      %d\n", result.CashFlowsProcessed)
	fmt.Printf("  History days:    %d\n", result.SnapshotDays)
	fmt.Printf("  Expired options: %d\n", result.ExpiredOptions)
	if result.Performance != nil {
		fmt.Printf("  Total P&L:       %.2f\n", result.Performance.TotalPnL)
		fmt.Printf("  Sharpe:          %.2f\n", result.Performance.SharpeRatio)
	}
	if result.Wheel != nil {
		fmt.Printf("  WES:             %.2f\n", result.Wheel.Efficiency.WES)
		fmt.Printf("  WCS:             %.2f (%s)\n", result.Wheel.Continuation.WCS, result.Wheel.Continuation.Rating)
	}
	return nil
}

type storeSet struct {
	trades    storage.TradeStore
	cashFlows storage.CashFlowStore
	snapshots storage.SnapshotStore
	expired   storage.ExpiredOptionStore
}

// buildStores wires the journal and reconstruction stores: postgres and
// clickhouse normally, all in-memory in fixtures mode.
func buildStores(ctx context.Context, cfg *config.Config, opts runOptions) (*storeSet, func(), error) {
	if opts.useFixtures {
		stores, err := fixtureStores(ctx, opts.tradesPath, opts.cashFlowsPath)
		if err != nil {
			return nil, nil, err
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &storeSet{
		trades:    pgstore.NewTradeStore(pool),
		cashFlows: pgstore.NewCashFlowStore(pool),
		snapshots: chstore.NewSnapshotStore(conn),
		expired:   chstore.NewExpiredOptionStore(conn),
	}
	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return stores, cleanup, nil
}

// fixtureStores loads the CSV journal into in-memory stores.
func fixtureStores(ctx context.Context, tradesPath, cashFlowsPath string) (*storeSet, error) {
	if tradesPath == "" && cashFlowsPath == "" {
		return nil, fmt.Errorf("fixtures mode needs --trades or --cashflows")
	}

	stores := &storeSet{
		trades:    memory.NewTradeStore(),
		cashFlows: memory.NewCashFlowStore(),
		snapshots: memory.NewSnapshotStore(),
		expired:   memory.NewExpiredOptionStore(),
	}

	if tradesPath != "" {
		f, err := os.Open(tradesPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", tradesPath, err)
		}
		trades, err := ingest.ParseTrades(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", tradesPath, err)
		}
		if err := stores.trades.(*memory.TradeStore).InsertBulk(ctx, trades); err != nil {
			return nil, fmt.Errorf("load trades: %w", err)
		}
	}
	if cashFlowsPath != "" {
		f, err := os.Open(cashFlowsPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cashFlowsPath, err)
		}
		cashFlows, err := ingest.ParseCashFlows(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", cashFlowsPath, err)
		}
		if err := stores.cashFlows.(*memory.CashFlowStore).InsertBulk(ctx, cashFlows); err != nil {
			return nil, fmt.Errorf("load cash flows: %w", err)
		}
	}
	return stores, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
