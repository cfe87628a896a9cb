// Package main runs the full pipeline and writes the analytics report to
// markdown and CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"options-wheel-lab/internal/config"
	"options-wheel-lab/internal/ingest"
	"options-wheel-lab/internal/marketdata"
	"options-wheel-lab/internal/orchestrator"
	"options-wheel-lab/internal/reporting"
	"options-wheel-lab/internal/storage"
	chstore "options-wheel-lab/internal/storage/clickhouse"
	"options-wheel-lab/internal/storage/memory"
	"options-wheel-lab/internal/storage/migrations"
	pgstore "options-wheel-lab/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
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
		fmt.Printf("\nReceived signal %v, cancelling report...\n", sig)
		cancel()
	}()

	err := run(ctx, runOptions{
		outputDir:     *outputDir,
		configPath:    *configPath,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useFixtures:   *useFixtures,
		tradesPath:    *tradesPath,
		cashFlowsPath: *cashFlowsPath,
		verbose:       *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	outputDir     string
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

	orch := orchestrator.New(orchestrator.Options{
		TradeStore:    stores.trades,
		CashFlowStore: stores.cashFlows,
		SnapshotStore: stores.snapshots,
		ExpiredStore:  stores.expired,
		Source:        source,
		Verbose:       opts.verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	trades, err := stores.trades.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	cashFlows, err := stores.cashFlows.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load cash flows: %w", err)
	}

	report := reporting.NewGenerator().Generate(reporting.Input{
		Trades:        trades,
		CashFlows:     cashFlows,
		Snapshots:     result.Snapshots,
		Expired:       result.Expired,
		Performance:   result.Performance,
		Wheel:         result.Wheel,
		WheelBySymbol: result.WheelBySymbol,
	})

	if err := writeReportFiles(opts.outputDir, report); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", opts.outputDir)
	return nil
}

// writeReportFiles renders the report to markdown plus one CSV per table.
func writeReportFiles(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"report.md":           reporting.RenderMarkdown(report),
		"performance.csv":     reporting.RenderPerformanceCSV(report.Performance),
		"wheel_by_symbol.csv": reporting.RenderWheelCSV(report.WheelBySymbol),
		"expired_options.csv": reporting.RenderExpiredCSV(report.ExpiredOptions),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

type storeSet struct {
	trades    storage.TradeStore
	cashFlows storage.CashFlowStore
	snapshots storage.SnapshotStore
	expired   storage.ExpiredOptionStore
}

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
