// Package main imports CSV journal files into the trade journal database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"options-wheel-lab/internal/config"
	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/ingest"
	"options-wheel-lab/internal/storage"
	"options-wheel-lab/internal/storage/memory"
	"options-wheel-lab/internal/storage/migrations"
	pgstore "options-wheel-lab/internal/storage/postgres"
)

func main() {
	tradesPath := flag.String("trades", "", "Path to the trades CSV file")
	cashFlowsPath := flag.String("cashflows", "", "Path to the cash flows CSV file")
	configPath := flag.String("config", "", "Path to a config file (default: search ./config.yaml)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Parse and validate without touching the database")
	flag.Parse()

	if *tradesPath == "" && *cashFlowsPath == "" {
		fmt.Fprintln(os.Stderr, "at least one of --trades or --cashflows is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling import...\n", sig)
		cancel()
	}()

	if err := run(ctx, *tradesPath, *cashFlowsPath, *configPath, *postgresDSN, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, tradesPath, cashFlowsPath, configPath, postgresDSN string, dryRun bool) error {
	trades, cashFlows, err := parseJournal(tradesPath, cashFlowsPath)
	if err != nil {
		return err
	}
	fmt.Printf("Parsed %d trades, %d cash flows\n", len(trades), len(cashFlows))

	var tradeStore storage.TradeStore
	var cashFlowStore storage.CashFlowStore
	if dryRun {
		fmt.Println("Dry run: using in-memory storage")
		tradeStore = memory.NewTradeStore()
		cashFlowStore = memory.NewCashFlowStore()
	} else {
		dsn := postgresDSN
		if dsn == "" {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			dsn = cfg.Postgres.DSN
		}

		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		tradeStore = pgstore.NewTradeStore(pool)
		cashFlowStore = pgstore.NewCashFlowStore(pool)
	}

	imported, skipped := 0, 0
	for _, t := range trades {
		switch err := tradeStore.Insert(ctx, t); {
		case err == nil:
			imported++
		case errors.Is(err, storage.ErrDuplicateKey):
			skipped++
		default:
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}
	for _, cf := range cashFlows {
		switch err := cashFlowStore.Insert(ctx, cf); {
		case err == nil:
			imported++
		case errors.Is(err, storage.ErrDuplicateKey):
			skipped++
		default:
			return fmt.Errorf("insert cash flow %s: %w", cf.ID, err)
		}
	}

	fmt.Printf("Imported %d entries, skipped %d duplicates\n", imported, skipped)
	return nil
}

func parseJournal(tradesPath, cashFlowsPath string) ([]*domain.Trade, []*domain.CashFlow, error) {
	var trades []*domain.Trade
	var cashFlows []*domain.CashFlow

	if tradesPath != "" {
		f, err := os.Open(tradesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open trades file: %w", err)
		}
		trades, err = ingest.ParseTrades(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("parse trades: %w", err)
		}
	}
	if cashFlowsPath != "" {
		f, err := os.Open(cashFlowsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open cash flows file: %w", err)
		}
		cashFlows, err = ingest.ParseCashFlows(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("parse cash flows: %w", err)
		}
	}
	return trades, cashFlows, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
