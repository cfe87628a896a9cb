// Package ingest parses trade and cash-flow journals from CSV into domain
// records. Rows are validated on the way in and stamped with their
// deterministic content-hash IDs, so a parsed journal can go straight into
// storage or the simulation engine.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/idhash"
)

// ParseTrades reads a trade journal CSV. Expected header columns (order
// free, extra columns ignored): date, symbol, kind, quantity, strike,
// expiry, premium, stock_price, commission, multiplier, note. Option rows
// default the multiplier to 100, stock rows to 1.
func ParseTrades(r io.Reader) ([]*domain.Trade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read trade journal header: %w", err)
	}
	cols := indexColumns(header)
	for _, required := range []string{"date", "symbol", "kind", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("trade journal missing %q column", required)
		}
	}

	var trades []*domain.Trade
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trade journal line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		t, err := parseTradeRecord(cols, record)
		if err != nil {
			return nil, fmt.Errorf("trade journal line %d: %w", line, err)
		}
		t.ID = idhash.ComputeTradeID(t)
		trades = append(trades, t)
	}

	return trades, nil
}

// ParseCashFlows reads a cash movement CSV with header columns date, amount
// and optionally note.
func ParseCashFlows(r io.Reader) ([]*domain.CashFlow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read cash flow journal header: %w", err)
	}
	cols := indexColumns(header)
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("cash flow journal missing %q column", required)
		}
	}

	var flows []*domain.CashFlow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read cash flow journal line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		date, err := domain.ParseDate(field(cols, record, "date"))
		if err != nil {
			return nil, fmt.Errorf("cash flow journal line %d: %w", line, err)
		}
		amount, err := parseFloat(field(cols, record, "amount"))
		if err != nil {
			return nil, fmt.Errorf("cash flow journal line %d: amount: %w", line, err)
		}

		cf := &domain.CashFlow{
			Date:   date,
			Amount: amount,
			Note:   field(cols, record, "note"),
		}
		if err := cf.Validate(); err != nil {
			return nil, fmt.Errorf("cash flow journal line %d: %w", line, err)
		}
		cf.ID = idhash.ComputeCashFlowID(cf)
		flows = append(flows, cf)
	}

	return flows, nil
}

func parseTradeRecord(cols map[string]int, record []string) (*domain.Trade, error) {
	date, err := domain.ParseDate(field(cols, record, "date"))
	if err != nil {
		return nil, err
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(field(cols, record, "quantity")))
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}

	t := &domain.Trade{
		Date:     date,
		Symbol:   strings.ToUpper(strings.TrimSpace(field(cols, record, "symbol"))),
		Kind:     domain.Kind(strings.ToLower(strings.TrimSpace(field(cols, record, "kind")))),
		Quantity: quantity,
		Note:     field(cols, record, "note"),
	}

	if t.Strike, err = parseOptionalFloat(field(cols, record, "strike")); err != nil {
		return nil, fmt.Errorf("strike: %w", err)
	}
	if t.Premium, err = parseOptionalFloat(field(cols, record, "premium")); err != nil {
		return nil, fmt.Errorf("premium: %w", err)
	}
	if t.StockPrice, err = parseOptionalFloat(field(cols, record, "stock_price")); err != nil {
		return nil, fmt.Errorf("stock_price: %w", err)
	}
	if t.Commission, err = parseOptionalFloat(field(cols, record, "commission")); err != nil {
		return nil, fmt.Errorf("commission: %w", err)
	}

	if raw := strings.TrimSpace(field(cols, record, "expiry")); raw != "" {
		if t.Expiry, err = domain.ParseDate(raw); err != nil {
			return nil, fmt.Errorf("expiry: %w", err)
		}
	}

	if raw := strings.TrimSpace(field(cols, record, "multiplier")); raw != "" {
		if t.Multiplier, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("multiplier: %w", err)
		}
	} else if t.IsOption() {
		t.Multiplier = domain.DefaultOptionMultiplier
	} else {
		t.Multiplier = domain.DefaultStockMultiplier
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// indexColumns maps lower-cased header names to their positions.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(cols map[string]int, record []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// parseOptionalFloat treats an empty field as zero.
func parseOptionalFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
