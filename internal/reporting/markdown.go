package reporting

import (
	"fmt"
	"strings"
	"time"

	"options-wheel-lab/internal/domain"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	writeSummary(&sb, r.Summary)
	writePerformance(&sb, r.Performance)
	writeAttribution(&sb, r)
	writePositions(&sb, r.Positions)
	writeWheel(&sb, r.Wheel)
	writeWheelBySymbol(&sb, r.WheelBySymbol)
	writeExpiredOptions(&sb, r.ExpiredOptions)

	return sb.String()
}

func writeSummary(sb *strings.Builder, s Summary) {
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", s.TradeCount))
	sb.WriteString(fmt.Sprintf("| Cash Flows | %d |\n", s.CashFlowCount))
	sb.WriteString(fmt.Sprintf("| History Days | %d |\n", s.SnapshotDays))
	sb.WriteString(fmt.Sprintf("| Symbols | %d |\n", s.SymbolCount))
	if !s.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range | %s to %s |\n",
			s.DateRangeStart.Format(domain.DateLayout), s.DateRangeEnd.Format(domain.DateLayout)))
	}
	sb.WriteString(fmt.Sprintf("| Portfolio Value | %.2f |\n", s.FinalPortfolioValue))
	sb.WriteString(fmt.Sprintf("| Cash Balance | %.2f |\n", s.FinalCashBalance))
	sb.WriteString(fmt.Sprintf("| Net Cash Flow | %.2f |\n", s.NetCashFlow))
	sb.WriteString(fmt.Sprintf("| Total P&L | %.2f |\n", s.TotalPnL))
	sb.WriteString("\n")
}

func writePerformance(sb *strings.Builder, rows []MetricRow) {
	sb.WriteString("## Performance\n\n")
	if len(rows) == 0 {
		sb.WriteString("No performance metrics available.\n\n")
		return
	}
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %.4f |\n", row.Name, row.Value))
	}
	sb.WriteString("\n")
}

func writeAttribution(sb *strings.Builder, r *Report) {
	sb.WriteString("## P&L Attribution\n\n")
	if len(r.Attribution) == 0 {
		sb.WriteString("No attribution data available.\n\n")
		return
	}

	sb.WriteString("| Symbol | P&L | % of Total |\n")
	sb.WriteString("|--------|-----|------------|\n")
	for _, row := range r.Attribution {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f |\n", row.Symbol, row.PnL, row.PctOfTotal))
	}
	sb.WriteString("\n")

	if len(r.PnLByKind) > 0 {
		sb.WriteString("| Kind | P&L |\n")
		sb.WriteString("|------|-----|\n")
		for _, row := range r.PnLByKind {
			sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", row.Kind, row.PnL))
		}
		sb.WriteString("\n")
	}
}

func writePositions(sb *strings.Builder, rows []PositionRow) {
	sb.WriteString("## Positions\n\n")
	if len(rows) == 0 {
		sb.WriteString("No positions.\n\n")
		return
	}
	sb.WriteString("| Symbol | Net Quantity | Expired Options |\n")
	sb.WriteString("|--------|--------------|----------------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d |\n", row.Symbol, row.NetQuantity, row.ExpiredOpts))
	}
	sb.WriteString("\n")
}

func writeWheel(sb *strings.Builder, w WheelSection) {
	sb.WriteString("## Wheel Strategy\n\n")

	sb.WriteString("### Efficiency\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| WES | %.2f |\n", w.Efficiency.WES))
	sb.WriteString(fmt.Sprintf("| Premium Income | %.2f |\n", w.Efficiency.PremiumIncome))
	sb.WriteString(fmt.Sprintf("| Capital at Risk | %.2f |\n", w.Efficiency.CapitalAtRisk))
	sb.WriteString(fmt.Sprintf("| Premium Yield %% | %.2f |\n", w.Efficiency.PremiumYieldPct))
	sb.WriteString(fmt.Sprintf("| Assignment Rate %% | %.2f |\n", w.Efficiency.AssignmentRatePct))
	sb.WriteString(fmt.Sprintf("| Avg DTE | %.1f |\n", w.Efficiency.AvgDTE))
	sb.WriteString("\n")

	sb.WriteString("### Opportunity\n\n")
	if w.Opportunity.Available {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| ROI vs Benchmark | %.2f |\n", w.Opportunity.ROI))
		sb.WriteString(fmt.Sprintf("| Strategy Return %% | %.2f |\n", w.Opportunity.StrategyReturnPct))
		sb.WriteString(fmt.Sprintf("| Benchmark Return %% | %.2f |\n", w.Opportunity.BenchmarkReturnPct))
		if w.Opportunity.MainSymbol != "" {
			sb.WriteString(fmt.Sprintf("| Benchmark Symbol | %s |\n", w.Opportunity.MainSymbol))
		}
	} else {
		sb.WriteString("Not available.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("### Continuation\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| WCS | %.2f |\n", w.Continuation.WCS))
	sb.WriteString(fmt.Sprintf("| Rating | %s |\n", w.Continuation.Rating))
	sb.WriteString(fmt.Sprintf("| Performance Trend | %+d |\n", w.Continuation.PerformanceTrend))
	sb.WriteString(fmt.Sprintf("| Trades/Month | %.2f |\n", w.Continuation.TradingFrequency))
	sb.WriteString(fmt.Sprintf("| Symbols | %d |\n", w.Continuation.NumSymbols))
	sb.WriteString("\n")

	if w.Drawdown != nil {
		sb.WriteString("### Drawdown\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Max Drawdown $ | %.2f |\n", w.Drawdown.MaxDrawdown))
		sb.WriteString(fmt.Sprintf("| Max Drawdown %% | %.2f |\n", w.Drawdown.MaxDrawdownPct))
		sb.WriteString(fmt.Sprintf("| Avg Duration (days) | %.1f |\n", w.Drawdown.AvgDuration))
		sb.WriteString(fmt.Sprintf("| Max Duration (days) | %d |\n", w.Drawdown.MaxDuration))
		sb.WriteString(fmt.Sprintf("| Drawdowns | %d |\n", w.Drawdown.NumDrawdowns))
		sb.WriteString(fmt.Sprintf("| Monthly Frequency | %.2f |\n", w.Drawdown.MonthlyFrequency))
		sb.WriteString(fmt.Sprintf("| Current Drawdown $ | %.2f |\n", w.Drawdown.CurrentDrawdown))
		sb.WriteString(fmt.Sprintf("| Recovery Factor | %.2f |\n", w.Drawdown.RecoveryFactor))
		sb.WriteString("\n")
	}

	if w.Recovery != nil {
		sb.WriteString("### Recovery\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Probability %% | %.1f |\n", w.Recovery.ProbabilityPct))
		sb.WriteString(fmt.Sprintf("| Avg Recovery (days) | %.1f |\n", w.Recovery.AvgRecoveryDays))
		sb.WriteString(fmt.Sprintf("| Strength | %.2f |\n", w.Recovery.Strength))
		sb.WriteString(fmt.Sprintf("| Confidence %% | %.1f |\n", w.Recovery.ConfidencePct))
		sb.WriteString(fmt.Sprintf("| Events | %d |\n", w.Recovery.NumEvents))
		sb.WriteString("\n")
	}
}

func writeWheelBySymbol(sb *strings.Builder, rows []SymbolWheelRow) {
	sb.WriteString("## Wheel by Symbol\n\n")
	if len(rows) == 0 {
		sb.WriteString("No per-symbol data available.\n\n")
		return
	}
	sb.WriteString("| Symbol | WES | Premium | Capital at Risk | Assign % | WCS | Rating |\n")
	sb.WriteString("|--------|-----|---------|-----------------|----------|-----|--------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %.2f | %s |\n",
			row.Symbol, row.WES, row.PremiumIncome, row.CapitalAtRisk,
			row.AssignmentRatePct, row.WCS, row.Rating))
	}
	sb.WriteString("\n")
}

func writeExpiredOptions(sb *strings.Builder, rows []ExpiredOptionRow) {
	sb.WriteString("## Expired Options\n\n")
	if len(rows) == 0 {
		sb.WriteString("No expired options.\n\n")
		return
	}
	sb.WriteString("| Expiry | Symbol | Kind | Strike | Premium | P&L | Assigned | Price on Expiry |\n")
	sb.WriteString("|--------|--------|------|--------|---------|-----|----------|----------------|\n")
	for _, row := range rows {
		assigned := "no"
		if row.WasAssigned {
			assigned = "yes"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %.2f | %s | %.2f |\n",
			row.ExpiryDate.Format(domain.DateLayout), row.Symbol, row.Kind,
			row.Strike, row.Premium, row.PnL, assigned, row.PriceOnExpiry))
	}
	sb.WriteString("\n")
}
