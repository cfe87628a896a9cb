package reporting

import (
	"fmt"
	"strings"

	"options-wheel-lab/internal/domain"
)

// RenderPerformanceCSV renders the performance metric table as CSV.
func RenderPerformanceCSV(rows []MetricRow) string {
	var sb strings.Builder
	sb.WriteString("metric,value\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", csvEscape(row.Name), row.Value))
	}
	return sb.String()
}

// RenderWheelCSV renders the per-symbol wheel table as CSV.
func RenderWheelCSV(rows []SymbolWheelRow) string {
	var sb strings.Builder
	sb.WriteString("symbol,wes,premium_income,capital_at_risk,assignment_rate_pct,wcs,rating\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%s\n",
			row.Symbol, row.WES, row.PremiumIncome, row.CapitalAtRisk,
			row.AssignmentRatePct, row.WCS, row.Rating))
	}
	return sb.String()
}

// RenderExpiredCSV renders the expiry event log as CSV.
func RenderExpiredCSV(rows []ExpiredOptionRow) string {
	var sb strings.Builder
	sb.WriteString("expiry_date,symbol,kind,strike,premium,pnl,was_assigned,price_on_expiry\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f,%.6f,%.6f,%t,%.6f\n",
			row.ExpiryDate.Format(domain.DateLayout), row.Symbol, row.Kind,
			row.Strike, row.Premium, row.PnL, row.WasAssigned, row.PriceOnExpiry))
	}
	return sb.String()
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
