package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"options-wheel-lab/internal/domain"
)

// ComputeTradeID computes a deterministic trade_id using SHA256 over the
// identifying fields of a trade.
// Formula: SHA256(date|symbol|kind|quantity|strike|expiry|premium|stock_price)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(t *domain.Trade) string {
	expiry := ""
	if !t.Expiry.IsZero() {
		expiry = t.Expiry.Format(domain.DateLayout)
	}

	data := fmt.Sprintf("%s|%s|%s|%d|%g|%s|%g|%g",
		t.Date.Format(domain.DateLayout),
		t.Symbol,
		string(t.Kind),
		t.Quantity,
		t.Strike,
		expiry,
		t.Premium,
		t.StockPrice,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
