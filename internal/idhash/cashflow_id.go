package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"options-wheel-lab/internal/domain"
)

// ComputeCashFlowID computes a deterministic cash_flow_id using SHA256.
// Formula: SHA256(date|amount|note)
// Returns hex-encoded hash (64 characters).
func ComputeCashFlowID(cf *domain.CashFlow) string {
	data := fmt.Sprintf("%s|%g|%s",
		cf.Date.Format(domain.DateLayout),
		cf.Amount,
		cf.Note,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
