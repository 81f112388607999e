package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeUpgradeID computes a deterministic upgrade record id using SHA256.
// Formula: SHA256(identifier|mint)
// Returns hex-encoded hash (64 characters).
func ComputeUpgradeID(identifier uint64, mint string) string {
	data := fmt.Sprintf("%d|%s", identifier, mint)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeEvaluationID computes a deterministic evaluation id using SHA256.
// Formula: SHA256(request_id|wallet|mint|evaluated_at)
func ComputeEvaluationID(requestID, wallet, mint string, evaluatedAt int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		requestID,
		wallet,
		mint,
		evaluatedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
