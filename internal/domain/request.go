package domain

// UpgradeRequest is a tier-3 upgrade request as received from a client.
// Wallet and Mint are base58 ledger addresses; Signature is hex.
type UpgradeRequest struct {
	Wallet    string // claimed wallet address (signer)
	Mint      string // claimed NFT mint address
	Signature string // hex-encoded 64-byte ed25519 signature
	Timestamp *int64 // optional claimed time (ms since epoch)
}

// HasTimestamp reports whether the request carries a claimed timestamp.
func (r *UpgradeRequest) HasTimestamp() bool {
	return r.Timestamp != nil
}

// EligibilityResult is the outcome of one pipeline execution.
// Reason is empty when OK is true.
type EligibilityResult struct {
	OK         bool
	Identifier uint64
	Kind       Kind
	Reason     string
}
