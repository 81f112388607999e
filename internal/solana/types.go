package solana

import (
	"encoding/base64"
	"fmt"
)

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts pages getSignaturesForAddress backwards in time.
type SignaturesOpts struct {
	Before string // exclusive cursor; empty starts at the newest signature
	Limit  int    // page size, 0 lets the node choose
}

// MaxSignaturesLimit is the largest page getSignaturesForAddress serves.
const MaxSignaturesLimit = 1000

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// DecodeData returns the raw account bytes.
func (a *AccountInfo) DecodeData() ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return decoded, nil
}

// TokenAmount is the value of getTokenAccountBalance.
type TokenAmount struct {
	Amount         string   `json:"amount"` // raw base units
	Decimals       int      `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}
