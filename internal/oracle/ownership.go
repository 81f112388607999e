// Package oracle answers eligibility questions from ledger state.
package oracle

import (
	"context"

	"github.com/shopspring/decimal"

	"nestquest/internal/domain"
	"nestquest/internal/solana"
)

var one = decimal.NewFromInt(1)

// OwnershipOracle checks that a wallet holds exactly one unit of a mint.
type OwnershipOracle struct {
	rpc solana.RPCClient
}

// NewOwnershipOracle creates an ownership oracle.
func NewOwnershipOracle(rpc solana.RPCClient) *OwnershipOracle {
	return &OwnershipOracle{rpc: rpc}
}

// CheckOwnership returns nil iff the associated token account of (wallet, mint)
// holds a UI amount of exactly 1.
func (o *OwnershipOracle) CheckOwnership(ctx context.Context, wallet, mint solana.PublicKey) error {
	ata, err := solana.AssociatedTokenAddress(wallet, mint)
	if err != nil {
		return domain.Wrap(domain.KindMalformedInput, err, "derive token account")
	}

	bal, err := o.rpc.GetTokenAccountBalance(ctx, ata.String())
	if err != nil {
		if solana.IsAccountNotFound(err) {
			return domain.Errorf(domain.KindOwnershipDenied, "no token account %s", ata)
		}
		return domain.Wrap(domain.KindOracleUnavailable, err, "get token balance")
	}

	amount, err := uiAmount(bal)
	if err != nil {
		return domain.Wrap(domain.KindOracleUnavailable, err, "parse token balance")
	}

	if !amount.Equal(one) {
		return domain.Errorf(domain.KindOwnershipDenied, "balance %s", amount)
	}
	return nil
}

// uiAmount normalizes a raw token amount by its decimals.
func uiAmount(bal *solana.TokenAmount) (decimal.Decimal, error) {
	if bal.Amount == "" && bal.UIAmountString != "" {
		return decimal.NewFromString(bal.UIAmountString)
	}
	raw, err := decimal.NewFromString(bal.Amount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return raw.Shift(-int32(bal.Decimals)), nil
}
