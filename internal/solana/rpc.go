package solana

import "context"

// RPCClient defines the Solana RPC HTTP calls the eligibility checks need.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key. Returns nil, nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenAccountBalance retrieves the balance of an SPL token account.
	GetTokenAccountBalance(ctx context.Context, pubkey string) (*TokenAmount, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination,
	// most recent first.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}
