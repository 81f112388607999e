package solana

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// LimitedClient bounds the number of in-flight RPC calls across all requests.
// A limit of 1 serializes every ledger call through a single handle.
type LimitedClient struct {
	next RPCClient
	sem  *semaphore.Weighted
}

// NewLimitedClient wraps next so that at most limit calls run concurrently.
func NewLimitedClient(next RPCClient, limit int64) *LimitedClient {
	if limit < 1 {
		limit = 1
	}
	return &LimitedClient{
		next: next,
		sem:  semaphore.NewWeighted(limit),
	}
}

// Compile-time interface check.
var _ RPCClient = (*LimitedClient)(nil)

func (c *LimitedClient) acquire(ctx context.Context) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire rpc slot: %w", err)
	}
	return nil
}

// GetAccountInfo implements RPCClient.
func (c *LimitedClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)
	return c.next.GetAccountInfo(ctx, pubkey)
}

// GetTokenAccountBalance implements RPCClient.
func (c *LimitedClient) GetTokenAccountBalance(ctx context.Context, pubkey string) (*TokenAmount, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)
	return c.next.GetTokenAccountBalance(ctx, pubkey)
}

// GetSignaturesForAddress implements RPCClient.
func (c *LimitedClient) GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)
	return c.next.GetSignaturesForAddress(ctx, address, opts)
}
