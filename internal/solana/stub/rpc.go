package stub

import (
	"context"
	"encoding/base64"
	"sort"
	"sync"

	"nestquest/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
// Signatures are stored per address and served most recent first.
type RPCClient struct {
	mu         sync.Mutex
	Accounts   map[string]*solana.AccountInfo
	Balances   map[string]*solana.TokenAmount
	Signatures map[string][]solana.SignatureInfo

	// Err, when set, is returned from every call.
	Err error

	// Calls counts calls per method name.
	Calls map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts:   make(map[string]*solana.AccountInfo),
		Balances:   make(map[string]*solana.TokenAmount),
		Signatures: make(map[string][]solana.SignatureInfo),
		Calls:      make(map[string]int),
	}
}

var _ solana.RPCClient = (*RPCClient)(nil)

func (c *RPCClient) record(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[method]++
	return c.Err
}

// CallCount returns how many times method was invoked.
func (c *RPCClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

// GetAccountInfo returns the stored account or nil when absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if err := c.record("getAccountInfo"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	infoCopy := *info
	return &infoCopy, nil
}

// GetTokenAccountBalance returns the stored balance or solana.ErrAccountNotFound.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, pubkey string) (*solana.TokenAmount, error) {
	if err := c.record("getTokenAccountBalance"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bal, ok := c.Balances[pubkey]
	if !ok {
		return nil, solana.ErrAccountNotFound
	}
	balCopy := *bal
	return &balCopy, nil
}

// GetSignaturesForAddress pages through stored signatures the way a node does:
// newest first, starting strictly after opts.Before, at most opts.Limit entries.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	if err := c.record("getSignaturesForAddress"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	sigs := c.Signatures[address]

	start := 0
	if opts != nil && opts.Before != "" {
		start = len(sigs)
		for i, s := range sigs {
			if s.Signature == opts.Before {
				start = i + 1
				break
			}
		}
	}

	limit := solana.MaxSignaturesLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	end := start + limit
	if end > len(sigs) {
		end = len(sigs)
	}

	page := make([]solana.SignatureInfo, end-start)
	copy(page, sigs[start:end])
	return page, nil
}

// AddAccount stores raw account bytes.
func (c *RPCClient) AddAccount(address string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[address] = &solana.AccountInfo{
		Lamports: 1,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// AddBalance stores a token account balance.
func (c *RPCClient) AddBalance(address string, amount *solana.TokenAmount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[address] = amount
}

// AddSignatures stores signatures for an address, sorted newest first.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	sorted := make([]solana.SignatureInfo, len(sigs))
	copy(sorted, sigs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Slot > sorted[j].Slot
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Signatures[address] = sorted
}
