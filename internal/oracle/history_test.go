package oracle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestquest/internal/domain"
	"nestquest/internal/solana"
	"nestquest/internal/solana/stub"
)

const historyAddr = "stakeaddr"

// syntheticHistory returns n signatures with block times base, base+60, ...
func syntheticHistory(n int, base int64) []solana.SignatureInfo {
	sigs := make([]solana.SignatureInfo, n)
	for i := 0; i < n; i++ {
		bt := base + int64(i)*60
		sigs[i] = solana.SignatureInfo{
			Signature: fmt.Sprintf("sig%d", i),
			Slot:      int64(1000 + i),
			BlockTime: &bt,
		}
	}
	return sigs
}

func TestEarliestBlockTime_AnySplit(t *testing.T) {
	const base = int64(1_700_000_000)

	for _, n := range []int{1, 2, 7, 10, 11, 30, 99, 100} {
		for _, p := range []int{1, 3, 10, 50} {
			t.Run(fmt.Sprintf("N=%d/P=%d", n, p), func(t *testing.T) {
				rpc := stub.NewRPCClient()
				rpc.AddSignatures(historyAddr, syntheticHistory(n, base))

				scanner := NewHistoryScanner(rpc, p, 1000)
				got, pages, err := scanner.EarliestBlockTime(context.Background(), historyAddr)

				wantPages := n/p + 1
				assert.Equal(t, wantPages, pages)
				assert.Equal(t, wantPages, rpc.CallCount("getSignaturesForAddress"))

				// A history that fills its last page exactly is followed by an empty page.
				if n%p == 0 {
					assert.True(t, errors.Is(err, domain.ErrHistoryExhausted), "got %v", err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, base, got)
			})
		}
	}
}

func TestEarliestBlockTime_EmptyPageAfterFullPage(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddSignatures(historyAddr, syntheticHistory(10, 100))

	scanner := NewHistoryScanner(rpc, 10, 0)
	got, pages, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	assert.True(t, errors.Is(err, domain.ErrHistoryExhausted), "got %v", err)
	assert.Zero(t, got)
	assert.Equal(t, 2, pages)
}

func TestEarliestBlockTime_CursorFollowsNodeOrder(t *testing.T) {
	bt := func(v int64) *int64 { return &v }

	// The newest slot carries the smallest block time.
	rpc := stub.NewRPCClient()
	rpc.AddSignatures(historyAddr, []solana.SignatureInfo{
		{Signature: "s1", Slot: 1, BlockTime: bt(100)},
		{Signature: "s2", Slot: 2, BlockTime: bt(200)},
		{Signature: "s3", Slot: 3, BlockTime: bt(300)},
		{Signature: "s4", Slot: 4, BlockTime: bt(400)},
		{Signature: "s5", Slot: 5, BlockTime: bt(50)},
	})

	scanner := NewHistoryScanner(rpc, 3, 0)
	got, pages, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got)
	assert.Equal(t, 2, pages, "second page starts after s3, nothing is served twice")
}

func TestEarliestBlockTime_SinglePage(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddSignatures(historyAddr, syntheticHistory(5, 100))

	scanner := NewHistoryScanner(rpc, 0, 0)
	got, pages, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)
	assert.Equal(t, 1, pages)
}

func TestEarliestBlockTime_NoHistory(t *testing.T) {
	rpc := stub.NewRPCClient()

	scanner := NewHistoryScanner(rpc, 10, 0)
	_, _, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	assert.True(t, errors.Is(err, domain.ErrHistoryExhausted), "got %v", err)
}

func TestEarliestBlockTime_TooDeep(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddSignatures(historyAddr, syntheticHistory(50, 100))

	scanner := NewHistoryScanner(rpc, 10, 3)
	_, pages, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	assert.True(t, errors.Is(err, domain.ErrHistoryExhausted), "got %v", err)
	assert.Equal(t, 3, pages)
}

func TestEarliestBlockTime_UnorderedBlockTimes(t *testing.T) {
	bt := func(v int64) *int64 { return &v }

	rpc := stub.NewRPCClient()
	rpc.AddSignatures(historyAddr, []solana.SignatureInfo{
		{Signature: "a", Slot: 1, BlockTime: bt(500)},
		{Signature: "b", Slot: 2, BlockTime: bt(300)},
		{Signature: "c", Slot: 3, BlockTime: bt(900)},
		{Signature: "d", Slot: 4, BlockTime: nil},
	})

	scanner := NewHistoryScanner(rpc, 10, 0)
	got, _, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(300), got)
}

func TestEarliestBlockTime_MissingBlockTimes(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddSignatures(historyAddr, []solana.SignatureInfo{
		{Signature: "a", Slot: 1},
		{Signature: "b", Slot: 2},
	})

	scanner := NewHistoryScanner(rpc, 10, 0)
	_, _, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	assert.True(t, errors.Is(err, domain.ErrDecodeError), "got %v", err)
}

func TestEarliestBlockTime_RPCError(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Err = errors.New("connection refused")

	scanner := NewHistoryScanner(rpc, 10, 0)
	_, _, err := scanner.EarliestBlockTime(context.Background(), historyAddr)
	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable), "got %v", err)
}
