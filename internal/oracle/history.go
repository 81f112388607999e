package oracle

import (
	"context"
	"sort"

	"nestquest/internal/domain"
	"nestquest/internal/observability"
	"nestquest/internal/solana"
)

// DefaultMaxHistoryPages bounds how far back a history scan pages.
const DefaultMaxHistoryPages = 100

// HistoryScanner finds the earliest transaction of an address by paging backward.
type HistoryScanner struct {
	rpc      solana.RPCClient
	pageSize int
	maxPages int
}

// NewHistoryScanner creates a scanner. Non-positive sizes use the defaults.
func NewHistoryScanner(rpc solana.RPCClient, pageSize, maxPages int) *HistoryScanner {
	if pageSize <= 0 || pageSize > solana.MaxSignaturesLimit {
		pageSize = solana.MaxSignaturesLimit
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxHistoryPages
	}
	return &HistoryScanner{rpc: rpc, pageSize: pageSize, maxPages: maxPages}
}

// EarliestBlockTime returns the block time (unix seconds) of the oldest
// transaction touching address and the number of pages fetched.
//
// Pages arrive newest first. A page shorter than the page size is the last
// one. A full page moves the cursor to its last signature in node order.
// Any empty page is HistoryExhausted, whether it is the first page or follows
// a full one, as is a history deeper than maxPages.
func (s *HistoryScanner) EarliestBlockTime(ctx context.Context, address string) (int64, int, error) {
	var (
		before   string
		oldest   *solana.SignatureInfo
		pages    int
		complete bool
	)

	for pages < s.maxPages {
		opts := &solana.SignaturesOpts{Limit: s.pageSize}
		if before != "" {
			opts.Before = before
		}

		sigs, err := s.rpc.GetSignaturesForAddress(ctx, address, opts)
		if err != nil {
			observability.RecordHistoryPages(pages)
			return 0, pages, domain.Wrap(domain.KindOracleUnavailable, err, "get signatures")
		}
		pages++

		if len(sigs) == 0 {
			observability.RecordHistoryPages(pages)
			if pages > 1 {
				return 0, pages, domain.Errorf(domain.KindHistoryExhausted, "empty page %d in history of %s", pages, address)
			}
			return 0, pages, domain.Errorf(domain.KindHistoryExhausted, "no transactions for %s", address)
		}

		if candidate := oldestInPage(sigs); candidate != nil {
			if oldest == nil || *candidate.BlockTime < *oldest.BlockTime {
				oldest = candidate
			}
		}

		if len(sigs) < s.pageSize {
			complete = true
			break
		}

		// The node resolves before against its own slot order, so the cursor is
		// the last entry served even when block times disagree with it.
		before = sigs[len(sigs)-1].Signature
	}

	observability.RecordHistoryPages(pages)

	if !complete {
		return 0, pages, domain.Errorf(domain.KindHistoryExhausted, "history of %s exceeds %d pages", address, s.maxPages)
	}
	if oldest == nil {
		return 0, pages, domain.Errorf(domain.KindDecodeError, "no block times in history of %s", address)
	}
	return *oldest.BlockTime, pages, nil
}

// oldestInPage sorts a copy of the page by block time ascending and returns the
// first entry that carries a block time.
func oldestInPage(sigs []solana.SignatureInfo) *solana.SignatureInfo {
	timed := make([]solana.SignatureInfo, 0, len(sigs))
	for _, sig := range sigs {
		if sig.BlockTime != nil {
			timed = append(timed, sig)
		}
	}
	if len(timed) == 0 {
		return nil
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return *timed[i].BlockTime < *timed[j].BlockTime
	})
	return &timed[0]
}
