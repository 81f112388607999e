package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"nestquest/internal/domain"
	"nestquest/internal/storage"
)

// UpgradeRecordStore is an in-memory implementation of storage.UpgradeRecordStore.
type UpgradeRecordStore struct {
	mu           sync.RWMutex
	byIdentifier map[uint64]*domain.UpgradeRecord
}

// NewUpgradeRecordStore creates a new in-memory upgrade record store.
func NewUpgradeRecordStore() *UpgradeRecordStore {
	return &UpgradeRecordStore{
		byIdentifier: make(map[uint64]*domain.UpgradeRecord),
	}
}

// Compile-time interface check.
var _ storage.UpgradeRecordStore = (*UpgradeRecordStore)(nil)

// Upsert inserts or replaces the record for r.Identifier. CreatedAt survives replacement.
func (s *UpgradeRecordStore) Upsert(_ context.Context, r *domain.UpgradeRecord) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *r
	if prev, exists := s.byIdentifier[r.Identifier]; exists {
		recCopy.CreatedAt = prev.CreatedAt
	} else {
		recCopy.CreatedAt = time.Now().UnixMilli()
	}
	s.byIdentifier[r.Identifier] = &recCopy
	return nil
}

// GetByIdentifier retrieves a record by NFT id. Returns ErrNotFound if not exists.
func (s *UpgradeRecordStore) GetByIdentifier(_ context.Context, identifier uint64) (*domain.UpgradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.byIdentifier[identifier]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recCopy := *r
	return &recCopy, nil
}

// GetByWallet retrieves all records for a wallet, ordered by published_at ASC.
func (s *UpgradeRecordStore) GetByWallet(_ context.Context, wallet string) ([]*domain.UpgradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.UpgradeRecord
	for _, r := range s.byIdentifier {
		if r.Wallet == wallet {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PublishedAt != result[j].PublishedAt {
			return result[i].PublishedAt < result[j].PublishedAt
		}
		return result[i].Identifier < result[j].Identifier
	})

	return result, nil
}
