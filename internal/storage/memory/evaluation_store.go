package memory

import (
	"context"
	"sort"
	"sync"

	"nestquest/internal/domain"
	"nestquest/internal/storage"
)

// EvaluationStore is an in-memory implementation of storage.EvaluationStore.
type EvaluationStore struct {
	mu          sync.RWMutex
	evaluations []*domain.Evaluation
	ids         map[string]struct{}
}

// NewEvaluationStore creates a new in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		ids: make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Insert appends an evaluation. Returns ErrDuplicateKey if the id exists.
func (s *EvaluationStore) Insert(_ context.Context, e *domain.Evaluation) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.ID]; exists {
		return storage.ErrDuplicateKey
	}

	evalCopy := *e
	s.evaluations = append(s.evaluations, &evalCopy)
	s.ids[e.ID] = struct{}{}
	return nil
}

// GetByWallet retrieves all evaluations for a wallet, ordered by evaluated_at ASC.
func (s *EvaluationStore) GetByWallet(_ context.Context, wallet string) ([]*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Evaluation
	for _, e := range s.evaluations {
		if e.Wallet == wallet {
			evalCopy := *e
			result = append(result, &evalCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EvaluatedAt < result[j].EvaluatedAt
	})

	return result, nil
}

// CountByOutcome counts evaluations within [start, end] per outcome.
func (s *EvaluationStore) CountByOutcome(_ context.Context, start, end int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range s.evaluations {
		if e.EvaluatedAt >= start && e.EvaluatedAt <= end {
			counts[e.Outcome]++
		}
	}
	return counts, nil
}
