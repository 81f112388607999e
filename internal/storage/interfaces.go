package storage

import (
	"context"

	"nestquest/internal/domain"
)

// UpgradeRecordStore provides access to upgrade_records storage.
// One row per identifier; a later publish replaces the earlier row.
type UpgradeRecordStore interface {
	// Upsert inserts or replaces the record for r.Identifier.
	Upsert(ctx context.Context, r *domain.UpgradeRecord) error

	// GetByIdentifier retrieves the record for an NFT id. Returns ErrNotFound if not exists.
	GetByIdentifier(ctx context.Context, identifier uint64) (*domain.UpgradeRecord, error)

	// GetByWallet retrieves all records published for a wallet, ordered by published_at ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.UpgradeRecord, error)
}

// EvaluationStore provides access to the eligibility_evaluations log.
type EvaluationStore interface {
	// Insert appends an evaluation. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, e *domain.Evaluation) error

	// GetByWallet retrieves all evaluations for a wallet, ordered by evaluated_at ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Evaluation, error)

	// CountByOutcome counts evaluations within [start, end] (inclusive, ms) per outcome.
	CountByOutcome(ctx context.Context, start, end int64) (map[string]int64, error)
}
