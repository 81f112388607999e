package postgres

import (
	"context"
	"fmt"
	"time"

	"nestquest/internal/domain"
	"nestquest/internal/storage"
)

// UpgradeRecordStore is a PostgreSQL implementation of storage.UpgradeRecordStore.
type UpgradeRecordStore struct {
	pool *Pool
}

// NewUpgradeRecordStore creates a new PostgreSQL upgrade record store.
func NewUpgradeRecordStore(pool *Pool) *UpgradeRecordStore {
	return &UpgradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UpgradeRecordStore = (*UpgradeRecordStore)(nil)

// Upsert inserts or replaces the record for r.Identifier. created_at keeps the first insert time.
func (s *UpgradeRecordStore) Upsert(ctx context.Context, r *domain.UpgradeRecord) (err error) {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	defer func(start time.Time) { observe("upsert_upgrade_record", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, `
		INSERT INTO upgrade_records (identifier, id, mint, wallet, object_key, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identifier) DO UPDATE
		SET id = EXCLUDED.id,
		    mint = EXCLUDED.mint,
		    wallet = EXCLUDED.wallet,
		    object_key = EXCLUDED.object_key,
		    published_at = EXCLUDED.published_at
	`, int64(r.Identifier), r.ID, r.Mint, r.Wallet, r.ObjectKey, r.PublishedAt)
	if err != nil {
		return fmt.Errorf("upsert upgrade record: %w", err)
	}
	return nil
}

// GetByIdentifier retrieves a record by NFT id. Returns ErrNotFound if not exists.
func (s *UpgradeRecordStore) GetByIdentifier(ctx context.Context, identifier uint64) (_ *domain.UpgradeRecord, err error) {
	defer func(start time.Time) { observe("get_upgrade_record", start, err) }(time.Now())

	row := s.pool.QueryRow(ctx, `
		SELECT identifier, id, mint, wallet, object_key, published_at, created_at
		FROM upgrade_records
		WHERE identifier = $1
	`, int64(identifier))

	r, err := scanUpgradeRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get upgrade record: %w", err)
	}
	return r, nil
}

// GetByWallet retrieves all records for a wallet, ordered by published_at ASC.
func (s *UpgradeRecordStore) GetByWallet(ctx context.Context, wallet string) (_ []*domain.UpgradeRecord, err error) {
	defer func(start time.Time) { observe("get_upgrade_records_by_wallet", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT identifier, id, mint, wallet, object_key, published_at, created_at
		FROM upgrade_records
		WHERE wallet = $1
		ORDER BY published_at ASC, identifier ASC
	`, wallet)
	if err != nil {
		return nil, fmt.Errorf("query upgrade records: %w", err)
	}
	defer rows.Close()

	var result []*domain.UpgradeRecord
	for rows.Next() {
		r, err := scanUpgradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upgrade record: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpgradeRecord(row rowScanner) (*domain.UpgradeRecord, error) {
	var (
		r          domain.UpgradeRecord
		identifier int64
	)
	if err := row.Scan(&identifier, &r.ID, &r.Mint, &r.Wallet, &r.ObjectKey, &r.PublishedAt, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Identifier = uint64(identifier)
	return &r, nil
}
