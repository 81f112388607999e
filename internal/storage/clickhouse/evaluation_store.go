package clickhouse

import (
	"context"
	"fmt"
	"time"

	"nestquest/internal/domain"
	"nestquest/internal/observability"
	"nestquest/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore using ClickHouse.
type EvaluationStore struct {
	conn *Conn
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(conn *Conn) *EvaluationStore {
	return &EvaluationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Insert appends an evaluation. Returns ErrDuplicateKey if the id exists.
func (s *EvaluationStore) Insert(ctx context.Context, e *domain.Evaluation) (err error) {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_evaluation", time.Since(start).Seconds(), err)
	}()

	// MergeTree does not enforce uniqueness
	exists, err := s.exists(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	err = s.conn.Exec(ctx, `
		INSERT INTO eligibility_evaluations (
			id, request_id, wallet, mint, outcome, identifier, duration_ms, evaluated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.RequestID, e.Wallet, e.Mint, e.Outcome, e.Identifier, e.DurationMs, e.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetByWallet retrieves all evaluations for a wallet, ordered by evaluated_at ASC.
func (s *EvaluationStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Evaluation, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, request_id, wallet, mint, outcome, identifier, duration_ms, evaluated_at
		FROM eligibility_evaluations
		WHERE wallet = ?
		ORDER BY evaluated_at ASC, id ASC
	`, wallet)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var result []*domain.Evaluation
	for rows.Next() {
		var e domain.Evaluation
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Wallet, &e.Mint, &e.Outcome, &e.Identifier, &e.DurationMs, &e.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		result = append(result, &e)
	}

	return result, rows.Err()
}

// CountByOutcome counts evaluations within [start, end] per outcome.
func (s *EvaluationStore) CountByOutcome(ctx context.Context, start, end int64) (map[string]int64, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT outcome, count() AS n
		FROM eligibility_evaluations
		WHERE evaluated_at >= ? AND evaluated_at <= ?
		GROUP BY outcome
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			outcome string
			n       uint64
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = int64(n)
	}

	return counts, rows.Err()
}

func (s *EvaluationStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM eligibility_evaluations WHERE id = ?`, id)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
