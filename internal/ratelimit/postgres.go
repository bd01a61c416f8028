package ratelimit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumen-studio/voting-backend/internal/models"
)

// PostgresStore keeps rate-limit records in the same Postgres instance as the
// vote ledger, so any number of stateless API instances share one budget.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a rate-limit store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get returns the record for token, or nil when none exists.
func (s *PostgresStore) Get(ctx context.Context, token string) (*models.RateLimitRecord, error) {
	const query = `SELECT token, count, window_reset_at FROM rate_limits WHERE token = $1`
	var rec models.RateLimitRecord
	err := s.pool.QueryRow(ctx, query, token).Scan(&rec.Token, &rec.Count, &rec.WindowResetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put creates or replaces the record for rec.Token.
func (s *PostgresStore) Put(ctx context.Context, rec *models.RateLimitRecord) error {
	const query = `INSERT INTO rate_limits (token, count, window_reset_at) VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET count = EXCLUDED.count, window_reset_at = EXCLUDED.window_reset_at`
	_, err := s.pool.Exec(ctx, query, rec.Token, rec.Count, rec.WindowResetAt)
	return err
}
