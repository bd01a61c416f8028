package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumen-studio/voting-backend/internal/models"
)

// ErrAlreadyVoted signals that a vote for this identity token already exists.
// It is an expected outcome, distinct from transaction failures; callers map
// it to 409 at the HTTP boundary and must not log it as an error.
var ErrAlreadyVoted = errors.New("already voted")

// Repository handles vote ledger and location counter persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a votes repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SeedLocations inserts missing catalog rows. Existing rows keep their
// counts; display name and position follow the catalog.
func (r *Repository) SeedLocations(ctx context.Context, locations []models.Location) error {
	const query = `INSERT INTO locations (id, display_name, position) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, position = EXCLUDED.position`
	for _, loc := range locations {
		if _, err := r.pool.Exec(ctx, query, loc.ID, loc.DisplayName, loc.Position); err != nil {
			return fmt.Errorf("seed location %s: %w", loc.ID, err)
		}
	}
	return nil
}

// SubmitVote records one vote for locationID from voterHash as a single
// transaction: check the ledger, insert the vote record, increment the
// location counter. Two concurrent submissions with the same voterHash cannot
// both commit: the primary key on votes.voter_hash blocks the second insert
// until the first transaction resolves, and the resulting unique violation is
// returned as ErrAlreadyVoted. The counter increment happens in SQL, so
// concurrent votes for the same location from different voters never lose an
// update.
func (r *Repository) SubmitVote(ctx context.Context, voterHash, locationID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing string
	err = tx.QueryRow(ctx, `SELECT location_id FROM votes WHERE voter_hash = $1`, voterHash).Scan(&existing)
	if err == nil {
		return ErrAlreadyVoted
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check existing vote: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO votes (voter_hash, location_id, voted_at) VALUES ($1, $2, $3)`,
		voterHash, locationID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("insert vote: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE locations SET vote_count = vote_count + 1 WHERE id = $1`, locationID)
	if err != nil {
		return fmt.Errorf("increment location count: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("location %s not seeded", locationID)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("commit vote tx: %w", err)
	}
	return nil
}

// GetVote returns the vote record for voterHash, or nil when none exists.
func (r *Repository) GetVote(ctx context.Context, voterHash string) (*models.VoteRecord, error) {
	const query = `SELECT voter_hash, location_id, voted_at FROM votes WHERE voter_hash = $1`
	var rec models.VoteRecord
	err := r.pool.QueryRow(ctx, query, voterHash).Scan(&rec.VoterHash, &rec.LocationID, &rec.VotedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListLocations returns every location counter row in catalog order.
func (r *Repository) ListLocations(ctx context.Context) ([]models.Location, error) {
	const query = `SELECT id, display_name, vote_count, position FROM locations ORDER BY position, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.DisplayName, &loc.VoteCount, &loc.Position); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
