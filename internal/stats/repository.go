package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumen-studio/voting-backend/internal/models"
)

// Repository handles daily vote statistics persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordVote adds one accepted vote to the day bucket for locationID.
func (r *Repository) RecordVote(ctx context.Context, locationID string, votedAt time.Time) error {
	const query = `INSERT INTO daily_location_stats (day, location_id, votes) VALUES ($1, $2, 1)
		ON CONFLICT (day, location_id) DO UPDATE SET votes = daily_location_stats.votes + 1`
	if _, err := r.pool.Exec(ctx, query, votedAt.UTC().Truncate(24*time.Hour), locationID); err != nil {
		return fmt.Errorf("record daily vote: %w", err)
	}
	return nil
}

// ListRecent returns the per-day per-location counts for the last days days,
// newest first.
func (r *Repository) ListRecent(ctx context.Context, days int) ([]models.DailyLocationStat, error) {
	const query = `SELECT day, location_id, votes FROM daily_location_stats
		WHERE day >= CURRENT_DATE - $1::int
		ORDER BY day DESC, location_id`
	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("list daily stats: %w", err)
	}
	defer rows.Close()

	var out []models.DailyLocationStat
	for rows.Next() {
		var s models.DailyLocationStat
		if err := rows.Scan(&s.Day, &s.LocationID, &s.Votes); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
