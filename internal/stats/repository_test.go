package stats

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumen-studio/voting-backend/pkg/database"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("VOTING_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("VOTING_TEST_DATABASE_URL not set; skipping database tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		DROP TABLE IF EXISTS daily_location_stats;
		DROP TABLE IF EXISTS rate_limits;
		DROP TABLE IF EXISTS votes;
		DROP TABLE IF EXISTS locations;
	`)
	if err != nil {
		t.Fatalf("clean test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO locations (id, display_name) VALUES ('maldives', 'Maldives'), ('kyoto', 'Kyoto, Japan')`); err != nil {
		t.Fatalf("seed locations: %v", err)
	}
	return pool
}

func TestRecordVoteAccumulatesPerDay(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := repo.RecordVote(ctx, "maldives", now); err != nil {
			t.Fatalf("record vote %d: %v", i+1, err)
		}
	}
	if err := repo.RecordVote(ctx, "kyoto", now); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListRecent(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]int64, len(list))
	for _, s := range list {
		got[s.LocationID] = s.Votes
	}
	if got["maldives"] != 3 || got["kyoto"] != 1 {
		t.Errorf("daily counts = %v, want maldives=3 kyoto=1", got)
	}
}
