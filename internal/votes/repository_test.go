package votes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumen-studio/voting-backend/pkg/database"
)

// setupTestDB connects to the database named by VOTING_TEST_DATABASE_URL,
// resetting the voting tables. Tests are skipped when the variable is unset.
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
	return pool
}

func seededRepo(t *testing.T, pool *pgxpool.Pool) *Repository {
	t.Helper()
	repo := NewRepository(pool)
	if err := repo.SeedLocations(context.Background(), Catalog); err != nil {
		t.Fatalf("seed locations: %v", err)
	}
	return repo
}

func TestSubmitVoteRecordsAndIncrements(t *testing.T) {
	pool := setupTestDB(t)
	repo := seededRepo(t, pool)
	ctx := context.Background()

	if err := repo.SubmitVote(ctx, "voter-a", "maldives"); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	rec, err := repo.GetVote(ctx, "voter-a")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.LocationID != "maldives" {
		t.Fatalf("vote record = %+v, want maldives", rec)
	}

	locations, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, loc := range locations {
		want := int64(0)
		if loc.ID == "maldives" {
			want = 1
		}
		if loc.VoteCount != want {
			t.Errorf("location %s count = %d, want %d", loc.ID, loc.VoteCount, want)
		}
	}
}

func TestSubmitVoteDuplicateLeavesCountersUnchanged(t *testing.T) {
	pool := setupTestDB(t)
	repo := seededRepo(t, pool)
	ctx := context.Background()

	if err := repo.SubmitVote(ctx, "voter-a", "maldives"); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	err := repo.SubmitVote(ctx, "voter-a", "kyoto")
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("duplicate vote returned %v, want ErrAlreadyVoted", err)
	}

	var total int64
	if err := pool.QueryRow(ctx, `SELECT COALESCE(SUM(vote_count), 0) FROM locations`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("counter total = %d after rejected duplicate, want 1", total)
	}
	rec, err := repo.GetVote(ctx, "voter-a")
	if err != nil {
		t.Fatal(err)
	}
	if rec.LocationID != "maldives" {
		t.Errorf("ledger record mutated to %s, must stay maldives", rec.LocationID)
	}
}

// TestConcurrentDuplicateVotes fires 20 simultaneous submissions with the
// same identity token: exactly one must be accepted.
func TestConcurrentDuplicateVotes(t *testing.T) {
	pool := setupTestDB(t)
	repo := seededRepo(t, pool)

	const attempts = 20
	var accepted, alreadyVoted, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			option := Catalog[n%len(Catalog)].ID
			switch err := repo.SubmitVote(context.Background(), "contested-voter", option); {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				alreadyVoted.Add(1)
			default:
				failed.Add(1)
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("accepted = %d, want exactly 1", accepted.Load())
	}
	if alreadyVoted.Load() != attempts-1 {
		t.Errorf("already-voted = %d, want %d", alreadyVoted.Load(), attempts-1)
	}

	var records int64
	if err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM votes WHERE voter_hash = 'contested-voter'`).Scan(&records); err != nil {
		t.Fatal(err)
	}
	if records != 1 {
		t.Errorf("ledger has %d records for one token, want 1", records)
	}
}

// TestCounterSumMatchesLedger checks sum(vote_count) == count(votes) after a
// burst of concurrent votes from distinct identities.
func TestCounterSumMatchesLedger(t *testing.T) {
	pool := setupTestDB(t)
	repo := seededRepo(t, pool)

	const voters = 30
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			voter := fmt.Sprintf("voter-%d", n)
			option := Catalog[n%len(Catalog)].ID
			if err := repo.SubmitVote(context.Background(), voter, option); err != nil {
				t.Errorf("voter %s: %v", voter, err)
			}
		}(i)
	}
	wg.Wait()

	ctx := context.Background()
	var counterSum, ledgerCount int64
	if err := pool.QueryRow(ctx, `SELECT COALESCE(SUM(vote_count), 0) FROM locations`).Scan(&counterSum); err != nil {
		t.Fatal(err)
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM votes`).Scan(&ledgerCount); err != nil {
		t.Fatal(err)
	}
	if counterSum != voters || ledgerCount != voters {
		t.Errorf("counter sum = %d, ledger count = %d, want both %d", counterSum, ledgerCount, voters)
	}

	// Per-option: each counter equals the ledger rows referencing it.
	for _, loc := range Catalog {
		var count, refs int64
		if err := pool.QueryRow(ctx, `SELECT vote_count FROM locations WHERE id = $1`, loc.ID).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM votes WHERE location_id = $1`, loc.ID).Scan(&refs); err != nil {
			t.Fatal(err)
		}
		if count != refs {
			t.Errorf("location %s: counter = %d, ledger references = %d", loc.ID, count, refs)
		}
	}
}

func TestSubmitVoteUnseededLocationFails(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool) // no seeding

	err := repo.SubmitVote(context.Background(), "voter-a", "maldives")
	if err == nil || errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("vote against unseeded counters returned %v, want transaction error", err)
	}
}
