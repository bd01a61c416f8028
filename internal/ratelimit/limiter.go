// Package ratelimit throttles vote submissions per identity token using a
// fixed-window counter kept in the shared store. The window resets sharply at
// its expiry, which can admit up to 2N requests straddling a boundary; that
// imprecision is accepted for abuse mitigation.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/lumen-studio/voting-backend/internal/models"
)

// Store persists per-token window counters. Get returns nil when no record
// exists; Put creates or replaces the record for its token.
type Store interface {
	Get(ctx context.Context, token string) (*models.RateLimitRecord, error)
	Put(ctx context.Context, rec *models.RateLimitRecord) error
}

// Limiter is a fixed-window rate limiter keyed by identity token.
//
// The read-then-write is not atomic across concurrent requests from the same
// token: a race can let a window admit a couple of extra requests. The vote
// ledger, not the limiter, carries the strict guarantees.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a limiter allowing limit requests per window.
func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// CheckAndConsume records one request from token and reports whether it is
// within the limit. Store errors propagate: an unreachable store fails the
// request closed rather than waving traffic through.
func (l *Limiter) CheckAndConsume(ctx context.Context, token string) (bool, error) {
	now := l.now()

	rec, err := l.store.Get(ctx, token)
	if err != nil {
		return false, fmt.Errorf("get rate limit record: %w", err)
	}

	// No record yet, or the window has expired: start a fresh window.
	if rec == nil || !now.Before(rec.WindowResetAt) {
		fresh := &models.RateLimitRecord{
			Token:         token,
			Count:         1,
			WindowResetAt: now.Add(l.window),
		}
		if err := l.store.Put(ctx, fresh); err != nil {
			return false, fmt.Errorf("reset rate limit window: %w", err)
		}
		return true, nil
	}

	if rec.Count >= l.limit {
		// Over the limit inside an open window: no mutation.
		return false, nil
	}

	rec.Count++
	if err := l.store.Put(ctx, rec); err != nil {
		return false, fmt.Errorf("increment rate limit count: %w", err)
	}
	return true, nil
}
