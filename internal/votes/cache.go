package votes

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lumen-studio/voting-backend/internal/models"
)

const resultsCacheKey = "votes:results"

// localTTL keeps the in-process tier short-lived so stateless instances
// converge on the shared Redis tier quickly.
const localTTL = 5 * time.Second

// ResultsCache is a best-effort two-tier cache for the results view: a small
// in-process tier in front of a shared Redis tier. Results are not
// safety-critical, so every failure here degrades to a cache miss and is
// logged at warn level; the cache never fails a request.
type ResultsCache struct {
	local  *gocache.Cache
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResultsCache creates a results cache with the given shared-tier TTL.
func NewResultsCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ResultsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsCache{
		local:  gocache.New(localTTL, 2*localTTL),
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached view and true on a hit in either tier.
func (c *ResultsCache) Get(ctx context.Context) (*models.ResultsView, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.local.Get(resultsCacheKey); ok {
		if view, ok := v.(*models.ResultsView); ok {
			return view, true
		}
	}
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, resultsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("results cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var view models.ResultsView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.logger.Warn("results cache payload invalid", zap.Error(err))
		return nil, false
	}
	c.local.Set(resultsCacheKey, &view, localTTL)
	return &view, true
}

// Set stores view in both tiers.
func (c *ResultsCache) Set(ctx context.Context, view *models.ResultsView) {
	if c == nil || view == nil {
		return
	}
	c.local.Set(resultsCacheKey, view, localTTL)
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("results cache marshal failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, resultsCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("results cache write failed", zap.Error(err))
	}
}
