package votes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumen-studio/voting-backend/internal/identity"
	"github.com/lumen-studio/voting-backend/internal/models"
	"github.com/lumen-studio/voting-backend/pkg/queue"
	"github.com/lumen-studio/voting-backend/pkg/response"
)

// Error strings are part of the API contract; the voting widget matches on
// status codes but displays these verbatim.
const (
	msgInvalidLocation = "Invalid location"
	msgTooManyRequests = "Too many requests. Please try again later."
	msgAlreadyVoted    = "You have already voted"
	msgSubmitFailed    = "Failed to process vote"
	msgResultsFailed   = "Vote results are temporarily unavailable"
)

// RateLimiter throttles submissions per identity token.
type RateLimiter interface {
	CheckAndConsume(ctx context.Context, token string) (bool, error)
}

// AtomicVoteStore records at most one vote per identity token and keeps the
// per-location counters consistent with the ledger. Implementations must
// guarantee that concurrent submissions from the same token resolve to
// exactly one accepted vote, returning ErrAlreadyVoted for the rest.
type AtomicVoteStore interface {
	SubmitVote(ctx context.Context, voterHash, locationID string) error
}

// ResultsProvider computes the current results view.
type ResultsProvider interface {
	Results(ctx context.Context) (*models.ResultsView, error)
}

// EventSink receives accepted-vote events for asynchronous processing.
type EventSink interface {
	EnqueueVoteAccepted(ctx context.Context, payload queue.VoteAcceptedPayload) error
}

// Handler handles the voting HTTP endpoints.
type Handler struct {
	limiter RateLimiter
	ledger  AtomicVoteStore
	results ResultsProvider
	cache   *ResultsCache
	events  EventSink
	salt    string
	maxAge  int
	logger  *zap.Logger
}

// NewHandler creates a votes handler. cache and events may be nil; both are
// best-effort collaborators.
func NewHandler(limiter RateLimiter, ledger AtomicVoteStore, results ResultsProvider, cache *ResultsCache, events EventSink, salt string, cacheMaxAge int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		limiter: limiter,
		ledger:  ledger,
		results: results,
		cache:   cache,
		events:  events,
		salt:    salt,
		maxAge:  cacheMaxAge,
		logger:  logger,
	}
}

type submitRequest struct {
	Option string `json:"option"`
}

type submitResponse struct {
	Success bool                `json:"success"`
	Results *models.ResultsView `json:"results"`
}

// Submit handles POST /votes/submit.
//
// The rate limit is consumed before the payload is even parsed, so malformed
// or invalid-option spam still burns budget and cannot bypass the limiter.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	token := identity.FromRequest(h.salt, c.Request)

	allowed, err := h.limiter.CheckAndConsume(ctx, token)
	if err != nil {
		h.logger.Error("rate limit check failed", zap.Error(err))
		response.Internal(c, msgSubmitFailed)
		return
	}
	if !allowed {
		response.TooManyRequests(c, msgTooManyRequests)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || !ValidLocation(req.Option) {
		response.BadRequest(c, msgInvalidLocation)
		return
	}

	votedAt := time.Now()
	if err := h.ledger.SubmitVote(ctx, token, req.Option); err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			response.Conflict(c, msgAlreadyVoted)
			return
		}
		h.logger.Error("vote transaction failed", zap.String("location_id", req.Option), zap.Error(err))
		response.Internal(c, msgSubmitFailed)
		return
	}

	if h.events != nil {
		if err := h.events.EnqueueVoteAccepted(ctx, queue.VoteAcceptedPayload{LocationID: req.Option, VotedAt: votedAt}); err != nil {
			h.logger.Warn("vote event enqueue failed", zap.String("location_id", req.Option), zap.Error(err))
		}
	}

	view, err := h.results.Results(ctx)
	if err != nil {
		// The vote is committed; only the embedded snapshot failed.
		h.logger.Error("results after vote failed", zap.Error(err))
		response.Internal(c, msgSubmitFailed)
		return
	}
	h.cache.Set(ctx, view)

	c.JSON(http.StatusOK, submitResponse{Success: true, Results: view})
}

type degradedResults struct {
	Locations  []models.LocationResult `json:"locations"`
	TotalVotes int64                   `json:"totalVotes"`
	Error      string                  `json:"error"`
}

// Results handles GET /votes/results. When the store is unreachable it
// degrades to 503 with an explicit error and an empty list, so callers can
// tell "try again later" apart from "zero votes".
func (h *Handler) Results(c *gin.Context) {
	ctx := c.Request.Context()

	if view, ok := h.cache.Get(ctx); ok {
		h.writeResults(c, view)
		return
	}

	view, err := h.results.Results(ctx)
	if err != nil {
		h.logger.Warn("results read failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, degradedResults{
			Locations:  []models.LocationResult{},
			TotalVotes: 0,
			Error:      msgResultsFailed,
		})
		return
	}
	h.cache.Set(ctx, view)
	h.writeResults(c, view)
}

func (h *Handler) writeResults(c *gin.Context, view *models.ResultsView) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", h.maxAge))
	c.JSON(http.StatusOK, view)
}
