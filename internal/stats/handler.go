package stats

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumen-studio/voting-backend/pkg/response"
)

const (
	defaultDays = 7
	maxDays     = 90
)

// Handler handles GET /votes/stats/daily.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Daily handles GET /votes/stats/daily?days=N (default 7, capped at 90).
func (h *Handler) Daily(c *gin.Context) {
	days := defaultDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > maxDays {
		days = maxDays
	}

	list, err := h.repo.ListRecent(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("list daily stats failed", zap.Error(err))
		response.Internal(c, "Failed to fetch vote statistics")
		return
	}
	response.OK(c, gin.H{"days": list})
}
