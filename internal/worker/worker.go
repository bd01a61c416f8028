package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumen-studio/voting-backend/internal/stats"
	"github.com/lumen-studio/voting-backend/pkg/queue"
)

// VoteEventProcessor consumes accepted-vote events and folds them into the
// daily location statistics.
type VoteEventProcessor struct {
	statsRepo *stats.Repository
	queue     *queue.Queue
	logger    *zap.Logger
}

// NewVoteEventProcessor creates a vote event processor.
func NewVoteEventProcessor(statsRepo *stats.Repository, q *queue.Queue, logger *zap.Logger) *VoteEventProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteEventProcessor{statsRepo: statsRepo, queue: q, logger: logger}
}

// Process executes one vote event job.
func (p *VoteEventProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeVoteAccepted {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.VoteAcceptedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.statsRepo.RecordVote(ctx, payload.LocationID, payload.VotedAt); err != nil {
		return fmt.Errorf("record vote stat: %w", err)
	}

	p.logger.Debug("vote event processed", zap.String("job_id", job.ID), zap.String("location_id", payload.LocationID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *VoteEventProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("vote event worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
