package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meeplemeet/backend/internal/models"
	"github.com/meeplemeet/backend/internal/notifications"
	"github.com/meeplemeet/backend/pkg/queue"
)

// NotificationProcessor delivers notification jobs into the recipient's
// persisted inbox.
type NotificationProcessor struct {
	inbox  *notifications.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewNotificationProcessor creates a notification delivery processor.
func NewNotificationProcessor(inbox *notifications.Repository, q *queue.Queue, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{inbox: inbox, queue: q, logger: logger}
}

// Process executes one notification delivery job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.RecipientID == uuid.Nil {
		return fmt.Errorf("notification job %s has no recipient", job.ID)
	}

	n := &models.Notification{
		RecipientID:  payload.RecipientID,
		Kind:         models.NotificationKind(payload.Kind),
		ActivityID:   payload.ActivityID,
		ActivityName: payload.ActivityName,
	}
	if err := p.inbox.Insert(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	p.logger.Info("notification delivered",
		zap.String("recipient_id", payload.RecipientID.String()),
		zap.String("kind", payload.Kind),
		zap.String("activity_id", payload.ActivityID.String()),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
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

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
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
