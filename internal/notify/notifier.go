// Package notify is the fire-and-forget notification sink. Mutation handlers
// call Notify after a successful write; delivery runs out of band via the
// job queue and a delivery failure never affects the triggering mutation.
package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meeplemeet/backend/internal/models"
	"github.com/meeplemeet/backend/pkg/queue"
)

// Notifier enqueues notification delivery jobs.
type Notifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewNotifier creates a queue-backed notifier.
func NewNotifier(q *queue.Queue, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{queue: q, logger: logger}
}

// Notify enqueues one notification for the recipient. Errors are logged and
// swallowed: notification delivery is isolated from the data mutation.
func (n *Notifier) Notify(ctx context.Context, recipientID uuid.UUID, kind models.NotificationKind, a *models.Activity) {
	err := n.queue.EnqueueNotification(ctx, queue.NotificationPayload{
		RecipientID:  recipientID,
		Kind:         string(kind),
		ActivityID:   a.ID,
		ActivityName: a.Name,
	})
	if err != nil {
		n.logger.Error("notification enqueue failed",
			zap.Error(err),
			zap.String("recipient_id", recipientID.String()),
			zap.String("kind", string(kind)),
			zap.String("activity_id", a.ID.String()),
		)
	}
}
