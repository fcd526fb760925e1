package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meeplemeet/backend/internal/models"
)

// Repository handles notification inbox persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a delivered notification for a recipient.
func (r *Repository) Insert(ctx context.Context, n *models.Notification) error {
	const q = `INSERT INTO notifications (id, recipient_id, kind, activity_id, activity_name)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, n.RecipientID, string(n.Kind), n.ActivityID, n.ActivityName).
		Scan(&n.ID, &n.CreatedAt)
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*models.Notification, error) {
	const q = `SELECT id, recipient_id, kind, activity_id, activity_name, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.RecipientID, &kind, &n.ActivityID, &n.ActivityName, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = models.NotificationKind(kind)
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkRead sets read_at for the recipient's notification.
func (r *Repository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	const q = `UPDATE notifications SET read_at = NOW() WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL`
	_, err := r.pool.Exec(ctx, q, id, recipientID)
	return err
}
