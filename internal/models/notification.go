package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies what happened on an activity.
type NotificationKind string

const (
	KindAutoApproved              NotificationKind = "auto_approved"
	KindHostApprovedRegistration  NotificationKind = "host_approved_registration"
	KindHostCancelledActivity     NotificationKind = "host_cancelled_activity"
	KindHostCancelledRegistration NotificationKind = "host_cancelled_registration"
	KindHostChangedAddress        NotificationKind = "host_changed_address"
	KindHostChangedDate           NotificationKind = "host_changed_date"
	KindPlayerCancelled           NotificationKind = "player_cancelled_registration"
	KindPlayerSentRegistration    NotificationKind = "player_sent_registration"
	KindPlayerJoined              NotificationKind = "player_joined"
)

// Notification is one delivered inbox entry for a recipient. Delivery is
// fire-and-forget: a failed delivery never unwinds the mutation that
// triggered it.
type Notification struct {
	ID           uuid.UUID        `json:"id"`
	RecipientID  uuid.UUID        `json:"recipient_id"`
	Kind         NotificationKind `json:"kind"`
	ActivityID   uuid.UUID        `json:"activity_id"`
	ActivityName string           `json:"activity_name"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
