package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is one seat request on an activity. Registrations are
// embedded in their activity document in arrival order and are never
// removed, only flagged cancelled. Player is the denormalized player
// entity, populated on reads and never persisted.
type Registration struct {
	CreatedAt time.Time `json:"created_at"`
	PlayerID  uuid.UUID `json:"player_id"`
	Player    *User     `json:"player,omitempty"`
	Seats     int       `json:"seats"`
	Approved  bool      `json:"approved"`
	Cancelled bool      `json:"cancelled"`
}

// Active reports whether the registration still counts for anything:
// it has not been cancelled by either party.
func (r Registration) Active() bool {
	return !r.Cancelled
}
