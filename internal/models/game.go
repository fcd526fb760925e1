package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a board game from the catalog, referenced by activities.
// MinPlayers/MaxPlayers are the game's own supported range; an activity's
// player count is host-controlled and not validated against it.
type Game struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	MinPlayers   int       `json:"min_players"`
	MaxPlayers   int       `json:"max_players"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}
