package activities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemeet/backend/internal/models"
)

func TestActivityViewFlagsOverbookingRequests(t *testing.T) {
	date := time.Now().Add(48 * time.Hour)
	a := &models.Activity{
		ID:               uuid.New(),
		HostID:           uuid.New(),
		MinPlayers:       2,
		MaxPlayers:       4,
		PrereservedSeats: 1,
		Date:             date,
		Deadline:         date.Add(-24 * time.Hour),
		Registrations: []models.Registration{
			{PlayerID: uuid.New(), Seats: 2, Approved: true},
			{PlayerID: uuid.New(), Seats: 2},
			{PlayerID: uuid.New(), Seats: 1},
			{PlayerID: uuid.New(), Seats: 3, Cancelled: true},
		},
	}

	v := NewActivityView(a)
	require.Len(t, v.Registrations, 4)

	assert.Equal(t, 1, v.AvailableSeats)
	assert.False(t, v.Overbooked)

	// Approved registrations are never flagged.
	assert.False(t, v.Registrations[0].WillCauseOverbooking)
	// A pending request for two seats no longer fits.
	assert.True(t, v.Registrations[1].WillCauseOverbooking)
	// A pending request for one seat still fits.
	assert.False(t, v.Registrations[2].WillCauseOverbooking)
	// Cancelled registrations are never flagged.
	assert.False(t, v.Registrations[3].WillCauseOverbooking)
}

func TestActivityViewOverbooked(t *testing.T) {
	date := time.Now().Add(48 * time.Hour)
	a := &models.Activity{
		ID:         uuid.New(),
		HostID:     uuid.New(),
		MinPlayers: 2,
		MaxPlayers: 2,
		Date:       date,
		Deadline:   date.Add(-time.Hour),
		Registrations: []models.Registration{
			{PlayerID: uuid.New(), Seats: 2, Approved: true},
			{PlayerID: uuid.New(), Seats: 1, Approved: true},
		},
	}

	v := NewActivityView(a)
	assert.True(t, v.Overbooked)
	assert.Equal(t, 0, v.AvailableSeats)
}
