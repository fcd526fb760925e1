package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 30 * 24 * time.Hour

func testActivity(host uuid.UUID, now time.Time) *Activity {
	date := now.Add(48 * time.Hour)
	return &Activity{
		ID:         uuid.New(),
		HostID:     host,
		Name:       "Thursday Catan",
		MinPlayers: 2,
		MaxPlayers: 4,
		Date:       date,
		Deadline:   date.Add(-24 * time.Hour),
	}
}

func TestSeatAccounting(t *testing.T) {
	host := uuid.New()
	now := time.Now()

	tests := []struct {
		name          string
		prereserved   int
		registrations []Registration
		wantAvailable int
		wantOverbook  bool
	}{
		{
			name:          "empty ledger",
			wantAvailable: 4,
		},
		{
			name:          "prereserved seats reduce availability",
			prereserved:   1,
			wantAvailable: 3,
		},
		{
			name:        "pending registrations never count",
			prereserved: 1,
			registrations: []Registration{
				{PlayerID: uuid.New(), Seats: 2},
				{PlayerID: uuid.New(), Seats: 3},
			},
			wantAvailable: 3,
		},
		{
			name:        "approved seats count, cancelled do not",
			prereserved: 1,
			registrations: []Registration{
				{PlayerID: uuid.New(), Seats: 2, Approved: true},
				{PlayerID: uuid.New(), Seats: 2, Approved: true, Cancelled: true},
			},
			wantAvailable: 1,
		},
		{
			name:        "overbooked clamps to zero",
			prereserved: 1,
			registrations: []Registration{
				{PlayerID: uuid.New(), Seats: 2, Approved: true},
				{PlayerID: uuid.New(), Seats: 2, Approved: true},
			},
			wantAvailable: 0,
			wantOverbook:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testActivity(host, now)
			a.PrereservedSeats = tt.prereserved
			a.Registrations = tt.registrations

			assert.Equal(t, tt.wantAvailable, a.AvailableSeats())
			assert.Equal(t, tt.wantOverbook, a.Overbooked())
		})
	}
}

func TestRegistrationActive(t *testing.T) {
	assert.True(t, Registration{PlayerID: uuid.New(), Seats: 1}.Active())
	assert.False(t, Registration{PlayerID: uuid.New(), Seats: 1, Cancelled: true}.Active())
}

func TestApprovedAndPendingAreDisjoint(t *testing.T) {
	a := testActivity(uuid.New(), time.Now())
	a.Registrations = []Registration{
		{PlayerID: uuid.New(), Seats: 1, Approved: true},
		{PlayerID: uuid.New(), Seats: 1},
		{PlayerID: uuid.New(), Seats: 1, Approved: true, Cancelled: true},
		{PlayerID: uuid.New(), Seats: 1, Cancelled: true},
	}

	approved := a.ApprovedRegistrations()
	pending := a.PendingRegistrations()
	assert.Len(t, approved, 1)
	assert.Len(t, pending, 1)
	for _, ar := range approved {
		for _, pr := range pending {
			assert.NotEqual(t, ar.PlayerID, pr.PlayerID)
		}
	}
	// Cancelled registrations belong to neither set.
	assert.Equal(t, 2, len(a.Registrations)-len(approved)-len(pending))
}

func TestWillCauseOverbooking(t *testing.T) {
	a := testActivity(uuid.New(), time.Now())
	a.PrereservedSeats = 1
	a.Registrations = []Registration{
		{PlayerID: uuid.New(), Seats: 2, Approved: true},
	}

	// One seat left.
	assert.False(t, a.WillCauseOverbooking(1))
	assert.True(t, a.WillCauseOverbooking(2))
}

func TestMostRecentRegistrationWins(t *testing.T) {
	a := testActivity(uuid.New(), time.Now())
	player := uuid.New()
	a.Registrations = []Registration{
		{PlayerID: player, Seats: 1, Cancelled: true},
		{PlayerID: uuid.New(), Seats: 1},
		{PlayerID: player, Seats: 2},
	}

	reg := a.MostRecentRegistrationFor(player)
	require.NotNil(t, reg)
	assert.Equal(t, 2, reg.Seats)
	assert.False(t, reg.Cancelled)

	assert.Nil(t, a.MostRecentRegistrationFor(uuid.New()))
}

func TestSubmitRegistration(t *testing.T) {
	host := uuid.New()
	player := uuid.New()
	now := time.Now()

	t.Run("appends in arrival order", func(t *testing.T) {
		a := testActivity(host, now)
		reg, err := a.SubmitRegistration(player, now, 2, true, testWindow)
		require.NoError(t, err)
		assert.Equal(t, player, reg.PlayerID)
		assert.True(t, reg.Approved)
		require.Len(t, a.Registrations, 1)
	})

	t.Run("host cannot join own activity", func(t *testing.T) {
		a := testActivity(host, now)
		_, err := a.SubmitRegistration(host, now, 1, false, testWindow)
		assert.ErrorIs(t, err, ErrHostCannotJoin)
	})

	t.Run("seats must be positive", func(t *testing.T) {
		a := testActivity(host, now)
		_, err := a.SubmitRegistration(player, now, 0, false, testWindow)
		assert.ErrorIs(t, err, ErrInvalidSeats)
	})

	t.Run("closed before the window opens", func(t *testing.T) {
		a := testActivity(host, now)
		a.Date = now.Add(testWindow + 24*time.Hour)
		a.Deadline = a.Date.Add(-24 * time.Hour)
		_, err := a.SubmitRegistration(player, now, 1, false, testWindow)
		assert.ErrorIs(t, err, ErrRegistrationNotOpen)
	})

	t.Run("closed after the deadline", func(t *testing.T) {
		a := testActivity(host, now)
		a.Deadline = now.Add(-time.Minute)
		_, err := a.SubmitRegistration(player, now, 1, false, testWindow)
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("rejected on cancelled activity", func(t *testing.T) {
		a := testActivity(host, now)
		a.Cancelled = true
		_, err := a.SubmitRegistration(player, now, 1, false, testWindow)
		assert.ErrorIs(t, err, ErrActivityCancelled)
	})

	t.Run("rejected when date elapsed", func(t *testing.T) {
		a := testActivity(host, now)
		a.Date = now.Add(-time.Hour)
		_, err := a.SubmitRegistration(player, now, 1, false, testWindow)
		assert.ErrorIs(t, err, ErrActivityPast)
	})
}

func TestApproveRegistration(t *testing.T) {
	host := uuid.New()
	player := uuid.New()
	now := time.Now()

	t.Run("approves the most recent registration", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{
			{PlayerID: player, Seats: 1, Cancelled: true},
			{PlayerID: player, Seats: 2},
		}
		require.NoError(t, a.ApproveRegistration(host, player, now))
		assert.True(t, a.Registrations[1].Approved)
		assert.False(t, a.Registrations[0].Approved)
	})

	t.Run("only the host may approve", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: player, Seats: 1}}
		assert.ErrorIs(t, a.ApproveRegistration(player, player, now), ErrNotHost)
	})

	t.Run("no registration to approve", func(t *testing.T) {
		a := testActivity(host, now)
		assert.ErrorIs(t, a.ApproveRegistration(host, player, now), ErrNoRegistration)
	})

	t.Run("cancelled registration cannot be approved", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: player, Seats: 1, Cancelled: true}}
		assert.ErrorIs(t, a.ApproveRegistration(host, player, now), ErrNoRegistration)
	})

	t.Run("approval may overbook", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{
			{PlayerID: uuid.New(), Seats: 4, Approved: true},
			{PlayerID: player, Seats: 2},
		}
		require.NoError(t, a.ApproveRegistration(host, player, now))
		assert.True(t, a.Overbooked())
		assert.Equal(t, 0, a.AvailableSeats())
	})
}

func TestCancelRegistration(t *testing.T) {
	host := uuid.New()
	player := uuid.New()
	now := time.Now()

	t.Run("player cancels own", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: player, Seats: 2, Approved: true}}
		require.NoError(t, a.CancelRegistration(player, player, now))
		assert.True(t, a.Registrations[0].Cancelled)
		assert.Equal(t, 4, a.AvailableSeats())
	})

	t.Run("host cancels a player's", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: player, Seats: 1}}
		require.NoError(t, a.CancelRegistration(host, player, now))
		assert.True(t, a.Registrations[0].Cancelled)
	})

	t.Run("third party may not cancel", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: player, Seats: 1}}
		assert.ErrorIs(t, a.CancelRegistration(uuid.New(), player, now), ErrNotRegistrant)
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: player, Seats: 1}}
		require.NoError(t, a.CancelRegistration(player, player, now))
		require.NoError(t, a.CancelRegistration(player, player, now))
		assert.True(t, a.Registrations[0].Cancelled)
	})

	t.Run("no registration", func(t *testing.T) {
		a := testActivity(host, now)
		assert.ErrorIs(t, a.CancelRegistration(player, player, now), ErrNoRegistration)
	})
}

func TestEditSchedulePreservesDeadlineOffset(t *testing.T) {
	host := uuid.New()
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

	a := testActivity(host, now)
	a.Date = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	a.Deadline = time.Date(2024, 5, 30, 18, 0, 0, 0, time.UTC) // two days before

	newDate := time.Date(2024, 6, 8, 18, 0, 0, 0, time.UTC)
	require.NoError(t, a.EditSchedule(host, now, newDate))

	assert.Equal(t, newDate, a.Date)
	assert.Equal(t, time.Date(2024, 6, 6, 18, 0, 0, 0, time.UTC), a.Deadline)
}

func TestEditPlayerCount(t *testing.T) {
	host := uuid.New()
	now := time.Now()

	t.Run("rejects invalid ranges", func(t *testing.T) {
		a := testActivity(host, now)
		assert.ErrorIs(t, a.EditPlayerCount(host, now, 0, 4, 0), ErrInvalidPlayerCount)
		assert.ErrorIs(t, a.EditPlayerCount(host, now, 5, 4, 0), ErrInvalidPlayerCount)
		assert.ErrorIs(t, a.EditPlayerCount(host, now, 2, 4, 5), ErrInvalidPlayerCount)
		assert.ErrorIs(t, a.EditPlayerCount(host, now, 2, 4, -1), ErrInvalidPlayerCount)
	})

	t.Run("shrinking below approved seats surfaces as overbooked", func(t *testing.T) {
		a := testActivity(host, now)
		a.Registrations = []Registration{{PlayerID: uuid.New(), Seats: 3, Approved: true}}
		require.NoError(t, a.EditPlayerCount(host, now, 2, 2, 0))
		assert.True(t, a.Overbooked())
		assert.Equal(t, 0, a.AvailableSeats())
	})
}

func TestHostOnlyMutations(t *testing.T) {
	host := uuid.New()
	stranger := uuid.New()
	now := time.Now()
	a := testActivity(host, now)

	assert.ErrorIs(t, a.EditPlayerCount(stranger, now, 2, 4, 0), ErrNotHost)
	assert.ErrorIs(t, a.EditSchedule(stranger, now, now.Add(72*time.Hour)), ErrNotHost)
	assert.ErrorIs(t, a.EditDeadlineType(stranger, now, DeadlineOneDayBefore), ErrNotHost)
	assert.ErrorIs(t, a.EditAddress(stranger, now, Location{}), ErrNotHost)
	assert.ErrorIs(t, a.EditInfo(stranger, now, "new info"), ErrNotHost)
	assert.ErrorIs(t, a.Cancel(stranger, now), ErrNotHost)
}

func TestCancelledActivityRejectsMutations(t *testing.T) {
	host := uuid.New()
	player := uuid.New()
	now := time.Now()

	a := testActivity(host, now)
	a.Registrations = []Registration{{PlayerID: player, Seats: 1}}
	require.NoError(t, a.Cancel(host, now))

	assert.ErrorIs(t, a.EditInfo(host, now, "x"), ErrActivityCancelled)
	assert.ErrorIs(t, a.ApproveRegistration(host, player, now), ErrActivityCancelled)
	assert.ErrorIs(t, a.CancelRegistration(player, player, now), ErrActivityCancelled)
	assert.ErrorIs(t, a.Cancel(host, now), ErrActivityCancelled)
	assert.False(t, a.Open(now))
}

func TestPastActivityRejectsMutations(t *testing.T) {
	host := uuid.New()
	now := time.Now()

	a := testActivity(host, now)
	a.Date = now.Add(-time.Hour)

	assert.ErrorIs(t, a.EditInfo(host, now, "x"), ErrActivityPast)
	assert.False(t, a.Open(now))
}
