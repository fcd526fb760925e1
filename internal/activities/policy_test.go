package activities

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeplemeet/backend/internal/models"
)

type fakeJoinChecker struct {
	joined map[uuid.UUID]bool
	err    error
}

func (f *fakeJoinChecker) HasApprovedJoinWithHost(_ context.Context, playerID, _ uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.joined[playerID], nil
}

func policyActivity(host uuid.UUID) *models.Activity {
	date := time.Now().Add(48 * time.Hour)
	return &models.Activity{
		ID:               uuid.New(),
		HostID:           host,
		MinPlayers:       2,
		MaxPlayers:       4,
		PrereservedSeats: 1,
		Date:             date,
		Deadline:         date.Add(-24 * time.Hour),
	}
}

func TestShouldAutoApprove(t *testing.T) {
	host := uuid.New()
	newcomer := uuid.New()
	regular := uuid.New()
	checker := &fakeJoinChecker{joined: map[uuid.UUID]bool{regular: true}}
	policy := NewPolicy(checker)
	ctx := context.Background()

	t.Run("first join with host and seats fit", func(t *testing.T) {
		a := policyActivity(host)
		approved, err := policy.ShouldAutoApprove(ctx, newcomer, a, 3)
		require.NoError(t, err)
		assert.True(t, approved)
	})

	t.Run("prior join with host needs manual approval", func(t *testing.T) {
		a := policyActivity(host)
		approved, err := policy.ShouldAutoApprove(ctx, regular, a, 1)
		require.NoError(t, err)
		assert.False(t, approved)
	})

	t.Run("seats exceeding availability need manual approval", func(t *testing.T) {
		a := policyActivity(host)
		approved, err := policy.ShouldAutoApprove(ctx, newcomer, a, 4)
		require.NoError(t, err)
		assert.False(t, approved)
	})

	t.Run("availability is a snapshot of the loaded ledger", func(t *testing.T) {
		a := policyActivity(host)
		a.Registrations = []models.Registration{
			{PlayerID: uuid.New(), Seats: 2, Approved: true},
		}
		approved, err := policy.ShouldAutoApprove(ctx, newcomer, a, 2)
		require.NoError(t, err)
		assert.False(t, approved)

		approved, err = policy.ShouldAutoApprove(ctx, newcomer, a, 1)
		require.NoError(t, err)
		assert.True(t, approved)
	})

	t.Run("checker failure propagates", func(t *testing.T) {
		broken := NewPolicy(&fakeJoinChecker{err: errors.New("connection refused")})
		_, err := broken.ShouldAutoApprove(ctx, newcomer, policyActivity(host), 1)
		assert.Error(t, err)
	})
}
