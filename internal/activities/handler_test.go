package activities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinctApprovedPlayers(t *testing.T) {
	host := uuid.New()
	now := time.Now()
	window := 30 * 24 * time.Hour

	t.Run("each approved player exactly once", func(t *testing.T) {
		a := policyActivity(host)
		alice := uuid.New()
		bob := uuid.New()

		// Alice ends up with two approved registrations: an auto-approved
		// one, then a second one the host approves manually.
		_, err := a.SubmitRegistration(alice, now, 1, true, window)
		require.NoError(t, err)
		_, err = a.SubmitRegistration(alice, now.Add(time.Minute), 2, false, window)
		require.NoError(t, err)
		require.NoError(t, a.ApproveRegistration(host, alice, now.Add(2*time.Minute)))

		_, err = a.SubmitRegistration(bob, now.Add(3*time.Minute), 1, true, window)
		require.NoError(t, err)

		require.Len(t, a.ApprovedRegistrations(), 3)
		assert.Equal(t, []uuid.UUID{alice, bob}, distinctApprovedPlayers(a))
	})

	t.Run("cancellation drops the recipient set", func(t *testing.T) {
		a := policyActivity(host)
		alice := uuid.New()
		carol := uuid.New()

		_, err := a.SubmitRegistration(alice, now, 1, true, window)
		require.NoError(t, err)
		_, err = a.SubmitRegistration(carol, now, 1, false, window)
		require.NoError(t, err)

		// Pending and cancelled registrations never produce a recipient.
		require.NoError(t, a.CancelRegistration(alice, alice, now.Add(time.Minute)))
		assert.Empty(t, distinctApprovedPlayers(a))
	})

	t.Run("recipient set survives activity cancellation", func(t *testing.T) {
		a := policyActivity(host)
		alice := uuid.New()

		_, err := a.SubmitRegistration(alice, now, 1, true, window)
		require.NoError(t, err)
		require.NoError(t, a.Cancel(host, now.Add(time.Minute)))

		assert.Equal(t, []uuid.UUID{alice}, distinctApprovedPlayers(a))
	})
}
