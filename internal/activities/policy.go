package activities

import (
	"context"

	"github.com/google/uuid"

	"github.com/meeplemeet/backend/internal/models"
)

// HostJoinChecker reports whether a player has ever had an approved,
// non-cancelled registration on any activity of a host. Implemented by
// Repository; an interface so the policy is testable in isolation.
type HostJoinChecker interface {
	HasApprovedJoinWithHost(ctx context.Context, playerID, hostID uuid.UUID) (bool, error)
}

// Policy decides whether a newly submitted registration is auto-approved.
// It is a trust heuristic, not a capacity guarantee: the availability check
// uses a snapshot at submission time, so concurrent submissions can still
// race past capacity. Over-capacity pending registrations are flagged on
// read rather than rejected.
type Policy struct {
	joins HostJoinChecker
}

// NewPolicy creates a booking policy.
func NewPolicy(joins HostJoinChecker) *Policy {
	return &Policy{joins: joins}
}

// ShouldAutoApprove returns true iff this is the player's first-ever
// accepted join with this particular host AND the requested seats fit the
// current availability snapshot.
func (p *Policy) ShouldAutoApprove(ctx context.Context, playerID uuid.UUID, a *models.Activity, seats int) (bool, error) {
	joinedBefore, err := p.joins.HasApprovedJoinWithHost(ctx, playerID, a.HostID)
	if err != nil {
		return false, err
	}
	if joinedBefore {
		return false, nil
	}
	return seats <= a.AvailableSeats(), nil
}
