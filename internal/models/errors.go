package models

import "errors"

// Caller errors: the request is well-formed Go-wise but violates a state or
// role precondition. Handlers surface these as 400/403, never as faults.
var (
	ErrNotHost              = errors.New("only the host may perform this action")
	ErrNotRegistrant        = errors.New("only the host or the registering player may cancel a registration")
	ErrActivityCancelled    = errors.New("activity has been cancelled")
	ErrActivityPast         = errors.New("activity date has passed")
	ErrHostCannotJoin       = errors.New("host cannot register for their own activity")
	ErrInvalidSeats         = errors.New("seats must be at least 1")
	ErrInvalidPlayerCount   = errors.New("invalid player count range")
	ErrDeadlinePassed       = errors.New("registration deadline has passed")
	ErrRegistrationNotOpen  = errors.New("registration is not open yet")
	ErrNoRegistration       = errors.New("no current registration for this player")
)

// Programming errors in the calling layer: persistence identity misuse.
var (
	ErrAlreadyIdentified = errors.New("entity is already persisted")
	ErrNotIdentified     = errors.New("entity has not been persisted")
)
