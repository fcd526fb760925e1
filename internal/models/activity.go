package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a hosted board-game meetup. It owns its embedded registration
// list exclusively; every mutation goes through the methods below and the
// whole document is persisted as one unit. Host, Game and the registrations'
// Player fields are denormalized on reads and never persisted. DistanceKm is
// populated only by proximity queries and never written back.
type Activity struct {
	ID               uuid.UUID      `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	HostID           uuid.UUID      `json:"host_id"`
	Host             *User          `json:"host,omitempty"`
	Name             string         `json:"name"`
	GameID           *uuid.UUID     `json:"game_id,omitempty"`
	Game             *Game          `json:"game,omitempty"`
	MinPlayers       int            `json:"min_players"`
	MaxPlayers       int            `json:"max_players"`
	PrereservedSeats int            `json:"prereserved_seats"`
	Date             time.Time      `json:"date"`
	Deadline         time.Time      `json:"deadline"`
	Location         Location       `json:"location"`
	DistanceKm       *float64       `json:"distance_km,omitempty"`
	Info             string         `json:"info"`
	PictureURL       string         `json:"picture_url"`
	Cancelled        bool           `json:"cancelled"`
	Registrations    []Registration `json:"registrations"`
	Version          int64          `json:"-"`
}

// Persisted reports whether the activity has a stored identity.
func (a *Activity) Persisted() bool {
	return a.ID != uuid.Nil
}

// --- Registration ledger (pure, derived views) ---

// ApprovedRegistrations returns registrations that are approved and not
// cancelled, in arrival order.
func (a *Activity) ApprovedRegistrations() []Registration {
	var out []Registration
	for _, r := range a.Registrations {
		if r.Approved && r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// PendingRegistrations returns registrations awaiting host approval, in
// arrival order.
func (a *Activity) PendingRegistrations() []Registration {
	var out []Registration
	for _, r := range a.Registrations {
		if !r.Approved && r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// Players returns the players of approved registrations. The host is never
// implicitly a player.
func (a *Activity) Players() []uuid.UUID {
	var out []uuid.UUID
	for _, r := range a.ApprovedRegistrations() {
		out = append(out, r.PlayerID)
	}
	return out
}

// seatBalance is the raw seat count: capacity minus prereserved minus
// approved seats. Negative when the activity is overbooked.
func (a *Activity) seatBalance() int {
	balance := a.MaxPlayers - a.PrereservedSeats
	for _, r := range a.ApprovedRegistrations() {
		balance -= r.Seats
	}
	return balance
}

// AvailableSeats returns the seats still open for registration, clamped to
// zero. Pending registrations never count against capacity. Use Overbooked
// to detect the raw overbooking condition; the clamped value is for display
// and allocation only.
func (a *Activity) AvailableSeats() int {
	if b := a.seatBalance(); b > 0 {
		return b
	}
	return 0
}

// Overbooked reports whether approved seat commitments exceed capacity.
func (a *Activity) Overbooked() bool {
	return a.seatBalance() < 0
}

// WillCauseOverbooking reports whether approving a request for the given
// seat count would push the activity past capacity.
func (a *Activity) WillCauseOverbooking(seats int) bool {
	return seats > a.AvailableSeats()
}

// MostRecentRegistrationFor returns the last registration in arrival order
// belonging to the player, or nil. A player may register, cancel and
// register again; "their" registration is always the latest entry, never
// the first match.
func (a *Activity) MostRecentRegistrationFor(playerID uuid.UUID) *Registration {
	for i := len(a.Registrations) - 1; i >= 0; i-- {
		if a.Registrations[i].PlayerID == playerID {
			return &a.Registrations[i]
		}
	}
	return nil
}

// --- State machine ---

// Open reports whether the activity still accepts mutations: not cancelled
// and its date has not elapsed.
func (a *Activity) Open(now time.Time) bool {
	return !a.Cancelled && a.Date.After(now)
}

func (a *Activity) ensureOpen(now time.Time) error {
	if a.Cancelled {
		return ErrActivityCancelled
	}
	if !a.Date.After(now) {
		return ErrActivityPast
	}
	return nil
}

func (a *Activity) ensureHost(actor uuid.UUID) error {
	if actor != a.HostID {
		return ErrNotHost
	}
	return nil
}

// --- Mutations (precondition checks first, no partial application) ---

// EditPlayerCount updates the player range and the host's prereserved seats.
func (a *Activity) EditPlayerCount(actor uuid.UUID, now time.Time, min, max, prereserved int) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	if min < 1 || min > max || prereserved < 0 || prereserved > max {
		return ErrInvalidPlayerCount
	}
	a.MinPlayers = min
	a.MaxPlayers = max
	a.PrereservedSeats = prereserved
	return nil
}

// EditSchedule moves the activity to a new date and shifts the deadline by
// the same delta, preserving its offset from the original date.
func (a *Activity) EditSchedule(actor uuid.UUID, now time.Time, newDate time.Time) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	delta := newDate.Sub(a.Date)
	a.Date = newDate
	a.Deadline = a.Deadline.Add(delta)
	return nil
}

// EditDeadlineType recomputes the deadline as a fixed offset before the date.
func (a *Activity) EditDeadlineType(actor uuid.UUID, now time.Time, dt DeadlineType) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	a.Deadline = dt.DeadlineFor(a.Date)
	return nil
}

// EditAddress moves the activity to a new location.
func (a *Activity) EditAddress(actor uuid.UUID, now time.Time, loc Location) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	a.Location = loc
	return nil
}

// EditInfo replaces the free-text info.
func (a *Activity) EditInfo(actor uuid.UUID, now time.Time, info string) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	a.Info = info
	return nil
}

// Cancel marks the activity cancelled. Irreversible; the document is never
// physically removed.
func (a *Activity) Cancel(actor uuid.UUID, now time.Time) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	a.Cancelled = true
	return nil
}

// SubmitRegistration appends a new registration for the player. The approved
// flag is decided by the booking policy and passed in; capacity is never
// hard-enforced here (a pending over-capacity request is flagged on read,
// not rejected). Registration opens window before the date and closes at the
// deadline. Returns the appended registration.
func (a *Activity) SubmitRegistration(playerID uuid.UUID, now time.Time, seats int, approved bool, window time.Duration) (*Registration, error) {
	if err := a.ensureOpen(now); err != nil {
		return nil, err
	}
	if playerID == a.HostID {
		return nil, ErrHostCannotJoin
	}
	if seats < 1 {
		return nil, ErrInvalidSeats
	}
	if a.Date.Sub(now) > window {
		return nil, ErrRegistrationNotOpen
	}
	if !now.Before(a.Deadline) {
		return nil, ErrDeadlinePassed
	}
	a.Registrations = append(a.Registrations, Registration{
		CreatedAt: now,
		PlayerID:  playerID,
		Seats:     seats,
		Approved:  approved,
	})
	return &a.Registrations[len(a.Registrations)-1], nil
}

// ApproveRegistration approves the player's most recent registration. There
// is deliberately no capacity re-check: approving into overbooking is a
// representable state the host resolves manually.
func (a *Activity) ApproveRegistration(actor, playerID uuid.UUID, now time.Time) error {
	if err := a.ensureHost(actor); err != nil {
		return err
	}
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	reg := a.MostRecentRegistrationFor(playerID)
	if reg == nil || reg.Cancelled {
		return ErrNoRegistration
	}
	reg.Approved = true
	return nil
}

// CancelRegistration cancels the player's most recent registration. Either
// the registering player or the host may cancel; cancelling an already
// cancelled registration is a no-op. Cancellation is one-way.
func (a *Activity) CancelRegistration(actor, playerID uuid.UUID, now time.Time) error {
	if err := a.ensureOpen(now); err != nil {
		return err
	}
	if actor != playerID && actor != a.HostID {
		return ErrNotRegistrant
	}
	reg := a.MostRecentRegistrationFor(playerID)
	if reg == nil {
		return ErrNoRegistration
	}
	reg.Cancelled = true
	return nil
}
