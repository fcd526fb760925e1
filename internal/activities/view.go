package activities

import "github.com/meeplemeet/backend/internal/models"

// RegistrationView annotates a registration with the overbooking indicator:
// a pending request whose seats no longer fit the activity's available seats
// is flagged for the host rather than rejected.
type RegistrationView struct {
	models.Registration
	WillCauseOverbooking bool `json:"will_cause_overbooking"`
}

// ActivityView is the denormalized read view of an activity with derived
// seat accounting attached. AvailableSeats is clamped to zero; Overbooked
// exposes the raw condition separately so the two are never conflated.
type ActivityView struct {
	*models.Activity
	AvailableSeats int                `json:"available_seats"`
	Overbooked     bool               `json:"overbooked"`
	Registrations  []RegistrationView `json:"registrations"`
}

// NewActivityView builds the read view for one activity.
func NewActivityView(a *models.Activity) ActivityView {
	regs := make([]RegistrationView, 0, len(a.Registrations))
	for _, reg := range a.Registrations {
		regs = append(regs, RegistrationView{
			Registration:         reg,
			WillCauseOverbooking: !reg.Approved && !reg.Cancelled && a.WillCauseOverbooking(reg.Seats),
		})
	}
	return ActivityView{
		Activity:       a,
		AvailableSeats: a.AvailableSeats(),
		Overbooked:     a.Overbooked(),
		Registrations:  regs,
	}
}

// NewActivityViews builds read views for a result list.
func NewActivityViews(list []*models.Activity) []ActivityView {
	out := make([]ActivityView, 0, len(list))
	for _, a := range list {
		out = append(out, NewActivityView(a))
	}
	return out
}
