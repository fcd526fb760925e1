package activities

import (
	"fmt"

	"github.com/google/uuid"
)

// Sort is the discovery result ordering.
type Sort int

const (
	// SortNewest orders by creation time, newest first.
	SortNewest Sort = iota
	// SortSoonest orders by scheduled date ascending, nearer activities first
	// on equal dates.
	SortSoonest
	// SortNearest orders by ascending distance to the observer, sooner
	// activities first on equal distance.
	SortNearest
)

// ParseSort parses the wire representation; empty defaults to newest.
func ParseSort(s string) (Sort, error) {
	switch s {
	case "", "newest":
		return SortNewest, nil
	case "soonest":
		return SortSoonest, nil
	case "nearest":
		return SortNearest, nil
	}
	return 0, fmt.Errorf("unknown sort %q", s)
}

func (s Sort) orderBy() string {
	switch s {
	case SortSoonest:
		return "date ASC, distance_km ASC"
	case SortNearest:
		return "distance_km ASC, date ASC"
	}
	return "created_at DESC"
}

// Filter constrains a discovery query.
type Filter struct {
	// AvailableOnly keeps activities whose registration deadline is still in
	// the future and that have not been cancelled.
	AvailableOnly bool
	// NotHostedBy excludes activities hosted by the given user.
	NotHostedBy *uuid.UUID
}
