package models

import (
	"fmt"
	"time"
)

// DeadlineType is the closed set of registration deadline offsets a host
// may pick. The deadline is always a fixed offset before the activity date.
type DeadlineType int

const (
	DeadlineOneHourBefore DeadlineType = iota
	DeadlineOneDayBefore
	DeadlineTwoDaysBefore
	DeadlineOneWeekBefore
)

// ParseDeadlineType parses the wire representation of a deadline type.
func ParseDeadlineType(s string) (DeadlineType, error) {
	switch s {
	case "one_hour":
		return DeadlineOneHourBefore, nil
	case "one_day":
		return DeadlineOneDayBefore, nil
	case "two_days":
		return DeadlineTwoDaysBefore, nil
	case "one_week":
		return DeadlineOneWeekBefore, nil
	}
	return 0, fmt.Errorf("unknown deadline type %q", s)
}

// Offset returns the duration before the activity date at which
// registration closes.
func (d DeadlineType) Offset() time.Duration {
	switch d {
	case DeadlineOneHourBefore:
		return time.Hour
	case DeadlineOneDayBefore:
		return 24 * time.Hour
	case DeadlineTwoDaysBefore:
		return 48 * time.Hour
	case DeadlineOneWeekBefore:
		return 7 * 24 * time.Hour
	}
	return time.Hour
}

// DeadlineFor computes the registration deadline for an activity date.
func (d DeadlineType) DeadlineFor(date time.Time) time.Time {
	return date.Add(-d.Offset())
}

func (d DeadlineType) String() string {
	switch d {
	case DeadlineOneHourBefore:
		return "one_hour"
	case DeadlineOneDayBefore:
		return "one_day"
	case DeadlineTwoDaysBefore:
		return "two_days"
	case DeadlineOneWeekBefore:
		return "one_week"
	}
	return "one_hour"
}
