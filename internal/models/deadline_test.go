package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDeadlineType(t *testing.T) {
	tests := []struct {
		in   string
		want DeadlineType
	}{
		{"one_hour", DeadlineOneHourBefore},
		{"one_day", DeadlineOneDayBefore},
		{"two_days", DeadlineTwoDaysBefore},
		{"one_week", DeadlineOneWeekBefore},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDeadlineType(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	_, err := ParseDeadlineType("three_hours")
	assert.Error(t, err)
}

func TestDeadlineFor(t *testing.T) {
	date := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, date.Add(-time.Hour), DeadlineOneHourBefore.DeadlineFor(date))
	assert.Equal(t, date.Add(-24*time.Hour), DeadlineOneDayBefore.DeadlineFor(date))
	assert.Equal(t, date.Add(-48*time.Hour), DeadlineTwoDaysBefore.DeadlineFor(date))
	assert.Equal(t, date.Add(-7*24*time.Hour), DeadlineOneWeekBefore.DeadlineFor(date))

	// The deadline never lands after the date itself.
	for _, dt := range []DeadlineType{DeadlineOneHourBefore, DeadlineOneDayBefore, DeadlineTwoDaysBefore, DeadlineOneWeekBefore} {
		assert.True(t, dt.DeadlineFor(date).Before(date))
	}
}
