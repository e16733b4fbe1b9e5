package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

func TestStatutoryBalances(t *testing.T) {
	b := leave.StatutoryBalances(generic.Hours(36))

	assertHours(t, 36, b[leave.BirthLeave], "GV")
	assertHours(t, 180, b[leave.AdditionalBirthLeave], "AGV")
	assertHours(t, 324, b[leave.PaidParentalLeave], "BOV")
	assertHours(t, 144, b[leave.Vacation], "VD")

	// Twenty days of a 32-hour, five-day week
	assertHours(t, 128, leave.StatutoryBalances(generic.Hours(32))[leave.Vacation], "VD part-time")
}

func TestHoursDaysConversion(t *testing.T) {
	assert.Equal(t, "2", leave.HoursToDays(generic.Hours(16), generic.Hours(40)).String())
	assert.Equal(t, "0", leave.HoursToDays(generic.Hours(16), generic.Hours(0)).String())
	assertHours(t, 18, leave.DaysToHours(generic.MustParseDecimal("2.5"), generic.Hours(36)), "days to hours")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"2025-01-01", "2025-01-01", "1 day"},
		{"2025-01-01", "2025-01-03", "3 days"},
		{"2025-01-01", "2025-01-07", "1 week"},
		{"2025-01-01", "2025-01-08", "1 week and 1 day"},
		{"2025-01-01", "2025-01-14", "2 weeks"},
		{"2025-01-01", "2025-01-17", "2 weeks and 3 days"},
		{"2025-01-17", "2025-01-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			assert.Equal(t, tt.want, leave.FormatDuration(date(tt.start), date(tt.end)))
		})
	}

	assert.Equal(t, "", leave.FormatDuration(generic.TimePoint{}, date("2025-01-01")))
}

func TestNonWorkingPattern(t *testing.T) {
	p := leave.NonWorkingPattern()
	for _, w := range leave.Weekdays {
		works, _ := leave.IsWorkingDay(p, w, true)
		assert.False(t, works, w.String())
	}
	assert.True(t, p.HoursPerWeek().IsZero())
}
