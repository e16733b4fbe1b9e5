package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

func TestStaticCalendar(t *testing.T) {
	cal := leave.StaticCalendar{}

	assert.True(t, cal.IsHoliday("nl", date("2025-04-21")))
	assert.True(t, cal.IsHoliday("nl", date("2026-05-14")))
	assert.False(t, cal.IsHoliday("nl", date("2025-04-22")))
	assert.False(t, cal.IsHoliday("be", date("2025-04-21")))
	assert.False(t, cal.IsHoliday("nl", date("2027-01-01")), "years outside the table are never holidays")

	hs := cal.GetHolidays("nl", 2025)
	require.Len(t, hs, 9)
	assert.Equal(t, "Nieuwjaarsdag", hs[0].Name)
	assert.Equal(t, "Tweede Kerstdag", hs[8].Name)

	assert.Equal(t, []int{2025, 2026}, leave.YearsCovered("nl"))
}

func TestComputedCalendar(t *testing.T) {
	cal := leave.NewComputedCalendar()

	assert.True(t, cal.IsHoliday("nl", date("2025-12-25")))
	assert.True(t, cal.IsHoliday("nl", date("2030-12-25")))
	assert.False(t, cal.IsHoliday("nl", date("2025-01-15")))
	assert.False(t, cal.IsHoliday("de", date("2025-12-25")))
	assert.NotEmpty(t, cal.GetHolidays("nl", 2031))
}

func TestCombinedCalendar(t *testing.T) {
	extra := &stubCalendar{days: map[string]bool{"2025-03-03": true}}
	cal := generic.CombinedCalendar{leave.StaticCalendar{}, extra}

	assert.True(t, cal.IsHoliday("nl", date("2025-03-03")))
	assert.True(t, cal.IsHoliday("nl", date("2025-01-01")))
	assert.False(t, cal.IsHoliday("nl", date("2025-03-04")))
}

type stubCalendar struct {
	days map[string]bool
}

func (s *stubCalendar) IsHoliday(_ string, d generic.TimePoint) bool {
	return s.days[d.String()]
}

func (s *stubCalendar) GetHolidays(string, int) []generic.Holiday {
	return nil
}
