package leave_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) generic.TimePoint {
	return generic.MustParseDate(s)
}

func fullTime() leave.WorkPattern {
	return leave.FullTimePattern(generic.Hours(8))
}

func fullLeavePhase(id, start, end string, funds ...leave.FundType) leave.Phase {
	return leave.Phase{
		ID:      id,
		Name:    "Phase " + id,
		Start:   date(start),
		End:     date(end),
		Pattern: leave.NonWorkingPattern(),
		Funds:   funds,
	}
}

func assertHours(t *testing.T, want float64, got generic.Amount, msg string) {
	t.Helper()
	assert.Truef(t, got.Equal(generic.Hours(want)), "%s: want %vh, got %sh", msg, want, got.Value)
}

func warningCodes(c *leave.Calculation) []leave.WarningCode {
	codes := make([]leave.WarningCode, 0, len(c.Warnings))
	for _, w := range c.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

// =============================================================================
// BASIC CONSUMPTION
// =============================================================================

func TestCalculate_ThreeDaysOfBirthLeave(t *testing.T) {
	// GIVEN: Full-time 8h baseline, phase Wed 15 - Fri 17 Jan 2025 not working,
	//        Birth Leave only with 40h
	// WHEN: Calculating
	// THEN: 3 leave days, 24h, 16h of Birth Leave left, no warnings

	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-17", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(40)}

	c := leave.Calculate(phases, balances, fullTime())

	assert.Equal(t, 3, c.TotalDays)
	assertHours(t, 24, c.TotalHours, "total hours")
	assert.True(t, c.IsValid)
	assert.Empty(t, c.Warnings)

	gv, ok := c.Fund(leave.BirthLeave)
	require.True(t, ok)
	assertHours(t, 24, gv.Hours, "GV used")
	assertHours(t, 16, gv.Remaining, "GV remaining")
	assert.True(t, gv.Days.Equal(generic.MustParseDecimal("3")), "GV days = %s", gv.Days)
	assert.Equal(t, 60, gv.Percentage)

	require.Len(t, c.DailyDetails, 3)
	for _, d := range c.DailyDetails {
		assert.Equal(t, leave.LeaveConsumingDay, d.Kind)
		require.Len(t, d.Allocations, 1)
		assert.Equal(t, leave.BirthLeave, d.Allocations[0].Fund)
		assertHours(t, 8, d.Allocations[0].Hours, "daily allocation")
	}
	assert.Equal(t, "Woensdag", c.DailyDetails[0].DayName)
	assert.Equal(t, 3, c.DailyDetails[0].WeekNumber)
}

func TestCalculate_DoesNotMutateBalances(t *testing.T) {
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(40)}
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-17", leave.BirthLeave)}

	leave.Calculate(phases, balances, fullTime())

	assertHours(t, 40, balances[leave.BirthLeave], "caller balance")
}

func TestCalculate_NoPhases(t *testing.T) {
	// GIVEN: No phases
	// WHEN: Calculating
	// THEN: Zeroed, valid report; every fund listed with its full balance

	balances := leave.StatutoryBalances(generic.Hours(40))
	c := leave.Calculate(nil, balances, fullTime())

	assert.Equal(t, 0, c.TotalDays)
	assert.True(t, c.TotalHours.IsZero())
	assert.True(t, c.IsValid)
	assert.Empty(t, c.DailyDetails)
	require.Len(t, c.Breakdown, 4)
	for _, b := range c.Breakdown {
		assert.True(t, b.Hours.IsZero())
		assert.Equal(t, 0, b.Percentage)
		assert.True(t, b.Remaining.Equal(balances.Get(b.Fund)))
	}
}

func TestCalculate_NoDeviationMeansNoLeave(t *testing.T) {
	// GIVEN: A phase whose pattern equals the baseline
	// THEN: Nothing is leave-consuming

	phase := leave.Phase{
		ID: "p1", Name: "Same", Start: date("2025-01-06"), End: date("2025-02-02"),
		Pattern: fullTime(), Funds: []leave.FundType{leave.BirthLeave, leave.Vacation},
	}
	balances := leave.StatutoryBalances(generic.Hours(40))

	c := leave.Calculate([]leave.Phase{phase}, balances, fullTime())

	assert.Equal(t, 0, c.TotalDays)
	assert.True(t, c.TotalHours.IsZero())
	assert.True(t, c.IsValid)
	assert.Len(t, c.DailyDetails, 28)
	for _, d := range c.DailyDetails {
		assert.NotEqual(t, leave.LeaveConsumingDay, d.Kind)
		assert.Empty(t, d.Allocations)
	}
}

func TestCalculate_WeekendsNeverConsume(t *testing.T) {
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-19", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(40)}

	c := leave.Calculate(phases, balances, fullTime())

	require.Len(t, c.DailyDetails, 5)
	for _, d := range c.DailyDetails[3:] {
		assert.Equal(t, leave.Weekend, d.Kind)
		assert.True(t, d.Hours.IsZero())
		assert.False(t, d.IsWorkDay)
		assert.Empty(t, d.Allocations)
	}
	assert.Equal(t, 3, c.TotalDays)
}

// =============================================================================
// PRIORITY AND SHORTFALL
// =============================================================================

func TestCalculate_PriorityOrderIgnoresUserOrder(t *testing.T) {
	// GIVEN: Funds picked as [VD, GV]; GV has 4h, VD 100h
	// WHEN: One 8h leave day
	// THEN: GV pays 4h first, VD the remaining 4h

	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-15", leave.Vacation, leave.BirthLeave)}
	balances := leave.FundBalances{
		leave.BirthLeave: generic.Hours(4),
		leave.Vacation:   generic.Hours(100),
	}

	c := leave.Calculate(phases, balances, fullTime())

	require.Len(t, c.DailyDetails, 1)
	allocs := c.DailyDetails[0].Allocations
	require.Len(t, allocs, 2)
	assert.Equal(t, leave.BirthLeave, allocs[0].Fund)
	assertHours(t, 4, allocs[0].Hours, "GV share")
	assert.Equal(t, leave.Vacation, allocs[1].Fund)
	assertHours(t, 4, allocs[1].Hours, "VD share")

	gv, _ := c.Fund(leave.BirthLeave)
	vd, _ := c.Fund(leave.Vacation)
	assert.True(t, gv.Days.Equal(generic.MustParseDecimal("0.5")))
	assert.True(t, vd.Days.Equal(generic.MustParseDecimal("0.5")))
	assert.Equal(t, 100, gv.Percentage)
	assert.Equal(t, 4, vd.Percentage)
	assert.True(t, c.IsValid)
}

func TestCalculate_IneligibleFundUntouched(t *testing.T) {
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-17", leave.PaidParentalLeave)}
	balances := leave.FundBalances{
		leave.BirthLeave:        generic.Hours(40),
		leave.PaidParentalLeave: generic.Hours(100),
	}

	c := leave.Calculate(phases, balances, fullTime())

	gv, _ := c.Fund(leave.BirthLeave)
	bov, _ := c.Fund(leave.PaidParentalLeave)
	assert.True(t, gv.Hours.IsZero())
	assertHours(t, 24, bov.Hours, "BOV used")
	assertHours(t, 76, bov.Remaining, "BOV remaining")
}

func TestCalculate_ShortfallWarnsPerDay(t *testing.T) {
	// GIVEN: 12h of Birth Leave for three 8h days
	// THEN: Day 1 fully paid, day 2 half paid, day 3 unpaid;
	//       one shortfall warning for each of days 2 and 3

	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-17", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(12)}

	c := leave.Calculate(phases, balances, fullTime())

	assert.False(t, c.IsValid)
	assert.Equal(t, 3, c.TotalDays)
	assertHours(t, 24, c.TotalHours, "total hours")
	require.Len(t, c.Warnings, 2)
	assert.Equal(t, leave.WarnInsufficientHours, c.Warnings[0].Code)
	assert.True(t, c.Warnings[0].Date.Equal(date("2025-01-16")))
	assert.True(t, c.Warnings[1].Date.Equal(date("2025-01-17")))
	assert.Contains(t, c.Warnings[0].Message, "Thursday 16 January 2025")

	assertHours(t, 8, c.DailyDetails[0].AllocatedHours(), "day 1")
	assertHours(t, 4, c.DailyDetails[1].AllocatedHours(), "day 2")
	assertHours(t, 0, c.DailyDetails[2].AllocatedHours(), "day 3")

	gv, _ := c.Fund(leave.BirthLeave)
	assert.True(t, gv.Days.Equal(generic.MustParseDecimal("1.5")))
	assert.True(t, gv.Remaining.IsZero())
	assert.Equal(t, 100, gv.Percentage)
}

func TestCalculate_BalancesCarryAcrossPhases(t *testing.T) {
	phases := []leave.Phase{
		fullLeavePhase("late", "2025-02-03", "2025-02-03", leave.BirthLeave, leave.Vacation),
		fullLeavePhase("early", "2025-01-15", "2025-01-17", leave.BirthLeave),
	}
	balances := leave.FundBalances{
		leave.BirthLeave: generic.Hours(28),
		leave.Vacation:   generic.Hours(40),
	}

	c := leave.Calculate(phases, balances, fullTime())

	// early runs first despite input order and leaves 4h of GV
	require.Len(t, c.PhaseSummaries, 2)
	assert.Equal(t, "early", c.PhaseSummaries[0].ID)
	last := c.DailyDetails[len(c.DailyDetails)-1]
	require.Len(t, last.Allocations, 2)
	assertHours(t, 4, last.Allocations[0].Hours, "GV leftover")
	assertHours(t, 4, last.Allocations[1].Hours, "VD top-up")
	assert.True(t, c.IsValid)
}

// =============================================================================
// CAPS
// =============================================================================

func TestCalculate_BirthLeaveCapExceeded(t *testing.T) {
	// GIVEN: Mon 6 - Mon 13 Jan 2025 off, GV only with 48h
	// WHEN: Calculating
	// THEN: 6 days of GV used, cap warning, report invalid

	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-06", "2025-01-13", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(48)}

	c := leave.Calculate(phases, balances, fullTime())

	assert.Equal(t, 6, c.TotalDays)
	assert.False(t, c.IsValid)
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, leave.WarnCapExceeded, c.Warnings[0].Code)
	assert.Equal(t, leave.BirthLeave, c.Warnings[0].Fund)
	assert.Contains(t, c.Warnings[0].Message, "5 working days")
}

func TestCalculate_CapReachedExactlyIsValid(t *testing.T) {
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-06", "2025-01-10", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(48)}

	c := leave.Calculate(phases, balances, fullTime())

	assert.Equal(t, 5, c.TotalDays)
	assert.True(t, c.IsValid)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestCalculate_HolidayIsNotLeave(t *testing.T) {
	// GIVEN: Week of Easter Monday 2025 off
	// THEN: Monday is a holiday carrying baseline hours, the rest is leave

	phases := []leave.Phase{fullLeavePhase("p1", "2025-04-21", "2025-04-25", leave.Vacation)}
	balances := leave.FundBalances{leave.Vacation: generic.Hours(160)}

	c := leave.Calculate(phases, balances, fullTime())

	require.Len(t, c.DailyDetails, 5)
	mon := c.DailyDetails[0]
	assert.Equal(t, leave.Holiday, mon.Kind)
	assert.False(t, mon.IsWorkDay)
	assertHours(t, 8, mon.Hours, "holiday hours")
	assert.Empty(t, mon.Allocations)
	assert.Equal(t, 4, c.TotalDays)
}

func TestCalculator_NilCalendarHasNoHolidays(t *testing.T) {
	calc := leave.NewCalculator(nil, leave.DefaultRegion)
	phases := []leave.Phase{fullLeavePhase("p1", "2025-04-21", "2025-04-25", leave.Vacation)}
	balances := leave.FundBalances{leave.Vacation: generic.Hours(160)}

	c := calc.Calculate(phases, balances, fullTime())

	assert.Equal(t, 5, c.TotalDays)
}

func TestCalculate_AlternatingWeekBaseline(t *testing.T) {
	// GIVEN: Baseline works Mondays in even weeks only; the phase works
	//        every Monday
	// WHEN: Calculating Mon 6 Jan (week 2) through Mon 13 Jan (week 3)
	// THEN: The even-week Monday consumes leave because the week types
	//       differ; the odd-week Monday is a standard free day

	baseline := leave.WorkPattern{Days: map[leave.Weekday]leave.WorkDay{
		leave.Monday: {Enabled: true, WeekType: leave.EvenWeeks, Hours: generic.Hours(8)},
	}}
	phasePattern := leave.WorkPattern{Days: map[leave.Weekday]leave.WorkDay{
		leave.Monday: {Enabled: true, WeekType: leave.EveryWeek, Hours: generic.Hours(8)},
	}}
	phase := leave.Phase{
		ID: "p1", Name: "Parity", Start: date("2025-01-06"), End: date("2025-01-13"),
		Pattern: phasePattern, Funds: []leave.FundType{leave.Vacation},
	}
	balances := leave.FundBalances{leave.Vacation: generic.Hours(80)}

	c := leave.Calculate([]leave.Phase{phase}, balances, baseline)

	require.Len(t, c.DailyDetails, 8)
	even, odd := c.DailyDetails[0], c.DailyDetails[7]
	assert.Equal(t, 2, even.WeekNumber)
	assert.Equal(t, leave.LeaveConsumingDay, even.Kind)
	assert.Equal(t, 3, odd.WeekNumber)
	assert.Equal(t, leave.StandardFreeDay, odd.Kind)
	for _, d := range c.DailyDetails[1:5] {
		assert.Equal(t, leave.StandardFreeDay, d.Kind)
	}
	assert.Equal(t, 1, c.TotalDays)
}

// =============================================================================
// STRUCTURAL WARNINGS
// =============================================================================

func TestCalculate_MissingDatesSkipsPhase(t *testing.T) {
	undated := leave.Phase{ID: "p0", Name: "Draft", Start: date("2025-01-15"), Pattern: leave.NonWorkingPattern(),
		Funds: []leave.FundType{leave.BirthLeave}}
	phases := []leave.Phase{undated, fullLeavePhase("p1", "2025-01-20", "2025-01-20", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(40)}

	c := leave.Calculate(phases, balances, fullTime())

	require.Len(t, c.Warnings, 1)
	assert.Equal(t, leave.WarnMissingDates, c.Warnings[0].Code)
	assert.Equal(t, "p0", c.Warnings[0].PhaseID)
	assert.Len(t, c.PhaseSummaries, 1)
	assert.Equal(t, 1, c.TotalDays)
	assert.False(t, c.IsValid)
}

func TestCalculate_EndBeforeStartHasNoDays(t *testing.T) {
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-17", "2025-01-15", leave.BirthLeave)}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(40)}

	c := leave.Calculate(phases, balances, fullTime())

	assert.Empty(t, c.DailyDetails)
	assert.Equal(t, 0, c.TotalDays)
	assert.True(t, c.IsValid)
}

func TestCalculate_OverlappingPhasesWarn(t *testing.T) {
	// GIVEN: Two phases sharing Thu 16 and Fri 17 Jan
	// THEN: One overlap warning; shared days are processed by both phases

	phases := []leave.Phase{
		fullLeavePhase("a", "2025-01-13", "2025-01-17", leave.Vacation),
		fullLeavePhase("b", "2025-01-16", "2025-01-20", leave.Vacation),
	}
	balances := leave.FundBalances{leave.Vacation: generic.Hours(200)}

	c := leave.Calculate(phases, balances, fullTime())

	assert.Equal(t, []leave.WarningCode{leave.WarnPhaseOverlap}, warningCodes(c))
	assert.True(t, c.Warnings[0].Date.Equal(date("2025-01-16")))
	assert.Equal(t, "b", c.Warnings[0].PhaseID)
	assert.Equal(t, 8, c.TotalDays)
	assert.False(t, c.IsValid)
}

func TestCalculate_UnknownFundsOnlyMeansNoLeave(t *testing.T) {
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-15", "2025-01-17", leave.FundType("XX"))}

	c := leave.Calculate(phases, leave.StatutoryBalances(generic.Hours(40)), fullTime())

	assert.Equal(t, 0, c.TotalDays)
	for _, d := range c.DailyDetails {
		assert.Equal(t, leave.BaselineWorkDay, d.Kind)
	}
}

// =============================================================================
// SUMMARIES AND DETERMINISM
// =============================================================================

func TestCalculate_PhaseSummary(t *testing.T) {
	phases := []leave.Phase{fullLeavePhase("p1", "2025-01-06", "2025-01-19", leave.BirthLeave, leave.AdditionalBirthLeave)}
	balances := leave.FundBalances{
		leave.BirthLeave:           generic.Hours(40),
		leave.AdditionalBirthLeave: generic.Hours(200),
	}

	c := leave.Calculate(phases, balances, fullTime())

	require.Len(t, c.PhaseSummaries, 1)
	s := c.PhaseSummaries[0]
	assert.Equal(t, "2 weeks", s.Duration)
	assert.Equal(t, 10, s.TotalDays)
	assertHours(t, 80, s.TotalHours, "phase hours")
	assertHours(t, 40, s.FundHours[leave.BirthLeave], "phase GV")
	assertHours(t, 40, s.FundHours[leave.AdditionalBirthLeave], "phase AGV")
	assert.Len(t, c.LeaveDays(), 10)
}

func TestCalculate_Idempotent(t *testing.T) {
	phases := []leave.Phase{
		fullLeavePhase("a", "2025-01-06", "2025-03-28", leave.BirthLeave, leave.AdditionalBirthLeave, leave.Vacation),
		fullLeavePhase("b", "2025-04-01", "2025-05-31", leave.PaidParentalLeave),
	}
	balances := leave.StatutoryBalances(generic.Hours(36))

	first, err := json.Marshal(leave.Calculate(phases, balances, fullTime()))
	require.NoError(t, err)
	second, err := json.Marshal(leave.Calculate(phases, balances, fullTime()))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestCalculate_DailyAllocationNeverExceedsDayHours(t *testing.T) {
	phases := []leave.Phase{
		fullLeavePhase("a", "2025-01-06", "2025-06-27", leave.BirthLeave, leave.AdditionalBirthLeave, leave.PaidParentalLeave),
	}
	balances := leave.StatutoryBalances(generic.Hours(40))

	c := leave.Calculate(phases, balances, fullTime())

	shortDays := 0
	for _, d := range c.LeaveDays() {
		got := d.AllocatedHours()
		assert.False(t, got.GreaterThan(d.Hours), "%s over-allocated", d.Date)
		if got.LessThan(d.Hours) {
			shortDays++
		}
	}
	insufficient := 0
	for _, w := range c.Warnings {
		if w.Code == leave.WarnInsufficientHours {
			insufficient++
		}
	}
	assert.Equal(t, shortDays, insufficient)
	assert.Greater(t, insufficient, 0)
}
