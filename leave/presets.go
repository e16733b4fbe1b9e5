package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// STATUTORY BALANCES
// =============================================================================

var (
	workDaysPerWeek = decimal.NewFromInt(5)
	vacationDays    = decimal.NewFromInt(20)
)

// StatutoryBalances derives the default fund sizes from contract hours per
// week: one week of birth leave, five weeks of additional birth leave, nine
// weeks of paid parental leave and twenty days of vacation.
func StatutoryBalances(weeklyHours generic.Amount) FundBalances {
	return FundBalances{
		BirthLeave:           weeklyHours,
		AdditionalBirthLeave: weeklyHours.Mul(decimal.NewFromInt(5)),
		PaidParentalLeave:    weeklyHours.Mul(decimal.NewFromInt(9)),
		Vacation:             DaysToHours(vacationDays, weeklyHours),
	}
}

// HoursToDays converts hours to working days of weeklyHours/5, rounded to
// two decimals. Zero contract hours give zero days.
func HoursToDays(hours, weeklyHours generic.Amount) decimal.Decimal {
	if !weeklyHours.IsPositive() {
		return decimal.Zero
	}
	daily := weeklyHours.Value.Div(workDaysPerWeek)
	return hours.Value.Div(daily).Round(2)
}

// DaysToHours is the inverse of HoursToDays.
func DaysToHours(days decimal.Decimal, weeklyHours generic.Amount) generic.Amount {
	daily := weeklyHours.Value.Div(workDaysPerWeek)
	return generic.Amount{Value: days.Mul(daily).Round(2), Unit: generic.UnitHours}
}

// =============================================================================
// PATTERN PRESETS
// =============================================================================

// FullTimePattern works every weekday of every week for hoursPerDay.
func FullTimePattern(hoursPerDay generic.Amount) WorkPattern {
	days := make(map[Weekday]WorkDay, len(Weekdays))
	for _, w := range Weekdays {
		days[w] = WorkDay{Enabled: true, WeekType: EveryWeek, Hours: hoursPerDay}
	}
	return WorkPattern{Days: days}
}

// NonWorkingPattern disables every weekday. As a phase pattern it turns
// every baseline working day into leave.
func NonWorkingPattern() WorkPattern {
	days := make(map[Weekday]WorkDay, len(Weekdays))
	for _, w := range Weekdays {
		days[w] = WorkDay{WeekType: EveryWeek, Hours: generic.ZeroHours()}
	}
	return WorkPattern{Days: days}
}

// =============================================================================
// DURATION TEXT
// =============================================================================

// FormatDuration renders the calendar span of [start, end] in weeks and
// days, e.g. "2 weeks and 3 days". Missing or inverted ranges give "".
func FormatDuration(start, end generic.TimePoint) string {
	p := generic.Period{Start: start, End: end}
	if !p.IsValid() {
		return ""
	}
	total := p.Length()
	weeks, rest := total/7, total%7

	switch {
	case total == 1:
		return "1 day"
	case weeks == 0:
		return fmt.Sprintf("%d days", total)
	case rest == 0:
		return plural(weeks, "week")
	default:
		return plural(weeks, "week") + " and " + plural(rest, "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
