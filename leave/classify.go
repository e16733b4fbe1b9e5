package leave

import (
	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// DAY CLASSIFICATION
// =============================================================================

// DayKind is the classification of one calendar day within a phase. The
// kinds are mutually exclusive and checked in declaration order.
type DayKind int

const (
	Weekend DayKind = iota
	Holiday
	StandardFreeDay
	BaselineWorkDay
	LeaveConsumingDay
)

func (k DayKind) String() string {
	switch k {
	case Weekend:
		return "weekend"
	case Holiday:
		return "holiday"
	case StandardFreeDay:
		return "standard_free_day"
	case BaselineWorkDay:
		return "baseline_work_day"
	case LeaveConsumingDay:
		return "leave_day"
	}
	return "unknown"
}

// DayClassification is the outcome for one day.
//
// Hours is the baseline figure for the day: the hours the person would have
// worked. It is also recorded on holidays, for reporting, although a holiday
// is never a working day.
type DayClassification struct {
	Date       generic.TimePoint
	Kind       DayKind
	WorkingDay bool
	Hours      generic.Amount
	WeekNumber int
	WeekIsEven bool
}

// Classifier combines calendar, holidays and patterns into a DayKind.
type Classifier struct {
	Holidays generic.HolidayCalendar
	Region   string
}

// Classify decides what date is under phase, measured against baseline.
func (c Classifier) Classify(date generic.TimePoint, phase Phase, baseline WorkPattern) DayClassification {
	even := generic.IsEvenWeek(date)
	out := DayClassification{
		Date:       date,
		WeekNumber: generic.WeekNumber(date),
		WeekIsEven: even,
		Hours:      generic.ZeroHours(),
	}

	if date.IsWeekend() {
		out.Kind = Weekend
		return out
	}
	weekday, _ := WeekdayOf(date.Weekday())

	baseWorks, baseHours := IsWorkingDay(baseline, weekday, even)

	if c.Holidays != nil && c.Holidays.IsHoliday(c.Region, date) {
		out.Kind = Holiday
		if baseWorks {
			out.Hours = baseHours
		}
		return out
	}

	if !baseWorks {
		out.Kind = StandardFreeDay
		return out
	}

	out.WorkingDay = true
	out.Hours = baseHours
	if PatternDiffers(baseline, phase.Pattern, weekday, even) && len(phase.EligibleFunds()) > 0 {
		out.Kind = LeaveConsumingDay
	} else {
		out.Kind = BaselineWorkDay
	}
	return out
}
