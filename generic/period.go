package generic

// =============================================================================
// PERIOD - Inclusive calendar range
// =============================================================================

// Period is an inclusive range of calendar days.
//
// Examples:
//   - A leave phase: Jan 15 - Mar 31
//   - A calendar year: Jan 1 - Dec 31
type Period struct {
	Start TimePoint
	End   TimePoint
}

// IsValid reports whether both bounds are set and End is not before Start.
func (p Period) IsValid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
// An inverted period has no days.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Length is the number of calendar days in the period, both ends included.
func (p Period) Length() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Overlap returns the shared days of two periods and whether there are any.
func (p Period) Overlap(other Period) (Period, bool) {
	start := p.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := p.End
	if other.End.Before(end) {
		end = other.End
	}
	if end.Before(start) {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
