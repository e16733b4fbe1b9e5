package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day abstraction (this IS a calendar system)
// =============================================================================

type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityInstant
)

// DateLayout is the ISO calendar date format used on every boundary.
const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero
// TimePoint and no error: a missing date is a state callers report on,
// a malformed one is an input error.
func ParseDate(s string) (TimePoint, error) {
	if s == "" {
		return TimePoint{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, &FieldError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return TimePoint{Time: t, Granularity: GranularityDay}, nil
}

// MustParseDate is for tests and static tables.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(fmt.Sprintf("generic: bad date %q: %v", s, err))
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return tp.Time
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity}
}

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// IsWeekend reports Saturday and Sunday.
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format(DateLayout)
	default:
		return tp.Time.Format(time.RFC3339)
	}
}

// =============================================================================
// WEEK NUMBERING - ISO-8601
// =============================================================================

// WeekNumber returns the ISO-8601 week of the day: weeks run Monday to
// Sunday and week 1 holds the year's first Thursday. Dec 29-31 can fall in
// week 1 of the next year and Jan 1-3 in week 52/53 of the previous one.
func WeekNumber(tp TimePoint) int {
	_, week := tp.normalize().ISOWeek()
	return week
}

// IsEvenWeek reports the parity used by alternating-week schedules.
func IsEvenWeek(tp TimePoint) bool {
	return WeekNumber(tp)%2 == 0
}

// =============================================================================
// HOLIDAY CALENDAR - Regional public holidays
// =============================================================================

// Holiday is a day off that suppresses an otherwise normal working day.
type Holiday struct {
	ID        string
	Region    string    // Empty string = applies to every region
	Date      TimePoint // The holiday date
	Name      string    // e.g., "Koningsdag"
	Recurring bool      // true = same month/day every year
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a holiday in the given region.
	// Unknown regions and years are never holidays.
	IsHoliday(region string, date TimePoint) bool

	// GetHolidays returns all holidays for a region in a given year.
	GetHolidays(region string, year int) []Holiday
}

// CombinedCalendar treats a day as a holiday when any member calendar does.
type CombinedCalendar []HolidayCalendar

func (cc CombinedCalendar) IsHoliday(region string, date TimePoint) bool {
	for _, c := range cc {
		if c != nil && c.IsHoliday(region, date) {
			return true
		}
	}
	return false
}

func (cc CombinedCalendar) GetHolidays(region string, year int) []Holiday {
	var out []Holiday
	seen := make(map[string]bool)
	for _, c := range cc {
		if c == nil {
			continue
		}
		for _, h := range c.GetHolidays(region, year) {
			k := h.Date.String() + "|" + h.Name
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, h)
		}
	}
	return out
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts calendar days from from to to; negative when to is earlier.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
