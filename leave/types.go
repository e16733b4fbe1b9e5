// Package leave computes day-by-day leave consumption for a parental leave
// plan. It uses the generic package for hour arithmetic, calendars and the
// priority-ordered consumption of funds.
package leave

import (
	"sort"
	"time"

	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// FUND TYPES
// =============================================================================

// FundType identifies a leave fund. The codes are the ones the editing
// layer sends.
type FundType string

const (
	BirthLeave           FundType = "GV"  // geboorteverlof
	AdditionalBirthLeave FundType = "AGV" // aanvullend geboorteverlof
	PaidParentalLeave    FundType = "BOV" // betaald ouderschapsverlof
	Vacation             FundType = "VD"  // vakantiedagen
)

// FundPriority is the fixed global consumption order.
var FundPriority = []FundType{BirthLeave, AdditionalBirthLeave, PaidParentalLeave, Vacation}

// regulatory caps in working days; Vacation has none
var fundCaps = map[FundType]int{
	BirthLeave:           5,
	AdditionalBirthLeave: 25,
	PaidParentalLeave:    45,
}

var fundNames = map[FundType]string{
	BirthLeave:           "Birth Leave",
	AdditionalBirthLeave: "Additional Birth Leave",
	PaidParentalLeave:    "Paid Parental Leave",
	Vacation:             "Vacation",
}

func (f FundType) Valid() bool {
	_, ok := fundNames[f]
	return ok
}

func (f FundType) Name() string {
	if n, ok := fundNames[f]; ok {
		return n
	}
	return string(f)
}

// Cap returns the statutory maximum in working days and whether one applies.
func (f FundType) Cap() (int, bool) {
	c, ok := fundCaps[f]
	return c, ok
}

func (f FundType) priority() int {
	for i, p := range FundPriority {
		if p == f {
			return i
		}
	}
	return len(FundPriority)
}

// ParseFundType validates a fund code.
func ParseFundType(s string) (FundType, error) {
	f := FundType(s)
	if !f.Valid() {
		return "", &generic.FieldError{Field: "leave_type", Value: s, Err: generic.ErrUnknownFund}
	}
	return f, nil
}

// FundBalances maps each fund to its available hours at the start of a
// calculation.
type FundBalances map[FundType]generic.Amount

// Get returns the balance for f, zero hours when absent.
func (b FundBalances) Get(f FundType) generic.Amount {
	if v, ok := b[f]; ok {
		return v
	}
	return generic.ZeroHours()
}

func (b FundBalances) toPools() map[string]generic.Amount {
	m := make(map[string]generic.Amount, len(b))
	for f, v := range b {
		m[string(f)] = v
	}
	return m
}

// =============================================================================
// PHASE
// =============================================================================

// Phase is a date range with its own work pattern and the funds it may
// draw from. A zero Start or End means the date is missing.
type Phase struct {
	ID      string
	Name    string
	Start   generic.TimePoint
	End     generic.TimePoint
	Pattern WorkPattern
	Funds   []FundType
}

// Period returns the phase as an inclusive range.
func (p Phase) Period() generic.Period {
	return generic.Period{Start: p.Start, End: p.End}
}

// HasDates reports whether both start and end are set.
func (p Phase) HasDates() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// EligibleFunds returns the phase's known funds, deduplicated and ordered by
// FundPriority regardless of the order the user picked them in.
func (p Phase) EligibleFunds() []FundType {
	seen := make(map[FundType]bool, len(p.Funds))
	var out []FundType
	for _, f := range p.Funds {
		if !f.Valid() || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].priority() < out[j].priority() })
	return out
}

// =============================================================================
// WEEKDAYS
// =============================================================================

// Weekday is a pattern key. The editing layer uses lowercase Dutch names.
type Weekday string

const (
	Monday    Weekday = "maandag"
	Tuesday   Weekday = "dinsdag"
	Wednesday Weekday = "woensdag"
	Thursday  Weekday = "donderdag"
	Friday    Weekday = "vrijdag"
)

// Weekdays lists the pattern keys Monday to Friday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayKeys = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
}

var dayNames = [...]string{"Zondag", "Maandag", "Dinsdag", "Woensdag", "Donderdag", "Vrijdag", "Zaterdag"}

// WeekdayOf maps a calendar weekday to its pattern key; false on weekends.
func WeekdayOf(d time.Weekday) (Weekday, bool) {
	w, ok := weekdayKeys[d]
	return w, ok
}

// ParseWeekday validates a pattern key.
func ParseWeekday(s string) (Weekday, error) {
	for _, w := range Weekdays {
		if string(w) == s {
			return w, nil
		}
	}
	return "", &generic.FieldError{Field: "weekday", Value: s, Err: generic.ErrInvalidPattern}
}

// DayName is the display name of a calendar weekday, e.g. "Woensdag".
func DayName(d time.Weekday) string {
	return dayNames[d]
}

func (w Weekday) String() string { return string(w) }
