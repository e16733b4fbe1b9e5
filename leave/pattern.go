package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// WORK PATTERN
// =============================================================================

// WeekType selects the weeks a pattern day applies to. The values are the
// editing layer's codes.
type WeekType string

const (
	EveryWeek WeekType = "beide"
	EvenWeeks WeekType = "even"
	OddWeeks  WeekType = "oneven"
)

func (t WeekType) Valid() bool {
	return t == EveryWeek || t == EvenWeeks || t == OddWeeks
}

// WorkDay is one weekday of a pattern.
type WorkDay struct {
	Enabled  bool
	WeekType WeekType
	Hours    generic.Amount
}

// appliesTo reports whether an enabled day is worked in a week of the given
// parity.
func (d WorkDay) appliesTo(weekIsEven bool) bool {
	if !d.Enabled {
		return false
	}
	switch d.WeekType {
	case EveryWeek:
		return true
	case EvenWeeks:
		return weekIsEven
	case OddWeeks:
		return !weekIsEven
	}
	return false
}

// WorkPattern is a weekly template for Monday to Friday. Weekend days are
// never part of a pattern; a missing weekday is a disabled one.
type WorkPattern struct {
	Days       map[Weekday]WorkDay
	IsFlexible bool
}

// Day returns the pattern entry for w, disabled when absent.
func (p WorkPattern) Day(w Weekday) WorkDay {
	if d, ok := p.Days[w]; ok {
		return d
	}
	return WorkDay{WeekType: EveryWeek, Hours: generic.ZeroHours()}
}

// IsWorkingDay reports whether w is worked under p in a week of the given
// parity, and the hours for that day.
func IsWorkingDay(p WorkPattern, w Weekday, weekIsEven bool) (bool, generic.Amount) {
	d := p.Day(w)
	if !d.appliesTo(weekIsEven) {
		return false, generic.ZeroHours()
	}
	return true, d.Hours
}

// PatternDiffers reports whether the phase pattern deviates from the
// baseline on weekday w. Leave is only ever the deviation from baseline.
func PatternDiffers(base, phase WorkPattern, w Weekday, weekIsEven bool) bool {
	b, p := base.Day(w), phase.Day(w)

	if b.Enabled != p.Enabled {
		return true
	}
	if !b.Enabled && !p.Enabled {
		return false
	}
	if b.WeekType != p.WeekType {
		return true
	}
	if !b.Hours.Equal(p.Hours) {
		return true
	}
	if b.WeekType == EveryWeek && p.WeekType == EveryWeek {
		return false
	}
	if b.WeekType == EvenWeeks && p.WeekType == EvenWeeks && weekIsEven {
		return false
	}
	if b.WeekType == OddWeeks && p.WeekType == OddWeeks && !weekIsEven {
		return false
	}
	return true
}

// =============================================================================
// DERIVED TOTALS
// =============================================================================

var half = decimal.NewFromFloat(0.5)

// HoursPerWeek averages the pattern over an even and an odd week.
func (p WorkPattern) HoursPerWeek() generic.Amount {
	total := generic.ZeroHours()
	for _, w := range Weekdays {
		d := p.Day(w)
		if !d.Enabled {
			continue
		}
		if d.WeekType == EveryWeek {
			total = total.Add(d.Hours)
		} else if d.WeekType.Valid() {
			total = total.Add(d.Hours.Mul(half))
		}
	}
	return total
}

// DaysPerWeek averages the number of worked days over an even and an odd week.
func (p WorkPattern) DaysPerWeek() decimal.Decimal {
	total := decimal.Zero
	for _, w := range Weekdays {
		d := p.Day(w)
		if !d.Enabled {
			continue
		}
		if d.WeekType == EveryWeek {
			total = total.Add(decimal.NewFromInt(1))
		} else if d.WeekType.Valid() {
			total = total.Add(half)
		}
	}
	return total
}
