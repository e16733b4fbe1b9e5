package leave

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/nl"

	"github.com/warp/leave-planner/generic"
)

// DefaultRegion is the region the planner is built for.
const DefaultRegion = "nl"

// =============================================================================
// STATIC CALENDAR - Fixed table of public holidays per region
// =============================================================================

// staticHolidays lists the covered years only. Dates outside them are never
// holidays; extend the table (or use ComputedCalendar) for later years.
var staticHolidays = map[string]map[string]string{
	"nl": {
		"2025-01-01": "Nieuwjaarsdag",
		"2025-04-18": "Goede Vrijdag",
		"2025-04-21": "Tweede Paasdag",
		"2025-04-27": "Koningsdag",
		"2025-05-05": "Bevrijdingsdag",
		"2025-05-29": "Hemelvaartsdag",
		"2025-06-09": "Tweede Pinksterdag",
		"2025-12-25": "Eerste Kerstdag",
		"2025-12-26": "Tweede Kerstdag",

		"2026-01-01": "Nieuwjaarsdag",
		"2026-04-03": "Goede Vrijdag",
		"2026-04-06": "Tweede Paasdag",
		"2026-04-27": "Koningsdag",
		"2026-05-05": "Bevrijdingsdag",
		"2026-05-14": "Hemelvaartsdag",
		"2026-05-25": "Tweede Pinksterdag",
		"2026-12-25": "Eerste Kerstdag",
		"2026-12-26": "Tweede Kerstdag",
	},
}

// StaticCalendar answers from the fixed holiday table.
type StaticCalendar struct{}

var _ generic.HolidayCalendar = StaticCalendar{}

func (StaticCalendar) IsHoliday(region string, date generic.TimePoint) bool {
	_, ok := staticHolidays[region][date.String()]
	return ok
}

func (StaticCalendar) GetHolidays(region string, year int) []generic.Holiday {
	var out []generic.Holiday
	for ds, name := range staticHolidays[region] {
		d := generic.MustParseDate(ds)
		if d.Year() != year {
			continue
		}
		out = append(out, generic.Holiday{ID: region + "-" + ds, Region: region, Date: d, Name: name})
	}
	sortHolidays(out)
	return out
}

// =============================================================================
// COMPUTED CALENDAR - Rule-based holidays for any year
// =============================================================================

// ComputedCalendar derives Dutch public holidays for any year from the
// rules in rickar/cal. Other regions have no holidays.
type ComputedCalendar struct {
	holidays map[string][]*cal.Holiday
	bc       map[string]*cal.BusinessCalendar
}

var _ generic.HolidayCalendar = (*ComputedCalendar)(nil)

func NewComputedCalendar() *ComputedCalendar {
	c := &ComputedCalendar{
		holidays: map[string][]*cal.Holiday{"nl": nl.Holidays},
		bc:       make(map[string]*cal.BusinessCalendar),
	}
	for region, hs := range c.holidays {
		bc := cal.NewBusinessCalendar()
		bc.AddHoliday(hs...)
		c.bc[region] = bc
	}
	return c
}

func (c *ComputedCalendar) IsHoliday(region string, date generic.TimePoint) bool {
	bc, ok := c.bc[region]
	if !ok {
		return false
	}
	actual, observed, _ := bc.IsHoliday(date.Time)
	return actual || observed
}

func (c *ComputedCalendar) GetHolidays(region string, year int) []generic.Holiday {
	var out []generic.Holiday
	for _, h := range c.holidays[region] {
		_, observed := h.Calc(year)
		if observed.IsZero() {
			continue
		}
		d := generic.NewTimePoint(observed.Year(), observed.Month(), observed.Day())
		out = append(out, generic.Holiday{
			ID:     region + "-" + d.String(),
			Region: region,
			Date:   d,
			Name:   h.Name,
		})
	}
	sortHolidays(out)
	return out
}

func sortHolidays(hs []generic.Holiday) {
	sort.Slice(hs, func(i, j int) bool {
		return hs[i].Date.Time.Before(hs[j].Date.Time) ||
			(hs[i].Date.Time.Equal(hs[j].Date.Time) && hs[i].Name < hs[j].Name)
	})
}

// YearsCovered returns the years the static table knows about for region.
func YearsCovered(region string) []int {
	seen := make(map[int]bool)
	for ds := range staticHolidays[region] {
		t, err := time.Parse(generic.DateLayout, ds)
		if err == nil {
			seen[t.Year()] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
