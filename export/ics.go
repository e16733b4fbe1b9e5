package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

const icsProductID = "-//warp//leave-planner//EN"

// WriteICS renders every dated phase and every leave day as all-day events.
func WriteICS(w io.Writer, r Report) error {
	c := r.Calculation
	stamp := r.generated()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetName(r.Name)

	for _, p := range c.PhaseSummaries {
		if p.Start.IsZero() || p.End.IsZero() {
			continue
		}
		evt := cal.AddEvent(fmt.Sprintf("%s@leave-planner", p.ID))
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(p.Start.Time)
		evt.SetAllDayEndAt(p.End.AddDays(1).Time) // DTEND is exclusive
		evt.SetSummary(p.Name)
		evt.SetDescription(fmt.Sprintf("%s, %d leave days, %s hours",
			p.Duration, p.TotalDays, p.TotalHours.Value.StringFixed(1)))
	}

	for _, d := range c.LeaveDays() {
		evt := cal.AddEvent(fmt.Sprintf("%s-%s@leave-planner", d.PhaseID, d.Date.Time.Format("20060102")))
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(d.Date.Time)
		evt.SetAllDayEndAt(d.Date.AddDays(1).Time)
		evt.SetSummary(fmt.Sprintf("Leave (%s)", d.Phase))
		evt.SetDescription(describeAllocations(d))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("export: write ics: %w", err)
	}
	return nil
}

func describeAllocations(d leave.DailyDetail) string {
	if len(d.Allocations) == 0 {
		return fmt.Sprintf("%s hours, not covered", d.Hours.Value.StringFixed(1))
	}
	parts := make([]string, 0, len(d.Allocations))
	for _, a := range d.Allocations {
		parts = append(parts, fmt.Sprintf("%sh %s", a.Hours.Value.StringFixed(1), a.Fund))
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// HOLIDAY IMPORT
// =============================================================================

// ReadHolidays parses an ICS calendar into holidays for region. Each event's
// start date becomes one holiday; events without a usable start are skipped,
// as are repeats of the same date and name.
func ReadHolidays(r io.Reader, region string) ([]generic.Holiday, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICS: %w", err)
	}

	var out []generic.Holiday
	seen := make(map[string]bool)
	for _, evt := range cal.Events() {
		d, ok := eventDate(evt)
		if !ok {
			continue
		}
		name := ""
		if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
			name = strings.TrimSpace(p.Value)
		}
		if name == "" {
			name = "Holiday"
		}
		id := holidayID(region, d, name)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, generic.Holiday{ID: id, Region: region, Date: d, Name: name})
	}
	return out, nil
}

// holidayID is stable for the same region, date and name, so importing a
// calendar twice updates rows instead of duplicating them.
func holidayID(region string, d generic.TimePoint, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("holiday:"+region+"/"+d.String()+"/"+name)).String()
}

func eventDate(evt *ics.VEvent) (generic.TimePoint, bool) {
	prop := evt.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return generic.TimePoint{}, false
	}
	for _, layout := range []string{"20060102", "20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, prop.Value); err == nil {
			return generic.NewTimePoint(t.Year(), t.Month(), t.Day()), true
		}
	}
	return generic.TimePoint{}, false
}
