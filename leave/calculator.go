package leave

import (
	"fmt"
	"sort"

	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// CALCULATOR - Entry point of the engine
// =============================================================================

// Calculator turns a plan into a Calculation. It holds no state between
// calls, so one Calculator may serve concurrent requests.
type Calculator struct {
	Holidays generic.HolidayCalendar
	Region   string

	distributor generic.ConsumptionDistributor
}

// NewCalculator uses holidays for region. A nil calendar means no holidays.
func NewCalculator(holidays generic.HolidayCalendar, region string) *Calculator {
	return &Calculator{Holidays: holidays, Region: region}
}

var defaultCalculator = NewCalculator(StaticCalendar{}, DefaultRegion)

// Calculate runs the engine with the built-in Dutch holiday table.
func Calculate(phases []Phase, balances FundBalances, baseline WorkPattern) *Calculation {
	return defaultCalculator.Calculate(phases, balances, baseline)
}

// Calculate walks every day of every phase in start-date order and pays for
// each leave day from the phase's funds, highest priority first. Problems
// never abort the walk; they end up as warnings on the result.
//
// Dates must be well formed; parsing belongs to the caller.
func (c *Calculator) Calculate(phases []Phase, balances FundBalances, baseline WorkPattern) *Calculation {
	agg := newAggregator()
	sheet := generic.NewBalanceSheet(generic.UnitHours, balances.toPools())
	if len(phases) == 0 {
		return agg.finish(sheet)
	}

	classifier := Classifier{Holidays: c.Holidays, Region: c.Region}

	sorted := sortPhases(phases)
	detectOverlaps(agg, sorted)

	for _, phase := range sorted {
		if !phase.HasDates() {
			agg.warn(Warning{
				Code:    WarnMissingDates,
				Message: fmt.Sprintf("phase %q is missing a start or end date", phase.Name),
				PhaseID: phase.ID,
			})
			continue
		}
		c.processPhase(agg, sheet, classifier, phase, baseline)
	}

	return agg.finish(sheet)
}

func (c *Calculator) processPhase(agg *aggregator, sheet *generic.BalanceSheet, classifier Classifier, phase Phase, baseline WorkPattern) {
	summary := PhaseSummary{
		ID:         phase.ID,
		Name:       phase.Name,
		Start:      phase.Start,
		End:        phase.End,
		Duration:   FormatDuration(phase.Start, phase.End),
		TotalHours: generic.ZeroHours(),
		FundHours:  make(map[FundType]generic.Amount),
		Pattern:    phase.Pattern,
	}
	keys := fundKeys(phase.EligibleFunds())

	for _, day := range phase.Period().Days() {
		cls := classifier.Classify(day, phase, baseline)
		detail := DailyDetail{
			Date:        day,
			DayName:     DayName(day.Weekday()),
			WeekNumber:  cls.WeekNumber,
			Kind:        cls.Kind,
			IsWorkDay:   cls.WorkingDay,
			Hours:       cls.Hours,
			Allocations: []Allocation{},
			PhaseID:     phase.ID,
			Phase:       phase.Name,
		}

		if cls.Kind == LeaveConsumingDay {
			agg.totalDays++
			agg.totalHours = agg.totalHours.Add(cls.Hours)
			summary.TotalDays++
			summary.TotalHours = summary.TotalHours.Add(cls.Hours)

			dist := c.distributor.Distribute(sheet.Pools(keys), cls.Hours)
			sheet.Apply(dist)

			for _, a := range dist.Allocations {
				f := FundType(a.Key)
				detail.Allocations = append(detail.Allocations, Allocation{Fund: f, Hours: a.Amount})
				agg.recordUsage(f, a.Amount, cls.Hours)
				summary.FundHours[f] = summary.fundHours(f).Add(a.Amount)
			}

			if !dist.IsSatisfiable {
				agg.warn(Warning{
					Code:    WarnInsufficientHours,
					Message: fmt.Sprintf("insufficient leave hours available for %s", day.Time.Format("Monday 2 January 2006")),
					Date:    day,
					PhaseID: phase.ID,
				})
			}
		}

		agg.details = append(agg.details, detail)
	}

	agg.summaries = append(agg.summaries, summary)
}

func (s PhaseSummary) fundHours(f FundType) generic.Amount {
	if v, ok := s.FundHours[f]; ok {
		return v
	}
	return generic.ZeroHours()
}

func fundKeys(funds []FundType) []string {
	keys := make([]string, len(funds))
	for i, f := range funds {
		keys[i] = string(f)
	}
	return keys
}

// sortPhases orders a copy by start date; undated phases sort first and
// ties keep their input order.
func sortPhases(phases []Phase) []Phase {
	sorted := make([]Phase, len(phases))
	copy(sorted, phases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}

// detectOverlaps warns once per pair of dated phases sharing days. The
// phases are still processed in full, so the shared days appear twice.
func detectOverlaps(agg *aggregator, sorted []Phase) {
	for i := 0; i < len(sorted); i++ {
		a := sorted[i]
		if !a.Period().IsValid() {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			b := sorted[j]
			if !b.Period().IsValid() {
				continue
			}
			if shared, ok := a.Period().Overlap(b.Period()); ok {
				agg.warn(Warning{
					Code: WarnPhaseOverlap,
					Message: fmt.Sprintf("phases %q and %q overlap from %s to %s",
						a.Name, b.Name, shared.Start, shared.End),
					Date:    shared.Start,
					PhaseID: b.ID,
				})
			}
		}
	}
}
