package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// Allocation is the hours one fund paid for on one day.
type Allocation struct {
	Fund  FundType
	Hours generic.Amount
}

// DailyDetail is the finest-grained output: one record per calendar day of
// every dated phase.
type DailyDetail struct {
	Date        generic.TimePoint
	DayName     string
	WeekNumber  int
	Kind        DayKind
	IsWorkDay   bool
	Hours       generic.Amount
	Allocations []Allocation
	PhaseID     string
	Phase       string
}

// AllocatedHours sums the day's allocations.
func (d DailyDetail) AllocatedHours() generic.Amount {
	total := generic.ZeroHours()
	for _, a := range d.Allocations {
		total = total.Add(a.Hours)
	}
	return total
}

// FundBreakdown is the usage of one fund over the whole plan. Days and
// Hours are rounded to one decimal, Percentage to an integer.
type FundBreakdown struct {
	Fund       FundType
	Days       decimal.Decimal
	Hours      generic.Amount
	Percentage int
	Remaining  generic.Amount
}

// PhaseSummary aggregates the leave days of one phase.
type PhaseSummary struct {
	ID         string
	Name       string
	Start      generic.TimePoint
	End        generic.TimePoint
	Duration   string
	TotalDays  int
	TotalHours generic.Amount
	FundHours  map[FundType]generic.Amount
	Pattern    WorkPattern
}

type WarningCode string

const (
	WarnMissingDates      WarningCode = "missing_dates"
	WarnPhaseOverlap      WarningCode = "phase_overlap"
	WarnInsufficientHours WarningCode = "insufficient_hours"
	WarnCapExceeded       WarningCode = "cap_exceeded"
)

// Warning is a problem found in the plan. Message is English; Code and the
// context fields let a presentation layer render its own text.
type Warning struct {
	Code    WarningCode
	Message string
	Date    generic.TimePoint
	Fund    FundType
	PhaseID string
}

// Calculation is the full report. IsValid is false exactly when Warnings
// is non-empty.
type Calculation struct {
	TotalDays      int
	TotalHours     generic.Amount
	Breakdown      []FundBreakdown
	Warnings       []Warning
	IsValid        bool
	DailyDetails   []DailyDetail
	PhaseSummaries []PhaseSummary
}

// Fund returns the breakdown line for f.
func (c *Calculation) Fund(f FundType) (FundBreakdown, bool) {
	for _, b := range c.Breakdown {
		if b.Fund == f {
			return b, true
		}
	}
	return FundBreakdown{}, false
}

// LeaveDays returns the leave-consuming days in report order.
func (c *Calculation) LeaveDays() []DailyDetail {
	var out []DailyDetail
	for _, d := range c.DailyDetails {
		if d.Kind == LeaveConsumingDay {
			out = append(out, d)
		}
	}
	return out
}

// =============================================================================
// AGGREGATOR - Running totals for one calculation
// =============================================================================

type aggregator struct {
	totalDays  int
	totalHours generic.Amount
	days       map[FundType]decimal.Decimal
	warnings   []Warning
	details    []DailyDetail
	summaries  []PhaseSummary
}

func newAggregator() *aggregator {
	return &aggregator{
		totalHours: generic.ZeroHours(),
		days:       make(map[FundType]decimal.Decimal),
		warnings:   []Warning{},
		details:    []DailyDetail{},
		summaries:  []PhaseSummary{},
	}
}

func (a *aggregator) warn(w Warning) {
	a.warnings = append(a.warnings, w)
}

// recordUsage counts the fraction of a day of dayHours that f paid for.
// The hours themselves are kept on the balance sheet.
func (a *aggregator) recordUsage(f FundType, hours, dayHours generic.Amount) {
	if !dayHours.IsPositive() {
		return
	}
	days, ok := a.days[f]
	if !ok {
		days = decimal.Zero
	}
	a.days[f] = days.Add(hours.Value.Div(dayHours.Value))
}

var hundred = decimal.NewFromInt(100)

// finish builds the fund breakdown from the sheet, runs the cap checks and
// seals the report.
func (a *aggregator) finish(sheet *generic.BalanceSheet) *Calculation {
	breakdown := make([]FundBreakdown, 0, len(FundPriority))
	for _, f := range FundPriority {
		key := string(f)
		total := sheet.Initial(key)
		used := sheet.Used(key)

		pct := 0
		if total.IsPositive() {
			pct = int(used.Value.Div(total.Value).Mul(hundred).Round(0).IntPart())
		}

		days, ok := a.days[f]
		if !ok {
			days = decimal.Zero
		}
		breakdown = append(breakdown, FundBreakdown{
			Fund:       f,
			Days:       days.Round(1),
			Hours:      used.Round(1),
			Percentage: pct,
			Remaining:  sheet.Remaining(key).Round(1),
		})
	}

	for _, b := range breakdown {
		limit, capped := b.Fund.Cap()
		if capped && b.Days.GreaterThan(decimal.NewFromInt(int64(limit))) {
			a.warn(Warning{
				Code:    WarnCapExceeded,
				Message: fmt.Sprintf("%s (%s) may not exceed %d working days", b.Fund.Name(), b.Fund, limit),
				Fund:    b.Fund,
			})
		}
	}

	return &Calculation{
		TotalDays:      a.totalDays,
		TotalHours:     a.totalHours,
		Breakdown:      breakdown,
		Warnings:       a.warnings,
		IsValid:        len(a.warnings) == 0,
		DailyDetails:   a.details,
		PhaseSummaries: a.summaries,
	}
}
