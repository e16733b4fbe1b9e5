/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The engine's report
  types carry no JSON tags; everything the HTTP surface exposes is shaped
  here, in snake_case, with hours and days as plain numbers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Calculation:
    CalculationDTO, FundBreakdownDTO, WarningDTO, DailyDetailDTO,
    AllocationDTO, PhaseSummaryDTO

  Plans:
    PlanDTO (wraps factory.PlanJSON), RunDTO, PlanCalculationDTO

  Balances:
    StatutoryBalancesDTO, BalanceDTO

  Holidays:
    HolidayDTO, CreateHolidayRequest

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

REQUEST BODIES:
  Calculation and export requests take factory.PlanJSON directly, the
  same document the editing layer saves.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: PlanJSON type
*/
package api

import (
	"sort"
	"time"

	"github.com/warp/leave-planner/factory"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

// =============================================================================
// CALCULATION
// =============================================================================

type CalculationDTO struct {
	TotalDays      int                `json:"total_days"`
	TotalHours     float64            `json:"total_hours"`
	Breakdown      []FundBreakdownDTO `json:"breakdown"`
	Warnings       []WarningDTO       `json:"warnings"`
	IsValid        bool               `json:"is_valid"`
	DailyDetails   []DailyDetailDTO   `json:"daily_details"`
	PhaseSummaries []PhaseSummaryDTO  `json:"phase_summaries"`
}

type FundBreakdownDTO struct {
	Fund       string  `json:"fund"`
	Name       string  `json:"name"`
	Days       float64 `json:"days"`
	Hours      float64 `json:"hours"`
	Percentage int     `json:"percentage"`
	Remaining  float64 `json:"remaining"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
	Fund    string `json:"fund,omitempty"`
	PhaseID string `json:"phase_id,omitempty"`
}

type AllocationDTO struct {
	Fund  string  `json:"fund"`
	Hours float64 `json:"hours"`
}

type DailyDetailDTO struct {
	Date        string          `json:"date"`
	DayName     string          `json:"day_name"`
	WeekNumber  int             `json:"week_number"`
	Kind        string          `json:"kind"`
	IsWorkDay   bool            `json:"is_work_day"`
	Hours       float64         `json:"hours"`
	Allocations []AllocationDTO `json:"allocations"`
	PhaseID     string          `json:"phase_id"`
	Phase       string          `json:"phase"`
}

type PhaseSummaryDTO struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	StartDate  string             `json:"start_date,omitempty"`
	EndDate    string             `json:"end_date,omitempty"`
	Duration   string             `json:"duration"`
	TotalDays  int                `json:"total_days"`
	TotalHours float64            `json:"total_hours"`
	FundHours  map[string]float64 `json:"fund_hours"`
	Pattern    PhasePatternDTO    `json:"work_pattern"`
}

// PhasePatternDTO echoes the phase's work pattern with its weekly totals.
type PhasePatternDTO struct {
	factory.WorkPatternJSON
	DaysPerWeek  float64 `json:"days_per_week"`
	HoursPerWeek float64 `json:"hours_per_week"`
}

// =============================================================================
// PLANS AND RUNS
// =============================================================================

type PlanDTO struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Version   int              `json:"version"`
	Config    factory.PlanJSON `json:"config"`
	CreatedAt string           `json:"created_at,omitempty"`
	UpdatedAt string           `json:"updated_at,omitempty"`
}

type RunDTO struct {
	ID          string       `json:"id"`
	PlanID      string       `json:"plan_id"`
	PlanVersion int          `json:"plan_version"`
	IsValid     bool         `json:"is_valid"`
	TotalDays   int          `json:"total_days"`
	TotalHours  float64      `json:"total_hours"`
	Warnings    []WarningDTO `json:"warnings"`
	CreatedAt   string       `json:"created_at"`
}

// PlanCalculationDTO is the response of calculating a stored plan.
type PlanCalculationDTO struct {
	Run         RunDTO         `json:"run"`
	Calculation CalculationDTO `json:"calculation"`
}

// =============================================================================
// BALANCES, HOLIDAYS, SCENARIOS
// =============================================================================

type BalanceDTO struct {
	Fund  string  `json:"fund"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
	Days  float64 `json:"days"`
}

type StatutoryBalancesDTO struct {
	WeeklyHours float64      `json:"weekly_hours"`
	Balances    []BalanceDTO `json:"balances"`
}

type HolidayDTO struct {
	ID        string `json:"id"`
	Region    string `json:"region"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

type CreateHolidayRequest struct {
	Region    string `json:"region"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCalculationDTO(c *leave.Calculation) CalculationDTO {
	dto := CalculationDTO{
		TotalDays:      c.TotalDays,
		TotalHours:     c.TotalHours.Float64(),
		Breakdown:      make([]FundBreakdownDTO, 0, len(c.Breakdown)),
		Warnings:       toWarningDTOs(c.Warnings),
		IsValid:        c.IsValid,
		DailyDetails:   make([]DailyDetailDTO, 0, len(c.DailyDetails)),
		PhaseSummaries: make([]PhaseSummaryDTO, 0, len(c.PhaseSummaries)),
	}

	for _, b := range c.Breakdown {
		days, _ := b.Days.Float64()
		dto.Breakdown = append(dto.Breakdown, FundBreakdownDTO{
			Fund:       string(b.Fund),
			Name:       b.Fund.Name(),
			Days:       days,
			Hours:      b.Hours.Float64(),
			Percentage: b.Percentage,
			Remaining:  b.Remaining.Float64(),
		})
	}

	for _, d := range c.DailyDetails {
		allocs := make([]AllocationDTO, 0, len(d.Allocations))
		for _, a := range d.Allocations {
			allocs = append(allocs, AllocationDTO{Fund: string(a.Fund), Hours: a.Hours.Float64()})
		}
		dto.DailyDetails = append(dto.DailyDetails, DailyDetailDTO{
			Date:        d.Date.String(),
			DayName:     d.DayName,
			WeekNumber:  d.WeekNumber,
			Kind:        d.Kind.String(),
			IsWorkDay:   d.IsWorkDay,
			Hours:       d.Hours.Float64(),
			Allocations: allocs,
			PhaseID:     d.PhaseID,
			Phase:       d.Phase,
		})
	}

	for _, p := range c.PhaseSummaries {
		fundHours := make(map[string]float64, len(p.FundHours))
		for f, a := range p.FundHours {
			fundHours[string(f)] = a.Float64()
		}
		dto.PhaseSummaries = append(dto.PhaseSummaries, PhaseSummaryDTO{
			ID:         p.ID,
			Name:       p.Name,
			StartDate:  dateString(p.Start),
			EndDate:    dateString(p.End),
			Duration:   p.Duration,
			TotalDays:  p.TotalDays,
			TotalHours: p.TotalHours.Float64(),
			FundHours:  fundHours,
			Pattern:    toPhasePatternDTO(p.Pattern),
		})
	}

	return dto
}

func toWarningDTOs(ws []leave.Warning) []WarningDTO {
	out := make([]WarningDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, WarningDTO{
			Code:    string(w.Code),
			Message: w.Message,
			Date:    dateString(w.Date),
			Fund:    string(w.Fund),
			PhaseID: w.PhaseID,
		})
	}
	return out
}

func toPlanDTO(rec generic.PlanRecord, config factory.PlanJSON) PlanDTO {
	return PlanDTO{
		ID:        string(rec.ID),
		Name:      rec.Name,
		Version:   rec.Version,
		Config:    config,
		CreatedAt: timeString(rec.CreatedAt),
		UpdatedAt: timeString(rec.UpdatedAt),
	}
}

func toRunDTO(run generic.CalculationRun, warnings []WarningDTO) RunDTO {
	if warnings == nil {
		warnings = []WarningDTO{}
	}
	return RunDTO{
		ID:          string(run.ID),
		PlanID:      string(run.PlanID),
		PlanVersion: run.PlanVersion,
		IsValid:     run.IsValid,
		TotalDays:   run.TotalDays,
		TotalHours:  run.TotalHours.Float64(),
		Warnings:    warnings,
		CreatedAt:   timeString(run.CreatedAt),
	}
}

func toHolidayDTOs(hs []generic.Holiday) []HolidayDTO {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
	out := make([]HolidayDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, HolidayDTO{
			ID:        h.ID,
			Region:    h.Region,
			Date:      h.Date.String(),
			Name:      h.Name,
			Recurring: h.Recurring,
		})
	}
	return out
}

func toStatutoryBalancesDTO(weekly generic.Amount) StatutoryBalancesDTO {
	balances := leave.StatutoryBalances(weekly)
	dto := StatutoryBalancesDTO{
		WeeklyHours: weekly.Float64(),
		Balances:    make([]BalanceDTO, 0, len(leave.FundPriority)),
	}
	for _, f := range leave.FundPriority {
		hours := balances.Get(f)
		days, _ := leave.HoursToDays(hours, weekly).Float64()
		dto.Balances = append(dto.Balances, BalanceDTO{
			Fund:  string(f),
			Name:  f.Name(),
			Hours: hours.Float64(),
			Days:  days,
		})
	}
	return dto
}

func dateString(tp generic.TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.String()
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toPhasePatternDTO(p leave.WorkPattern) PhasePatternDTO {
	days, _ := p.DaysPerWeek().Float64()
	return PhasePatternDTO{
		WorkPatternJSON: factory.PatternToJSON(p),
		DaysPerWeek:     days,
		HoursPerWeek:    p.HoursPerWeek().Float64(),
	}
}
