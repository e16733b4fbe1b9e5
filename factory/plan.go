/*
Package factory provides JSON to Go plan conversion.

PURPOSE:
  Converts the plan documents produced by the editing layer into leave
  package values, validating them on the way in. The engine assumes dates
  parse and codes are known; this is where that gets enforced.

JSON SCHEMA:
  {
    "id": "plan-1",
    "name": "Second child",
    "region": "nl",
    "expected_due_date": "2025-01-10",
    "contract_hours": 40,
    "work_pattern": {
      "is_flexible": false,
      "work_days": {
        "maandag": {"enabled": true, "week_type": "beide", "hours": 8},
        "vrijdag": {"enabled": true, "week_type": "even", "hours": 8}
      }
    },
    "leave_hours": {"GV": 40, "AGV": 200, "BOV": 360, "VD": 160},
    "phases": [
      {
        "id": "p1",
        "name": "Birth leave",
        "start_date": "2025-01-13",
        "end_date": "2025-01-17",
        "work_pattern": {"work_days": {}},
        "leave_types": ["GV"]
      }
    ]
  }

DEFAULTS:
  - region: "nl"
  - week_type: "beide"
  - missing weekdays: not working
  - leave_hours omitted: statutory balances from contract_hours, or from
    the baseline's hours per week when contract_hours is absent
  - phase id/name: "phase-N" / "Phase N"

USAGE:
  f := NewPlanFactory()
  plan, err := f.ParsePlan(jsonString)
  calc := plan.Run(leave.StaticCalendar{})

SEE ALSO:
  - leave/calculator.go: The engine the plan feeds
  - store/sqlite/sqlite.go: Persists ToJSON output
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a plan.
type PlanJSON struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Region          string             `json:"region,omitempty"`
	ExpectedDueDate string             `json:"expected_due_date,omitempty"`
	ContractHours   *float64           `json:"contract_hours,omitempty"` // Per week
	WorkPattern     WorkPatternJSON    `json:"work_pattern"`
	LeaveHours      map[string]float64 `json:"leave_hours,omitempty"`
	Phases          []PhaseJSON        `json:"phases"`
}

// WorkPatternJSON is keyed by lowercase Dutch weekday names.
type WorkPatternJSON struct {
	IsFlexible bool                   `json:"is_flexible,omitempty"`
	WorkDays   map[string]WorkDayJSON `json:"work_days"`
}

type WorkDayJSON struct {
	Enabled  bool    `json:"enabled"`
	WeekType string  `json:"week_type,omitempty"` // beide, even, oneven
	Hours    float64 `json:"hours"`
}

type PhaseJSON struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name,omitempty"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	WorkPattern WorkPatternJSON `json:"work_pattern"`
	LeaveTypes  []string        `json:"leave_types"`
}

// =============================================================================
// PLAN
// =============================================================================

// Plan is a validated plan, ready for the engine.
type Plan struct {
	ID              generic.PlanID
	Name            string
	Region          string
	ExpectedDueDate generic.TimePoint
	ContractHours   generic.Amount
	Baseline        leave.WorkPattern
	Balances        leave.FundBalances
	Phases          []leave.Phase
}

// Run calculates the plan against holidays for the plan's region.
func (p *Plan) Run(holidays generic.HolidayCalendar) *leave.Calculation {
	return leave.NewCalculator(holidays, p.Region).Calculate(p.Phases, p.Balances, p.Baseline)
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON plans to Go structs.
type PlanFactory struct{}

func NewPlanFactory() *PlanFactory {
	return &PlanFactory{}
}

// ParsePlan parses a JSON string into a Plan.
func (f *PlanFactory) ParsePlan(jsonStr string) (*Plan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON validates pj and converts it to a Plan.
func (f *PlanFactory) FromJSON(pj PlanJSON) (*Plan, error) {
	plan := &Plan{
		ID:     generic.PlanID(pj.ID),
		Name:   pj.Name,
		Region: pj.Region,
	}
	if plan.Region == "" {
		plan.Region = leave.DefaultRegion
	}

	var err error
	if plan.ExpectedDueDate, err = parseDate("expected_due_date", pj.ExpectedDueDate); err != nil {
		return nil, err
	}

	if plan.Baseline, err = parsePattern("work_pattern", pj.WorkPattern); err != nil {
		return nil, err
	}

	plan.ContractHours = plan.Baseline.HoursPerWeek()
	if pj.ContractHours != nil {
		if *pj.ContractHours < 0 {
			return nil, &generic.FieldError{Field: "contract_hours", Value: formatFloat(*pj.ContractHours), Err: generic.ErrInvalidBalance}
		}
		plan.ContractHours = generic.Hours(*pj.ContractHours)
	}

	if pj.LeaveHours == nil {
		plan.Balances = leave.StatutoryBalances(plan.ContractHours)
	} else if plan.Balances, err = parseBalances(pj.LeaveHours); err != nil {
		return nil, err
	}

	plan.Phases = make([]leave.Phase, 0, len(pj.Phases))
	for i, phj := range pj.Phases {
		ph, err := parsePhase(i, phj)
		if err != nil {
			return nil, err
		}
		plan.Phases = append(plan.Phases, ph)
	}

	return plan, nil
}

// ToJSON converts a Plan back to PlanJSON. Balances are always written out,
// so a round trip never re-derives statutory defaults.
func (f *PlanFactory) ToJSON(plan *Plan) PlanJSON {
	contract := plan.ContractHours.Float64()
	pj := PlanJSON{
		ID:            string(plan.ID),
		Name:          plan.Name,
		Region:        plan.Region,
		ContractHours: &contract,
		WorkPattern:   PatternToJSON(plan.Baseline),
		LeaveHours:    make(map[string]float64, len(plan.Balances)),
		Phases:        make([]PhaseJSON, 0, len(plan.Phases)),
	}
	if !plan.ExpectedDueDate.IsZero() {
		pj.ExpectedDueDate = plan.ExpectedDueDate.String()
	}
	for fund, amount := range plan.Balances {
		pj.LeaveHours[string(fund)] = amount.Float64()
	}
	for _, ph := range plan.Phases {
		phj := PhaseJSON{
			ID:          ph.ID,
			Name:        ph.Name,
			WorkPattern: PatternToJSON(ph.Pattern),
			LeaveTypes:  make([]string, 0, len(ph.Funds)),
		}
		if !ph.Start.IsZero() {
			phj.StartDate = ph.Start.String()
		}
		if !ph.End.IsZero() {
			phj.EndDate = ph.End.String()
		}
		for _, fund := range ph.Funds {
			phj.LeaveTypes = append(phj.LeaveTypes, string(fund))
		}
		pj.Phases = append(pj.Phases, phj)
	}
	return pj
}

// Marshal renders a plan as indented JSON for storage.
func (f *PlanFactory) Marshal(plan *Plan) (string, error) {
	b, err := json.MarshalIndent(f.ToJSON(plan), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDate(field, s string) (generic.TimePoint, error) {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}, &generic.FieldError{Field: field, Value: s, Err: generic.ErrInvalidDate}
	}
	return tp, nil
}

func parsePattern(field string, pj WorkPatternJSON) (leave.WorkPattern, error) {
	p := leave.WorkPattern{
		Days:       make(map[leave.Weekday]leave.WorkDay, len(leave.Weekdays)),
		IsFlexible: pj.IsFlexible,
	}

	keys := make([]string, 0, len(pj.WorkDays))
	for k := range pj.WorkDays {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		dj := pj.WorkDays[key]
		w, err := leave.ParseWeekday(key)
		if err != nil {
			return leave.WorkPattern{}, prefixField(field+".work_days", err)
		}

		wt := leave.WeekType(dj.WeekType)
		if wt == "" {
			wt = leave.EveryWeek
		}
		if !wt.Valid() {
			return leave.WorkPattern{}, &generic.FieldError{
				Field: fmt.Sprintf("%s.work_days.%s.week_type", field, key), Value: dj.WeekType, Err: generic.ErrInvalidPattern,
			}
		}
		if dj.Hours < 0 {
			return leave.WorkPattern{}, &generic.FieldError{
				Field: fmt.Sprintf("%s.work_days.%s.hours", field, key), Value: formatFloat(dj.Hours), Err: generic.ErrInvalidPattern,
			}
		}

		p.Days[w] = leave.WorkDay{Enabled: dj.Enabled, WeekType: wt, Hours: generic.Hours(dj.Hours)}
	}
	return p, nil
}

func parseBalances(m map[string]float64) (leave.FundBalances, error) {
	b := make(leave.FundBalances, len(m))
	for code, hours := range m {
		fund, err := leave.ParseFundType(code)
		if err != nil {
			return nil, prefixField("leave_hours", err)
		}
		if hours < 0 {
			return nil, &generic.FieldError{Field: "leave_hours." + code, Value: formatFloat(hours), Err: generic.ErrInvalidBalance}
		}
		b[fund] = generic.Hours(hours)
	}
	return b, nil
}

func parsePhase(i int, pj PhaseJSON) (leave.Phase, error) {
	field := fmt.Sprintf("phases[%d]", i)
	ph := leave.Phase{ID: pj.ID, Name: pj.Name}
	if ph.ID == "" {
		ph.ID = fmt.Sprintf("phase-%d", i+1)
	}
	if ph.Name == "" {
		ph.Name = fmt.Sprintf("Phase %d", i+1)
	}

	var err error
	if ph.Start, err = parseDate(field+".start_date", pj.StartDate); err != nil {
		return leave.Phase{}, err
	}
	if ph.End, err = parseDate(field+".end_date", pj.EndDate); err != nil {
		return leave.Phase{}, err
	}
	if ph.HasDates() && !ph.Period().IsValid() {
		return leave.Phase{}, &generic.FieldError{Field: field, Value: ph.Period().String(), Err: generic.ErrInvalidPeriod}
	}

	if ph.Pattern, err = parsePattern(field+".work_pattern", pj.WorkPattern); err != nil {
		return leave.Phase{}, err
	}

	for _, code := range pj.LeaveTypes {
		fund, err := leave.ParseFundType(code)
		if err != nil {
			return leave.Phase{}, prefixField(field+".leave_types", err)
		}
		ph.Funds = append(ph.Funds, fund)
	}
	return ph, nil
}

func prefixField(prefix string, err error) error {
	var fe *generic.FieldError
	if errors.As(err, &fe) {
		return &generic.FieldError{Field: prefix, Value: fe.Value, Err: fe.Err}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// PatternToJSON is the inverse of the work pattern parsing in FromJSON.
func PatternToJSON(p leave.WorkPattern) WorkPatternJSON {
	pj := WorkPatternJSON{IsFlexible: p.IsFlexible, WorkDays: make(map[string]WorkDayJSON, len(p.Days))}
	for w, d := range p.Days {
		pj.WorkDays[string(w)] = WorkDayJSON{Enabled: d.Enabled, WeekType: string(d.WeekType), Hours: d.Hours.Float64()}
	}
	return pj
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
