/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built plans that populate the store for demos. Each
	scenario resets the store and saves one or more plans that show a
	specific behaviour of the engine.

AVAILABLE SCENARIOS:
	full-time:       40h week, birth leave, additional birth leave, part-time parental leave
	alternating:     32h week with Fridays in even weeks only; leave on those Fridays
	over-budget:     Overlapping phases that run out of hours (warnings)

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "full-time"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description
 2. Add a builder returning the scenario's plans to scenarioPlans

NOTE:
	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Plan endpoints that read the loaded plans
  - factory/plan.go: Plan JSON definitions
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/leave-planner/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "full-time",
		Name:        "Full-Time Parent",
		Description: "40 hours a week: birth leave, additional birth leave, then three days of work a week on paid parental leave",
	},
	{
		ID:          "alternating",
		Name:        "Alternating Weeks",
		Description: "32 hours a week with Fridays in even weeks only; parental leave takes the even-week Fridays, odd-week Fridays stay free days",
	},
	{
		ID:          "over-budget",
		Name:        "Over Budget",
		Description: "Overlapping phases on small balances, showing every kind of warning",
	},
}

var scenarioPlans = map[string]func() []factory.PlanJSON{
	"full-time":   fullTimeScenario,
	"alternating": alternatingScenario,
	"over-budget": overBudgetScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and saves the scenario's plans.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	build, ok := scenarioPlans[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	ids, err := h.savePlans(ctx, build())
	if err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setScenario(req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"plans":    ids,
	})
}

func (h *Handler) savePlans(ctx context.Context, docs []factory.PlanJSON) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		plan, err := h.PlanFactory.FromJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", doc.ID, err)
		}
		rec, err := h.planRecord(plan)
		if err != nil {
			return nil, err
		}
		if err := h.Store.CreatePlan(ctx, rec); err != nil {
			return nil, err
		}
		ids = append(ids, string(plan.ID))
	}
	return ids, nil
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// SCENARIO PLANS
// =============================================================================

func fullTimeScenario() []factory.PlanJSON {
	baseline := weekPattern(map[string]factory.WorkDayJSON{
		"maandag":   everyWeek(8),
		"dinsdag":   everyWeek(8),
		"woensdag":  everyWeek(8),
		"donderdag": everyWeek(8),
		"vrijdag":   everyWeek(8),
	})
	parentalWeek := weekPattern(map[string]factory.WorkDayJSON{
		"maandag":  everyWeek(8),
		"dinsdag":  everyWeek(8),
		"woensdag": everyWeek(8),
	})

	return []factory.PlanJSON{{
		ID:              "demo-full-time",
		Name:            "Full-time parent",
		ExpectedDueDate: "2025-03-03",
		WorkPattern:     baseline,
		Phases: []factory.PhaseJSON{
			{
				ID: "birth", Name: "Birth leave",
				StartDate: "2025-03-03", EndDate: "2025-03-07",
				WorkPattern: weekPattern(nil), LeaveTypes: []string{"GV"},
			},
			{
				ID: "additional", Name: "Additional birth leave",
				StartDate: "2025-03-10", EndDate: "2025-04-11",
				WorkPattern: weekPattern(nil), LeaveTypes: []string{"AGV"},
			},
			{
				ID: "parental", Name: "Parental leave, three days a week",
				StartDate: "2025-04-14", EndDate: "2025-10-31",
				WorkPattern: parentalWeek, LeaveTypes: []string{"BOV", "VD"},
			},
		},
	}}
}

func alternatingScenario() []factory.PlanJSON {
	baseline := weekPattern(map[string]factory.WorkDayJSON{
		"maandag":   everyWeek(7),
		"dinsdag":   everyWeek(7),
		"woensdag":  everyWeek(7),
		"donderdag": everyWeek(7),
		"vrijdag":   {Enabled: true, WeekType: "even", Hours: 8},
	})
	noFridays := weekPattern(map[string]factory.WorkDayJSON{
		"maandag":   everyWeek(7),
		"dinsdag":   everyWeek(7),
		"woensdag":  everyWeek(7),
		"donderdag": everyWeek(7),
	})
	contract := 32.0

	return []factory.PlanJSON{{
		ID:            "demo-alternating",
		Name:          "Alternating Fridays",
		ContractHours: &contract,
		WorkPattern:   baseline,
		Phases: []factory.PhaseJSON{
			{
				ID: "birth", Name: "Birth leave",
				StartDate: "2025-06-02", EndDate: "2025-06-13",
				WorkPattern: weekPattern(nil), LeaveTypes: []string{"GV", "AGV"},
			},
			{
				ID: "fridays", Name: "Fridays at home",
				StartDate: "2025-06-16", EndDate: "2025-09-26",
				WorkPattern: noFridays, LeaveTypes: []string{"BOV"},
			},
		},
	}}
}

func overBudgetScenario() []factory.PlanJSON {
	baseline := weekPattern(map[string]factory.WorkDayJSON{
		"maandag":   everyWeek(8),
		"dinsdag":   everyWeek(8),
		"woensdag":  everyWeek(8),
		"donderdag": everyWeek(8),
		"vrijdag":   everyWeek(8),
	})

	return []factory.PlanJSON{{
		ID:          "demo-over-budget",
		Name:        "Over budget",
		WorkPattern: baseline,
		LeaveHours:  map[string]float64{"GV": 48, "AGV": 40, "BOV": 0, "VD": 16},
		Phases: []factory.PhaseJSON{
			{
				ID: "first", Name: "Birth leave",
				StartDate: "2025-01-06", EndDate: "2025-01-17",
				WorkPattern: weekPattern(nil), LeaveTypes: []string{"GV", "AGV"},
			},
			{
				ID: "second", Name: "Holiday on top",
				StartDate: "2025-01-13", EndDate: "2025-01-24",
				WorkPattern: weekPattern(nil), LeaveTypes: []string{"VD"},
			},
			{
				ID: "undated", Name: "Not yet planned",
				WorkPattern: weekPattern(nil), LeaveTypes: []string{"BOV"},
			},
		},
	}}
}

func weekPattern(days map[string]factory.WorkDayJSON) factory.WorkPatternJSON {
	if days == nil {
		days = map[string]factory.WorkDayJSON{}
	}
	return factory.WorkPatternJSON{WorkDays: days}
}

func everyWeek(hours float64) factory.WorkDayJSON {
	return factory.WorkDayJSON{Enabled: true, WeekType: "beide", Hours: hours}
}
