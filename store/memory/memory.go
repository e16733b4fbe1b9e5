// Package memory provides an in-memory generic.Store for tests and dev.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/leave-planner/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	plans    map[generic.PlanID]generic.PlanRecord
	runs     map[generic.PlanID][]generic.CalculationRun
	holidays map[string]generic.Holiday
	now      func() time.Time
}

var _ generic.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		plans:    make(map[generic.PlanID]generic.PlanRecord),
		runs:     make(map[generic.PlanID][]generic.CalculationRun),
		holidays: make(map[string]generic.Holiday),
		now:      time.Now,
	}
}

// =============================================================================
// PLANS
// =============================================================================

func (m *Memory) CreatePlan(_ context.Context, plan generic.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[plan.ID]; ok {
		return fmt.Errorf("plan %s: %w", plan.ID, generic.ErrDuplicatePlan)
	}
	now := m.now().UTC()
	plan.Version = 1
	plan.CreatedAt, plan.UpdatedAt = now, now
	m.plans[plan.ID] = plan
	return nil
}

func (m *Memory) SavePlan(_ context.Context, plan generic.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	if existing, ok := m.plans[plan.ID]; ok {
		plan.Version = existing.Version + 1
		plan.CreatedAt = existing.CreatedAt
	} else {
		plan.Version = 1
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now
	m.plans[plan.ID] = plan
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id generic.PlanID) (*generic.PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, generic.ErrPlanNotFound)
	}
	return &p, nil
}

func (m *Memory) ListPlans(_ context.Context) ([]generic.PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.PlanRecord, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeletePlan(_ context.Context, id generic.PlanID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[id]; !ok {
		return fmt.Errorf("plan %s: %w", id, generic.ErrPlanNotFound)
	}
	delete(m.plans, id)
	delete(m.runs, id)
	return nil
}

// =============================================================================
// RUNS
// =============================================================================

func (m *Memory) SaveRun(_ context.Context, run generic.CalculationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[run.PlanID]; !ok {
		return fmt.Errorf("plan %s: %w", run.PlanID, generic.ErrPlanNotFound)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = m.now()
	}
	m.runs[run.PlanID] = append(m.runs[run.PlanID], run)
	return nil
}

// ListRuns returns newest first; runs saved in the same instant keep
// reverse insertion order.
func (m *Memory) ListRuns(_ context.Context, planID generic.PlanID) ([]generic.CalculationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.runs[planID]
	out := make([]generic.CalculationRun, len(src))
	for i, r := range src {
		out[len(src)-1-i] = r
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	return m.SaveHolidays(ctx, []generic.Holiday{h})
}

// SaveHolidays checks the whole batch against a scratch copy before
// committing it, so a conflict leaves the store untouched.
func (m *Memory) SaveHolidays(_ context.Context, holidays []generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]generic.Holiday, len(m.holidays)+len(holidays))
	for id, h := range m.holidays {
		next[id] = h
	}
	for _, h := range holidays {
		if err := upsertHoliday(next, h); err != nil {
			return err
		}
	}
	m.holidays = next
	return nil
}

func upsertHoliday(hs map[string]generic.Holiday, h generic.Holiday) error {
	sameDay := func(a generic.Holiday) bool {
		return a.Region == h.Region && a.Date.Equal(h.Date) && a.Name == h.Name
	}
	if _, ok := hs[h.ID]; ok {
		for id, other := range hs {
			if id != h.ID && sameDay(other) {
				return fmt.Errorf("holiday %s on %s: %w", h.Name, h.Date, generic.ErrHolidayConflict)
			}
		}
		hs[h.ID] = h
		return nil
	}
	for id, existing := range hs {
		if sameDay(existing) {
			existing.Recurring = h.Recurring
			hs[id] = existing
			return nil
		}
	}
	hs[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return fmt.Errorf("holiday %s: %w", id, generic.ErrHolidayNotFound)
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context, region string) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []generic.Holiday
	for _, h := range m.holidays {
		if region == "" || h.Region == region || h.Region == "" {
			out = append(out, h)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *Memory) IsHoliday(region string, date generic.TimePoint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.holidays {
		if h.Region != region && h.Region != "" {
			continue
		}
		if h.Date.Equal(date) {
			return true
		}
		if h.Recurring && h.Date.Month() == date.Month() && h.Date.Day() == date.Day() {
			return true
		}
	}
	return false
}

func (m *Memory) GetHolidays(region string, year int) []generic.Holiday {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []generic.Holiday
	for _, h := range m.holidays {
		if h.Region != region && h.Region != "" {
			continue
		}
		switch {
		case h.Recurring:
			h.Date = generic.NewTimePoint(year, h.Date.Month(), h.Date.Day())
		case h.Date.Year() != year:
			continue
		}
		out = append(out, h)
	}
	sortByDate(out)
	return out
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans = make(map[generic.PlanID]generic.PlanRecord)
	m.runs = make(map[generic.PlanID][]generic.CalculationRun)
	m.holidays = make(map[string]generic.Holiday)
	return nil
}

func sortByDate(hs []generic.Holiday) {
	sort.Slice(hs, func(i, j int) bool {
		if !hs[i].Date.Equal(hs[j].Date) {
			return hs[i].Date.Before(hs[j].Date)
		}
		return hs[i].Name < hs[j].Name
	})
}
