// Package storetest runs the same behavioural checks against every
// generic.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-planner/generic"
)

// Run exercises plans, runs and holidays on a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) generic.Store) {
	t.Run("PlanLifecycle", func(t *testing.T) { testPlanLifecycle(t, newStore(t)) })
	t.Run("Runs", func(t *testing.T) { testRuns(t, newStore(t)) })
	t.Run("Holidays", func(t *testing.T) { testHolidays(t, newStore(t)) })
	t.Run("HolidayBatch", func(t *testing.T) { testHolidayBatch(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func testPlanLifecycle(t *testing.T, s generic.Store) {
	// GIVEN: An empty store
	// WHEN: Creating, updating and deleting a plan
	// THEN: Versions advance and lookups follow

	ctx := context.Background()
	plan := generic.PlanRecord{ID: "plan-1", Name: "First", ConfigJSON: `{"id":"plan-1"}`}

	require.NoError(t, s.CreatePlan(ctx, plan))
	err := s.CreatePlan(ctx, plan)
	assert.True(t, errors.Is(err, generic.ErrDuplicatePlan), "got %v", err)

	got, err := s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "First", got.Name)

	plan.Name = "Renamed"
	require.NoError(t, s.SavePlan(ctx, plan))
	got, err = s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, s.SavePlan(ctx, generic.PlanRecord{ID: "plan-0", Name: "Another", ConfigJSON: "{}"}))
	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, generic.PlanID("plan-0"), plans[0].ID)

	require.NoError(t, s.DeletePlan(ctx, "plan-1"))
	_, err = s.GetPlan(ctx, "plan-1")
	assert.True(t, errors.Is(err, generic.ErrPlanNotFound))
	assert.True(t, generic.IsNotFound(s.DeletePlan(ctx, "plan-1")))
}

func testRuns(t *testing.T, s generic.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreatePlan(ctx, generic.PlanRecord{ID: "p", Name: "P", ConfigJSON: "{}"}))

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveRun(ctx, generic.CalculationRun{
			ID:          generic.RunID([]string{"r1", "r2", "r3"}[i]),
			PlanID:      "p",
			PlanVersion: 1,
			IsValid:     i != 1,
			TotalDays:   i,
			TotalHours:  generic.Hours(float64(8 * i)),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := s.ListRuns(ctx, "p")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, generic.RunID("r3"), runs[0].ID)
	assert.True(t, runs[0].TotalHours.Equal(generic.Hours(16)))
	assert.False(t, runs[1].IsValid)

	err = s.SaveRun(ctx, generic.CalculationRun{ID: "orphan", PlanID: "missing", TotalHours: generic.ZeroHours()})
	assert.True(t, errors.Is(err, generic.ErrPlanNotFound), "got %v", err)

	require.NoError(t, s.DeletePlan(ctx, "p"))
	runs, err = s.ListRuns(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func testHolidays(t *testing.T, s generic.Store) {
	ctx := context.Background()
	day := func(v string) generic.TimePoint { return generic.MustParseDate(v) }

	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{ID: "h1", Region: "nl", Date: day("2025-03-03"), Name: "Carnaval"}))
	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{ID: "h2", Region: "", Date: day("2020-10-03"), Name: "Company day", Recurring: true}))
	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{ID: "h3", Region: "be", Date: day("2025-07-21"), Name: "Nationale feestdag"}))

	assert.True(t, s.IsHoliday("nl", day("2025-03-03")))
	assert.False(t, s.IsHoliday("be", day("2025-03-03")))
	assert.True(t, s.IsHoliday("be", day("2031-10-03")), "recurring global holiday")
	assert.False(t, s.IsHoliday("nl", day("2025-07-21")))

	hs := s.GetHolidays("nl", 2025)
	require.Len(t, hs, 2)
	assert.Equal(t, "2025-03-03", hs[0].Date.String())
	assert.Equal(t, "2025-10-03", hs[1].Date.String())

	listed, err := s.ListHolidays(ctx, "nl")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	all, err := s.ListHolidays(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.DeleteHoliday(ctx, "h1"))
	assert.False(t, s.IsHoliday("nl", day("2025-03-03")))
	assert.True(t, errors.Is(s.DeleteHoliday(ctx, "h1"), generic.ErrHolidayNotFound))
}

func testReset(t *testing.T, s generic.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreatePlan(ctx, generic.PlanRecord{ID: "p", Name: "P", ConfigJSON: "{}"}))
	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{ID: "h", Region: "nl", Date: generic.MustParseDate("2025-03-03"), Name: "X"}))

	require.NoError(t, s.Reset(ctx))

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.False(t, s.IsHoliday("nl", generic.MustParseDate("2025-03-03")))
}

func testHolidayBatch(t *testing.T, s generic.Store) {
	ctx := context.Background()
	day := generic.MustParseDate("2025-03-03")

	// GIVEN: A stored company day
	require.NoError(t, s.SaveHolidays(ctx, []generic.Holiday{
		{ID: "a", Region: "nl", Date: day, Name: "Company day"},
	}))

	// WHEN: The same holiday comes back under a new name
	// THEN: It is renamed in place
	require.NoError(t, s.SaveHolidays(ctx, []generic.Holiday{
		{ID: "a", Region: "nl", Date: day, Name: "Company day (renamed)"},
	}))
	listed, err := s.ListHolidays(ctx, "nl")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Company day (renamed)", listed[0].Name)

	// GIVEN: A second holiday on the same date
	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{ID: "b", Region: "nl", Date: day, Name: "Other"}))

	// WHEN: A batch renames the first onto the second
	err = s.SaveHolidays(ctx, []generic.Holiday{
		{ID: "c", Region: "nl", Date: generic.MustParseDate("2025-04-01"), Name: "Extra"},
		{ID: "a", Region: "nl", Date: day, Name: "Other"},
	})

	// THEN: The batch fails as a conflict and nothing from it is kept
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrHolidayConflict), "got %v", err)
	listed, err = s.ListHolidays(ctx, "nl")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.False(t, s.IsHoliday("nl", generic.MustParseDate("2025-04-01")))
}
