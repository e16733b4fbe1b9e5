/*
store.go - Persistence interfaces for plans, runs and custom holidays

PURPOSE:
  Defines the interface between the HTTP layer and the database. The
  calculation engine never touches a store: plans are loaded, handed to the
  engine as plain values, and the result may be recorded as a run.

KEY INTERFACES:
  PlanStore:    Saved plans (the editing layer's JSON, versioned on update)
  RunStore:     History of calculations performed for a plan
  HolidayStore: User-defined holidays, also usable as a HolidayCalendar
  Store:        All of the above plus Reset (demo scenarios)

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: In-memory for tests and dev

SEE ALSO:
  - api/handlers.go: Uses Store
  - factory/plan.go: Converts PlanRecord.ConfigJSON to domain values
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// RECORDS
// =============================================================================

// PlanRecord is a stored plan with its JSON config.
type PlanRecord struct {
	ID         PlanID
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CalculationRun records the headline figures of one calculation.
type CalculationRun struct {
	ID           RunID
	PlanID       PlanID
	PlanVersion  int
	IsValid      bool
	TotalDays    int
	TotalHours   Amount
	WarningsJSON string
	CreatedAt    time.Time
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

type PlanStore interface {
	// CreatePlan inserts a new plan. Returns ErrDuplicatePlan if the ID exists.
	CreatePlan(ctx context.Context, plan PlanRecord) error

	// SavePlan upserts a plan and bumps its version on update.
	SavePlan(ctx context.Context, plan PlanRecord) error

	// GetPlan returns ErrPlanNotFound for unknown IDs.
	GetPlan(ctx context.Context, id PlanID) (*PlanRecord, error)

	ListPlans(ctx context.Context) ([]PlanRecord, error)

	// DeletePlan removes the plan and its runs.
	DeletePlan(ctx context.Context, id PlanID) error
}

type RunStore interface {
	SaveRun(ctx context.Context, run CalculationRun) error

	// ListRuns returns runs for a plan, newest first.
	ListRuns(ctx context.Context, planID PlanID) ([]CalculationRun, error)
}

type HolidayStore interface {
	HolidayCalendar

	SaveHoliday(ctx context.Context, h Holiday) error

	// SaveHolidays stores all of holidays or, on error, none of them.
	SaveHolidays(ctx context.Context, holidays []Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context, region string) ([]Holiday, error)
}

type Store interface {
	PlanStore
	RunStore
	HolidayStore

	// Reset clears all data. Demo scenarios only.
	Reset(ctx context.Context) error
}
