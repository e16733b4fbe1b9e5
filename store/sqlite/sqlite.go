/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists saved plans, the history of calculations run for them, and
  user-defined holidays. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  generic.PlanStore:       Saved plans (versioned)
  generic.RunStore:        Calculation history
  generic.HolidayStore:    Custom holidays
  generic.HolidayCalendar: The same holidays, queried by the engine

KEY TABLES:
  plans:            Plan JSON in the editing layer's shape
  calculation_runs: Headline figures and warnings of each run
  holidays:         Region-specific (or global, region = '') days off

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  cal := generic.CombinedCalendar{leave.StaticCalendar{}, store}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - generic/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-planner/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_name ON plans(name);

	CREATE TABLE IF NOT EXISTS calculation_runs (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		plan_version INTEGER NOT NULL,
		is_valid BOOLEAN NOT NULL,
		total_days INTEGER NOT NULL,
		total_hours_value TEXT NOT NULL,
		total_hours_unit TEXT NOT NULL,
		warnings_json TEXT,
		created_at TEXT NOT NULL
	);

	-- Run history per plan, newest first
	CREATE INDEX IF NOT EXISTS idx_runs_plan_created
		ON calculation_runs(plan_id, created_at DESC);

	-- Holidays (region-specific and global)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		region TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_region_date
		ON holidays(region, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(region, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PLAN STORE
// =============================================================================

const planColumns = "id, name, config_json, version, created_at, updated_at"

// CreatePlan inserts a new plan at version 1.
func (s *Store) CreatePlan(ctx context.Context, plan generic.PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO plans ("+planColumns+") VALUES (?, ?, ?, 1, ?, ?)",
		string(plan.ID), plan.Name, plan.ConfigJSON, now, now,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("plan %s: %w", plan.ID, generic.ErrDuplicatePlan)
	}
	return err
}

// SavePlan upserts a plan; updates bump the version.
func (s *Store) SavePlan(ctx context.Context, plan generic.PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO plans (` + planColumns + `)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = plans.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query, string(plan.ID), plan.Name, plan.ConfigJSON, now, now)
	return err
}

// GetPlan retrieves a plan by ID.
func (s *Store) GetPlan(ctx context.Context, id generic.PlanID) (*generic.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id = ?", string(id))
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, generic.ErrPlanNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans returns all plans ordered by name.
func (s *Store) ListPlans(ctx context.Context) ([]generic.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+planColumns+" FROM plans ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []generic.PlanRecord
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// DeletePlan removes a plan and, through the foreign key, its runs.
func (s *Store) DeletePlan(ctx context.Context, id generic.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM calculation_runs WHERE plan_id = ?", string(id)); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("plan %s: %w", id, generic.ErrPlanNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (generic.PlanRecord, error) {
	var p generic.PlanRecord
	var id, createdAt, updatedAt string
	if err := row.Scan(&id, &p.Name, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt); err != nil {
		return generic.PlanRecord{}, err
	}
	p.ID = generic.PlanID(id)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// =============================================================================
// RUN STORE
// =============================================================================

// fixed width so created_at sorts as text
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveRun records one calculation. The plan must exist.
func (s *Store) SaveRun(ctx context.Context, run generic.CalculationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO calculation_runs (
			id, plan_id, plan_version, is_valid, total_days,
			total_hours_value, total_hours_unit, warnings_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		string(run.ID), string(run.PlanID), run.PlanVersion, run.IsValid, run.TotalDays,
		run.TotalHours.Value.String(), string(run.TotalHours.Unit),
		nullString(run.WarningsJSON),
		createdAt.UTC().Format(runTimeLayout),
	)
	if err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return fmt.Errorf("plan %s: %w", run.PlanID, generic.ErrPlanNotFound)
	}
	return err
}

// ListRuns returns the runs of a plan, newest first.
func (s *Store) ListRuns(ctx context.Context, planID generic.PlanID) ([]generic.CalculationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plan_id, plan_version, is_valid, total_days,
			total_hours_value, total_hours_unit, warnings_json, created_at
		FROM calculation_runs
		WHERE plan_id = ?
		ORDER BY created_at DESC, id DESC
	`, string(planID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []generic.CalculationRun
	for rows.Next() {
		var r generic.CalculationRun
		var id, pid, hoursValue, hoursUnit, createdAt string
		var warnings sql.NullString
		if err := rows.Scan(&id, &pid, &r.PlanVersion, &r.IsValid, &r.TotalDays,
			&hoursValue, &hoursUnit, &warnings, &createdAt); err != nil {
			return nil, err
		}
		r.ID = generic.RunID(id)
		r.PlanID = generic.PlanID(pid)
		r.TotalHours = parseAmount(hoursValue, hoursUnit)
		r.WarningsJSON = warnings.String
		r.CreatedAt, _ = time.Parse(runTimeLayout, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	return s.SaveHolidays(ctx, []generic.Holiday{h})
}

// SaveHolidays upserts holidays in one transaction: either all of them are
// stored or none is. A row is matched by ID first, then by region, date and
// name.
func (s *Store) SaveHolidays(ctx context.Context, holidays []generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO holidays (id, region, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			region = excluded.region,
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring
		ON CONFLICT(region, date, name) DO UPDATE SET
			recurring = excluded.recurring
	`

	now := time.Now().Format(time.RFC3339)
	for _, h := range holidays {
		_, err := tx.ExecContext(ctx, query,
			h.ID,
			h.Region,
			h.Date.Time.Format(generic.DateLayout),
			h.Name,
			h.Recurring,
			now,
		)
		if isUniqueConstraintError(err) {
			return fmt.Errorf("holiday %s on %s: %w", h.Name, h.Date, generic.ErrHolidayConflict)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("holiday %s: %w", id, generic.ErrHolidayNotFound)
	}
	return nil
}

// GetHolidays returns all holidays for a region in a given year.
// Includes both region-specific and global holidays.
func (s *Store) GetHolidays(region string, year int) []generic.Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, region, date, name, recurring
		FROM holidays
		WHERE (region = ? OR region = '')
		  AND (recurring = TRUE OR strftime('%Y', date) = ?)
		ORDER BY strftime('%m-%d', date) ASC, name ASC
	`

	rows, err := s.db.Query(query, region, fmt.Sprintf("%d", year))
	if err != nil {
		return nil
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			continue
		}
		if h.Recurring {
			t := h.Date.Time
			h.Date = generic.NewTimePoint(year, t.Month(), t.Day())
		}
		holidays = append(holidays, h)
	}

	return holidays
}

// IsHoliday checks if a date is a holiday for the given region.
func (s *Store) IsHoliday(region string, date generic.TimePoint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (region = ? OR region = '')
		  AND (
			(recurring = FALSE AND date = ?)
			OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
		  )
	`

	var count int
	err := s.db.QueryRow(query, region, date.Time.Format(generic.DateLayout), date.Time.Format("01-02")).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

// ListHolidays returns every stored holiday for region, global ones
// included. An empty region lists all holidays.
func (s *Store) ListHolidays(ctx context.Context, region string) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, region, date, name, recurring
		FROM holidays
		WHERE ? = '' OR region = ? OR region = ''
		ORDER BY date ASC, name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, region, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func scanHoliday(row scanner) (generic.Holiday, error) {
	var h generic.Holiday
	var dateStr string
	if err := row.Scan(&h.ID, &h.Region, &dateStr, &h.Name, &h.Recurring); err != nil {
		return generic.Holiday{}, err
	}
	t, _ := time.Parse(generic.DateLayout, dateStr)
	h.Date = generic.TimePoint{Time: t, Granularity: generic.GranularityDay}
	return h, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"calculation_runs", "plans", "holidays"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseAmount(value, unit string) generic.Amount {
	return generic.Amount{
		Value: generic.MustParseDecimal(value),
		Unit:  generic.Unit(unit),
	}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
