/*
errors.go - Centralized error types for the planner

PURPOSE:
  All error types in one place for consistency and discoverability.
  The calculation engine itself never returns errors (it reports problems
  as warnings on the result); these errors belong to the layers around it:
  input parsing, storage and the HTTP API.

ERROR CATEGORIES:
  1. Input errors - Malformed dates, patterns, fund codes
  2. Store errors - Missing or conflicting records
  3. Export errors - Unsupported output formats

USAGE:
  if errors.Is(err, generic.ErrInvalidDate) {
      // reject the request before calling the engine
  }

SEE ALSO:
  - factory/plan.go: Wraps input errors with field context
  - store/sqlite/sqlite.go: Returns store errors
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidPattern is returned for unknown weekdays, week types or negative hours.
	ErrInvalidPattern = errors.New("invalid work pattern")

	// ErrUnknownFund is returned for a leave fund code outside the known set.
	ErrUnknownFund = errors.New("unknown leave fund")

	// ErrInvalidBalance is returned for negative starting balances.
	ErrInvalidBalance = errors.New("invalid balance")

	// ErrPlanNotFound is returned when a referenced plan doesn't exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrHolidayNotFound is returned when a referenced holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrDuplicatePlan is returned when a plan ID is already taken on create.
	ErrDuplicatePlan = errors.New("plan already exists")

	// ErrHolidayConflict is returned when a holiday update would collide
	// with another stored holiday on the same date and name.
	ErrHolidayConflict = errors.New("holiday conflicts with an existing one")

	// ErrUnsupportedFormat is returned for export formats we cannot render.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError ties an input error to the field that caused it.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrUnknownFund) ||
		errors.Is(err, ErrInvalidBalance) ||
		errors.Is(err, ErrDuplicatePlan) ||
		errors.Is(err, ErrUnsupportedFormat)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}
