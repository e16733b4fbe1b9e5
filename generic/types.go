/*
Package generic provides the domain-agnostic building blocks of the planner.

PURPOSE:
  This package contains the types and algorithms that do not know anything
  about parental leave: hour amounts, calendar days, week numbering, holiday
  lookup, and the priority-ordered consumption of several balance pools.
  The leave package composes them into the leave calculation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A decimal quantity of hours
  - Identifiers: Type-safe plan and run IDs

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 0.1h steps never drift
  2. Type Safety: Strong typing for IDs prevents mixing plan/run IDs
  3. No hidden state: every value here is immutable

USAGE:
  day := generic.Hours(8)
  left := generic.Hours(40).Sub(day)

SEE ALSO:
  - time.go: TimePoint, week numbering and holiday calendars
  - distributor.go: Priority-ordered consumption across pools
  - balance.go: Per-pool running balances
*/
package generic

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (hours everywhere balances are kept)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours Unit = "hours"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Hours is shorthand for NewAmount(value, UnitHours).
func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

// ZeroHours is the additive identity for hour amounts.
func ZeroHours() Amount { return Amount{Value: decimal.Zero, Unit: UnitHours} }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s), Unit: a.Unit} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Round rounds half away from zero to the given number of decimal places.
func (a Amount) Round(places int32) Amount {
	return Amount{Value: a.Value.Round(places), Unit: a.Unit}
}

// Float64 is for presentation only; never feed it back into arithmetic.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// MarshalJSON renders the amount as a bare number so reports stay readable.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(json.Number(a.Value.String()))
}

// UnmarshalJSON accepts a JSON number and assumes hours.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	a.Value = v
	if a.Unit == "" {
		a.Unit = UnitHours
	}
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PlanID string
type RunID string
