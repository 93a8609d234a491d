/*
Package payroll provides the shared kernel of the payroll forecasting engine.

PURPOSE:
  Holds the small set of types every calculator agrees on: calendar dates,
  periods, identifiers, money helpers and the sales-actual row. The schedule,
  commission, compensation, forecast and tiers packages all build on these
  and never on each other's internals.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal.Decimal, never float64, inside the engine
  - EmployeeID / OrgID / LevelSlug: type-safe identifiers
  - SalesActual: one employee's revenue on one day

DESIGN PRINCIPLES:
  1. Purity: nothing in this package reads the clock
  2. Precision: decimal.Decimal for every amount and rate
  3. Type Safety: distinct identifier types prevent mixing IDs

SEE ALSO:
  - date.go: Date and day arithmetic
  - period.go: Period ranges
  - errors.go: sentinel errors for input boundaries
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type OrgID string
type LevelSlug string

// =============================================================================
// MONEY
// =============================================================================

// Common decimal constants.
var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Hundred = decimal.NewFromInt(100)
)

// Dec builds a decimal from a float literal. Intended for constants and tests.
func Dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// MustParseDecimal parses s, returning zero when s is not a number.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// OrZero unwraps a nullable decimal, treating null as zero.
func OrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

// Rate wraps a value as a present nullable decimal.
func Rate(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// NoRate is an absent nullable decimal.
var NoRate = decimal.NullDecimal{}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// SALES ACTUALS
// =============================================================================

// SalesActual is one row of the sales time series: revenue booked by one
// employee on one day. Multiple rows for the same employee and day are summed.
type SalesActual struct {
	EmployeeID     EmployeeID      `json:"employee_id"`
	Date           Date            `json:"date"`
	ServiceRevenue decimal.Decimal `json:"service_revenue"`
	ProductRevenue decimal.Decimal `json:"product_revenue"`
}

// Total returns service plus product revenue.
func (s SalesActual) Total() decimal.Decimal {
	return s.ServiceRevenue.Add(s.ProductRevenue)
}

// SalesTotals is an aggregate of revenue over a window.
type SalesTotals struct {
	Service decimal.Decimal
	Product decimal.Decimal
}

func (t SalesTotals) Total() decimal.Decimal { return t.Service.Add(t.Product) }

func (t SalesTotals) Add(s SalesActual) SalesTotals {
	return SalesTotals{
		Service: t.Service.Add(s.ServiceRevenue),
		Product: t.Product.Add(s.ProductRevenue),
	}
}

// TotalsByEmployee aggregates actuals that fall inside window, keyed by employee.
// Rows outside the window are ignored.
func TotalsByEmployee(actuals []SalesActual, window Period) map[EmployeeID]SalesTotals {
	totals := make(map[EmployeeID]SalesTotals)
	for _, a := range actuals {
		if !window.Contains(a.Date) {
			continue
		}
		totals[a.EmployeeID] = totals[a.EmployeeID].Add(a)
	}
	return totals
}

// TotalSales sums all actuals inside window.
func TotalSales(actuals []SalesActual, window Period) decimal.Decimal {
	total := decimal.Zero
	for _, a := range actuals {
		if window.Contains(a.Date) {
			total = total.Add(a.Total())
		}
	}
	return total
}
