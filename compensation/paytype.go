/*
Package compensation turns hours, pay structure, resolved commission and
adjustments into a full compensation breakdown.

PURPOSE:
  One pure function, Calculator.Compute, shared by the forecasting engine
  and the /api/compensation endpoint. It trusts its inputs: overtime is
  already split out by the caller and missing amounts are zero.

PAY STRUCTURES:
  Each pay type is its own Go type, so a salary can never carry an hourly
  rate and vice versa:

    Hourly{Rate}                 regular x rate + overtime x rate x 1.5
    Salary{Annual}               annual / 26 x (weeks / 2)
    CommissionOnly{}             commission only
    HourlyPlusCommission{Rate}   hourly + commission
    SalaryPlusCommission{Annual} salary + commission

TAXES:
  Flat-rate estimates for forecasting, applied to gross pay. Not statutory
  withholding. See taxes.go.

SEE ALSO:
  - calculator.go: Compute
  - taxes.go: TaxRates and YAML loading
  - factory/org.go: builds Profile from flat JSON rows
*/
package compensation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// PayType is the wire name of a pay structure.
type PayType string

const (
	PayHourly               PayType = "hourly"
	PaySalary               PayType = "salary"
	PayCommission           PayType = "commission"
	PayHourlyPlusCommission PayType = "hourly_plus_commission"
	PaySalaryPlusCommission PayType = "salary_plus_commission"
)

// ParsePayType validates a wire pay type.
func ParsePayType(s string) (PayType, error) {
	switch p := PayType(s); p {
	case PayHourly, PaySalary, PayCommission, PayHourlyPlusCommission, PaySalaryPlusCommission:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", payroll.ErrInvalidPayType, s)
}

// =============================================================================
// PAY STRUCTURES
// =============================================================================

// PayStructure is one of Hourly, Salary, CommissionOnly, HourlyPlusCommission
// or SalaryPlusCommission.
type PayStructure interface {
	PayType() PayType
	isPayStructure()
}

type Hourly struct{ Rate decimal.Decimal }
type Salary struct{ Annual decimal.Decimal }
type CommissionOnly struct{}
type HourlyPlusCommission struct{ Rate decimal.Decimal }
type SalaryPlusCommission struct{ Annual decimal.Decimal }

func (Hourly) PayType() PayType               { return PayHourly }
func (Salary) PayType() PayType               { return PaySalary }
func (CommissionOnly) PayType() PayType       { return PayCommission }
func (HourlyPlusCommission) PayType() PayType { return PayHourlyPlusCommission }
func (SalaryPlusCommission) PayType() PayType { return PaySalaryPlusCommission }

func (Hourly) isPayStructure()               {}
func (Salary) isPayStructure()               {}
func (CommissionOnly) isPayStructure()       {}
func (HourlyPlusCommission) isPayStructure() {}
func (SalaryPlusCommission) isPayStructure() {}

// NewPayStructure builds the typed structure for a pay type from the flat
// rate fields stored per employee. Fields that don't apply are ignored; a
// missing amount is zero.
func NewPayStructure(payType PayType, hourlyRate, annualSalary decimal.Decimal) (PayStructure, error) {
	switch payType {
	case PayHourly:
		return Hourly{Rate: hourlyRate}, nil
	case PaySalary:
		return Salary{Annual: annualSalary}, nil
	case PayCommission:
		return CommissionOnly{}, nil
	case PayHourlyPlusCommission:
		return HourlyPlusCommission{Rate: hourlyRate}, nil
	case PaySalaryPlusCommission:
		return SalaryPlusCommission{Annual: annualSalary}, nil
	}
	return nil, fmt.Errorf("%w: %q", payroll.ErrInvalidPayType, payType)
}

// HourlyRate returns the hourly rate, or zero for non-hourly structures.
func HourlyRate(p PayStructure) decimal.Decimal {
	switch s := p.(type) {
	case Hourly:
		return s.Rate
	case HourlyPlusCommission:
		return s.Rate
	}
	return decimal.Zero
}

// AnnualSalary returns the annual salary, or zero for non-salaried structures.
func AnnualSalary(p PayStructure) decimal.Decimal {
	switch s := p.(type) {
	case Salary:
		return s.Annual
	case SalaryPlusCommission:
		return s.Annual
	}
	return decimal.Zero
}

// EarnsCommission reports whether the structure has a commission component.
func EarnsCommission(p PayStructure) bool {
	switch p.(type) {
	case CommissionOnly, HourlyPlusCommission, SalaryPlusCommission:
		return true
	}
	return false
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile is an employee's payroll profile. Owned by settings screens; the
// engine only reads it.
type Profile struct {
	EmployeeID        payroll.EmployeeID
	Name              string
	Pay               PayStructure
	CommissionEnabled bool
	IsActive          bool
}

// PayType returns the wire pay type, defaulting to commission for a nil structure.
func (p Profile) PayType() PayType {
	if p.Pay == nil {
		return PayCommission
	}
	return p.Pay.PayType()
}
