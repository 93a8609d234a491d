package compensation

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/commission"
)

// =============================================================================
// INPUTS
// =============================================================================

// OvertimeMultiplier applies to every overtime hour.
var OvertimeMultiplier = decimal.RequireFromString("1.5")

// DefaultPaychecksPerYear is the salary baseline: salaries are always cut as
// if paid bi-weekly, then scaled to the real period length.
const DefaultPaychecksPerYear = 26

// Hours is the caller's regular/overtime split.
type Hours struct {
	Regular  decimal.Decimal `json:"regular"`
	Overtime decimal.Decimal `json:"overtime"`
}

// Adjustments are one-off amounts for the period.
type Adjustments struct {
	Bonus      decimal.Decimal `json:"bonus"`
	Tips       decimal.Decimal `json:"tips"`
	Deductions decimal.Decimal `json:"deductions"`
}

// =============================================================================
// OUTPUT
// =============================================================================

// Breakdown is the full compensation for one employee and period.
type Breakdown struct {
	PayType           PayType         `json:"pay_type"`
	HourlyPay         decimal.Decimal `json:"hourly_pay"`
	SalaryPay         decimal.Decimal `json:"salary_pay"`
	ServiceCommission decimal.Decimal `json:"service_commission"`
	RetailCommission  decimal.Decimal `json:"retail_commission"`
	CommissionPay     decimal.Decimal `json:"commission_pay"`
	Bonus             decimal.Decimal `json:"bonus"`
	Tips              decimal.Decimal `json:"tips"`
	GrossPay          decimal.Decimal `json:"gross_pay"`
	EmployeeTaxes     EmployeeTaxes   `json:"employee_taxes"`
	EmployerTaxes     EmployerTaxes   `json:"employer_taxes"`
	Deductions        decimal.Decimal `json:"deductions"`
	NetPay            decimal.Decimal `json:"net_pay"`
	EmployerCost      decimal.Decimal `json:"employer_cost"`
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes compensation breakdowns. The zero value uses the
// default tax rates and the 26-paycheck salary baseline.
type Calculator struct {
	Rates            *TaxRates
	PaychecksPerYear int
}

// Compute uses the default calculator.
func Compute(profile Profile, hours Hours, resolved commission.Resolution, adj Adjustments, weeksInPeriod decimal.Decimal) Breakdown {
	return Calculator{}.Compute(profile, hours, resolved, adj, weeksInPeriod)
}

// Compute returns the breakdown for one employee. It has no error path:
// anything missing contributes zero.
func (c Calculator) Compute(profile Profile, hours Hours, resolved commission.Resolution, adj Adjustments, weeksInPeriod decimal.Decimal) Breakdown {
	rates := DefaultTaxRates()
	if c.Rates != nil {
		rates = *c.Rates
	}

	b := Breakdown{
		PayType:           profile.PayType(),
		HourlyPay:         decimal.Zero,
		SalaryPay:         decimal.Zero,
		ServiceCommission: decimal.Zero,
		RetailCommission:  decimal.Zero,
		CommissionPay:     decimal.Zero,
		Bonus:             adj.Bonus,
		Tips:              adj.Tips,
		Deductions:        adj.Deductions,
	}

	switch pay := profile.Pay.(type) {
	case Hourly:
		b.HourlyPay = hourlyPay(pay.Rate, hours)
	case HourlyPlusCommission:
		b.HourlyPay = hourlyPay(pay.Rate, hours)
	case Salary:
		b.SalaryPay = c.salaryPay(pay.Annual, weeksInPeriod)
	case SalaryPlusCommission:
		b.SalaryPay = c.salaryPay(pay.Annual, weeksInPeriod)
	}

	if profile.CommissionEnabled && profile.Pay != nil && EarnsCommission(profile.Pay) {
		b.ServiceCommission = resolved.ServiceCommission
		b.RetailCommission = resolved.RetailCommission
		b.CommissionPay = resolved.ServiceCommission.Add(resolved.RetailCommission)
	}

	b.GrossPay = b.HourlyPay.Add(b.SalaryPay).Add(b.CommissionPay).Add(b.Bonus).Add(b.Tips)
	b.EmployeeTaxes = rates.Withholding(b.GrossPay)
	b.EmployerTaxes = rates.EmployerBurden(b.GrossPay)
	b.NetPay = b.GrossPay.Sub(b.EmployeeTaxes.Total).Sub(b.Deductions)
	b.EmployerCost = b.GrossPay.Add(b.EmployerTaxes.Total)
	return b
}

func hourlyPay(rate decimal.Decimal, hours Hours) decimal.Decimal {
	regular := hours.Regular.Mul(rate)
	overtime := hours.Overtime.Mul(rate).Mul(OvertimeMultiplier)
	return regular.Add(overtime)
}

// salaryPay is (annual / paychecks) x (weeks / 2).
func (c Calculator) salaryPay(annual, weeksInPeriod decimal.Decimal) decimal.Decimal {
	paychecks := c.PaychecksPerYear
	if paychecks <= 0 {
		paychecks = DefaultPaychecksPerYear
	}
	perCheck := annual.Div(decimal.NewFromInt(int64(paychecks)))
	return perCheck.Mul(weeksInPeriod).Div(decimal.NewFromInt(2))
}
