/*
Package forecast projects full-period payroll from partial-period actuals.

PURPOSE:
  Orchestrates the schedule, commission and compensation packages over a
  roster and a sales time series. Answers "if the rest of the period goes
  like the part we've seen, what will payroll cost?"

ALGORITHM:
  1. Current pay period from the schedule and the pinned "today"
  2. daysPassed = max(1, days since start + 1), capped at the period length
     daysRemaining = max(0, totalDays - daysPassed)
  3. Sum each employee's actuals over [start, min(today, end)]
  4. projected = actual + (actual / daysPassed) x daysRemaining
     (linear, per revenue stream; no day-of-week weighting)
  5. Resolve commission against the PROJECTED revenue and compute
     compensation with a fixed 80 hours and weeks = totalDays / 7
  6. Sum over active employees; taxes at a blended 35% for dashboards
  7. Confidence from the elapsed fraction (>= 75% high, >= 40% medium)
  8. Compare projected gross with the previous period's actual sales

DETERMINISM:
  Nothing here reads the clock. The same Input always yields the same
  PayrollProjection, so callers may cache by input.

EXAMPLE:
  projection := forecast.Project(forecast.Input{
      Roster:   profiles,
      Schedule: cfg,
      Sales:    actuals,
      Catalog:  commission.Catalog{Overrides: o, Assignments: a, Levels: l},
      Today:    payroll.DateOf(time.Now()),
  })

SEE ALSO:
  - confidence.go: confidence classification
  - tiers/distribution.go: consumes PayrollProjection
*/
package forecast

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultHoursPerPeriod is assumed for every employee when forecasting.
// Exact payroll runs use real hours.
const DefaultHoursPerPeriod = 80

// DefaultBlendedTaxRate is the single rate used for aggregate tax display.
var DefaultBlendedTaxRate = decimal.RequireFromString("0.35")

var daysPerWeek = decimal.NewFromInt(7)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Input is everything one projection needs. All collections are already
// scoped to a single organization.
type Input struct {
	Roster   []compensation.Profile
	Schedule schedule.Config
	Sales    []payroll.SalesActual
	Catalog  commission.Catalog
	Today    payroll.Date
}

// Rates is a resolved service/retail rate pair.
type Rates struct {
	Service decimal.Decimal `json:"service"`
	Retail  decimal.Decimal `json:"retail"`
}

// EmployeeProjection is one employee's forecast.
type EmployeeProjection struct {
	EmployeeID            payroll.EmployeeID     `json:"employee_id"`
	Name                  string                 `json:"name"`
	PayType               compensation.PayType   `json:"pay_type"`
	AssignedLevel         payroll.LevelSlug      `json:"assigned_level,omitempty"`
	CurrentServiceSales   decimal.Decimal        `json:"current_service_sales"`
	CurrentProductSales   decimal.Decimal        `json:"current_product_sales"`
	CurrentSales          decimal.Decimal        `json:"current_sales"`
	DailyAverage          decimal.Decimal        `json:"daily_average"`
	ProjectedServiceSales decimal.Decimal        `json:"projected_service_sales"`
	ProjectedProductSales decimal.Decimal        `json:"projected_product_sales"`
	ProjectedSales        decimal.Decimal        `json:"projected_sales"`
	ResolvedSource        commission.Source      `json:"resolved_source"`
	SourceLabel           string                 `json:"source_label"`
	ResolvedRates         Rates                  `json:"resolved_rates"`
	Commission            commission.Resolution  `json:"commission"`
	ProjectedCompensation compensation.Breakdown `json:"projected_compensation"`
}

// Totals aggregates all active employees.
type Totals struct {
	CurrentSales   decimal.Decimal `json:"current_sales"`
	ProjectedSales decimal.Decimal `json:"projected_sales"`
	GrossPay       decimal.Decimal `json:"gross_pay"`
	Commission     decimal.Decimal `json:"commission"`
	EstimatedTaxes decimal.Decimal `json:"estimated_taxes"`
	NetPay         decimal.Decimal `json:"net_pay"`
	EmployerCost   decimal.Decimal `json:"employer_cost"`
}

// Comparison contrasts this period's projection with the previous period's
// finalized actual sales. ChangePercent measures projected gross against those
// sales; SalesChangePercent measures projected sales against them. Both are
// null when there were no prior sales.
type Comparison struct {
	PriorPeriod        payroll.Period      `json:"prior_period"`
	PriorActualSales   decimal.Decimal     `json:"prior_actual_sales"`
	ProjectedGross     decimal.Decimal     `json:"projected_gross"`
	ProjectedSales     decimal.Decimal     `json:"projected_sales"`
	ChangePercent      decimal.NullDecimal `json:"change_percent"`
	SalesChangePercent decimal.NullDecimal `json:"sales_change_percent"`
}

// PayrollProjection is the engine's output.
type PayrollProjection struct {
	Today         payroll.Date         `json:"today"`
	Period        schedule.PayPeriod   `json:"period"`
	NextPayDay    payroll.Date         `json:"next_pay_day"`
	DaysPassed    int                  `json:"days_passed"`
	TotalDays     int                  `json:"total_days"`
	DaysRemaining int                  `json:"days_remaining"`
	Confidence    Confidence           `json:"confidence_level"`
	Employees     []EmployeeProjection `json:"employees"`
	Totals        Totals               `json:"totals"`
	Comparison    Comparison           `json:"comparison"`
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine projects payroll. The zero value uses the standard assumptions.
type Engine struct {
	Resolver   commission.Resolver
	Calculator compensation.Calculator

	// HoursPerPeriod overrides the 80-hour assumption when positive.
	HoursPerPeriod decimal.Decimal

	// BlendedTaxRate overrides the 35% aggregate rate when set.
	BlendedTaxRate decimal.NullDecimal

	// SalaryDivisorFromSchedule cuts salaries by the schedule's real paycheck
	// count (24 semi-monthly, 12 monthly, ...) instead of the bi-weekly 26.
	SalaryDivisorFromSchedule bool
}

// Project uses the default engine.
func Project(input Input) PayrollProjection {
	return Engine{}.Project(input)
}

// Project computes the projection. It never fails: an empty roster or empty
// sales data yields zero totals and low confidence.
func (e Engine) Project(input Input) PayrollProjection {
	today := input.Today
	period := schedule.CurrentPeriod(input.Schedule, today)

	// 2. Elapsed-time bookkeeping
	totalDays := period.TotalDays()
	daysPassed := payroll.DaysBetween(period.Start, today) + 1
	if daysPassed < 1 {
		daysPassed = 1
	}
	if daysPassed > totalDays {
		daysPassed = totalDays
	}
	daysRemaining := totalDays - daysPassed
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	// 3. Actuals to date
	window := period.Period().Clip(today)
	actuals := payroll.TotalsByEmployee(input.Sales, window)

	hours := compensation.Hours{Regular: e.hoursPerPeriod(), Overtime: decimal.Zero}
	weeks := decimal.NewFromInt(int64(totalDays)).Div(daysPerWeek)
	calc := e.Calculator
	if e.SalaryDivisorFromSchedule {
		calc.PaychecksPerYear = input.Schedule.Normalize().Policy.PaychecksPerYear()
	}

	projection := PayrollProjection{
		Today:         today,
		Period:        period,
		NextPayDay:    schedule.NextPayDay(input.Schedule, today),
		DaysPassed:    daysPassed,
		TotalDays:     totalDays,
		DaysRemaining: daysRemaining,
		Employees:     []EmployeeProjection{},
		Totals:        zeroTotals(),
	}

	active := make(map[payroll.EmployeeID]bool)
	sawActuals := false

	for _, profile := range input.Roster {
		if !profile.IsActive {
			continue
		}
		active[profile.EmployeeID] = true

		current := actuals[profile.EmployeeID]
		if _, ok := actuals[profile.EmployeeID]; ok {
			sawActuals = true
		}

		// 4. Linear extrapolation
		projService := extrapolate(current.Service, daysPassed, daysRemaining)
		projProduct := extrapolate(current.Product, daysPassed, daysRemaining)

		// 5. Resolve against projected revenue, then compensate
		resolved := e.Resolver.Resolve(profile.EmployeeID, projService, projProduct, input.Catalog, today)
		breakdown := calc.Compute(profile, hours, resolved, compensation.Adjustments{}, weeks)

		ep := EmployeeProjection{
			EmployeeID:            profile.EmployeeID,
			Name:                  profile.Name,
			PayType:               profile.PayType(),
			AssignedLevel:         input.Catalog.Assignments[profile.EmployeeID],
			CurrentServiceSales:   current.Service,
			CurrentProductSales:   current.Product,
			CurrentSales:          current.Total(),
			DailyAverage:          current.Total().Div(decimal.NewFromInt(int64(daysPassed))),
			ProjectedServiceSales: projService,
			ProjectedProductSales: projProduct,
			ProjectedSales:        projService.Add(projProduct),
			ResolvedSource:        resolved.Source,
			SourceLabel:           resolved.SourceLabel,
			ResolvedRates:         Rates{Service: resolved.ServiceRate, Retail: resolved.RetailRate},
			Commission:            resolved,
			ProjectedCompensation: breakdown,
		}
		projection.Employees = append(projection.Employees, ep)

		// 6. Aggregate
		t := &projection.Totals
		t.CurrentSales = t.CurrentSales.Add(ep.CurrentSales)
		t.ProjectedSales = t.ProjectedSales.Add(ep.ProjectedSales)
		t.GrossPay = t.GrossPay.Add(breakdown.GrossPay)
		t.Commission = t.Commission.Add(breakdown.CommissionPay)
		t.EmployerCost = t.EmployerCost.Add(breakdown.EmployerCost)
	}

	projection.Totals.EstimatedTaxes = projection.Totals.GrossPay.Mul(e.blendedTaxRate())
	projection.Totals.NetPay = projection.Totals.GrossPay.Sub(projection.Totals.EstimatedTaxes)

	// 7. Confidence
	if len(active) == 0 || !sawActuals {
		projection.Confidence = ConfidenceLow
	} else {
		projection.Confidence = ClassifyConfidence(daysPassed, totalDays)
	}

	// 8. Previous period comparison
	projection.Comparison = compare(input, period, active, projection.Totals)

	return projection
}

// extrapolate projects the remaining days at the elapsed daily average.
func extrapolate(actual decimal.Decimal, daysPassed, daysRemaining int) decimal.Decimal {
	if daysRemaining == 0 {
		return actual
	}
	dailyAvg := actual.Div(decimal.NewFromInt(int64(daysPassed)))
	return actual.Add(dailyAvg.Mul(decimal.NewFromInt(int64(daysRemaining))))
}

func compare(input Input, period schedule.PayPeriod, active map[payroll.EmployeeID]bool, totals Totals) Comparison {
	prior := schedule.PreviousPeriod(input.Schedule, period).Period()

	priorSales := decimal.Zero
	for _, a := range input.Sales {
		if active[a.EmployeeID] && prior.Contains(a.Date) {
			priorSales = priorSales.Add(a.Total())
		}
	}

	c := Comparison{
		PriorPeriod:      prior,
		PriorActualSales: priorSales,
		ProjectedGross:   totals.GrossPay,
		ProjectedSales:   totals.ProjectedSales,
	}
	if priorSales.IsPositive() {
		c.ChangePercent = decimal.NewNullDecimal(percentChange(totals.GrossPay, priorSales))
		c.SalesChangePercent = decimal.NewNullDecimal(percentChange(totals.ProjectedSales, priorSales))
	}
	return c
}

func percentChange(projected, base decimal.Decimal) decimal.Decimal {
	return projected.Sub(base).Div(base).Mul(payroll.Hundred)
}

func (e Engine) hoursPerPeriod() decimal.Decimal {
	if e.HoursPerPeriod.IsPositive() {
		return e.HoursPerPeriod
	}
	return decimal.NewFromInt(DefaultHoursPerPeriod)
}

func (e Engine) blendedTaxRate() decimal.Decimal {
	if e.BlendedTaxRate.Valid {
		return e.BlendedTaxRate.Decimal
	}
	return DefaultBlendedTaxRate
}

func zeroTotals() Totals {
	return Totals{
		CurrentSales:   decimal.Zero,
		ProjectedSales: decimal.Zero,
		GrossPay:       decimal.Zero,
		Commission:     decimal.Zero,
		EstimatedTaxes: decimal.Zero,
		NetPay:         decimal.Zero,
		EmployerCost:   decimal.Zero,
	}
}
