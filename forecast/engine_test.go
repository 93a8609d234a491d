package forecast_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(v float64) decimal.Decimal { return payroll.Dec(v) }

func assertMoney(t *testing.T, want float64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), "%s: want %v, got %s", msg, want, got)
}

func jan(day int) payroll.Date { return payroll.NewDate(2024, time.January, day) }

func sale(id payroll.EmployeeID, d payroll.Date, service, product float64) payroll.SalesActual {
	return payroll.SalesActual{EmployeeID: id, Date: d, ServiceRevenue: money(service), ProductRevenue: money(product)}
}

func biWeekly() schedule.Config {
	cfg := schedule.Default()
	cfg.Policy = schedule.BiWeekly
	cfg.BiWeeklyAnchorDate = jan(5)
	return cfg
}

func weekly() schedule.Config {
	cfg := schedule.Default()
	cfg.Policy = schedule.Weekly
	cfg.WeeklyDayOfWeek = time.Friday
	return cfg
}

func seniorCatalog(assignments commission.Assignments) commission.Catalog {
	return commission.Catalog{
		Assignments: assignments,
		Levels: []commission.Level{
			{Slug: "junior", Label: "Junior", ServiceRate: payroll.Rate(0.05), RetailRate: payroll.Rate(0.05), DisplayOrder: 1},
			{Slug: "senior", Label: "Senior", ServiceRate: payroll.Rate(0.10), RetailRate: payroll.Rate(0.10), DisplayOrder: 2},
		},
	}
}

// =============================================================================
// END TO END
// =============================================================================

func TestProject_BiWeeklyEndToEnd(t *testing.T) {
	// GIVEN: bi-weekly anchored 2024-01-05, today 2024-01-18 (last day of the period)
	//   A: hourly $20
	//   B: salary+commission $52k, Senior (10%), $2000 service revenue
	// THEN: A = 80 x 20 = 1600, B = 2000 salary + 200 commission, total gross 3800

	input := forecast.Input{
		Roster: []compensation.Profile{
			{EmployeeID: "a", Name: "Avery", Pay: compensation.Hourly{Rate: money(20)}, IsActive: true},
			{EmployeeID: "b", Name: "Blair", Pay: compensation.SalaryPlusCommission{Annual: money(52000)}, CommissionEnabled: true, IsActive: true},
		},
		Schedule: biWeekly(),
		Sales: []payroll.SalesActual{
			sale("b", jan(8), 1200, 0),
			sale("b", jan(15), 800, 0),
		},
		Catalog: seniorCatalog(commission.Assignments{"b": "senior"}),
		Today:   jan(18),
	}

	p := forecast.Project(input)

	assert.Equal(t, jan(5), p.Period.Start)
	assert.Equal(t, jan(18), p.Period.End)
	assert.Equal(t, jan(19), p.NextPayDay)
	assert.Equal(t, 14, p.TotalDays)
	assert.Equal(t, 14, p.DaysPassed)
	assert.Equal(t, 0, p.DaysRemaining)
	assert.Equal(t, forecast.ConfidenceHigh, p.Confidence)

	require.Len(t, p.Employees, 2)
	a, b := p.Employees[0], p.Employees[1]

	assertMoney(t, 1600, a.ProjectedCompensation.GrossPay, "A gross")
	assert.Equal(t, commission.SourceUnassigned, a.ResolvedSource.Kind)

	assertMoney(t, 2000, b.ProjectedCompensation.SalaryPay, "B salary")
	assertMoney(t, 200, b.ProjectedCompensation.CommissionPay, "B commission")
	assertMoney(t, 2200, b.ProjectedCompensation.GrossPay, "B gross")
	assert.Equal(t, "Level: Senior", b.SourceLabel)
	assert.Equal(t, payroll.LevelSlug("senior"), b.AssignedLevel)
	assertMoney(t, 0.10, b.ResolvedRates.Service, "B service rate")

	assertMoney(t, 3800, p.Totals.GrossPay, "total gross")
	assertMoney(t, 200, p.Totals.Commission, "total commission")
	assertMoney(t, 1330, p.Totals.EstimatedTaxes, "blended taxes")
	assertMoney(t, 2470, p.Totals.NetPay, "net")
}

func TestProject_FullyElapsedProjectsActuals(t *testing.T) {
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "b", Pay: compensation.CommissionOnly{}, CommissionEnabled: true, IsActive: true}},
		Schedule: biWeekly(),
		Sales:    []payroll.SalesActual{sale("b", jan(6), 333.33, 12.5)},
		Catalog:  seniorCatalog(commission.Assignments{"b": "senior"}),
		Today:    jan(18),
	}

	p := forecast.Project(input)

	require.Len(t, p.Employees, 1)
	e := p.Employees[0]
	assert.True(t, e.ProjectedSales.Equal(e.CurrentSales), "projected %s, current %s", e.ProjectedSales, e.CurrentSales)
	assertMoney(t, 333.33, e.ProjectedServiceSales, "service")
	assertMoney(t, 12.5, e.ProjectedProductSales, "product")
}

// =============================================================================
// EXTRAPOLATION
// =============================================================================

func TestProject_LinearExtrapolation(t *testing.T) {
	// GIVEN: weekly Friday schedule, today Monday 2024-01-08
	//   period [Jan 5, Jan 11], 4 days passed, 3 remaining
	//   $400 service, $40 product to date; a future-dated row is ignored
	// THEN: projected 700 service, 70 product; commission 40% / 10%

	catalog := commission.Catalog{
		Assignments: commission.Assignments{"c": "master"},
		Levels: []commission.Level{
			{Slug: "master", Label: "Master", ServiceRate: payroll.Rate(0.40), RetailRate: payroll.Rate(0.10)},
		},
	}
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "c", Pay: compensation.CommissionOnly{}, CommissionEnabled: true, IsActive: true}},
		Schedule: weekly(),
		Sales: []payroll.SalesActual{
			sale("c", jan(5), 100, 40),
			sale("c", jan(6), 300, 0),
			sale("c", jan(10), 1000, 0),
		},
		Catalog: catalog,
		Today:   jan(8),
	}

	p := forecast.Project(input)

	assert.Equal(t, jan(5), p.Period.Start)
	assert.Equal(t, jan(11), p.Period.End)
	assert.Equal(t, 4, p.DaysPassed)
	assert.Equal(t, 3, p.DaysRemaining)
	assert.Equal(t, forecast.ConfidenceMedium, p.Confidence)

	require.Len(t, p.Employees, 1)
	e := p.Employees[0]
	assertMoney(t, 440, e.CurrentSales, "current")
	assertMoney(t, 110, e.DailyAverage, "daily average")
	assertMoney(t, 700, e.ProjectedServiceSales, "projected service")
	assertMoney(t, 70, e.ProjectedProductSales, "projected product")
	assertMoney(t, 770, p.Totals.ProjectedSales, "total projected")
	assertMoney(t, 287, p.Totals.GrossPay, "gross")
}

func TestProject_OverrideResolvesAgainstProjectedRevenue(t *testing.T) {
	catalog := seniorCatalog(commission.Assignments{"c": "junior"})
	catalog.Overrides = []commission.Override{
		{EmployeeID: "c", ServiceRate: payroll.Rate(0.5), Reason: "Retention", IsActive: true},
	}
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "c", Pay: compensation.CommissionOnly{}, CommissionEnabled: true, IsActive: true}},
		Schedule: weekly(),
		Sales:    []payroll.SalesActual{sale("c", jan(5), 400, 0)},
		Catalog:  catalog,
		Today:    jan(8),
	}

	p := forecast.Project(input)

	require.Len(t, p.Employees, 1)
	assert.Equal(t, "Override: Retention", p.Employees[0].SourceLabel)
	assertMoney(t, 350, p.Employees[0].Commission.ServiceCommission, "50% of projected 700")
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestProject_EmptyInputs(t *testing.T) {
	p := forecast.Project(forecast.Input{Today: jan(18)})

	assert.Empty(t, p.Employees)
	assert.NotNil(t, p.Employees)
	assert.Equal(t, forecast.ConfidenceLow, p.Confidence)
	assertMoney(t, 0, p.Totals.GrossPay, "gross")
	assertMoney(t, 0, p.Totals.ProjectedSales, "sales")
	assert.False(t, p.Comparison.ChangePercent.Valid)
}

func TestProject_NoSalesIsLowConfidence(t *testing.T) {
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "a", Pay: compensation.Hourly{Rate: money(20)}, IsActive: true}},
		Schedule: biWeekly(),
		Today:    jan(18),
	}

	p := forecast.Project(input)

	assert.Equal(t, forecast.ConfidenceLow, p.Confidence)
	assertMoney(t, 1600, p.Totals.GrossPay, "hourly pay still projected")
}

func TestProject_InactiveEmployeesExcluded(t *testing.T) {
	input := forecast.Input{
		Roster: []compensation.Profile{
			{EmployeeID: "a", Pay: compensation.Hourly{Rate: money(20)}, IsActive: true},
			{EmployeeID: "gone", Pay: compensation.CommissionOnly{}, CommissionEnabled: true, IsActive: false},
		},
		Schedule: biWeekly(),
		Sales:    []payroll.SalesActual{sale("gone", jan(10), 5000, 0)},
		Catalog:  seniorCatalog(commission.Assignments{"gone": "senior"}),
		Today:    jan(18),
	}

	p := forecast.Project(input)

	require.Len(t, p.Employees, 1)
	assert.Equal(t, payroll.EmployeeID("a"), p.Employees[0].EmployeeID)
	assertMoney(t, 0, p.Totals.CurrentSales, "inactive sales ignored")
	assertMoney(t, 1600, p.Totals.GrossPay, "gross")
}

func TestProject_ComparesWithPriorPeriod(t *testing.T) {
	// Prior weekly period is [Dec 29, Jan 4] with $500; projected is $700.
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "c", Pay: compensation.CommissionOnly{}, IsActive: true}},
		Schedule: weekly(),
		Sales: []payroll.SalesActual{
			sale("c", jan(2), 500, 0),
			sale("c", jan(5), 400, 0),
		},
		Today: jan(8),
	}

	p := forecast.Project(input)

	assert.Equal(t, payroll.NewDate(2023, time.December, 29), p.Comparison.PriorPeriod.Start)
	assert.Equal(t, jan(4), p.Comparison.PriorPeriod.End)
	assertMoney(t, 500, p.Comparison.PriorActualSales, "prior")
	assertMoney(t, 700, p.Comparison.ProjectedSales, "projected sales")
	require.True(t, p.Comparison.SalesChangePercent.Valid)
	assertMoney(t, 40, p.Comparison.SalesChangePercent.Decimal, "sales change percent")

	// Commission is disabled, so projected gross is zero.
	require.True(t, p.Comparison.ChangePercent.Valid)
	assertMoney(t, -100, p.Comparison.ChangePercent.Decimal, "gross change percent")
}

func TestProject_ComparesProjectedGrossWithPriorSales(t *testing.T) {
	// GIVEN: weekly periods, one hourly employee at $20/h,
	//        $1000 of sales last week and $1000 so far this week
	// WHEN: projecting on the last day of the period
	// THEN: projected gross 1600 against prior sales 1000 is +60%,
	//       while sales alone are flat

	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "a", Pay: compensation.Hourly{Rate: money(20)}, IsActive: true}},
		Schedule: weekly(),
		Sales: []payroll.SalesActual{
			sale("a", jan(2), 1000, 0),
			sale("a", jan(8), 1000, 0),
		},
		Today: jan(11),
	}

	p := forecast.Project(input)

	assert.Equal(t, jan(5), p.Period.Start)
	assert.Equal(t, jan(11), p.Period.End)
	assertMoney(t, 1600, p.Comparison.ProjectedGross, "projected gross")
	assertMoney(t, 1000, p.Comparison.ProjectedSales, "projected sales")
	assertMoney(t, 1000, p.Comparison.PriorActualSales, "prior sales")

	require.True(t, p.Comparison.ChangePercent.Valid)
	assertMoney(t, 60, p.Comparison.ChangePercent.Decimal, "gross change percent")
	require.True(t, p.Comparison.SalesChangePercent.Valid)
	assertMoney(t, 0, p.Comparison.SalesChangePercent.Decimal, "sales change percent")
}

func TestProject_IsDeterministic(t *testing.T) {
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "c", Pay: compensation.HourlyPlusCommission{Rate: money(17)}, CommissionEnabled: true, IsActive: true}},
		Schedule: weekly(),
		Sales:    []payroll.SalesActual{sale("c", jan(5), 123.45, 6.7), sale("c", jan(7), 99.99, 0)},
		Catalog:  seniorCatalog(commission.Assignments{"c": "senior"}),
		Today:    jan(8),
	}

	assert.Equal(t, forecast.Project(input), forecast.Project(input))
}

func TestEngine_SalaryDivisorFromSchedule(t *testing.T) {
	// Semi-monthly with 24 checks: $48k over a 16-day period.
	cfg := schedule.Default()
	input := forecast.Input{
		Roster:   []compensation.Profile{{EmployeeID: "s", Pay: compensation.Salary{Annual: money(48000)}, IsActive: true}},
		Schedule: cfg,
		Today:    jan(20),
	}

	p := forecast.Engine{SalaryDivisorFromSchedule: true}.Project(input)

	// Period [Jan 15, Jan 31] is 17 days: 2000 x (17/7) / 2
	require.Equal(t, 17, p.TotalDays)
	want := money(2000).Mul(decimal.NewFromInt(17).Div(decimal.NewFromInt(7))).Div(decimal.NewFromInt(2))
	assert.True(t, p.Employees[0].ProjectedCompensation.SalaryPay.Equal(want))
}

// =============================================================================
// CONFIDENCE
// =============================================================================

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		passed, total int
		want          forecast.Confidence
	}{
		{3, 4, forecast.ConfidenceHigh},
		{75, 100, forecast.ConfidenceHigh},
		{74, 100, forecast.ConfidenceMedium},
		{2, 5, forecast.ConfidenceMedium},
		{40, 100, forecast.ConfidenceMedium},
		{39, 100, forecast.ConfidenceLow},
		{1, 14, forecast.ConfidenceLow},
		{14, 14, forecast.ConfidenceHigh},
		{0, 0, forecast.ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, forecast.ClassifyConfidence(tt.passed, tt.total), "%d/%d", tt.passed, tt.total)
	}
}

func TestProject_ConfidenceBoundaries(t *testing.T) {
	// Semi-monthly 1st/21st: the current period on Jan 2..20 is [Jan 1, Jan 20],
	// 20 days, so day 15 is exactly 75% and day 8 exactly 40%.
	cfg := schedule.Default()
	cfg.SemiMonthlySecondDay = 21

	tests := []struct {
		name  string
		today payroll.Date
		want  forecast.Confidence
	}{
		{"75% elapsed", jan(15), forecast.ConfidenceHigh},
		{"70% elapsed", jan(14), forecast.ConfidenceMedium},
		{"40% elapsed", jan(8), forecast.ConfidenceMedium},
		{"35% elapsed", jan(7), forecast.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := forecast.Input{
				Roster:   []compensation.Profile{{EmployeeID: "a", Pay: compensation.Hourly{Rate: money(20)}, IsActive: true}},
				Schedule: cfg,
				Sales:    []payroll.SalesActual{sale("a", jan(2), 100, 0)},
				Today:    tt.today,
			}

			p := forecast.Project(input)

			require.Equal(t, 20, p.TotalDays)
			assert.Equal(t, tt.want, p.Confidence)
		})
	}
}
