package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) payroll.Date {
	return payroll.NewDate(year, month, day)
}

func assertPeriod(t *testing.T, p schedule.PayPeriod, start, end, check string) {
	t.Helper()
	assert.Equal(t, start, p.Start.String(), "start")
	assert.Equal(t, end, p.End.String(), "end")
	if check != "" {
		assert.Equal(t, check, p.CheckDate.String(), "check date")
	}
}

func weekly(day time.Weekday, daysUntilCheck int) schedule.Config {
	c := schedule.Default()
	c.Policy = schedule.Weekly
	c.WeeklyDayOfWeek = day
	c.DaysUntilCheck = daysUntilCheck
	return c
}

func biWeekly(anchor payroll.Date, day time.Weekday) schedule.Config {
	c := schedule.Default()
	c.Policy = schedule.BiWeekly
	c.BiWeeklyAnchorDate = anchor
	c.BiWeeklyDayOfWeek = day
	return c
}

func monthly(payDay int) schedule.Config {
	c := schedule.Default()
	c.Policy = schedule.Monthly
	c.MonthlyPayDay = payDay
	return c
}

// =============================================================================
// SEMI-MONTHLY
// =============================================================================

func TestSemiMonthly_FirstOfMonthClosesPreviousMonth(t *testing.T) {
	// GIVEN: 1st/15th split, today is New Year's Day
	// WHEN: Computing the current period
	// THEN: The period is Dec 15 - Dec 31 of the previous year

	p := schedule.CurrentPeriod(schedule.Default(), date(2026, time.January, 1))

	assertPeriod(t, p, "2025-12-15", "2025-12-31", "2026-01-05")
	assert.Equal(t, "2026-01-15", schedule.NextPayDay(schedule.Default(), date(2026, time.January, 1)).String())
}

func TestSemiMonthly_Halves(t *testing.T) {
	cfg := schedule.Default()

	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.January, 10)), "2026-01-01", "2026-01-14", "2026-01-19")
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.January, 15)), "2026-01-01", "2026-01-14", "")
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.January, 20)), "2026-01-15", "2026-01-31", "2026-02-05")
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.February, 20)), "2026-02-15", "2026-02-28", "")

	assert.Equal(t, "2026-02-01", schedule.NextPayDay(cfg, date(2026, time.January, 15)).String())
}

func TestSemiMonthly_CustomDaysBeforeFirstDay(t *testing.T) {
	// GIVEN: 5th/20th split, today is the 3rd of March
	// THEN: Current period is the previous month's second half, ending the 4th

	cfg := schedule.Default()
	cfg.SemiMonthlyFirstDay = 5
	cfg.SemiMonthlySecondDay = 20

	p := schedule.CurrentPeriod(cfg, date(2025, time.March, 3))

	assertPeriod(t, p, "2025-02-20", "2025-03-04", "2025-03-09")
}

func TestSemiMonthly_PeriodContainingIsStrict(t *testing.T) {
	p := schedule.PeriodContaining(schedule.Default(), date(2026, time.January, 1))
	assertPeriod(t, p, "2026-01-01", "2026-01-14", "")

	prev := schedule.PreviousPeriod(schedule.Default(), p)
	assertPeriod(t, prev, "2025-12-15", "2025-12-31", "")
}

// =============================================================================
// WEEKLY
// =============================================================================

func TestWeekly_NextPayDayRollsPastToday(t *testing.T) {
	cfg := weekly(time.Friday, 3)

	// 2026-01-01 is a Thursday
	assert.Equal(t, "2026-01-02", schedule.NextPayDay(cfg, date(2026, time.January, 1)).String())
	// On the pay weekday itself the next pay day is a week out
	assert.Equal(t, "2026-01-09", schedule.NextPayDay(cfg, date(2026, time.January, 2)).String())

	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.January, 1)), "2025-12-26", "2026-01-01", "2026-01-04")
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.January, 2)), "2026-01-02", "2026-01-08", "2026-01-11")
}

func TestWeekly_UnsetDaysUntilCheckUsesDefault(t *testing.T) {
	p := schedule.CurrentPeriod(weekly(time.Friday, 0), date(2026, time.January, 1))
	assert.Equal(t, "2026-01-06", p.CheckDate.String())
}

// =============================================================================
// BI-WEEKLY
// =============================================================================

func TestBiWeekly_AnchorParity(t *testing.T) {
	// Anchor 2024-01-05 is a Friday and a pay day
	cfg := biWeekly(date(2024, time.January, 5), time.Friday)

	tests := []struct {
		today   payroll.Date
		nextPay string
		start   string
		end     string
	}{
		{date(2024, time.January, 4), "2024-01-05", "2023-12-22", "2024-01-04"},
		{date(2024, time.January, 5), "2024-01-19", "2024-01-05", "2024-01-18"},
		{date(2024, time.January, 12), "2024-01-19", "2024-01-05", "2024-01-18"},
		{date(2024, time.January, 18), "2024-01-19", "2024-01-05", "2024-01-18"},
		{date(2024, time.January, 19), "2024-02-02", "2024-01-19", "2024-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.today.String(), func(t *testing.T) {
			assert.Equal(t, tt.nextPay, schedule.NextPayDay(cfg, tt.today).String())
			p := schedule.CurrentPeriod(cfg, tt.today)
			assertPeriod(t, p, tt.start, tt.end, "")
			assert.Equal(t, 14, p.TotalDays())
		})
	}
}

func TestBiWeekly_PayWeekdayDiffersFromAnchorWeekday(t *testing.T) {
	// Anchor Monday 2024-01-01, checks go out on Wednesday of pay weeks
	cfg := biWeekly(date(2024, time.January, 1), time.Wednesday)

	assert.Equal(t, "2024-01-03", schedule.NextPayDay(cfg, date(2024, time.January, 1)).String())
	assert.Equal(t, "2024-01-17", schedule.NextPayDay(cfg, date(2024, time.January, 3)).String())
	assert.Equal(t, "2024-01-17", schedule.NextPayDay(cfg, date(2024, time.January, 9)).String())
}

// =============================================================================
// MONTHLY
// =============================================================================

func TestMonthly_RollsToNextMonthAndYear(t *testing.T) {
	cfg := monthly(15)

	assert.Equal(t, "2026-01-15", schedule.NextPayDay(cfg, date(2025, time.December, 20)).String())
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2025, time.December, 20)), "2025-12-15", "2026-01-14", "2026-01-19")

	assert.Equal(t, "2026-02-15", schedule.NextPayDay(cfg, date(2026, time.January, 15)).String())
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2026, time.January, 15)), "2026-01-15", "2026-02-14", "")
}

func TestMonthly_ClampsShortMonths(t *testing.T) {
	cfg := monthly(31)

	assert.Equal(t, "2025-02-28", schedule.NextPayDay(cfg, date(2025, time.January, 31)).String())
	assertPeriod(t, schedule.CurrentPeriod(cfg, date(2025, time.January, 31)), "2025-01-31", "2025-02-27", "")
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestAllPolicies_StartBeforeEndBeforePayDates(t *testing.T) {
	configs := map[string]schedule.Config{
		"semi_monthly": schedule.Default(),
		"weekly":       weekly(time.Tuesday, 2),
		"bi_weekly":    biWeekly(date(2025, time.March, 7), time.Friday),
		"monthly":      monthly(28),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			for d := date(2024, time.December, 1); d.Before(date(2026, time.March, 1)); d = d.AddDays(1) {
				p := schedule.CurrentPeriod(cfg, d)
				next := schedule.NextPayDay(cfg, d)

				require.True(t, p.Start.BeforeOrEqual(p.End), "%s: start after end for %s", name, d)
				require.True(t, p.End.Before(p.CheckDate), "%s: check date not after end for %s", name, d)
				require.True(t, p.End.Before(next), "%s: next pay day %s not after end %s", name, next, p.End)
				require.True(t, schedule.PeriodContaining(cfg, d).Period().Contains(d), "%s: %s not contained", name, d)
			}
		})
	}
}

func TestMissingPolicy_FallsBackToSemiMonthly(t *testing.T) {
	p := schedule.CurrentPeriod(schedule.Config{}, date(2026, time.January, 1))
	assertPeriod(t, p, "2025-12-15", "2025-12-31", "2026-01-05")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, schedule.Default().Validate())

	bad := schedule.Default()
	bad.SemiMonthlyFirstDay = 15
	bad.SemiMonthlySecondDay = 1
	err := bad.Validate()
	assert.True(t, errors.Is(err, payroll.ErrInvalidSchedule))

	bad = schedule.Default()
	bad.WeeklyDayOfWeek = 7
	assert.Error(t, bad.Validate())

	bad = schedule.Default()
	bad.DaysUntilCheck = -1
	assert.Error(t, bad.Validate())

	bad = schedule.Default()
	bad.Policy = "fortnightly"
	assert.True(t, payroll.IsClientError(bad.Validate()))
}

func TestPaychecksPerYear(t *testing.T) {
	assert.Equal(t, 24, schedule.SemiMonthly.PaychecksPerYear())
	assert.Equal(t, 26, schedule.BiWeekly.PaychecksPerYear())
	assert.Equal(t, 52, schedule.Weekly.PaychecksPerYear())
	assert.Equal(t, 12, schedule.Monthly.PaychecksPerYear())
}
