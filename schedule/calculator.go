package schedule

import (
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PAY PERIOD
// =============================================================================

// PayPeriod is a pay period plus the date its check is issued.
// Invariant: Start <= End < CheckDate.
type PayPeriod struct {
	Start     payroll.Date `json:"start"`
	End       payroll.Date `json:"end"`
	CheckDate payroll.Date `json:"check_date"`
}

// Period drops the check date.
func (p PayPeriod) Period() payroll.Period {
	return payroll.Period{Start: p.Start, End: p.End}
}

// TotalDays counts both ends.
func (p PayPeriod) TotalDays() int { return p.Period().Len() }

// PaychecksPerYear is the nominal number of checks a policy issues per year.
func (p Policy) PaychecksPerYear() int {
	switch p {
	case Weekly:
		return 52
	case BiWeekly:
		return 26
	case Monthly:
		return 12
	default:
		return 24
	}
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// CurrentPeriod returns the pay period for today.
//
// For semi-monthly schedules a boundary day selects the period it closes, so
// on the 1st (with a 1st/15th split) the current period is the 15th through
// the end of the previous month. All other policies return the period that
// contains today.
func CurrentPeriod(config Config, today payroll.Date) PayPeriod {
	c := config.Normalize()
	if c.Policy == SemiMonthly {
		return c.withCheckDate(c.semiMonthlyClosing(today))
	}
	return c.withCheckDate(c.containing(today))
}

// PeriodContaining returns the pay period whose [Start, End] contains d.
func PeriodContaining(config Config, d payroll.Date) PayPeriod {
	c := config.Normalize()
	return c.withCheckDate(c.containing(d))
}

// PreviousPeriod returns the period immediately before p.
func PreviousPeriod(config Config, p PayPeriod) PayPeriod {
	return PeriodContaining(config, p.Start.AddDays(-1))
}

// NextPayDay returns the first pay day strictly after today.
func NextPayDay(config Config, today payroll.Date) payroll.Date {
	c := config.Normalize()
	switch c.Policy {
	case Weekly:
		return nextWeekday(today, c)
	case BiWeekly:
		return c.nextBiWeekly(today)
	case Monthly:
		return c.nextMonthly(today)
	default:
		return c.nextSemiMonthly(today)
	}
}

// =============================================================================
// PERIOD CALCULATION
// =============================================================================

func (c Config) containing(d payroll.Date) payroll.Period {
	switch c.Policy {
	case Weekly:
		next := nextWeekday(d, c)
		return payroll.Period{Start: next.AddDays(-7), End: next.AddDays(-1)}

	case BiWeekly:
		next := c.nextBiWeekly(d)
		return payroll.Period{Start: next.AddDays(-14), End: next.AddDays(-1)}

	case Monthly:
		next := c.nextMonthly(d)
		prev := payroll.AddMonthsClamped(next, -1, c.MonthlyPayDay)
		return payroll.Period{Start: prev, End: next.AddDays(-1)}

	default:
		first, second := c.semiMonthlyBoundaries(d)
		switch {
		case d.Before(first):
			return c.previousSecondHalf(d, first)
		case d.Before(second):
			return payroll.Period{Start: first, End: second.AddDays(-1)}
		default:
			return c.secondHalf(d, second)
		}
	}
}

func (c Config) withCheckDate(p payroll.Period) PayPeriod {
	offset := FixedCheckOffset
	if c.Policy == Weekly || c.Policy == BiWeekly {
		offset = c.DaysUntilCheck
	}
	return PayPeriod{Start: p.Start, End: p.End, CheckDate: p.End.AddDays(offset)}
}

// =============================================================================
// SEMI-MONTHLY
// =============================================================================

func (c Config) semiMonthlyBoundaries(d payroll.Date) (first, second payroll.Date) {
	first = payroll.ClampedDate(d.Year(), d.Month(), c.SemiMonthlyFirstDay)
	second = payroll.ClampedDate(d.Year(), d.Month(), c.SemiMonthlySecondDay)
	return first, second
}

func (c Config) semiMonthlyClosing(today payroll.Date) payroll.Period {
	first, second := c.semiMonthlyBoundaries(today)
	switch {
	case today.BeforeOrEqual(first):
		return c.previousSecondHalf(today, first)
	case today.BeforeOrEqual(second):
		return payroll.Period{Start: first, End: second.AddDays(-1)}
	default:
		return c.secondHalf(today, second)
	}
}

// previousSecondHalf runs from the previous month's second boundary to the day
// before this month's first boundary. December -> January is handled by the
// month arithmetic in ClampedDate.
func (c Config) previousSecondHalf(d, first payroll.Date) payroll.Period {
	start := payroll.ClampedDate(d.Year(), d.Month()-1, c.SemiMonthlySecondDay)
	return payroll.Period{Start: start, End: first.AddDays(-1)}
}

func (c Config) secondHalf(d, second payroll.Date) payroll.Period {
	nextFirst := payroll.ClampedDate(d.Year(), d.Month()+1, c.SemiMonthlyFirstDay)
	return payroll.Period{Start: second, End: nextFirst.AddDays(-1)}
}

func (c Config) nextSemiMonthly(today payroll.Date) payroll.Date {
	first, second := c.semiMonthlyBoundaries(today)
	if first.After(today) {
		return first
	}
	if second.After(today) {
		return second
	}
	return payroll.ClampedDate(today.Year(), today.Month()+1, c.SemiMonthlyFirstDay)
}

// =============================================================================
// WEEKLY / BI-WEEKLY
// =============================================================================

// nextWeekday returns the next configured weekday; today itself rolls to next week.
func nextWeekday(today payroll.Date, c Config) payroll.Date {
	delta := (int(c.WeeklyDayOfWeek) - int(today.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDays(delta)
}

// nextBiWeekly splits time into 7-day weeks starting at the anchor. Weeks at
// an even offset from the anchor are pay weeks.
func (c Config) nextBiWeekly(today payroll.Date) payroll.Date {
	anchor := c.BiWeeklyAnchorDate
	weeks := payroll.FloorDiv(payroll.DaysBetween(anchor, today), 7)
	weekStart := anchor.AddWeeks(weeks)
	offset := (int(c.BiWeeklyDayOfWeek) - int(anchor.Weekday()) + 7) % 7
	payDay := weekStart.AddDays(offset)

	if payroll.FloorMod(weeks, 2) == 0 {
		if payDay.After(today) {
			return payDay
		}
		return payDay.AddWeeks(2)
	}
	return payDay.AddWeeks(1)
}

// =============================================================================
// MONTHLY
// =============================================================================

func (c Config) nextMonthly(today payroll.Date) payroll.Date {
	thisMonth := payroll.ClampedDate(today.Year(), today.Month(), c.MonthlyPayDay)
	if thisMonth.After(today) {
		return thisMonth
	}
	return payroll.ClampedDate(today.Year(), today.Month()+1, c.MonthlyPayDay)
}
