/*
Package schedule computes pay-period boundaries and pay dates.

PURPOSE:
  Maps an organization's pay schedule policy plus a caller-supplied "today"
  to the pay period being worked (or paid) and the next pay day. Every
  function is pure: the caller pins "today" once and threads it through.

POLICIES:
  semi_monthly: two periods per month split at FirstDay and SecondDay
  bi_weekly:    14-day periods aligned to an anchor date
  weekly:       7-day periods ending the day before the pay weekday
  monthly:      one period per month ending the day before the pay day

CHECK DATES:
  semi_monthly, monthly: period end + 5 days (fixed)
  weekly, bi_weekly:     period end + DaysUntilCheck (5 when unset)

DEFAULTS:
  A missing or unknown policy falls back to semi_monthly on the 1st/15th.
  Out-of-range fields are replaced by defaults in Normalize; Validate is for
  input boundaries that want to reject bad configuration instead.

SEE ALSO:
  - calculator.go: CurrentPeriod, NextPayDay, PeriodContaining
  - factory/org.go: JSON/YAML parsing of Config
*/
package schedule

import (
	"fmt"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// Policy names a pay schedule.
type Policy string

const (
	SemiMonthly Policy = "semi_monthly"
	BiWeekly    Policy = "bi_weekly"
	Weekly      Policy = "weekly"
	Monthly     Policy = "monthly"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	switch p {
	case SemiMonthly, BiWeekly, Weekly, Monthly:
		return true
	}
	return false
}

// FixedCheckOffset is the check delay used by semi-monthly and monthly
// schedules, and the fallback for weekly schedules with no DaysUntilCheck.
const FixedCheckOffset = 5

// Config is an organization's pay schedule.
type Config struct {
	Policy               Policy       `json:"policy"`
	SemiMonthlyFirstDay  int          `json:"semi_monthly_first_day"`
	SemiMonthlySecondDay int          `json:"semi_monthly_second_day"`
	BiWeeklyDayOfWeek    time.Weekday `json:"bi_weekly_day_of_week"`
	BiWeeklyAnchorDate   payroll.Date `json:"bi_weekly_anchor_date"`
	WeeklyDayOfWeek      time.Weekday `json:"weekly_day_of_week"`
	MonthlyPayDay        int          `json:"monthly_pay_day"`
	DaysUntilCheck       int          `json:"days_until_check"`
}

// DefaultAnchor is a Friday used when a bi-weekly schedule has no anchor.
var DefaultAnchor = payroll.NewDate(2024, time.January, 5)

// Default returns the built-in schedule used when an organization has none.
func Default() Config {
	return Config{
		Policy:               SemiMonthly,
		SemiMonthlyFirstDay:  1,
		SemiMonthlySecondDay: 15,
		BiWeeklyDayOfWeek:    time.Friday,
		BiWeeklyAnchorDate:   DefaultAnchor,
		WeeklyDayOfWeek:      time.Friday,
		MonthlyPayDay:        1,
		DaysUntilCheck:       FixedCheckOffset,
	}
}

// Normalize returns a copy with every absent or out-of-range field replaced by
// its default. It never fails.
func (c Config) Normalize() Config {
	def := Default()
	out := c

	if !out.Policy.Valid() {
		out.Policy = def.Policy
	}
	if out.SemiMonthlyFirstDay < 1 || out.SemiMonthlyFirstDay > 31 ||
		out.SemiMonthlySecondDay < 1 || out.SemiMonthlySecondDay > 31 ||
		out.SemiMonthlyFirstDay >= out.SemiMonthlySecondDay {
		out.SemiMonthlyFirstDay = def.SemiMonthlyFirstDay
		out.SemiMonthlySecondDay = def.SemiMonthlySecondDay
	}
	if !validWeekday(out.BiWeeklyDayOfWeek) {
		out.BiWeeklyDayOfWeek = def.BiWeeklyDayOfWeek
	}
	if out.BiWeeklyAnchorDate.IsZero() {
		out.BiWeeklyAnchorDate = def.BiWeeklyAnchorDate
	}
	if !validWeekday(out.WeeklyDayOfWeek) {
		out.WeeklyDayOfWeek = def.WeeklyDayOfWeek
	}
	if out.MonthlyPayDay < 1 || out.MonthlyPayDay > 31 {
		out.MonthlyPayDay = def.MonthlyPayDay
	}
	if out.DaysUntilCheck < 1 {
		out.DaysUntilCheck = FixedCheckOffset
	}
	return out
}

// Validate reports the first invariant violation. A zero DaysUntilCheck is
// allowed and means "use the default".
func (c Config) Validate() error {
	switch {
	case !c.Policy.Valid():
		return invalid("policy", fmt.Sprintf("unknown policy %q", c.Policy))
	case c.SemiMonthlyFirstDay < 1 || c.SemiMonthlyFirstDay > 31:
		return invalid("semi_monthly_first_day", "must be between 1 and 31")
	case c.SemiMonthlySecondDay < 1 || c.SemiMonthlySecondDay > 31:
		return invalid("semi_monthly_second_day", "must be between 1 and 31")
	case c.SemiMonthlyFirstDay >= c.SemiMonthlySecondDay:
		return invalid("semi_monthly_first_day", "must be before semi_monthly_second_day")
	case !validWeekday(c.BiWeeklyDayOfWeek):
		return invalid("bi_weekly_day_of_week", "must be between 0 and 6")
	case !validWeekday(c.WeeklyDayOfWeek):
		return invalid("weekly_day_of_week", "must be between 0 and 6")
	case c.MonthlyPayDay < 1 || c.MonthlyPayDay > 31:
		return invalid("monthly_pay_day", "must be between 1 and 31")
	case c.DaysUntilCheck < 0:
		return invalid("days_until_check", "must not be negative")
	}
	return nil
}

func validWeekday(d time.Weekday) bool { return d >= time.Sunday && d <= time.Saturday }

func invalid(field, reason string) error {
	return &payroll.FieldError{Field: field, Reason: reason, Err: payroll.ErrInvalidSchedule}
}
