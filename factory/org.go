/*
Package factory converts JSON/YAML organization definitions into engine types.

PURPOSE:
  The engine packages use typed values (sum-typed pay structures, decimal
  rates, nullable override sides, calendar dates). Clients and config files
  speak flat JSON/YAML. The factory is the single place that translates
  between the two and rejects malformed input with the payroll sentinels.

JSON SCHEMA:
  {
    "id": "salon-downtown",
    "name": "Downtown Salon",
    "schedule": {
      "policy": "bi_weekly",
      "bi_weekly_day_of_week": 5,
      "bi_weekly_anchor_date": "2024-01-05",
      "days_until_check": 5
    },
    "employees": [
      {"id": "e1", "name": "Avery", "pay_type": "hourly", "hourly_rate": 20},
      {"id": "e2", "name": "Blair", "pay_type": "salary_plus_commission",
       "salary_amount": 52000, "commission_enabled": true}
    ],
    "levels": [
      {"slug": "senior", "label": "Senior", "service_rate": 0.10, "retail_rate": 0.10}
    ],
    "assignments": {"e2": "senior"},
    "overrides": [
      {"employee_id": "e2", "service_rate": 0.5, "reason": "Retention", "expires_at": "2024-06-30"}
    ],
    "sales": [
      {"employee_id": "e2", "date": "2024-01-08", "service_revenue": 1200, "product_revenue": 0}
    ]
  }

  The same keys work in YAML.

DEFAULTS:
  - Schedule fields that are absent keep Default() values; the result is
    then validated, so a present-but-bad field is an error.
  - Employees and overrides are active unless "is_active": false.
  - A null override/level rate means "not specified" (see commission).

USAGE:
  f := factory.NewOrgFactory()
  org, err := f.ParseOrgYAML(data)
  projection := forecast.Project(org.ForecastInput(today))

SEE ALSO:
  - api/dto.go: request types embed these JSON types
  - store/sqlite/sqlite.go: schedule_configs stores ScheduleJSON
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the wire form of schedule.Config. Weekdays are 0 (Sunday)
// through 6 (Saturday).
type ScheduleJSON struct {
	Policy               string `json:"policy" yaml:"policy"`
	SemiMonthlyFirstDay  int    `json:"semi_monthly_first_day,omitempty" yaml:"semi_monthly_first_day,omitempty"`
	SemiMonthlySecondDay int    `json:"semi_monthly_second_day,omitempty" yaml:"semi_monthly_second_day,omitempty"`
	BiWeeklyDayOfWeek    *int   `json:"bi_weekly_day_of_week,omitempty" yaml:"bi_weekly_day_of_week,omitempty"`
	BiWeeklyAnchorDate   string `json:"bi_weekly_anchor_date,omitempty" yaml:"bi_weekly_anchor_date,omitempty"`
	WeeklyDayOfWeek      *int   `json:"weekly_day_of_week,omitempty" yaml:"weekly_day_of_week,omitempty"`
	MonthlyPayDay        int    `json:"monthly_pay_day,omitempty" yaml:"monthly_pay_day,omitempty"`
	DaysUntilCheck       int    `json:"days_until_check,omitempty" yaml:"days_until_check,omitempty"`
}

// EmployeeJSON is a flat payroll profile row.
type EmployeeJSON struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	PayType           string   `json:"pay_type" yaml:"pay_type"`
	HourlyRate        *float64 `json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"`
	SalaryAmount      *float64 `json:"salary_amount,omitempty" yaml:"salary_amount,omitempty"`
	CommissionEnabled bool     `json:"commission_enabled" yaml:"commission_enabled"`
	IsActive          *bool    `json:"is_active,omitempty" yaml:"is_active,omitempty"`
}

// OverrideJSON is a per-employee commission override.
type OverrideJSON struct {
	EmployeeID  string   `json:"employee_id" yaml:"employee_id"`
	ServiceRate *float64 `json:"service_rate" yaml:"service_rate"`
	RetailRate  *float64 `json:"retail_rate" yaml:"retail_rate"`
	Reason      string   `json:"reason" yaml:"reason"`
	IsActive    *bool    `json:"is_active,omitempty" yaml:"is_active,omitempty"`
	ExpiresAt   string   `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// LevelJSON is a stylist level.
type LevelJSON struct {
	Slug         string   `json:"slug" yaml:"slug"`
	Label        string   `json:"label" yaml:"label"`
	ServiceRate  *float64 `json:"service_rate" yaml:"service_rate"`
	RetailRate   *float64 `json:"retail_rate" yaml:"retail_rate"`
	DisplayOrder int      `json:"display_order" yaml:"display_order"`
}

// SaleJSON is one day of an employee's sales.
type SaleJSON struct {
	EmployeeID     string  `json:"employee_id" yaml:"employee_id"`
	Date           string  `json:"date" yaml:"date"`
	ServiceRevenue float64 `json:"service_revenue" yaml:"service_revenue"`
	ProductRevenue float64 `json:"product_revenue" yaml:"product_revenue"`
}

// OrgJSON is a complete organization definition.
type OrgJSON struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Schedule    ScheduleJSON      `json:"schedule" yaml:"schedule"`
	Employees   []EmployeeJSON    `json:"employees" yaml:"employees"`
	Levels      []LevelJSON       `json:"levels" yaml:"levels"`
	Assignments map[string]string `json:"assignments" yaml:"assignments"`
	Overrides   []OverrideJSON    `json:"overrides" yaml:"overrides"`
	Sales       []SaleJSON        `json:"sales" yaml:"sales"`
}

// Org is the parsed organization.
type Org struct {
	ID       payroll.OrgID
	Name     string
	Schedule schedule.Config
	Roster   []compensation.Profile
	Catalog  commission.Catalog
	Sales    []payroll.SalesActual
}

// ForecastInput pins today and bundles the org for the forecasting engine.
func (o Org) ForecastInput(today payroll.Date) forecast.Input {
	return forecast.Input{
		Roster:   o.Roster,
		Schedule: o.Schedule,
		Sales:    o.Sales,
		Catalog:  o.Catalog,
		Today:    today,
	}
}

// =============================================================================
// ORG FACTORY
// =============================================================================

// OrgFactory converts wire definitions to engine types.
type OrgFactory struct{}

// NewOrgFactory creates a new org factory.
func NewOrgFactory() *OrgFactory {
	return &OrgFactory{}
}

// ParseOrgJSON parses a JSON organization definition.
func (f *OrgFactory) ParseOrgJSON(data []byte) (Org, error) {
	var oj OrgJSON
	if err := json.Unmarshal(data, &oj); err != nil {
		return Org{}, fmt.Errorf("failed to parse org JSON: %w", err)
	}
	return f.FromJSON(oj)
}

// ParseOrgYAML parses a YAML organization definition.
func (f *OrgFactory) ParseOrgYAML(data []byte) (Org, error) {
	var oj OrgJSON
	if err := yaml.Unmarshal(data, &oj); err != nil {
		return Org{}, fmt.Errorf("failed to parse org YAML: %w", err)
	}
	return f.FromJSON(oj)
}

// FromJSON converts OrgJSON to Org. Assignments and overrides must reference
// known employees, and assignments must reference known levels.
func (f *OrgFactory) FromJSON(oj OrgJSON) (Org, error) {
	org := Org{
		ID:      payroll.OrgID(oj.ID),
		Name:    oj.Name,
		Catalog: commission.Catalog{Assignments: commission.Assignments{}},
	}

	cfg, err := f.ParseSchedule(oj.Schedule)
	if err != nil {
		return Org{}, err
	}
	org.Schedule = cfg

	known := make(map[payroll.EmployeeID]bool, len(oj.Employees))
	for _, ej := range oj.Employees {
		p, err := f.ParseEmployee(ej)
		if err != nil {
			return Org{}, fmt.Errorf("employee %q: %w", ej.ID, err)
		}
		known[p.EmployeeID] = true
		org.Roster = append(org.Roster, p)
	}

	for _, lj := range oj.Levels {
		l, err := f.ParseLevel(lj)
		if err != nil {
			return Org{}, fmt.Errorf("level %q: %w", lj.Slug, err)
		}
		org.Catalog.Levels = append(org.Catalog.Levels, l)
	}

	for emp, slug := range oj.Assignments {
		id := payroll.EmployeeID(emp)
		if !known[id] {
			return Org{}, fmt.Errorf("assignment %q: %w", emp, payroll.ErrEmployeeNotFound)
		}
		if slug == "" {
			continue
		}
		if _, ok := org.Catalog.Level(payroll.LevelSlug(slug)); !ok {
			return Org{}, fmt.Errorf("assignment %q -> %q: %w", emp, slug, payroll.ErrLevelNotFound)
		}
		org.Catalog.Assignments[id] = payroll.LevelSlug(slug)
	}

	for _, ovj := range oj.Overrides {
		o, err := f.ParseOverride(ovj)
		if err != nil {
			return Org{}, fmt.Errorf("override for %q: %w", ovj.EmployeeID, err)
		}
		if !known[o.EmployeeID] {
			return Org{}, fmt.Errorf("override for %q: %w", ovj.EmployeeID, payroll.ErrEmployeeNotFound)
		}
		org.Catalog.Overrides = append(org.Catalog.Overrides, o)
	}

	for _, sj := range oj.Sales {
		s, err := f.ParseSale(sj)
		if err != nil {
			return Org{}, fmt.Errorf("sale for %q: %w", sj.EmployeeID, err)
		}
		org.Sales = append(org.Sales, s)
	}

	return org, nil
}

// =============================================================================
// SCHEDULE
// =============================================================================

// ParseSchedule overlays the given fields on Default() and validates.
func (f *OrgFactory) ParseSchedule(sj ScheduleJSON) (schedule.Config, error) {
	cfg := schedule.Default()

	if sj.Policy != "" {
		cfg.Policy = schedule.Policy(sj.Policy)
	}
	if sj.SemiMonthlyFirstDay != 0 {
		cfg.SemiMonthlyFirstDay = sj.SemiMonthlyFirstDay
	}
	if sj.SemiMonthlySecondDay != 0 {
		cfg.SemiMonthlySecondDay = sj.SemiMonthlySecondDay
	}
	if sj.BiWeeklyDayOfWeek != nil {
		cfg.BiWeeklyDayOfWeek = time.Weekday(*sj.BiWeeklyDayOfWeek)
	}
	if sj.BiWeeklyAnchorDate != "" {
		anchor, err := payroll.ParseDate(sj.BiWeeklyAnchorDate)
		if err != nil {
			return schedule.Config{}, &payroll.FieldError{Field: "bi_weekly_anchor_date", Reason: err.Error(), Err: payroll.ErrInvalidSchedule}
		}
		cfg.BiWeeklyAnchorDate = anchor
	}
	if sj.WeeklyDayOfWeek != nil {
		cfg.WeeklyDayOfWeek = time.Weekday(*sj.WeeklyDayOfWeek)
	}
	if sj.MonthlyPayDay != 0 {
		cfg.MonthlyPayDay = sj.MonthlyPayDay
	}
	if sj.DaysUntilCheck != 0 {
		cfg.DaysUntilCheck = sj.DaysUntilCheck
	}

	if err := cfg.Validate(); err != nil {
		return schedule.Config{}, err
	}
	return cfg, nil
}

// ScheduleToJSON converts a Config to its wire form.
func (f *OrgFactory) ScheduleToJSON(cfg schedule.Config) ScheduleJSON {
	biWeekly := int(cfg.BiWeeklyDayOfWeek)
	weekly := int(cfg.WeeklyDayOfWeek)
	return ScheduleJSON{
		Policy:               string(cfg.Policy),
		SemiMonthlyFirstDay:  cfg.SemiMonthlyFirstDay,
		SemiMonthlySecondDay: cfg.SemiMonthlySecondDay,
		BiWeeklyDayOfWeek:    &biWeekly,
		BiWeeklyAnchorDate:   cfg.BiWeeklyAnchorDate.String(),
		WeeklyDayOfWeek:      &weekly,
		MonthlyPayDay:        cfg.MonthlyPayDay,
		DaysUntilCheck:       cfg.DaysUntilCheck,
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// ParseEmployee builds a payroll profile from a flat row.
func (f *OrgFactory) ParseEmployee(ej EmployeeJSON) (compensation.Profile, error) {
	if ej.ID == "" {
		return compensation.Profile{}, &payroll.FieldError{Field: "id", Reason: "required", Err: payroll.ErrMissingField}
	}
	payType, err := compensation.ParsePayType(ej.PayType)
	if err != nil {
		return compensation.Profile{}, err
	}
	hourly, err := amount("hourly_rate", ej.HourlyRate)
	if err != nil {
		return compensation.Profile{}, err
	}
	salary, err := amount("salary_amount", ej.SalaryAmount)
	if err != nil {
		return compensation.Profile{}, err
	}
	pay, err := compensation.NewPayStructure(payType, hourly, salary)
	if err != nil {
		return compensation.Profile{}, err
	}

	return compensation.Profile{
		EmployeeID:        payroll.EmployeeID(ej.ID),
		Name:              ej.Name,
		Pay:               pay,
		CommissionEnabled: ej.CommissionEnabled,
		IsActive:          boolOr(ej.IsActive, true),
	}, nil
}

// EmployeeToJSON flattens a profile.
func (f *OrgFactory) EmployeeToJSON(p compensation.Profile) EmployeeJSON {
	ej := EmployeeJSON{
		ID:                string(p.EmployeeID),
		Name:              p.Name,
		PayType:           string(p.PayType()),
		CommissionEnabled: p.CommissionEnabled,
		IsActive:          &p.IsActive,
	}
	switch p.Pay.(type) {
	case compensation.Hourly, compensation.HourlyPlusCommission:
		ej.HourlyRate = floatPtr(compensation.HourlyRate(p.Pay))
	case compensation.Salary, compensation.SalaryPlusCommission:
		ej.SalaryAmount = floatPtr(compensation.AnnualSalary(p.Pay))
	}
	return ej
}

// =============================================================================
// COMMISSION CATALOG
// =============================================================================

// ParseLevel builds a stylist level.
func (f *OrgFactory) ParseLevel(lj LevelJSON) (commission.Level, error) {
	if lj.Slug == "" {
		return commission.Level{}, &payroll.FieldError{Field: "slug", Reason: "required", Err: payroll.ErrMissingField}
	}
	service, err := rate("service_rate", lj.ServiceRate)
	if err != nil {
		return commission.Level{}, err
	}
	retail, err := rate("retail_rate", lj.RetailRate)
	if err != nil {
		return commission.Level{}, err
	}
	label := lj.Label
	if label == "" {
		label = lj.Slug
	}
	return commission.Level{
		Slug:         payroll.LevelSlug(lj.Slug),
		Label:        label,
		ServiceRate:  service,
		RetailRate:   retail,
		DisplayOrder: lj.DisplayOrder,
	}, nil
}

// LevelToJSON converts a level to its wire form.
func (f *OrgFactory) LevelToJSON(l commission.Level) LevelJSON {
	return LevelJSON{
		Slug:         string(l.Slug),
		Label:        l.Label,
		ServiceRate:  nullFloatPtr(l.ServiceRate),
		RetailRate:   nullFloatPtr(l.RetailRate),
		DisplayOrder: l.DisplayOrder,
	}
}

// ParseOverride builds a commission override.
func (f *OrgFactory) ParseOverride(oj OverrideJSON) (commission.Override, error) {
	if oj.EmployeeID == "" {
		return commission.Override{}, &payroll.FieldError{Field: "employee_id", Reason: "required", Err: payroll.ErrMissingField}
	}
	service, err := rate("service_rate", oj.ServiceRate)
	if err != nil {
		return commission.Override{}, err
	}
	retail, err := rate("retail_rate", oj.RetailRate)
	if err != nil {
		return commission.Override{}, err
	}
	var expires payroll.Date
	if oj.ExpiresAt != "" {
		if expires, err = payroll.ParseDate(oj.ExpiresAt); err != nil {
			return commission.Override{}, err
		}
	}
	return commission.Override{
		EmployeeID:  payroll.EmployeeID(oj.EmployeeID),
		ServiceRate: service,
		RetailRate:  retail,
		Reason:      oj.Reason,
		IsActive:    boolOr(oj.IsActive, true),
		ExpiresAt:   expires,
	}, nil
}

// OverrideToJSON converts an override to its wire form.
func (f *OrgFactory) OverrideToJSON(o commission.Override) OverrideJSON {
	return OverrideJSON{
		EmployeeID:  string(o.EmployeeID),
		ServiceRate: nullFloatPtr(o.ServiceRate),
		RetailRate:  nullFloatPtr(o.RetailRate),
		Reason:      o.Reason,
		IsActive:    &o.IsActive,
		ExpiresAt:   o.ExpiresAt.String(),
	}
}

// =============================================================================
// SALES
// =============================================================================

// ParseSale builds one sales actual. Revenue may not be negative.
func (f *OrgFactory) ParseSale(sj SaleJSON) (payroll.SalesActual, error) {
	d, err := payroll.ParseDate(sj.Date)
	if err != nil {
		return payroll.SalesActual{}, err
	}
	service, err := amount("service_revenue", &sj.ServiceRevenue)
	if err != nil {
		return payroll.SalesActual{}, err
	}
	product, err := amount("product_revenue", &sj.ProductRevenue)
	if err != nil {
		return payroll.SalesActual{}, err
	}
	return payroll.SalesActual{
		EmployeeID:     payroll.EmployeeID(sj.EmployeeID),
		Date:           d,
		ServiceRevenue: service,
		ProductRevenue: product,
	}, nil
}

// SaleToJSON converts a sales actual to its wire form.
func (f *OrgFactory) SaleToJSON(s payroll.SalesActual) SaleJSON {
	service, _ := s.ServiceRevenue.Float64()
	product, _ := s.ProductRevenue.Float64()
	return SaleJSON{
		EmployeeID:     string(s.EmployeeID),
		Date:           s.Date.String(),
		ServiceRevenue: service,
		ProductRevenue: product,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// rate converts an optional 0..1 fraction.
func rate(field string, v *float64) (decimal.NullDecimal, error) {
	if v == nil {
		return payroll.NoRate, nil
	}
	if *v < 0 || *v > 1 {
		return payroll.NoRate, &payroll.FieldError{Field: field, Reason: fmt.Sprintf("must be between 0 and 1, got %v", *v), Err: payroll.ErrInvalidRate}
	}
	return payroll.Rate(*v), nil
}

// amount converts an optional non-negative money amount; nil is zero.
func amount(field string, v *float64) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	if *v < 0 {
		return decimal.Zero, &payroll.FieldError{Field: field, Reason: "must not be negative", Err: payroll.ErrInvalidRate}
	}
	return decimal.NewFromFloat(*v), nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func floatPtr(d decimal.Decimal) *float64 {
	v, _ := d.Float64()
	return &v
}

func nullFloatPtr(n decimal.NullDecimal) *float64 {
	if !n.Valid {
		return nil
	}
	return floatPtr(n.Decimal)
}
