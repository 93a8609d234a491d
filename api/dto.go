/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types carry
  decimal.Decimal; the API contract carries money and rates as plain JSON
  numbers, so every response goes through a DTO here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Organization data (wire form shared with factory/org.go):
    factory.ScheduleJSON, factory.EmployeeJSON, factory.LevelJSON,
    OverrideDTO (wraps factory.OverrideJSON), SalesRequest

  Entry points:
    CurrentPeriodDTO, ResolveCommissionRequest, ResolutionDTO,
    ComputeCompensationRequest, BreakdownDTO, ForecastRequest,
    ProjectionDTO, TierDistributionDTO

  Operations:
    ForecastRunDTO, ScenarioDTO, ErrorResponse

VALIDATION:
  Validation is done by the factory when a request is converted into engine
  types, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/org.go: wire types and converters
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tiers"
)

// =============================================================================
// ORGANIZATION DATA
// =============================================================================

// OverrideDTO is a stored override with its id.
type OverrideDTO struct {
	ID string `json:"id"`
	factory.OverrideJSON
}

// AssignLevelRequest puts an employee on a level. An empty level_slug unassigns.
type AssignLevelRequest struct {
	EmployeeID string `json:"employee_id"`
	LevelSlug  string `json:"level_slug"`
}

// SalesRequest records daily actuals.
type SalesRequest struct {
	Sales []factory.SaleJSON `json:"sales"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

// PayPeriodDTO is a pay period with its check date.
type PayPeriodDTO struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	CheckDate string `json:"check_date"`
}

// CurrentPeriodDTO answers "which period are we in?".
type CurrentPeriodDTO struct {
	Today      string       `json:"today"`
	Policy     string       `json:"policy"`
	Period     PayPeriodDTO `json:"period"`
	TotalDays  int          `json:"total_days"`
	NextPayDay string       `json:"next_pay_day"`
}

// CurrentPeriodRequest is the inline form of GET /schedule/current.
type CurrentPeriodRequest struct {
	Schedule factory.ScheduleJSON `json:"schedule"`
	Today    string               `json:"today,omitempty"`
}

// =============================================================================
// COMMISSION
// =============================================================================

// ResolveCommissionRequest carries everything resolution needs inline.
type ResolveCommissionRequest struct {
	EmployeeID     string                 `json:"employee_id"`
	ServiceRevenue float64                `json:"service_revenue"`
	ProductRevenue float64                `json:"product_revenue"`
	Overrides      []factory.OverrideJSON `json:"overrides"`
	Assignments    map[string]string      `json:"assignments"`
	Levels         []factory.LevelJSON    `json:"levels"`
	AsOf           string                 `json:"as_of,omitempty"`
}

// ResolutionDTO is a resolved commission.
type ResolutionDTO struct {
	ServiceRate       float64           `json:"service_rate"`
	RetailRate        float64           `json:"retail_rate"`
	ServiceCommission float64           `json:"service_commission"`
	RetailCommission  float64           `json:"retail_commission"`
	TotalCommission   float64           `json:"total_commission"`
	Source            commission.Source `json:"source"`
	SourceLabel       string            `json:"source_label"`
}

// =============================================================================
// COMPENSATION
// =============================================================================

// HoursDTO is the regular/overtime split.
type HoursDTO struct {
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
}

// AdjustmentsDTO are one-off amounts.
type AdjustmentsDTO struct {
	Bonus      float64 `json:"bonus"`
	Tips       float64 `json:"tips"`
	Deductions float64 `json:"deductions"`
}

// CommissionAmountsDTO is the part of a resolution compensation uses.
type CommissionAmountsDTO struct {
	ServiceCommission float64 `json:"service_commission"`
	RetailCommission  float64 `json:"retail_commission"`
}

// ComputeCompensationRequest computes one breakdown. WeeksInPeriod defaults to 2.
type ComputeCompensationRequest struct {
	Employee      factory.EmployeeJSON `json:"employee"`
	Hours         HoursDTO             `json:"hours"`
	Commission    CommissionAmountsDTO `json:"commission"`
	Adjustments   AdjustmentsDTO       `json:"adjustments"`
	WeeksInPeriod float64              `json:"weeks_in_period"`
}

// EmployeeTaxesDTO is estimated withholding.
type EmployeeTaxesDTO struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	FICA    float64 `json:"fica"`
	Total   float64 `json:"total"`
}

// EmployerTaxesDTO is the employer-side burden.
type EmployerTaxesDTO struct {
	FICA  float64 `json:"fica"`
	FUTA  float64 `json:"futa"`
	SUTA  float64 `json:"suta"`
	Total float64 `json:"total"`
}

// BreakdownDTO is a compensation breakdown.
type BreakdownDTO struct {
	PayType           string           `json:"pay_type"`
	HourlyPay         float64          `json:"hourly_pay"`
	SalaryPay         float64          `json:"salary_pay"`
	ServiceCommission float64          `json:"service_commission"`
	RetailCommission  float64          `json:"retail_commission"`
	CommissionPay     float64          `json:"commission_pay"`
	Bonus             float64          `json:"bonus"`
	Tips              float64          `json:"tips"`
	GrossPay          float64          `json:"gross_pay"`
	EmployeeTaxes     EmployeeTaxesDTO `json:"employee_taxes"`
	EmployerTaxes     EmployerTaxesDTO `json:"employer_taxes"`
	Deductions        float64          `json:"deductions"`
	NetPay            float64          `json:"net_pay"`
	EmployerCost      float64          `json:"employer_cost"`
}

// =============================================================================
// FORECAST
// =============================================================================

// ForecastRequest is a fully inline projection request.
type ForecastRequest struct {
	factory.OrgJSON
	Today string `json:"today,omitempty"`
}

// EmployeeProjectionDTO is one employee's projected period.
type EmployeeProjectionDTO struct {
	EmployeeID            string            `json:"employee_id"`
	Name                  string            `json:"name"`
	PayType               string            `json:"pay_type"`
	AssignedLevel         string            `json:"assigned_level,omitempty"`
	CurrentServiceSales   float64           `json:"current_service_sales"`
	CurrentProductSales   float64           `json:"current_product_sales"`
	CurrentSales          float64           `json:"current_sales"`
	DailyAverage          float64           `json:"daily_average"`
	ProjectedServiceSales float64           `json:"projected_service_sales"`
	ProjectedProductSales float64           `json:"projected_product_sales"`
	ProjectedSales        float64           `json:"projected_sales"`
	ResolvedSource        commission.Source `json:"resolved_source"`
	SourceLabel           string            `json:"source_label"`
	ServiceRate           float64           `json:"service_rate"`
	RetailRate            float64           `json:"retail_rate"`
	ProjectedCompensation BreakdownDTO      `json:"projected_compensation"`
}

// TotalsDTO are the aggregate projected figures.
type TotalsDTO struct {
	CurrentSales   float64 `json:"current_sales"`
	ProjectedSales float64 `json:"projected_sales"`
	GrossPay       float64 `json:"gross_pay"`
	Commission     float64 `json:"commission"`
	EstimatedTaxes float64 `json:"estimated_taxes"`
	NetPay         float64 `json:"net_pay"`
	EmployerCost   float64 `json:"employer_cost"`
}

// ComparisonDTO compares this period's projection with last period's actuals.
// ChangePercent (projected gross) and SalesChangePercent (projected sales) are
// null when the prior period had no sales.
type ComparisonDTO struct {
	PriorPeriodStart   string   `json:"prior_period_start"`
	PriorPeriodEnd     string   `json:"prior_period_end"`
	PriorActualSales   float64  `json:"prior_actual_sales"`
	ProjectedGross     float64  `json:"projected_gross"`
	ProjectedSales     float64  `json:"projected_sales"`
	ChangePercent      *float64 `json:"change_percent"`
	SalesChangePercent *float64 `json:"sales_change_percent"`
}

// ProjectionDTO is the payroll projection.
type ProjectionDTO struct {
	Today           string                  `json:"today"`
	Period          PayPeriodDTO            `json:"period"`
	NextPayDay      string                  `json:"next_pay_day"`
	DaysPassed      int                     `json:"days_passed"`
	TotalDays       int                     `json:"total_days"`
	DaysRemaining   int                     `json:"days_remaining"`
	ConfidenceLevel string                  `json:"confidence_level"`
	Employees       []EmployeeProjectionDTO `json:"employees"`
	Totals          TotalsDTO               `json:"totals"`
	Comparison      ComparisonDTO           `json:"comparison"`
}

// =============================================================================
// TIERS
// =============================================================================

// TierSummaryDTO is one bucket's rollup.
type TierSummaryDTO struct {
	Headcount      int      `json:"headcount"`
	ServiceRevenue float64  `json:"service_revenue"`
	ProductRevenue float64  `json:"product_revenue"`
	TotalRevenue   float64  `json:"total_revenue"`
	Commission     float64  `json:"commission"`
	EmployeeIDs    []string `json:"employee_ids"`
}

// TierItemDTO is one level's bucket.
type TierItemDTO struct {
	Slug         string  `json:"slug"`
	Label        string  `json:"label"`
	ServiceRate  float64 `json:"service_rate"`
	RetailRate   float64 `json:"retail_rate"`
	DisplayOrder int     `json:"display_order"`
	TierSummaryDTO
}

// TierDistributionDTO is the tier chart payload.
type TierDistributionDTO struct {
	Today      string         `json:"today"`
	Period     PayPeriodDTO   `json:"period"`
	Items      []TierItemDTO  `json:"items"`
	Overrides  TierSummaryDTO `json:"overrides"`
	Unassigned TierSummaryDTO `json:"unassigned"`
	Headcount  int            `json:"headcount"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ForecastRunDTO is one scheduled refresh.
type ForecastRunDTO struct {
	ID             string  `json:"id"`
	OrgID          string  `json:"org_id"`
	Today          string  `json:"today"`
	PeriodStart    string  `json:"period_start,omitempty"`
	PeriodEnd      string  `json:"period_end,omitempty"`
	Status         string  `json:"status"`
	Confidence     string  `json:"confidence,omitempty"`
	ProjectedSales float64 `json:"projected_sales"`
	GrossPay       float64 `json:"gross_pay"`
	EmployerCost   float64 `json:"employer_cost"`
	Error          string  `json:"error,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// nullMoney maps a null decimal to a JSON null.
func nullMoney(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := money(d.Decimal)
	return &v
}

func toPayPeriodDTO(p schedule.PayPeriod) PayPeriodDTO {
	return PayPeriodDTO{
		Start:     p.Start.String(),
		End:       p.End.String(),
		CheckDate: p.CheckDate.String(),
	}
}

func toResolutionDTO(r commission.Resolution) ResolutionDTO {
	return ResolutionDTO{
		ServiceRate:       money(r.ServiceRate),
		RetailRate:        money(r.RetailRate),
		ServiceCommission: money(r.ServiceCommission),
		RetailCommission:  money(r.RetailCommission),
		TotalCommission:   money(r.TotalCommission),
		Source:            r.Source,
		SourceLabel:       r.SourceLabel,
	}
}

func toBreakdownDTO(b compensation.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		PayType:           string(b.PayType),
		HourlyPay:         money(b.HourlyPay),
		SalaryPay:         money(b.SalaryPay),
		ServiceCommission: money(b.ServiceCommission),
		RetailCommission:  money(b.RetailCommission),
		CommissionPay:     money(b.CommissionPay),
		Bonus:             money(b.Bonus),
		Tips:              money(b.Tips),
		GrossPay:          money(b.GrossPay),
		EmployeeTaxes: EmployeeTaxesDTO{
			Federal: money(b.EmployeeTaxes.Federal),
			State:   money(b.EmployeeTaxes.State),
			FICA:    money(b.EmployeeTaxes.FICA),
			Total:   money(b.EmployeeTaxes.Total),
		},
		EmployerTaxes: EmployerTaxesDTO{
			FICA:  money(b.EmployerTaxes.FICA),
			FUTA:  money(b.EmployerTaxes.FUTA),
			SUTA:  money(b.EmployerTaxes.SUTA),
			Total: money(b.EmployerTaxes.Total),
		},
		Deductions:   money(b.Deductions),
		NetPay:       money(b.NetPay),
		EmployerCost: money(b.EmployerCost),
	}
}

func toProjectionDTO(p forecast.PayrollProjection) ProjectionDTO {
	employees := make([]EmployeeProjectionDTO, len(p.Employees))
	for i, ep := range p.Employees {
		employees[i] = EmployeeProjectionDTO{
			EmployeeID:            string(ep.EmployeeID),
			Name:                  ep.Name,
			PayType:               string(ep.PayType),
			AssignedLevel:         string(ep.AssignedLevel),
			CurrentServiceSales:   money(ep.CurrentServiceSales),
			CurrentProductSales:   money(ep.CurrentProductSales),
			CurrentSales:          money(ep.CurrentSales),
			DailyAverage:          money(ep.DailyAverage),
			ProjectedServiceSales: money(ep.ProjectedServiceSales),
			ProjectedProductSales: money(ep.ProjectedProductSales),
			ProjectedSales:        money(ep.ProjectedSales),
			ResolvedSource:        ep.ResolvedSource,
			SourceLabel:           ep.SourceLabel,
			ServiceRate:           money(ep.ResolvedRates.Service),
			RetailRate:            money(ep.ResolvedRates.Retail),
			ProjectedCompensation: toBreakdownDTO(ep.ProjectedCompensation),
		}
	}

	comparison := ComparisonDTO{
		PriorPeriodStart:   p.Comparison.PriorPeriod.Start.String(),
		PriorPeriodEnd:     p.Comparison.PriorPeriod.End.String(),
		PriorActualSales:   money(p.Comparison.PriorActualSales),
		ProjectedGross:     money(p.Comparison.ProjectedGross),
		ProjectedSales:     money(p.Comparison.ProjectedSales),
		ChangePercent:      nullMoney(p.Comparison.ChangePercent),
		SalesChangePercent: nullMoney(p.Comparison.SalesChangePercent),
	}

	return ProjectionDTO{
		Today:           p.Today.String(),
		Period:          toPayPeriodDTO(p.Period),
		NextPayDay:      p.NextPayDay.String(),
		DaysPassed:      p.DaysPassed,
		TotalDays:       p.TotalDays,
		DaysRemaining:   p.DaysRemaining,
		ConfidenceLevel: string(p.Confidence),
		Employees:       employees,
		Totals: TotalsDTO{
			CurrentSales:   money(p.Totals.CurrentSales),
			ProjectedSales: money(p.Totals.ProjectedSales),
			GrossPay:       money(p.Totals.GrossPay),
			Commission:     money(p.Totals.Commission),
			EstimatedTaxes: money(p.Totals.EstimatedTaxes),
			NetPay:         money(p.Totals.NetPay),
			EmployerCost:   money(p.Totals.EmployerCost),
		},
		Comparison: comparison,
	}
}

func toTierSummaryDTO(s tiers.Summary) TierSummaryDTO {
	return TierSummaryDTO{
		Headcount:      s.Headcount,
		ServiceRevenue: money(s.ServiceRevenue),
		ProductRevenue: money(s.ProductRevenue),
		TotalRevenue:   money(s.TotalRevenue),
		Commission:     money(s.Commission),
		EmployeeIDs:    employeeIDs(s.EmployeeIDs),
	}
}

func toTierDistributionDTO(p forecast.PayrollProjection, d tiers.Distribution) TierDistributionDTO {
	items := make([]TierItemDTO, len(d.Items))
	for i, it := range d.Items {
		items[i] = TierItemDTO{
			Slug:           string(it.Slug),
			Label:          it.Label,
			ServiceRate:    money(it.ServiceRate),
			RetailRate:     money(it.RetailRate),
			DisplayOrder:   it.DisplayOrder,
			TierSummaryDTO: toTierSummaryDTO(it.Summary),
		}
	}
	return TierDistributionDTO{
		Today:      p.Today.String(),
		Period:     toPayPeriodDTO(p.Period),
		Items:      items,
		Overrides:  toTierSummaryDTO(d.Overrides),
		Unassigned: toTierSummaryDTO(d.Unassigned),
		Headcount:  d.Headcount(),
	}
}

func toForecastRunDTO(r sqlite.ForecastRun) ForecastRunDTO {
	return ForecastRunDTO{
		ID:             r.ID,
		OrgID:          string(r.OrgID),
		Today:          r.Today.String(),
		PeriodStart:    r.PeriodStart.String(),
		PeriodEnd:      r.PeriodEnd.String(),
		Status:         r.Status,
		Confidence:     r.Confidence,
		ProjectedSales: money(r.ProjectedSales),
		GrossPay:       money(r.GrossPay),
		EmployerCost:   money(r.EmployerCost),
		Error:          r.Error,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func employeeIDs(ids []payroll.EmployeeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
