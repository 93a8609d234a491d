/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built organizations that populate the database with
	realistic data for demos. Each scenario is a YAML organization parsed
	by the factory, plus sales actuals generated relative to "today" so the
	dashboard always has a live period to project.

AVAILABLE SCENARIOS:

	two-employee: The reference check: one hourly employee and one
	              salaried stylist at Senior (10%), bi-weekly
	salon-roster: Semi-monthly salon with four levels, an override,
	              an unassigned stylist and an inactive employee

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Parse the organization YAML via factory
 3. Import schedule, roster, levels, assignments, overrides
 4. Generate daily sales from the previous period's start through today

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "salon-roster", "today": "2024-01-18"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: the forecast and tier endpoints that read this data
  - factory/org.go: YAML organization format
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "two-employee",
		Name:        "Two Employees",
		Description: "Hourly $20 + salary $52k with Senior 10% commission on $2,000 services, bi-weekly",
	},
	{
		ID:          "salon-roster",
		Name:        "Salon Roster",
		Description: "Semi-monthly salon: four levels, one override, one unassigned, one inactive",
	},
}

type scenario struct {
	orgYAML string
	// sales returns the actuals for the loaded org given today.
	sales func(org factory.Org, today payroll.Date) []payroll.SalesActual
}

var scenarioDefs = map[string]scenario{
	"two-employee": {orgYAML: twoEmployeeYAML, sales: twoEmployeeSales},
	"salon-roster": {orgYAML: salonRosterYAML, sales: salonRosterSales},
}

const twoEmployeeYAML = `
id: demo
name: Two Employee Demo
schedule:
  policy: bi_weekly
  bi_weekly_day_of_week: 5
  bi_weekly_anchor_date: "2024-01-05"
employees:
  - id: emp-a
    name: Avery Hourly
    pay_type: hourly
    hourly_rate: 20
  - id: emp-b
    name: Blair Salaried
    pay_type: salary_plus_commission
    salary_amount: 52000
    commission_enabled: true
levels:
  - slug: senior
    label: Senior
    service_rate: 0.10
    retail_rate: 0.10
    display_order: 2
assignments:
  emp-b: senior
`

const salonRosterYAML = `
id: salon-downtown
name: Downtown Salon
schedule:
  policy: semi_monthly
  semi_monthly_first_day: 1
  semi_monthly_second_day: 15
levels:
  - slug: apprentice
    label: Apprentice
    display_order: 0
  - slug: junior
    label: Junior Stylist
    service_rate: 0.30
    retail_rate: 0.10
    display_order: 1
  - slug: senior
    label: Senior Stylist
    service_rate: 0.40
    retail_rate: 0.10
    display_order: 2
  - slug: master
    label: Master Stylist
    service_rate: 0.45
    retail_rate: 0.15
    display_order: 3
employees:
  - id: sty-jordan
    name: Jordan Lee
    pay_type: commission
    commission_enabled: true
  - id: sty-morgan
    name: Morgan Diaz
    pay_type: hourly_plus_commission
    hourly_rate: 15
    commission_enabled: true
  - id: sty-riley
    name: Riley Chen
    pay_type: commission
    commission_enabled: true
  - id: sty-sam
    name: Sam Patel
    pay_type: commission
    commission_enabled: true
  - id: sty-quinn
    name: Quinn Park
    pay_type: hourly_plus_commission
    hourly_rate: 14
    commission_enabled: true
  - id: fd-taylor
    name: Taylor Brooks
    pay_type: hourly
    hourly_rate: 17.5
  - id: mgr-casey
    name: Casey Morgan
    pay_type: salary
    salary_amount: 58000
  - id: sty-drew
    name: Drew Kim
    pay_type: commission
    commission_enabled: true
    is_active: false
assignments:
  sty-jordan: junior
  sty-morgan: junior
  sty-riley: senior
  sty-sam: master
  sty-drew: senior
overrides:
  - employee_id: sty-riley
    service_rate: 0.50
    retail_rate: 0.15
    reason: Top performer Q1
`

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
		Today      string `json:"today"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	def, ok := scenarioDefs[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	today, err := h.pinToday(req.Today)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	org, err := h.loadScenario(ctx, def, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setScenario(req.ScenarioID)
	if h.Log != nil {
		h.Log.WithFields(logrus.Fields{"scenario": req.ScenarioID, "org_id": org.ID}).Info("scenario loaded")
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"org_id":   string(org.ID),
		"today":    today.String(),
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, def scenario, today payroll.Date) (factory.Org, error) {
	org, err := h.Factory.ParseOrgYAML([]byte(def.orgYAML))
	if err != nil {
		return factory.Org{}, err
	}
	org.Sales = def.sales(org, today)

	if err := h.Store.ImportOrg(ctx, org); err != nil {
		return factory.Org{}, err
	}
	return org, nil
}

// twoEmployeeSales books $2,000 of services for emp-b across the elapsed part
// of the current period: $1,200 on the first day and $800 on today (or the
// period's last day).
func twoEmployeeSales(org factory.Org, today payroll.Date) []payroll.SalesActual {
	period := schedule.CurrentPeriod(org.Schedule, today).Period().Clip(today)

	if period.Start.Equal(period.End) {
		return []payroll.SalesActual{
			{EmployeeID: "emp-b", Date: period.Start, ServiceRevenue: payroll.Dec(2000), ProductRevenue: decimal.Zero},
		}
	}
	return []payroll.SalesActual{
		{EmployeeID: "emp-b", Date: period.Start, ServiceRevenue: payroll.Dec(1200), ProductRevenue: decimal.Zero},
		{EmployeeID: "emp-b", Date: period.End, ServiceRevenue: payroll.Dec(800), ProductRevenue: decimal.Zero},
	}
}

// salonDailyService is each stylist's typical daily service revenue.
var salonDailyService = map[payroll.EmployeeID]int64{
	"sty-jordan": 320,
	"sty-morgan": 280,
	"sty-riley":  540,
	"sty-sam":    610,
	"sty-quinn":  190,
	"sty-drew":   400,
}

// salonRosterSales generates deterministic daily actuals from the previous
// period's start through today. Revenue varies by weekday; the salon is
// closed on Mondays.
func salonRosterSales(org factory.Org, today payroll.Date) []payroll.SalesActual {
	current := schedule.CurrentPeriod(org.Schedule, today)
	prior := schedule.PreviousPeriod(org.Schedule, current)
	window := payroll.Period{Start: prior.Start, End: current.End}.Clip(today)

	var out []payroll.SalesActual
	for i, day := range window.Days() {
		if day.Weekday() == time.Monday {
			continue
		}
		for _, p := range org.Roster {
			base, ok := salonDailyService[p.EmployeeID]
			if !ok {
				continue
			}
			// 80% to 120% of the base, cycling by day and stylist.
			factor := decimal.NewFromInt(int64(8 + (i*3+len(p.EmployeeID))%5)).Div(decimal.NewFromInt(10))
			service := decimal.NewFromInt(base).Mul(factor).Round(2)
			product := service.Div(decimal.NewFromInt(8)).Round(2)
			out = append(out, payroll.SalesActual{
				EmployeeID:     p.EmployeeID,
				Date:           day,
				ServiceRevenue: service,
				ProductRevenue: product,
			})
		}
	}
	return out
}
