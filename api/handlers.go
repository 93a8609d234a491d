/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the pure calculators.

ENDPOINTS:
  Entry points (inputs inline):
    GET    /api/health
    POST   /api/schedule/current       Current period for an inline schedule
    POST   /api/commission/resolve     Resolve one employee's commission
    POST   /api/compensation           Compute one compensation breakdown
    POST   /api/forecast               Project payroll for an inline org

  Organization data:
    GET    /api/orgs/{org}/schedule            Stored schedule (or default)
    PUT    /api/orgs/{org}/schedule            Replace schedule
    GET    /api/orgs/{org}/schedule/current    Current period (?today=)
    GET    /api/orgs/{org}/forecast            Projection from stored inputs
    GET    /api/orgs/{org}/forecast/runs       Scheduled refresh history
    GET    /api/orgs/{org}/tiers               Tier distribution
    GET|POST         /api/orgs/{org}/employees
    GET|DELETE       /api/orgs/{org}/employees/{id}
    GET|POST         /api/orgs/{org}/levels
    DELETE           /api/orgs/{org}/levels/{slug}
    GET|POST         /api/orgs/{org}/assignments
    GET|POST         /api/orgs/{org}/overrides
    DELETE           /api/orgs/{org}/overrides/{id}
    GET|POST         /api/orgs/{org}/sales

  Admin:
    POST   /api/admin/forecast/refresh Run the forecast refresher now

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

TODAY:
  Every request pins "today" exactly once: from the ?today= query (or the
  request body's "today") when given, otherwise from the server clock. The
  calculators never read the clock themselves.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee, level or override not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
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
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Factory   *factory.OrgFactory
	Engine    forecast.Engine
	Scheduler *ForecastScheduler
	Log       *logrus.Logger

	// Now is the clock read once per request when no today is supplied.
	Now func() time.Time

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store *sqlite.Store, engine forecast.Engine, log *logrus.Logger) *Handler {
	return &Handler{
		Store:     store,
		Factory:   factory.NewOrgFactory(),
		Engine:    engine,
		Scheduler: NewForecastScheduler(store, engine, log),
		Log:       log,
		Now:       time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ENTRY POINTS (INLINE INPUTS)
// =============================================================================

// CurrentPeriod returns the pay period for an inline schedule.
// POST /api/schedule/current
func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	var req CurrentPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.Factory.ParseSchedule(req.Schedule)
	if err != nil {
		h.writeDomainError(w, "Invalid schedule", err)
		return
	}
	today, err := h.pinToday(req.Today)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}

	writeJSON(w, http.StatusOK, currentPeriodDTO(cfg, today))
}

// ResolveCommission resolves one employee's commission against inline data.
// POST /api/commission/resolve
func (h *Handler) ResolveCommission(w http.ResponseWriter, r *http.Request) {
	var req ResolveCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	catalog := commission.Catalog{Assignments: commission.Assignments{}}
	for _, oj := range req.Overrides {
		o, err := h.Factory.ParseOverride(oj)
		if err != nil {
			h.writeDomainError(w, "Invalid override", err)
			return
		}
		catalog.Overrides = append(catalog.Overrides, o)
	}
	for _, lj := range req.Levels {
		l, err := h.Factory.ParseLevel(lj)
		if err != nil {
			h.writeDomainError(w, "Invalid level", err)
			return
		}
		catalog.Levels = append(catalog.Levels, l)
	}
	for emp, slug := range req.Assignments {
		catalog.Assignments[payroll.EmployeeID(emp)] = payroll.LevelSlug(slug)
	}

	asOf, err := h.pinToday(req.AsOf)
	if err != nil {
		h.writeDomainError(w, "Invalid as_of", err)
		return
	}

	resolved := h.Engine.Resolver.Resolve(
		payroll.EmployeeID(req.EmployeeID),
		dec(req.ServiceRevenue), dec(req.ProductRevenue),
		catalog, asOf,
	)
	writeJSON(w, http.StatusOK, toResolutionDTO(resolved))
}

// ComputeCompensation computes one compensation breakdown.
// POST /api/compensation
func (h *Handler) ComputeCompensation(w http.ResponseWriter, r *http.Request) {
	var req ComputeCompensationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Employee.ID == "" {
		req.Employee.ID = "inline"
	}

	profile, err := h.Factory.ParseEmployee(req.Employee)
	if err != nil {
		h.writeDomainError(w, "Invalid employee", err)
		return
	}

	weeks := req.WeeksInPeriod
	if weeks <= 0 {
		weeks = 2
	}

	breakdown := h.Engine.Calculator.Compute(
		profile,
		compensation.Hours{Regular: dec(req.Hours.Regular), Overtime: dec(req.Hours.Overtime)},
		commission.Resolution{
			ServiceCommission: dec(req.Commission.ServiceCommission),
			RetailCommission:  dec(req.Commission.RetailCommission),
		},
		compensation.Adjustments{
			Bonus:      dec(req.Adjustments.Bonus),
			Tips:       dec(req.Adjustments.Tips),
			Deductions: dec(req.Adjustments.Deductions),
		},
		dec(weeks),
	)
	writeJSON(w, http.StatusOK, toBreakdownDTO(breakdown))
}

// ProjectInline projects payroll for an organization sent in the body.
// POST /api/forecast
func (h *Handler) ProjectInline(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	org, err := h.Factory.FromJSON(req.OrgJSON)
	if err != nil {
		h.writeDomainError(w, "Invalid organization", err)
		return
	}
	today, err := h.pinToday(req.Today)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}

	projection := h.Engine.Project(org.ForecastInput(today))
	writeJSON(w, http.StatusOK, toProjectionDTO(projection))
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule returns the organization's schedule, or the default.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	org := orgParam(r)

	cfg, found, err := h.Store.GetSchedule(r.Context(), org)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"schedule":   h.Factory.ScheduleToJSON(cfg),
		"is_default": !found,
	})
}

// PutSchedule replaces the organization's schedule.
func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.Factory.ParseSchedule(sj)
	if err != nil {
		h.writeDomainError(w, "Invalid schedule", err)
		return
	}
	if err := h.Store.SaveSchedule(r.Context(), orgParam(r), cfg); err != nil {
		h.writeDomainError(w, "Failed to save schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Factory.ScheduleToJSON(cfg))
}

// GetCurrentPeriod returns the organization's current pay period.
func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	today, err := h.todayParam(r)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}

	cfg, _, err := h.Store.GetSchedule(r.Context(), orgParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, currentPeriodDTO(cfg, today))
}

func currentPeriodDTO(cfg schedule.Config, today payroll.Date) CurrentPeriodDTO {
	period := schedule.CurrentPeriod(cfg, today)
	return CurrentPeriodDTO{
		Today:      today.String(),
		Policy:     string(cfg.Normalize().Policy),
		Period:     toPayPeriodDTO(period),
		TotalDays:  period.TotalDays(),
		NextPayDay: schedule.NextPayDay(cfg, today).String(),
	}
}

// =============================================================================
// FORECAST HANDLERS
// =============================================================================

// GetForecast projects payroll from the organization's stored inputs.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	projection, ok := h.projectStored(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toProjectionDTO(projection))
}

// GetTierDistribution groups the stored projection by level.
// Query: today, attribute_overrides=true|false
func (h *Handler) GetTierDistribution(w http.ResponseWriter, r *http.Request) {
	var opts tiers.Options
	if raw := r.URL.Query().Get("attribute_overrides"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "attribute_overrides must be true or false", err)
			return
		}
		opts.AttributeOverridesToAssignedLevel = v
	}

	projection, ok := h.projectStored(w, r)
	if !ok {
		return
	}

	levels, err := h.Store.ListLevels(r.Context(), orgParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list levels", err)
		return
	}

	dist := tiers.Aggregate(projection, levels, opts)
	writeJSON(w, http.StatusOK, toTierDistributionDTO(projection, dist))
}

// ListForecastRuns returns the scheduled refresh history.
// GET /api/orgs/{org}/forecast/runs?limit=
func (h *Handler) ListForecastRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListForecastRuns(r.Context(), orgParam(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list forecast runs", err)
		return
	}

	dtos := make([]ForecastRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toForecastRunDTO(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// RefreshForecasts runs the forecast refresher for every organization now.
// POST /api/admin/forecast/refresh?today=
func (h *Handler) RefreshForecasts(w http.ResponseWriter, r *http.Request) {
	today, err := h.todayParam(r)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}

	summary, err := h.Scheduler.RunOnce(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh forecasts", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) projectStored(w http.ResponseWriter, r *http.Request) (forecast.PayrollProjection, bool) {
	today, err := h.todayParam(r)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return forecast.PayrollProjection{}, false
	}

	input, err := h.Store.LoadForecastInputs(r.Context(), orgParam(r), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load forecast inputs", err)
		return forecast.PayrollProjection{}, false
	}
	return h.Engine.Project(input), true
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all payroll profiles.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListEmployees(r.Context(), orgParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]factory.EmployeeJSON, len(profiles))
	for i, p := range profiles {
		dtos[i] = h.Factory.EmployeeToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single payroll profile.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	p, err := h.Store.GetEmployee(r.Context(), orgParam(r), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.EmployeeToJSON(p))
}

// SaveEmployee creates or replaces a payroll profile.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req factory.EmployeeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Factory.ParseEmployee(req)
	if err != nil {
		h.writeDomainError(w, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), orgParam(r), p); err != nil {
		h.writeDomainError(w, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.EmployeeToJSON(p))
}

// DeleteEmployee removes a profile with its assignment and overrides.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteEmployee(r.Context(), orgParam(r), id); err != nil {
		h.writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LEVEL AND ASSIGNMENT HANDLERS
// =============================================================================

// ListLevels returns the organization's levels.
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Store.ListLevels(r.Context(), orgParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list levels", err)
		return
	}

	dtos := make([]factory.LevelJSON, len(levels))
	for i, l := range levels {
		dtos[i] = h.Factory.LevelToJSON(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveLevel creates or replaces a level.
func (h *Handler) SaveLevel(w http.ResponseWriter, r *http.Request) {
	var req factory.LevelJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := h.Factory.ParseLevel(req)
	if err != nil {
		h.writeDomainError(w, "Invalid level", err)
		return
	}
	if err := h.Store.SaveLevel(r.Context(), orgParam(r), l); err != nil {
		h.writeDomainError(w, "Failed to save level", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.LevelToJSON(l))
}

// DeleteLevel removes a level and unassigns its employees.
func (h *Handler) DeleteLevel(w http.ResponseWriter, r *http.Request) {
	slug := payroll.LevelSlug(chi.URLParam(r, "slug"))

	if err := h.Store.DeleteLevel(r.Context(), orgParam(r), slug); err != nil {
		h.writeDomainError(w, "Failed to delete level", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments returns the employee -> level map.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Store.ListAssignments(r.Context(), orgParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}

	out := make(map[string]string, len(assignments))
	for emp, slug := range assignments {
		out[string(emp)] = string(slug)
	}
	writeJSON(w, http.StatusOK, out)
}

// AssignLevel puts an employee on a level.
func (h *Handler) AssignLevel(w http.ResponseWriter, r *http.Request) {
	var req AssignLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	err := h.Store.AssignLevel(r.Context(), orgParam(r),
		payroll.EmployeeID(req.EmployeeID), payroll.LevelSlug(req.LevelSlug))
	if err != nil {
		h.writeDomainError(w, "Failed to assign level", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// OVERRIDE HANDLERS
// =============================================================================

// ListOverrides returns the organization's overrides in resolution order.
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListOverrides(r.Context(), orgParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overrides", err)
		return
	}

	dtos := make([]OverrideDTO, len(records))
	for i, rec := range records {
		dtos[i] = OverrideDTO{ID: rec.ID, OverrideJSON: h.Factory.OverrideToJSON(rec.Override)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateOverride stores a new override.
func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req factory.OverrideJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	o, err := h.Factory.ParseOverride(req)
	if err != nil {
		h.writeDomainError(w, "Invalid override", err)
		return
	}
	id, err := h.Store.CreateOverride(r.Context(), orgParam(r), o)
	if err != nil {
		h.writeDomainError(w, "Failed to create override", err)
		return
	}
	writeJSON(w, http.StatusCreated, OverrideDTO{ID: id, OverrideJSON: h.Factory.OverrideToJSON(o)})
}

// DeleteOverride removes an override.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteOverride(r.Context(), orgParam(r), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete override", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SALES HANDLERS
// =============================================================================

// ListSales returns actuals in [from, to]. Both default to the current period.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := orgParam(r)

	today, err := h.todayParam(r)
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}
	cfg, _, err := h.Store.GetSchedule(ctx, org)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get schedule", err)
		return
	}
	period := schedule.CurrentPeriod(cfg, today)

	from, to := period.Start, period.End
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = payroll.ParseDate(raw); err != nil {
			h.writeDomainError(w, "Invalid from", err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = payroll.ParseDate(raw); err != nil {
			h.writeDomainError(w, "Invalid to", err)
			return
		}
	}

	sales, err := h.Store.ListSales(ctx, org, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales", err)
		return
	}

	dtos := make([]factory.SaleJSON, len(sales))
	for i, s := range sales {
		dtos[i] = h.Factory.SaleToJSON(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordSales upserts daily actuals.
func (h *Handler) RecordSales(w http.ResponseWriter, r *http.Request) {
	var req SalesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	actuals := make([]payroll.SalesActual, 0, len(req.Sales))
	for _, sj := range req.Sales {
		if sj.EmployeeID == "" {
			writeError(w, http.StatusBadRequest, "employee_id is required", nil)
			return
		}
		s, err := h.Factory.ParseSale(sj)
		if err != nil {
			h.writeDomainError(w, "Invalid sale", err)
			return
		}
		actuals = append(actuals, s)
	}

	if err := h.Store.RecordSales(r.Context(), orgParam(r), actuals); err != nil {
		h.writeDomainError(w, "Failed to record sales", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"recorded": len(actuals)})
}

// =============================================================================
// HELPERS
// =============================================================================

func orgParam(r *http.Request) payroll.OrgID {
	return payroll.OrgID(chi.URLParam(r, "org"))
}

// todayParam pins today from ?today= or the clock.
func (h *Handler) todayParam(r *http.Request) (payroll.Date, error) {
	return h.pinToday(r.URL.Query().Get("today"))
}

// pinToday parses an explicit date, or reads the clock once.
func (h *Handler) pinToday(raw string) (payroll.Date, error) {
	if raw != "" {
		return payroll.ParseDate(raw)
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return payroll.DateOf(now()), nil
}

// writeDomainError maps engine errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case payroll.IsNotFound(err), errors.Is(err, sqlite.ErrOverrideNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		if h.Log != nil {
			h.Log.WithError(err).Error(message)
		}
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "internal"
	}
}
