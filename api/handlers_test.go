/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Stateless entry points (current period, commission, compensation, forecast)
- Organization CRUD feeding the stored forecast and tier distribution
- Error mapping (400 / 404)
- Forecast refresh and run history
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, forecast.Engine{}, logging.Discard())
	// A fixed clock keeps requests without ?today= deterministic.
	h.Now = func() time.Time { return time.Date(2024, 1, 18, 9, 30, 0, 0, time.UTC) }
	h.Scheduler.Now = h.Now
	return h
}

func setupTestRouter(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := setupTestHandler(t)
	return h, NewRouter(h, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// seedOrg builds the two-employee org through the API.
func seedOrg(t *testing.T, router http.Handler) {
	t.Helper()
	steps := []struct {
		method, path, body string
		want               int
	}{
		{"PUT", "/api/orgs/demo/schedule", `{"policy":"bi_weekly","bi_weekly_day_of_week":5,"bi_weekly_anchor_date":"2024-01-05"}`, http.StatusOK},
		{"POST", "/api/orgs/demo/employees", `{"id":"a","name":"Avery","pay_type":"hourly","hourly_rate":20}`, http.StatusCreated},
		{"POST", "/api/orgs/demo/employees", `{"id":"b","name":"Blair","pay_type":"salary_plus_commission","salary_amount":52000,"commission_enabled":true}`, http.StatusCreated},
		{"POST", "/api/orgs/demo/levels", `{"slug":"senior","label":"Senior","service_rate":0.1,"retail_rate":0.1,"display_order":2}`, http.StatusCreated},
		{"POST", "/api/orgs/demo/levels", `{"slug":"junior","label":"Junior","service_rate":0.05,"display_order":1}`, http.StatusCreated},
		{"POST", "/api/orgs/demo/assignments", `{"employee_id":"b","level_slug":"senior"}`, http.StatusOK},
		{"POST", "/api/orgs/demo/sales", `{"sales":[
			{"employee_id":"b","date":"2024-01-08","service_revenue":1200,"product_revenue":0},
			{"employee_id":"b","date":"2024-01-15","service_revenue":800,"product_revenue":0}]}`, http.StatusCreated},
	}
	for _, s := range steps {
		rec := do(t, router, s.method, s.path, s.body)
		require.Equal(t, s.want, rec.Code, "%s %s: %s", s.method, s.path, rec.Body.String())
	}
}

const inlineOrg = `{
  "today": "2024-01-18",
  "schedule": {"policy": "bi_weekly", "bi_weekly_day_of_week": 5, "bi_weekly_anchor_date": "2024-01-05"},
  "employees": [
    {"id": "a", "name": "Avery", "pay_type": "hourly", "hourly_rate": 20},
    {"id": "b", "name": "Blair", "pay_type": "salary_plus_commission", "salary_amount": 52000, "commission_enabled": true}
  ],
  "levels": [{"slug": "senior", "label": "Senior", "service_rate": 0.10, "retail_rate": 0.10}],
  "assignments": {"b": "senior"},
  "sales": [
    {"employee_id": "b", "date": "2024-01-08", "service_revenue": 1200},
    {"employee_id": "b", "date": "2024-01-15", "service_revenue": 800}
  ]
}`

// =============================================================================
// STATELESS ENTRY POINTS
// =============================================================================

func TestHealth(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "GET", "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestCurrentPeriod_SemiMonthlyNewYear(t *testing.T) {
	// GIVEN: the default 1st/15th schedule on Jan 1
	_, router := setupTestRouter(t)

	// WHEN: asking for the current period
	rec := do(t, router, "POST", "/api/schedule/current", `{"schedule":{"policy":"semi_monthly"},"today":"2026-01-01"}`)

	// THEN: the period closing on Jan 1 is Dec 15 - Dec 31 of the prior year
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[CurrentPeriodDTO](t, rec)
	assert.Equal(t, "2025-12-15", got.Period.Start)
	assert.Equal(t, "2025-12-31", got.Period.End)
	assert.Equal(t, "2026-01-05", got.Period.CheckDate)
	assert.Equal(t, "2026-01-15", got.NextPayDay)
	assert.Equal(t, 17, got.TotalDays)
}

func TestCurrentPeriod_InvalidSchedule(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "POST", "/api/schedule/current", `{"schedule":{"policy":"fortnightly"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decode[ErrorResponse](t, rec).Code)
}

func TestResolveCommission_OverrideBeatsLevel(t *testing.T) {
	// GIVEN: a Senior assignment and a service-only override
	_, router := setupTestRouter(t)
	body := `{
		"employee_id": "b",
		"service_revenue": 1000,
		"product_revenue": 200,
		"levels": [{"slug": "senior", "label": "Senior", "service_rate": 0.1, "retail_rate": 0.1}],
		"assignments": {"b": "senior"},
		"overrides": [{"employee_id": "b", "service_rate": 0.5, "retail_rate": null, "reason": "Top performer"}],
		"as_of": "2024-01-18"
	}`

	// WHEN: resolving
	rec := do(t, router, "POST", "/api/commission/resolve", body)

	// THEN: the override wins and the unspecified retail side is zero
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[ResolutionDTO](t, rec)
	assert.Equal(t, "override", string(got.Source.Kind))
	assert.Equal(t, "Override: Top performer", got.SourceLabel)
	assert.InDelta(t, 500.0, got.ServiceCommission, 1e-9)
	assert.InDelta(t, 0.0, got.RetailCommission, 1e-9)
	assert.InDelta(t, 500.0, got.TotalCommission, 1e-9)
}

func TestResolveCommission_ExpiredOverrideFallsBack(t *testing.T) {
	_, router := setupTestRouter(t)
	body := `{
		"employee_id": "b",
		"service_revenue": 1000,
		"levels": [{"slug": "senior", "label": "Senior", "service_rate": 0.1}],
		"assignments": {"b": "senior"},
		"overrides": [{"employee_id": "b", "service_rate": 0.5, "expires_at": "2024-01-17"}],
		"as_of": "2024-01-18"
	}`

	rec := do(t, router, "POST", "/api/commission/resolve", body)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ResolutionDTO](t, rec)
	assert.Equal(t, "level", string(got.Source.Kind))
	assert.Equal(t, "senior", string(got.Source.LevelSlug))
	assert.InDelta(t, 100.0, got.TotalCommission, 1e-9)
}

func TestResolveCommission_RejectsBadRate(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "POST", "/api/commission/resolve",
		`{"employee_id":"b","levels":[{"slug":"x","service_rate":1.5}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeCompensation_Hourly(t *testing.T) {
	// GIVEN: $20/h for 80 regular hours
	_, router := setupTestRouter(t)
	body := `{"employee":{"id":"a","pay_type":"hourly","hourly_rate":20},"hours":{"regular":80}}`

	rec := do(t, router, "POST", "/api/compensation", body)

	// THEN: gross 1600, withholding 22% + 5% + 7.65%
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[BreakdownDTO](t, rec)
	assert.Equal(t, "hourly", got.PayType)
	assert.InDelta(t, 1600.0, got.GrossPay, 1e-9)
	assert.InDelta(t, 0.0, got.CommissionPay, 1e-9)
	assert.InDelta(t, 554.4, got.EmployeeTaxes.Total, 1e-9)
	assert.InDelta(t, 1045.6, got.NetPay, 1e-9)
}

func TestComputeCompensation_UnknownPayType(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "POST", "/api/compensation", `{"employee":{"id":"a","pay_type":"piecework"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectInline_EndToEnd(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "POST", "/api/forecast", inlineOrg)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[ProjectionDTO](t, rec)
	assert.Equal(t, "2024-01-05", got.Period.Start)
	assert.Equal(t, "2024-01-18", got.Period.End)
	assert.Equal(t, "2024-01-19", got.NextPayDay)
	assert.Equal(t, 0, got.DaysRemaining)
	assert.Equal(t, "high", got.ConfidenceLevel)
	require.Len(t, got.Employees, 2)
	assert.InDelta(t, 3800.0, got.Totals.GrossPay, 1e-9)
	assert.InDelta(t, 200.0, got.Totals.Commission, 1e-9)
	assert.Nil(t, got.Comparison.ChangePercent, "no prior sales")
	assert.Nil(t, got.Comparison.SalesChangePercent)
}

func TestProjectInline_UnknownLevelIs404(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "POST", "/api/forecast",
		`{"employees":[{"id":"a","pay_type":"commission"}],"assignments":{"a":"ghost"}}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// STORED ORGANIZATION
// =============================================================================

func TestStoredForecast_EndToEnd(t *testing.T) {
	// GIVEN: the two-employee org built through the API
	_, router := setupTestRouter(t)
	seedOrg(t, router)

	// WHEN: projecting on Jan 18
	rec := do(t, router, "GET", "/api/orgs/demo/forecast?today=2024-01-18", nil)

	// THEN: the reference numbers come out
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[ProjectionDTO](t, rec)
	assert.InDelta(t, 3800.0, got.Totals.GrossPay, 1e-9)
	assert.InDelta(t, 1330.0, got.Totals.EstimatedTaxes, 1e-9)
	assert.InDelta(t, 2470.0, got.Totals.NetPay, 1e-9)
}

func TestStoredForecast_TodayDefaultsToClock(t *testing.T) {
	h, router := setupTestRouter(t)
	seedOrg(t, router)

	rec := do(t, router, "GET", "/api/orgs/demo/forecast", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ProjectionDTO](t, rec)
	assert.Equal(t, h.Now().Format("2006-01-02"), got.Today)
}

func TestStoredForecast_BadToday(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "GET", "/api/orgs/demo/forecast?today=18-01-2024", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSchedule_DefaultFlag(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, "GET", "/api/orgs/nobody/schedule", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, true, got["is_default"])
}

func TestTierDistribution(t *testing.T) {
	_, router := setupTestRouter(t)
	seedOrg(t, router)

	rec := do(t, router, "GET", "/api/orgs/demo/tiers?today=2024-01-18", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[TierDistributionDTO](t, rec)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "junior", got.Items[0].Slug, "ascending by service rate")
	assert.Equal(t, "senior", got.Items[1].Slug)
	assert.Equal(t, 1, got.Items[1].Headcount)
	assert.InDelta(t, 2000.0, got.Items[1].TotalRevenue, 1e-9)
	assert.Equal(t, []string{"a"}, got.Unassigned.EmployeeIDs)
	assert.Equal(t, 2, got.Headcount)
}

func TestTierDistribution_AttributeOverrides(t *testing.T) {
	// GIVEN: Blair also has an override
	_, router := setupTestRouter(t)
	seedOrg(t, router)
	rec := do(t, router, "POST", "/api/orgs/demo/overrides", `{"employee_id":"b","service_rate":0.2,"reason":"Promo"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN: default attribution
	plain := decode[TierDistributionDTO](t, do(t, router, "GET", "/api/orgs/demo/tiers?today=2024-01-18", nil))
	// AND: attributing overrides to the assigned level
	attributed := decode[TierDistributionDTO](t, do(t, router, "GET", "/api/orgs/demo/tiers?today=2024-01-18&attribute_overrides=true", nil))

	// THEN: Blair moves from the Overrides summary into Senior
	assert.Equal(t, 1, plain.Overrides.Headcount)
	assert.Equal(t, 0, plain.Items[1].Headcount)
	assert.Equal(t, 0, attributed.Overrides.Headcount)
	assert.Equal(t, 1, attributed.Items[1].Headcount)

	bad := do(t, router, "GET", "/api/orgs/demo/tiers?attribute_overrides=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestEmployees_CRUD(t *testing.T) {
	_, router := setupTestRouter(t)
	seedOrg(t, router)

	list := decode[[]map[string]any](t, do(t, router, "GET", "/api/orgs/demo/employees", nil))
	assert.Len(t, list, 2)

	rec := do(t, router, "GET", "/api/orgs/demo/employees/b", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "salary_plus_commission", decode[map[string]any](t, rec)["pay_type"])

	rec = do(t, router, "DELETE", "/api/orgs/demo/employees/b", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, "GET", "/api/orgs/demo/employees/b", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
}

func TestEmployees_Validation(t *testing.T) {
	_, router := setupTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing id", `{"pay_type":"hourly","hourly_rate":20}`, http.StatusBadRequest},
		{"negative rate", `{"id":"x","pay_type":"hourly","hourly_rate":-1}`, http.StatusBadRequest},
		{"malformed json", `{"id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "POST", "/api/orgs/demo/employees", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAssignments_NotFound(t *testing.T) {
	_, router := setupTestRouter(t)
	seedOrg(t, router)

	rec := do(t, router, "POST", "/api/orgs/demo/assignments", `{"employee_id":"a","level_slug":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, "POST", "/api/orgs/demo/assignments", `{"employee_id":"ghost","level_slug":"senior"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	got := decode[map[string]string](t, do(t, router, "GET", "/api/orgs/demo/assignments", nil))
	assert.Equal(t, map[string]string{"b": "senior"}, got)
}

func TestOverrides_CreateListDelete(t *testing.T) {
	_, router := setupTestRouter(t)
	seedOrg(t, router)

	created := decode[OverrideDTO](t, do(t, router, "POST", "/api/orgs/demo/overrides",
		`{"employee_id":"b","service_rate":0.5,"reason":"Top performer","expires_at":"2024-06-30"}`))
	require.NotEmpty(t, created.ID)

	list := decode[[]OverrideDTO](t, do(t, router, "GET", "/api/orgs/demo/overrides", nil))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "2024-06-30", list[0].ExpiresAt)
	assert.Nil(t, list[0].RetailRate)

	rec := do(t, router, "DELETE", "/api/orgs/demo/overrides/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, "DELETE", "/api/orgs/demo/overrides/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, "POST", "/api/orgs/demo/overrides", `{"employee_id":"ghost","service_rate":0.5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSales_ListDefaultsToCurrentPeriod(t *testing.T) {
	_, router := setupTestRouter(t)
	seedOrg(t, router)
	do(t, router, "POST", "/api/orgs/demo/sales", `{"sales":[{"employee_id":"b","date":"2024-01-02","service_revenue":10}]}`)

	current := decode[[]map[string]any](t, do(t, router, "GET", "/api/orgs/demo/sales?today=2024-01-18", nil))
	assert.Len(t, current, 2, "Jan 2 belongs to the previous period")

	ranged := decode[[]map[string]any](t, do(t, router, "GET", "/api/orgs/demo/sales?from=2024-01-01&to=2024-01-31", nil))
	assert.Len(t, ranged, 3)

	rec := do(t, router, "POST", "/api/orgs/demo/sales", `{"sales":[{"employee_id":"b","date":"Jan 3"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// FORECAST REFRESH
// =============================================================================

func TestRefreshForecasts_RecordsRuns(t *testing.T) {
	// GIVEN: one stored organization
	_, router := setupTestRouter(t)
	seedOrg(t, router)

	// WHEN: triggering a refresh for Jan 18
	rec := do(t, router, "POST", "/api/admin/forecast/refresh?today=2024-01-18", nil)

	// THEN: one completed run is recorded with the projected gross
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[RefreshSummary](t, rec)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 0, summary.Failed)

	runs := decode[map[string][]ForecastRunDTO](t, do(t, router, "GET", "/api/orgs/demo/forecast/runs", nil))["runs"]
	require.Len(t, runs, 1)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, "high", runs[0].Confidence)
	assert.Equal(t, "2024-01-05", runs[0].PeriodStart)
	assert.InDelta(t, 3800.0, runs[0].GrossPay, 1e-9)

	bad := do(t, router, "GET", "/api/orgs/demo/forecast/runs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}
