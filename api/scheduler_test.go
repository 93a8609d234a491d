package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newTestScheduler(t *testing.T) *ForecastScheduler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewForecastScheduler(store, forecast.Engine{}, logging.Discard())
}

func TestScheduler_RunOnceWithoutOrgs(t *testing.T) {
	fs := newTestScheduler(t)

	summary, err := fs.RunOnce(context.Background(), payroll.NewDate(2024, 1, 18))

	require.NoError(t, err)
	assert.Equal(t, "2024-01-18", summary.Today)
	assert.Zero(t, summary.Completed)
	assert.Empty(t, summary.RunIDs)
}

func TestScheduler_RunOnceEveryOrg(t *testing.T) {
	// GIVEN: two organizations
	h := setupTestHandler(t)
	ctx := context.Background()
	_, err := h.loadScenario(ctx, scenarioDefs["two-employee"], jan18)
	require.NoError(t, err)
	_, err = h.loadScenario(ctx, scenarioDefs["salon-roster"], jan18)
	require.NoError(t, err)

	// WHEN: refreshing
	summary, err := h.Scheduler.RunOnce(ctx, jan18)

	// THEN: both are recorded
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completed)
	assert.Len(t, summary.RunIDs, 2)

	runs, err := h.Store.ListForecastRuns(ctx, "salon-downtown", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2024-01-15", runs[0].PeriodStart.String())
	assert.True(t, runs[0].GrossPay.IsPositive())
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		enabled bool
		wantErr bool
		running bool
	}{
		{"default spec", DefaultForecastCron, true, false, true},
		{"disabled", DefaultForecastCron, false, false, false},
		{"invalid spec", "every tuesday", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTestScheduler(t)
			fs.Spec = tt.spec
			fs.Enabled = tt.enabled

			err := fs.Start()
			defer fs.Stop()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.running, !fs.NextRun().IsZero())
		})
	}
}
