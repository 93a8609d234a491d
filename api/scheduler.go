/*
scheduler.go - Scheduled forecast refresh

PURPOSE:
  Periodically recomputes every organization's payroll projection so the
  dashboard history (forecast_runs) shows how the forecast evolved over the
  period, and so failures in stored data surface in the logs before anyone
  opens the dashboard.

DESIGN:
  - robfig/cron drives the schedule (standard 5-field spec, default
    "0 6 * * *")
  - Each run pins "today" once and uses it for every organization
  - Each organization's outcome is recorded as a forecast run
    (completed or failed) and logged with its gross and confidence
  - One organization failing never stops the others

CONFIGURATION:
  - Spec:    cron expression (FORECAST_CRON)
  - Enabled: whether Start schedules anything (FORECAST_CRON_ENABLED)

USAGE:
  scheduler := NewForecastScheduler(store, engine, log)
  scheduler.Spec = cfg.ForecastCron
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RefreshForecasts endpoint (manual refresh)
  - store/sqlite/sqlite.go: forecast_runs table
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// DefaultForecastCron refreshes once a day before opening.
const DefaultForecastCron = "0 6 * * *"

// runTimeout bounds one scheduled refresh across all organizations.
const runTimeout = 5 * time.Minute

// ForecastScheduler recomputes projections on a cron schedule.
type ForecastScheduler struct {
	Store   *sqlite.Store
	Engine  forecast.Engine
	Log     *logrus.Logger
	Spec    string
	Enabled bool

	// Now is read once per run to pin today.
	Now func() time.Time

	cron *cron.Cron
	mu   sync.Mutex
}

// RefreshSummary is the outcome of one refresh over all organizations.
type RefreshSummary struct {
	Today     string   `json:"today"`
	Completed int      `json:"completed"`
	Failed    int      `json:"failed"`
	RunIDs    []string `json:"run_ids"`
}

// NewForecastScheduler creates a scheduler with the default spec.
func NewForecastScheduler(store *sqlite.Store, engine forecast.Engine, log *logrus.Logger) *ForecastScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ForecastScheduler{
		Store:   store,
		Engine:  engine,
		Log:     log,
		Spec:    DefaultForecastCron,
		Enabled: true,
		Now:     time.Now,
	}
}

// Start registers the refresh job and starts the cron engine.
func (fs *ForecastScheduler) Start() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.Enabled {
		fs.Log.Info("forecast scheduler disabled, not starting")
		return nil
	}
	if fs.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(fs.Spec, fs.runScheduled); err != nil {
		return fmt.Errorf("invalid forecast cron %q: %w", fs.Spec, err)
	}
	c.Start()
	fs.cron = c

	fs.Log.WithField("spec", fs.Spec).Info("forecast scheduler started")
	return nil
}

// Stop stops the cron engine and waits for a running job to finish.
func (fs *ForecastScheduler) Stop() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.cron == nil {
		return
	}
	<-fs.cron.Stop().Done()
	fs.cron = nil
	fs.Log.Info("forecast scheduler stopped")
}

// NextRun returns when the job fires next, or the zero time when not started.
func (fs *ForecastScheduler) NextRun() time.Time {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.cron == nil {
		return time.Time{}
	}
	entries := fs.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (fs *ForecastScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	now := time.Now
	if fs.Now != nil {
		now = fs.Now
	}
	if _, err := fs.RunOnce(ctx, payroll.DateOf(now())); err != nil {
		fs.Log.WithError(err).Error("forecast refresh failed")
	}
}

// RunOnce refreshes every organization's projection for today.
// Only a failure to list organizations is returned; per-organization
// failures are recorded as failed runs.
func (fs *ForecastScheduler) RunOnce(ctx context.Context, today payroll.Date) (RefreshSummary, error) {
	summary := RefreshSummary{Today: today.String(), RunIDs: []string{}}

	orgs, err := fs.Store.ListOrgs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list orgs: %w", err)
	}

	for _, org := range orgs {
		run := fs.refreshOrg(ctx, org, today)

		id, err := fs.Store.SaveForecastRun(ctx, run)
		if err != nil {
			fs.Log.WithError(err).WithField("org_id", org).Error("failed to record forecast run")
		} else {
			summary.RunIDs = append(summary.RunIDs, id)
		}

		if run.Status == runCompleted {
			summary.Completed++
		} else {
			summary.Failed++
		}
	}

	fs.Log.WithFields(logrus.Fields{
		"today":     summary.Today,
		"completed": summary.Completed,
		"failed":    summary.Failed,
	}).Info("forecast refresh finished")
	return summary, nil
}

const (
	runCompleted = "completed"
	runFailed    = "failed"
)

func (fs *ForecastScheduler) refreshOrg(ctx context.Context, org payroll.OrgID, today payroll.Date) sqlite.ForecastRun {
	run := sqlite.ForecastRun{OrgID: org, Today: today}
	entry := fs.Log.WithFields(logrus.Fields{"org_id": org, "today": today.String()})

	input, err := fs.Store.LoadForecastInputs(ctx, org, today)
	if err != nil {
		run.Status = runFailed
		run.Error = err.Error()
		entry.WithError(err).Warn("forecast inputs unavailable")
		return run
	}

	p := fs.Engine.Project(input)
	run.Status = runCompleted
	run.PeriodStart = p.Period.Start
	run.PeriodEnd = p.Period.End
	run.Confidence = string(p.Confidence)
	run.ProjectedSales = p.Totals.ProjectedSales
	run.GrossPay = p.Totals.GrossPay
	run.EmployerCost = p.Totals.EmployerCost

	entry.WithFields(logrus.Fields{
		"period":     p.Period.Period().String(),
		"employees":  len(p.Employees),
		"gross_pay":  p.Totals.GrossPay.StringFixed(2),
		"confidence": p.Confidence,
	}).Info("forecast refreshed")
	return run
}
