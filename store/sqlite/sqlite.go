/*
Package sqlite persists the payroll engine's inputs in SQLite.

PURPOSE:
  The engine owns none of its inputs: rosters, levels, overrides and sales
  are maintained by other screens. This package is the data-access layer
  that stores them per organization and gathers everything one projection
  needs in a single call (LoadForecastInputs).

KEY TABLES:
  schedule_configs:     one pay schedule per organization (JSON config)
  employees:            payroll profiles (flat pay-type/rate columns)
  stylist_levels:       commission levels, nullable rates
  level_assignments:    employee -> level
  commission_overrides: per-employee overrides (uuid ids)
  sales_actuals:        one row per employee per day (uuid ids)
  forecast_runs:        audit trail of scheduled forecast refreshes

MONEY:
  Amounts and rates are stored as decimal strings so nothing is rounded
  through float64. A NULL rate column means "not specified".

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  input, err := store.LoadForecastInputs(ctx, "salon-downtown", today)
  projection := forecast.Project(input)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - factory/org.go: schedule JSON form and input validation
  - forecast/engine.go: consumer of LoadForecastInputs
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/schedule"
)

// execer is satisfied by *sql.DB and *sql.Tx, so writes can join a
// transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists payroll inputs in SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.OrgFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewOrgFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Pay schedules
	CREATE TABLE IF NOT EXISTS schedule_configs (
		org_id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Payroll profiles
	CREATE TABLE IF NOT EXISTS employees (
		org_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		pay_type TEXT NOT NULL,
		hourly_rate TEXT NOT NULL DEFAULT '0',
		salary_amount TEXT NOT NULL DEFAULT '0',
		commission_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (org_id, id)
	);

	-- Stylist levels (tiers)
	CREATE TABLE IF NOT EXISTS stylist_levels (
		org_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		label TEXT NOT NULL,
		service_rate TEXT,
		retail_rate TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (org_id, slug)
	);

	-- Employee -> level
	CREATE TABLE IF NOT EXISTS level_assignments (
		org_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		level_slug TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (org_id, employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_level_assignments_level
		ON level_assignments(org_id, level_slug);

	-- Commission overrides
	CREATE TABLE IF NOT EXISTS commission_overrides (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		service_rate TEXT,
		retail_rate TEXT,
		reason TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		expires_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_overrides_org_employee
		ON commission_overrides(org_id, employee_id);

	-- Sales actuals (one row per employee per day)
	CREATE TABLE IF NOT EXISTS sales_actuals (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		service_revenue TEXT NOT NULL,
		product_revenue TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(org_id, employee_id, date)
	);

	-- Hot path: period window scans
	CREATE INDEX IF NOT EXISTS idx_sales_org_date
		ON sales_actuals(org_id, date);

	-- Forecast refresh audit
	CREATE TABLE IF NOT EXISTS forecast_runs (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		today TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		confidence TEXT,
		projected_sales TEXT,
		gross_pay TEXT,
		employer_cost TEXT,
		error TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_forecast_runs_org
		ON forecast_runs(org_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ORGANIZATIONS
// =============================================================================

// ListOrgs returns every organization that has a schedule or employees.
func (s *Store) ListOrgs(ctx context.Context) ([]payroll.OrgID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT org_id FROM schedule_configs
		UNION
		SELECT DISTINCT org_id FROM employees
		ORDER BY org_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orgs: %w", err)
	}
	defer rows.Close()

	var orgs []payroll.OrgID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		orgs = append(orgs, payroll.OrgID(id))
	}
	return orgs, rows.Err()
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

// SaveSchedule stores an organization's pay schedule. The config is
// validated first.
func (s *Store) SaveSchedule(ctx context.Context, org payroll.OrgID, cfg schedule.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveSchedule(ctx, s.db, org, cfg)
}

func (s *Store) saveSchedule(ctx context.Context, db execer, org payroll.OrgID, cfg schedule.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(s.factory.ScheduleToJSON(cfg))
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	query := `
		INSERT INTO schedule_configs (org_id, config_json, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(org_id) DO UPDATE SET
			config_json = excluded.config_json,
			version = schedule_configs.version + 1,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query, string(org), string(data), now())
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

// GetSchedule returns the organization's schedule, or schedule.Default()
// with found=false when none is stored.
func (s *Store) GetSchedule(ctx context.Context, org payroll.OrgID) (cfg schedule.Config, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getSchedule(ctx, org)
}

func (s *Store) getSchedule(ctx context.Context, org payroll.OrgID) (schedule.Config, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM schedule_configs WHERE org_id = ?", string(org),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Default(), false, nil
	}
	if err != nil {
		return schedule.Config{}, false, fmt.Errorf("failed to get schedule: %w", err)
	}

	var sj factory.ScheduleJSON
	if err := json.Unmarshal([]byte(raw), &sj); err != nil {
		return schedule.Config{}, false, fmt.Errorf("failed to decode schedule: %w", err)
	}
	cfg, err := s.factory.ParseSchedule(sj)
	if err != nil {
		return schedule.Config{}, true, fmt.Errorf("stored schedule for %s: %w", org, err)
	}
	return cfg, true, nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee inserts or updates a payroll profile.
func (s *Store) SaveEmployee(ctx context.Context, org payroll.OrgID, p compensation.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveEmployee(ctx, s.db, org, p)
}

func saveEmployee(ctx context.Context, db execer, org payroll.OrgID, p compensation.Profile) error {
	if p.EmployeeID == "" {
		return &payroll.FieldError{Field: "id", Reason: "required", Err: payroll.ErrMissingField}
	}

	query := `
		INSERT INTO employees (org_id, id, name, pay_type, hourly_rate, salary_amount,
			commission_enabled, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, id) DO UPDATE SET
			name = excluded.name,
			pay_type = excluded.pay_type,
			hourly_rate = excluded.hourly_rate,
			salary_amount = excluded.salary_amount,
			commission_enabled = excluded.commission_enabled,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`

	ts := now()
	_, err := db.ExecContext(ctx, query,
		string(org), string(p.EmployeeID), p.Name, string(p.PayType()),
		compensation.HourlyRate(p.Pay).String(),
		compensation.AnnualSalary(p.Pay).String(),
		p.CommissionEnabled, p.IsActive, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves one profile. Returns payroll.ErrEmployeeNotFound
// when absent.
func (s *Store) GetEmployee(ctx context.Context, org payroll.OrgID, id payroll.EmployeeID) (compensation.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+" WHERE org_id = ? AND id = ?", string(org), string(id))
	if err != nil {
		return compensation.Profile{}, fmt.Errorf("failed to get employee: %w", err)
	}
	defer rows.Close()

	profiles, err := scanEmployees(rows)
	if err != nil {
		return compensation.Profile{}, err
	}
	if len(profiles) == 0 {
		return compensation.Profile{}, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, id)
	}
	return profiles[0], nil
}

// ListEmployees returns every profile in the organization, active or not.
func (s *Store) ListEmployees(ctx context.Context, org payroll.OrgID) ([]compensation.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listEmployees(ctx, org)
}

func (s *Store) listEmployees(ctx context.Context, org payroll.OrgID) ([]compensation.Profile, error) {
	rows, err := s.db.QueryContext(ctx, employeeSelect+" WHERE org_id = ? ORDER BY name, id", string(org))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// DeleteEmployee removes a profile with its level assignment and overrides.
// Sales history is kept.
func (s *Store) DeleteEmployee(ctx context.Context, org payroll.OrgID, id payroll.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE org_id = ? AND id = ?", string(org), string(id))
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, id)
	}
	for _, q := range []string{
		"DELETE FROM level_assignments WHERE org_id = ? AND employee_id = ?",
		"DELETE FROM commission_overrides WHERE org_id = ? AND employee_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, string(org), string(id)); err != nil {
			return fmt.Errorf("failed to delete employee data: %w", err)
		}
	}
	return tx.Commit()
}

const employeeSelect = `
	SELECT id, name, pay_type, hourly_rate, salary_amount, commission_enabled, is_active
	FROM employees`

func scanEmployees(rows *sql.Rows) ([]compensation.Profile, error) {
	var profiles []compensation.Profile
	for rows.Next() {
		var (
			id, name, payType     string
			hourlyRate, salaryAmt string
			commissionEnabled     bool
			isActive              bool
		)
		if err := rows.Scan(&id, &name, &payType, &hourlyRate, &salaryAmt, &commissionEnabled, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}

		pt, err := compensation.ParsePayType(payType)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", id, err)
		}
		pay, err := compensation.NewPayStructure(pt, parseDecimal(hourlyRate), parseDecimal(salaryAmt))
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", id, err)
		}

		profiles = append(profiles, compensation.Profile{
			EmployeeID:        payroll.EmployeeID(id),
			Name:              name,
			Pay:               pay,
			CommissionEnabled: commissionEnabled,
			IsActive:          isActive,
		})
	}
	return profiles, rows.Err()
}

// =============================================================================
// LEVEL STORE
// =============================================================================

// SaveLevel inserts or updates a stylist level.
func (s *Store) SaveLevel(ctx context.Context, org payroll.OrgID, l commission.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveLevel(ctx, s.db, org, l)
}

func saveLevel(ctx context.Context, db execer, org payroll.OrgID, l commission.Level) error {
	if l.Slug == "" {
		return &payroll.FieldError{Field: "slug", Reason: "required", Err: payroll.ErrMissingField}
	}

	query := `
		INSERT INTO stylist_levels (org_id, slug, label, service_rate, retail_rate, display_order)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, slug) DO UPDATE SET
			label = excluded.label,
			service_rate = excluded.service_rate,
			retail_rate = excluded.retail_rate,
			display_order = excluded.display_order
	`
	_, err := db.ExecContext(ctx, query,
		string(org), string(l.Slug), l.Label,
		nullDecimal(l.ServiceRate), nullDecimal(l.RetailRate), l.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to save level: %w", err)
	}
	return nil
}

// ListLevels returns the organization's levels in display order.
func (s *Store) ListLevels(ctx context.Context, org payroll.OrgID) ([]commission.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLevels(ctx, org)
}

func (s *Store) listLevels(ctx context.Context, org payroll.OrgID) ([]commission.Level, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, label, service_rate, retail_rate, display_order
		FROM stylist_levels
		WHERE org_id = ?
		ORDER BY display_order, slug
	`, string(org))
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	defer rows.Close()

	var levels []commission.Level
	for rows.Next() {
		var (
			l               commission.Level
			slug            string
			service, retail sql.NullString
		)
		if err := rows.Scan(&slug, &l.Label, &service, &retail, &l.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		l.Slug = payroll.LevelSlug(slug)
		l.ServiceRate = scanNullDecimal(service)
		l.RetailRate = scanNullDecimal(retail)
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// DeleteLevel removes a level and unassigns everyone on it.
func (s *Store) DeleteLevel(ctx context.Context, org payroll.OrgID, slug payroll.LevelSlug) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM stylist_levels WHERE org_id = ? AND slug = ?", string(org), string(slug))
	if err != nil {
		return fmt.Errorf("failed to delete level: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", payroll.ErrLevelNotFound, slug)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM level_assignments WHERE org_id = ? AND level_slug = ?", string(org), string(slug),
	); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}
	return tx.Commit()
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

// AssignLevel puts an employee on a level. An empty slug unassigns.
func (s *Store) AssignLevel(ctx context.Context, org payroll.OrgID, employee payroll.EmployeeID, slug payroll.LevelSlug) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return assignLevel(ctx, s.db, org, employee, slug)
}

func assignLevel(ctx context.Context, db execer, org payroll.OrgID, employee payroll.EmployeeID, slug payroll.LevelSlug) error {
	if ok, err := exists(ctx, db, "SELECT COUNT(*) FROM employees WHERE org_id = ? AND id = ?", string(org), string(employee)); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, employee)
	}

	if slug == "" {
		_, err := db.ExecContext(ctx,
			"DELETE FROM level_assignments WHERE org_id = ? AND employee_id = ?", string(org), string(employee))
		if err != nil {
			return fmt.Errorf("failed to unassign level: %w", err)
		}
		return nil
	}

	if ok, err := exists(ctx, db, "SELECT COUNT(*) FROM stylist_levels WHERE org_id = ? AND slug = ?", string(org), string(slug)); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", payroll.ErrLevelNotFound, slug)
	}

	query := `
		INSERT INTO level_assignments (org_id, employee_id, level_slug, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(org_id, employee_id) DO UPDATE SET
			level_slug = excluded.level_slug,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, string(org), string(employee), string(slug), now()); err != nil {
		return fmt.Errorf("failed to assign level: %w", err)
	}
	return nil
}

// ListAssignments returns the organization's employee -> level map.
func (s *Store) ListAssignments(ctx context.Context, org payroll.OrgID) (commission.Assignments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listAssignments(ctx, org)
}

func (s *Store) listAssignments(ctx context.Context, org payroll.OrgID) (commission.Assignments, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT employee_id, level_slug FROM level_assignments WHERE org_id = ?", string(org))
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	out := commission.Assignments{}
	for rows.Next() {
		var emp, slug string
		if err := rows.Scan(&emp, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out[payroll.EmployeeID(emp)] = payroll.LevelSlug(slug)
	}
	return out, rows.Err()
}

// =============================================================================
// OVERRIDE STORE
// =============================================================================

// OverrideRecord is a stored override with its id.
type OverrideRecord struct {
	ID string
	commission.Override
}

// CreateOverride stores a new override for an existing employee and
// returns its id.
func (s *Store) CreateOverride(ctx context.Context, org payroll.OrgID, o commission.Override) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return createOverride(ctx, s.db, org, o)
}

func createOverride(ctx context.Context, db execer, org payroll.OrgID, o commission.Override) (string, error) {
	if ok, err := exists(ctx, db, "SELECT COUNT(*) FROM employees WHERE org_id = ? AND id = ?", string(org), string(o.EmployeeID)); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, o.EmployeeID)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO commission_overrides
		(id, org_id, employee_id, service_rate, retail_rate, reason, is_active, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		id, string(org), string(o.EmployeeID),
		nullDecimal(o.ServiceRate), nullDecimal(o.RetailRate),
		o.Reason, o.IsActive, nullString(o.ExpiresAt.String()), now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create override: %w", err)
	}
	return id, nil
}

// ListOverrides returns the organization's overrides in creation order,
// which is the order the resolver scans them.
func (s *Store) ListOverrides(ctx context.Context, org payroll.OrgID) ([]OverrideRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listOverrides(ctx, org)
}

func (s *Store) listOverrides(ctx context.Context, org payroll.OrgID) ([]OverrideRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, service_rate, retail_rate, reason, is_active, expires_at
		FROM commission_overrides
		WHERE org_id = ?
		ORDER BY created_at, rowid
	`, string(org))
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer rows.Close()

	var out []OverrideRecord
	for rows.Next() {
		var (
			r               OverrideRecord
			emp             string
			service, retail sql.NullString
			expires         sql.NullString
		)
		if err := rows.Scan(&r.ID, &emp, &service, &retail, &r.Reason, &r.IsActive, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		r.EmployeeID = payroll.EmployeeID(emp)
		r.ServiceRate = scanNullDecimal(service)
		r.RetailRate = scanNullDecimal(retail)
		if expires.Valid {
			r.ExpiresAt, _ = payroll.ParseDate(expires.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteOverride removes one override.
func (s *Store) DeleteOverride(ctx context.Context, org payroll.OrgID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM commission_overrides WHERE org_id = ? AND id = ?", string(org), id)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOverrideNotFound
	}
	return nil
}

// ErrOverrideNotFound is returned when deleting an unknown override.
var ErrOverrideNotFound = errors.New("override not found")

// =============================================================================
// SALES STORE
// =============================================================================

// RecordSales upserts daily actuals; a second row for the same employee and
// day replaces the first.
func (s *Store) RecordSales(ctx context.Context, org payroll.OrgID, actuals []payroll.SalesActual) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := recordSales(ctx, tx, org, actuals); err != nil {
		return err
	}
	return tx.Commit()
}

func recordSales(ctx context.Context, db execer, org payroll.OrgID, actuals []payroll.SalesActual) error {
	query := `
		INSERT INTO sales_actuals (id, org_id, employee_id, date, service_revenue, product_revenue, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, employee_id, date) DO UPDATE SET
			service_revenue = excluded.service_revenue,
			product_revenue = excluded.product_revenue
	`
	ts := now()
	for _, a := range actuals {
		if a.Date.IsZero() {
			return &payroll.FieldError{Field: "date", Reason: "required", Err: payroll.ErrInvalidDate}
		}
		_, err := db.ExecContext(ctx, query,
			uuid.NewString(), string(org), string(a.EmployeeID), a.Date.String(),
			a.ServiceRevenue.String(), a.ProductRevenue.String(), ts,
		)
		if err != nil {
			return fmt.Errorf("failed to record sales: %w", err)
		}
	}
	return nil
}

// ListSales returns actuals dated within [from, to], ordered by date.
func (s *Store) ListSales(ctx context.Context, org payroll.OrgID, from, to payroll.Date) ([]payroll.SalesActual, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listSales(ctx, org, from, to)
}

func (s *Store) listSales(ctx context.Context, org payroll.OrgID, from, to payroll.Date) ([]payroll.SalesActual, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date, service_revenue, product_revenue
		FROM sales_actuals
		WHERE org_id = ? AND date >= ? AND date <= ?
		ORDER BY date, employee_id
	`, string(org), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var out []payroll.SalesActual
	for rows.Next() {
		var emp, date, service, product string
		if err := rows.Scan(&emp, &date, &service, &product); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		d, err := payroll.ParseDate(date)
		if err != nil {
			return nil, err
		}
		out = append(out, payroll.SalesActual{
			EmployeeID:     payroll.EmployeeID(emp),
			Date:           d,
			ServiceRevenue: parseDecimal(service),
			ProductRevenue: parseDecimal(product),
		})
	}
	return out, rows.Err()
}

// =============================================================================
// FORECAST INPUTS
// =============================================================================

// LoadForecastInputs gathers everything one projection needs under a single
// read lock: schedule, roster, catalog, and the sales from the start of the
// previous pay period through today.
func (s *Store) LoadForecastInputs(ctx context.Context, org payroll.OrgID, today payroll.Date) (forecast.Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, _, err := s.getSchedule(ctx, org)
	if err != nil {
		return forecast.Input{}, err
	}
	roster, err := s.listEmployees(ctx, org)
	if err != nil {
		return forecast.Input{}, err
	}
	levels, err := s.listLevels(ctx, org)
	if err != nil {
		return forecast.Input{}, err
	}
	assignments, err := s.listAssignments(ctx, org)
	if err != nil {
		return forecast.Input{}, err
	}
	records, err := s.listOverrides(ctx, org)
	if err != nil {
		return forecast.Input{}, err
	}
	overrides := make([]commission.Override, len(records))
	for i, r := range records {
		overrides[i] = r.Override
	}

	current := schedule.CurrentPeriod(cfg, today)
	prior := schedule.PreviousPeriod(cfg, current)
	until := today
	if current.End.Before(until) {
		until = current.End
	}
	sales, err := s.listSales(ctx, org, prior.Start, until)
	if err != nil {
		return forecast.Input{}, err
	}

	return forecast.Input{
		Roster:   roster,
		Schedule: cfg,
		Sales:    sales,
		Catalog: commission.Catalog{
			Overrides:   overrides,
			Assignments: assignments,
			Levels:      levels,
		},
		Today: today,
	}, nil
}

// =============================================================================
// FORECAST RUNS STORE
// =============================================================================

// ForecastRun is one scheduled refresh of an organization's projection.
type ForecastRun struct {
	ID             string
	OrgID          payroll.OrgID
	Today          payroll.Date
	PeriodStart    payroll.Date
	PeriodEnd      payroll.Date
	Status         string // completed, failed
	Confidence     string
	ProjectedSales decimal.Decimal
	GrossPay       decimal.Decimal
	EmployerCost   decimal.Decimal
	Error          string
	CreatedAt      time.Time
}

// SaveForecastRun records a refresh. An empty ID gets a new uuid.
func (s *Store) SaveForecastRun(ctx context.Context, r ForecastRun) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO forecast_runs (id, org_id, today, period_start, period_end, status,
			confidence, projected_sales, gross_pay, employer_cost, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.OrgID), r.Today.String(), r.PeriodStart.String(), r.PeriodEnd.String(), r.Status,
		nullString(r.Confidence), r.ProjectedSales.String(), r.GrossPay.String(), r.EmployerCost.String(),
		nullString(r.Error), r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save forecast run: %w", err)
	}
	return r.ID, nil
}

// ListForecastRuns returns the newest runs for an organization first.
func (s *Store) ListForecastRuns(ctx context.Context, org payroll.OrgID, limit int) ([]ForecastRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, today, period_start, period_end, status,
			confidence, projected_sales, gross_pay, employer_cost, error, created_at
		FROM forecast_runs
		WHERE org_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, string(org), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecast runs: %w", err)
	}
	defer rows.Close()

	var runs []ForecastRun
	for rows.Next() {
		var (
			r                              ForecastRun
			orgID, today, start, end       string
			confidence, errText            sql.NullString
			projected, gross, cost, create string
		)
		if err := rows.Scan(&r.ID, &orgID, &today, &start, &end, &r.Status,
			&confidence, &projected, &gross, &cost, &errText, &create); err != nil {
			return nil, fmt.Errorf("failed to scan forecast run: %w", err)
		}
		r.OrgID = payroll.OrgID(orgID)
		r.Today, _ = payroll.ParseDate(today)
		r.PeriodStart, _ = payroll.ParseDate(start)
		r.PeriodEnd, _ = payroll.ParseDate(end)
		r.Confidence = confidence.String
		r.ProjectedSales = parseDecimal(projected)
		r.GrossPay = parseDecimal(gross)
		r.EmployerCost = parseDecimal(cost)
		r.Error = errText.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, create)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"sales_actuals", "commission_overrides", "level_assignments",
		"stylist_levels", "employees", "schedule_configs", "forecast_runs",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// ImportOrg writes a parsed organization in one transaction: schedule,
// roster, levels, assignments, overrides and sales. Employees, levels and
// sales are upserted by key. The organization's assignments and overrides are
// replaced by the imported ones, so re-importing the same file is idempotent.
func (s *Store) ImportOrg(ctx context.Context, org factory.Org) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saveSchedule(ctx, tx, org.ID, org.Schedule); err != nil {
		return err
	}
	for _, p := range org.Roster {
		if err := saveEmployee(ctx, tx, org.ID, p); err != nil {
			return err
		}
	}
	for _, l := range org.Catalog.Levels {
		if err := saveLevel(ctx, tx, org.ID, l); err != nil {
			return err
		}
	}

	for _, table := range []string{"level_assignments", "commission_overrides"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE org_id = ?", string(org.ID)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	for emp, slug := range org.Catalog.Assignments {
		if err := assignLevel(ctx, tx, org.ID, emp, slug); err != nil {
			return err
		}
	}
	for _, o := range org.Catalog.Overrides {
		if _, err := createOverride(ctx, tx, org.ID, o); err != nil {
			return err
		}
	}

	if err := recordSales(ctx, tx, org.ID, org.Sales); err != nil {
		return err
	}
	return tx.Commit()
}

func exists(ctx context.Context, db execer, query string, args ...any) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return count > 0, nil
}

// Helper functions

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(n decimal.NullDecimal) sql.NullString {
	if !n.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: n.Decimal.String(), Valid: true}
}

func scanNullDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
