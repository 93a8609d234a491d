package commission_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var today = payroll.NewDate(2026, time.March, 10)

func money(v float64) decimal.Decimal { return payroll.Dec(v) }

func assertMoney(t *testing.T, want float64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), "%s: want %v, got %s", msg, want, got)
}

func salonCatalog() commission.Catalog {
	return commission.Catalog{
		Levels: []commission.Level{
			{Slug: "junior", Label: "Junior", ServiceRate: payroll.Rate(0.30), RetailRate: payroll.Rate(0.05), DisplayOrder: 1},
			{Slug: "senior", Label: "Senior", ServiceRate: payroll.Rate(0.40), RetailRate: payroll.Rate(0.10), DisplayOrder: 2},
			{Slug: "empty", Label: "Empty", DisplayOrder: 3},
		},
		Assignments: commission.Assignments{
			"emp-junior": "junior",
			"emp-senior": "senior",
			"emp-empty":  "empty",
			"emp-ghost":  "no-such-level",
		},
	}
}

// =============================================================================
// PRIORITY CHAIN
// =============================================================================

func TestResolve_OverrideBeatsLevel(t *testing.T) {
	// GIVEN: A senior stylist with an active override
	// WHEN: Resolving commission
	// THEN: The override wins

	catalog := salonCatalog()
	catalog.Overrides = []commission.Override{
		{EmployeeID: "emp-senior", ServiceRate: payroll.Rate(0.50), RetailRate: payroll.Rate(0.20), Reason: "Retention deal", IsActive: true},
	}

	res := commission.Resolve("emp-senior", money(1000), money(200), catalog, today)

	assert.Equal(t, commission.SourceOverride, res.Source.Kind)
	assert.Equal(t, "Override: Retention deal", res.SourceLabel)
	assertMoney(t, 500, res.ServiceCommission, "service")
	assertMoney(t, 40, res.RetailCommission, "retail")
	assertMoney(t, 540, res.TotalCommission, "total")
}

func TestResolve_LevelWhenNoOverride(t *testing.T) {
	res := commission.Resolve("emp-junior", money(1000), money(100), salonCatalog(), today)

	assert.Equal(t, commission.SourceLevel, res.Source.Kind)
	assert.Equal(t, payroll.LevelSlug("junior"), res.Source.LevelSlug)
	assert.Equal(t, "Level: Junior", res.SourceLabel)
	assertMoney(t, 300, res.ServiceCommission, "service")
	assertMoney(t, 5, res.RetailCommission, "retail")
	assertMoney(t, 305, res.TotalCommission, "total")
}

func TestResolve_UnassignedEarnsNothing(t *testing.T) {
	// GIVEN: No override, no level, plenty of revenue
	// THEN: Zero commission, source unassigned

	for _, id := range []payroll.EmployeeID{"emp-nobody", "emp-empty", "emp-ghost"} {
		res := commission.Resolve(id, money(5000), money(800), salonCatalog(), today)

		assert.Equal(t, commission.SourceUnassigned, res.Source.Kind, string(id))
		assert.Equal(t, "Unassigned", res.SourceLabel)
		assert.True(t, res.TotalCommission.IsZero(), string(id))
	}
}

// =============================================================================
// OVERRIDE ELIGIBILITY
// =============================================================================

func TestResolve_InactiveOrExpiredOverrideIgnored(t *testing.T) {
	catalog := salonCatalog()
	catalog.Overrides = []commission.Override{
		{EmployeeID: "emp-senior", ServiceRate: payroll.Rate(0.9), Reason: "inactive", IsActive: false},
		{EmployeeID: "emp-senior", ServiceRate: payroll.Rate(0.9), Reason: "expired", IsActive: true,
			ExpiresAt: payroll.NewDate(2026, time.March, 9)},
		{EmployeeID: "emp-senior", Reason: "no rates", IsActive: true},
	}

	res := commission.Resolve("emp-senior", money(100), money(0), catalog, today)

	assert.Equal(t, commission.SourceLevel, res.Source.Kind)
	assertMoney(t, 40, res.TotalCommission, "total")
}

func TestResolve_OverrideUsableThroughExpiryDay(t *testing.T) {
	catalog := salonCatalog()
	catalog.Overrides = []commission.Override{
		{EmployeeID: "emp-senior", ServiceRate: payroll.Rate(0.5), Reason: "promo", IsActive: true, ExpiresAt: today},
	}

	res := commission.Resolve("emp-senior", money(100), money(0), catalog, today)
	assert.Equal(t, commission.SourceOverride, res.Source.Kind)

	res = commission.Resolve("emp-senior", money(100), money(0), catalog, today.AddDays(1))
	assert.Equal(t, commission.SourceLevel, res.Source.Kind)
}

func TestResolve_FirstActiveOverrideWins(t *testing.T) {
	catalog := salonCatalog()
	catalog.Overrides = []commission.Override{
		{EmployeeID: "emp-junior", ServiceRate: payroll.Rate(0.45), Reason: "first", IsActive: true},
		{EmployeeID: "emp-junior", ServiceRate: payroll.Rate(0.55), Reason: "second", IsActive: true},
	}

	res := commission.Resolve("emp-junior", money(100), money(0), catalog, today)

	assert.Equal(t, "first", res.Source.OverrideReason)
	assertMoney(t, 45, res.TotalCommission, "total")
}

// =============================================================================
// PARTIAL OVERRIDES
// =============================================================================

func TestResolve_PartialOverrideZeroesOtherSide(t *testing.T) {
	catalog := salonCatalog()
	catalog.Overrides = []commission.Override{
		{EmployeeID: "emp-senior", ServiceRate: payroll.Rate(0.50), Reason: "service only", IsActive: true},
	}

	res := commission.Resolve("emp-senior", money(1000), money(500), catalog, today)

	assertMoney(t, 0, res.RetailRate, "retail rate")
	assertMoney(t, 0, res.RetailCommission, "retail commission")
	assertMoney(t, 500, res.TotalCommission, "total")
}

func TestResolve_PartialOverrideCanInheritLevelRate(t *testing.T) {
	catalog := salonCatalog()
	catalog.Overrides = []commission.Override{
		{EmployeeID: "emp-senior", ServiceRate: payroll.Rate(0.50), Reason: "service only", IsActive: true},
	}
	resolver := commission.Resolver{InheritLevelRatesOnPartialOverride: true}

	res := resolver.Resolve("emp-senior", money(1000), money(500), catalog, today)

	assert.Equal(t, commission.SourceOverride, res.Source.Kind)
	assertMoney(t, 0.10, res.RetailRate, "retail rate")
	assertMoney(t, 550, res.TotalCommission, "total")
}

func TestResolve_NoRounding(t *testing.T) {
	res := commission.Resolve("emp-junior", money(33.33), money(0), salonCatalog(), today)
	assertMoney(t, 9.999, res.ServiceCommission, "service")
}
