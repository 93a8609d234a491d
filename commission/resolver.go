package commission

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver resolves commission rates through the override -> level ->
// unassigned chain. The zero value applies the standard rules.
type Resolver struct {
	// InheritLevelRatesOnPartialOverride lets an override that only sets one
	// side fall through to the level's rate for the other side. When false
	// (the default) the unspecified side is zero.
	InheritLevelRatesOnPartialOverride bool
}

// Resolve applies the standard rules.
func Resolve(
	employeeID payroll.EmployeeID,
	serviceRevenue, productRevenue decimal.Decimal,
	catalog Catalog,
	asOf payroll.Date,
) Resolution {
	return Resolver{}.Resolve(employeeID, serviceRevenue, productRevenue, catalog, asOf)
}

// Resolve returns the rates and commission amounts for one employee.
// Amounts are revenue x rate, unrounded.
func (r Resolver) Resolve(
	employeeID payroll.EmployeeID,
	serviceRevenue, productRevenue decimal.Decimal,
	catalog Catalog,
	asOf payroll.Date,
) Resolution {
	level, hasLevel := catalog.Level(catalog.Assignments[employeeID])

	if override, ok := ActiveOverride(catalog.Overrides, employeeID, asOf); ok {
		service := payroll.OrZero(override.ServiceRate)
		retail := payroll.OrZero(override.RetailRate)
		if r.InheritLevelRatesOnPartialOverride && hasLevel {
			if !override.ServiceRate.Valid {
				service = payroll.OrZero(level.ServiceRate)
			}
			if !override.RetailRate.Valid {
				retail = payroll.OrZero(level.RetailRate)
			}
		}
		return apply(service, retail, serviceRevenue, productRevenue,
			Source{Kind: SourceOverride, OverrideReason: override.Reason},
			"Override: "+override.Reason)
	}

	if hasLevel && level.HasRate() {
		return apply(payroll.OrZero(level.ServiceRate), payroll.OrZero(level.RetailRate),
			serviceRevenue, productRevenue,
			Source{Kind: SourceLevel, LevelSlug: level.Slug},
			"Level: "+level.Label)
	}

	return Unassigned()
}

// ActiveOverride returns the first override for the employee that is usable on
// asOf and sets at least one rate.
func ActiveOverride(overrides []Override, employeeID payroll.EmployeeID, asOf payroll.Date) (Override, bool) {
	for _, o := range overrides {
		if o.EmployeeID == employeeID && o.UsableOn(asOf) && o.HasRate() {
			return o, true
		}
	}
	return Override{}, false
}

func apply(serviceRate, retailRate, serviceRevenue, productRevenue decimal.Decimal, source Source, label string) Resolution {
	serviceCommission := serviceRevenue.Mul(serviceRate)
	retailCommission := productRevenue.Mul(retailRate)
	return Resolution{
		ServiceRate:       serviceRate,
		RetailRate:        retailRate,
		ServiceCommission: serviceCommission,
		RetailCommission:  retailCommission,
		TotalCommission:   serviceCommission.Add(retailCommission),
		Source:            source,
		SourceLabel:       label,
	}
}
