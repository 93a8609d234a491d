/*
Package commission resolves an employee's effective commission rates.

PURPOSE:
  Given the organization's override list, stylist level catalog and the
  employee -> level assignment map, decide which service/retail rates apply
  to one employee and what those rates earn on a given revenue.

PRIORITY CHAIN (first match wins):
  1. Override:   active, non-expired, at least one rate set
  2. Level:      assigned level exists and has at least one rate set
  3. Unassigned: both rates zero ("define before payout"), not an error

KEY CONCEPTS IN THIS FILE (types.go):
  - Override:    per-employee rates that supersede the level
  - Level:       a named commission bracket (tier)
  - Assignments: employee -> level slug
  - Source:      typed record of which rule produced the rates

SEE ALSO:
  - resolver.go: the resolution algorithm
  - tiers/distribution.go: groups resolved employees by level
*/
package commission

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// INPUTS
// =============================================================================

// Override is a per-employee commission rate that supersedes the level rates.
// A null rate means "not specified".
type Override struct {
	EmployeeID  payroll.EmployeeID  `json:"employee_id"`
	ServiceRate decimal.NullDecimal `json:"service_rate"`
	RetailRate  decimal.NullDecimal `json:"retail_rate"`
	Reason      string              `json:"reason"`
	IsActive    bool                `json:"is_active"`
	ExpiresAt   payroll.Date        `json:"expires_at"`
}

// HasRate reports whether at least one side is specified.
func (o Override) HasRate() bool { return o.ServiceRate.Valid || o.RetailRate.Valid }

// UsableOn reports whether the override applies on asOf. An override is
// usable through its expiry date, inclusive.
func (o Override) UsableOn(asOf payroll.Date) bool {
	if !o.IsActive {
		return false
	}
	return o.ExpiresAt.IsZero() || !asOf.After(o.ExpiresAt)
}

// Level is a stylist level (tier) with its default commission rates.
type Level struct {
	Slug         payroll.LevelSlug   `json:"slug"`
	Label        string              `json:"label"`
	ServiceRate  decimal.NullDecimal `json:"service_rate"`
	RetailRate   decimal.NullDecimal `json:"retail_rate"`
	DisplayOrder int                 `json:"display_order"`
}

// HasRate reports whether at least one side is specified.
func (l Level) HasRate() bool { return l.ServiceRate.Valid || l.RetailRate.Valid }

// Assignments maps employees to their level. A missing or empty slug means unassigned.
type Assignments map[payroll.EmployeeID]payroll.LevelSlug

// Catalog bundles everything resolution needs besides revenue.
type Catalog struct {
	Overrides   []Override
	Assignments Assignments
	Levels      []Level
}

// Level looks up a level by slug.
func (c Catalog) Level(slug payroll.LevelSlug) (Level, bool) {
	return FindLevel(c.Levels, slug)
}

// FindLevel looks up a level by slug.
func FindLevel(levels []Level, slug payroll.LevelSlug) (Level, bool) {
	if slug == "" {
		return Level{}, false
	}
	for _, l := range levels {
		if l.Slug == slug {
			return l, true
		}
	}
	return Level{}, false
}

// =============================================================================
// OUTPUT
// =============================================================================

// SourceKind identifies the rule that produced the rates.
type SourceKind string

const (
	SourceOverride   SourceKind = "override"
	SourceLevel      SourceKind = "level"
	SourceUnassigned SourceKind = "unassigned"
)

// Source is a discriminated record of where the rates came from. LevelSlug is
// set for SourceLevel; OverrideReason for SourceOverride.
type Source struct {
	Kind           SourceKind        `json:"kind"`
	LevelSlug      payroll.LevelSlug `json:"level_slug,omitempty"`
	OverrideReason string            `json:"override_reason,omitempty"`
}

// Resolution is the outcome of resolving one employee's commission.
type Resolution struct {
	ServiceRate       decimal.Decimal `json:"service_rate"`
	RetailRate        decimal.Decimal `json:"retail_rate"`
	ServiceCommission decimal.Decimal `json:"service_commission"`
	RetailCommission  decimal.Decimal `json:"retail_commission"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	Source            Source          `json:"source"`
	SourceLabel       string          `json:"source_label"`
}

// Unassigned is the zero-rate resolution.
func Unassigned() Resolution {
	return Resolution{
		ServiceRate:       decimal.Zero,
		RetailRate:        decimal.Zero,
		ServiceCommission: decimal.Zero,
		RetailCommission:  decimal.Zero,
		TotalCommission:   decimal.Zero,
		Source:            Source{Kind: SourceUnassigned},
		SourceLabel:       "Unassigned",
	}
}
