/*
Package tiers groups a payroll projection into per-level buckets for
tier-distribution charts.

PURPOSE:
  Answers "how much revenue and headcount sits in each stylist level?"
  for the current period's projection.

GROUPING:
  Employees are grouped by the typed commission source, never by parsing
  the display label:

    source = level       -> that level's bucket
    source = override    -> Overrides summary (or, with
                            AttributeOverridesToAssignedLevel, the bucket of
                            the level the employee is assigned to)
    source = unassigned  -> Unassigned summary

  Every configured level gets an item, even with zero headcount. Items are
  sorted ascending by service rate, then display order, then slug.

SEE ALSO:
  - forecast/engine.go: produces PayrollProjection
  - commission/types.go: Source
*/
package tiers

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/payroll"
)

// Options tune attribution.
type Options struct {
	// AttributeOverridesToAssignedLevel counts override-sourced employees in
	// their assigned level's bucket instead of the Overrides summary.
	AttributeOverridesToAssignedLevel bool
}

// Summary is the shared rollup shape.
type Summary struct {
	Headcount      int                  `json:"headcount"`
	ServiceRevenue decimal.Decimal      `json:"service_revenue"`
	ProductRevenue decimal.Decimal      `json:"product_revenue"`
	TotalRevenue   decimal.Decimal      `json:"total_revenue"`
	Commission     decimal.Decimal      `json:"commission"`
	EmployeeIDs    []payroll.EmployeeID `json:"employee_ids"`
}

// Item is one level's bucket.
type Item struct {
	Slug         payroll.LevelSlug `json:"slug"`
	Label        string            `json:"label"`
	ServiceRate  decimal.Decimal   `json:"service_rate"`
	RetailRate   decimal.Decimal   `json:"retail_rate"`
	DisplayOrder int               `json:"display_order"`
	Summary
}

// Distribution is the aggregate result. Items plus Overrides plus Unassigned
// always account for every employee in the projection.
type Distribution struct {
	Items      []Item  `json:"items"`
	Overrides  Summary `json:"overrides"`
	Unassigned Summary `json:"unassigned"`
}

// Headcount is the number of employees across all buckets.
func (d Distribution) Headcount() int {
	n := d.Overrides.Headcount + d.Unassigned.Headcount
	for _, it := range d.Items {
		n += it.Headcount
	}
	return n
}

// Aggregate groups projected revenue and commission by level.
func Aggregate(projection forecast.PayrollProjection, levels []commission.Level, opts Options) Distribution {
	items := make([]Item, 0, len(levels))
	index := make(map[payroll.LevelSlug]int, len(levels))
	for _, l := range levels {
		if _, dup := index[l.Slug]; dup {
			continue
		}
		index[l.Slug] = len(items)
		items = append(items, Item{
			Slug:         l.Slug,
			Label:        l.Label,
			ServiceRate:  payroll.OrZero(l.ServiceRate),
			RetailRate:   payroll.OrZero(l.RetailRate),
			DisplayOrder: l.DisplayOrder,
			Summary:      emptySummary(),
		})
	}

	dist := Distribution{Overrides: emptySummary(), Unassigned: emptySummary()}

	for _, ep := range projection.Employees {
		var bucket *Summary
		switch ep.ResolvedSource.Kind {
		case commission.SourceLevel:
			if i, ok := index[ep.ResolvedSource.LevelSlug]; ok {
				bucket = &items[i].Summary
			}
		case commission.SourceOverride:
			if opts.AttributeOverridesToAssignedLevel {
				if i, ok := index[ep.AssignedLevel]; ok {
					bucket = &items[i].Summary
				}
			}
			if bucket == nil {
				bucket = &dist.Overrides
			}
		}
		if bucket == nil {
			bucket = &dist.Unassigned
		}
		bucket.add(ep)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := a.ServiceRate.Cmp(b.ServiceRate); c != 0 {
			return c < 0
		}
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.Slug < b.Slug
	})

	dist.Items = items
	return dist
}

func (s *Summary) add(ep forecast.EmployeeProjection) {
	s.Headcount++
	s.ServiceRevenue = s.ServiceRevenue.Add(ep.ProjectedServiceSales)
	s.ProductRevenue = s.ProductRevenue.Add(ep.ProjectedProductSales)
	s.TotalRevenue = s.TotalRevenue.Add(ep.ProjectedSales)
	s.Commission = s.Commission.Add(ep.ProjectedCompensation.CommissionPay)
	s.EmployeeIDs = append(s.EmployeeIDs, ep.EmployeeID)
}

func emptySummary() Summary {
	return Summary{
		ServiceRevenue: decimal.Zero,
		ProductRevenue: decimal.Zero,
		TotalRevenue:   decimal.Zero,
		Commission:     decimal.Zero,
		EmployeeIDs:    []payroll.EmployeeID{},
	}
}
