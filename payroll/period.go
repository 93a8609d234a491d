package payroll

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the inclusive range [Start, End].
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Len returns the number of days in the period, counting both ends.
func (p Period) Len() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Clip narrows the period so it ends no later than d.
func (p Period) Clip(d Date) Period {
	if d.Before(p.End) {
		return Period{Start: p.Start, End: d}
	}
	return p
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
