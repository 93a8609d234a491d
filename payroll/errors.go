/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  The calculators themselves never fail: missing data degrades to defaults
  and zeros. Errors exist only at the input boundaries (configuration
  parsing, persistence, HTTP decoding), and those boundaries wrap the
  sentinels below so callers can classify them with errors.Is.

SEE ALSO:
  - factory/org.go: wraps these when parsing configuration
  - api/handlers.go: maps them to HTTP status codes
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidSchedule is returned when a pay schedule breaks its invariants
	// (first day not before second day, weekday outside 0-6, negative check delay).
	ErrInvalidSchedule = errors.New("invalid pay schedule")

	// ErrInvalidPayType is returned for an unknown pay type string.
	ErrInvalidPayType = errors.New("invalid pay type")

	// ErrInvalidRate is returned for negative or malformed rates and amounts.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrMissingField is returned when a required identifier is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLevelNotFound is returned when a referenced stylist level doesn't exist.
	ErrLevelNotFound = errors.New("level not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// FieldError names the offending field of a rejected input.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrInvalidPayType) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrMissingField)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLevelNotFound)
}
