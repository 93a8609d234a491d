package forecast

// Confidence grades how much of the period the projection has seen.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ClassifyConfidence: high from 75% elapsed, medium from 40%, low below.
// Integer comparison keeps the thresholds exact (3 of 4 days is high).
func ClassifyConfidence(daysPassed, totalDays int) Confidence {
	if totalDays <= 0 {
		return ConfidenceLow
	}
	switch {
	case 4*daysPassed >= 3*totalDays:
		return ConfidenceHigh
	case 5*daysPassed >= 2*totalDays:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
