package evaluator

import "github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

// SeverityThresholds minimum matching-observation counts per severity.
type SeverityThresholds struct {
	Critical int
	High     int
	Medium   int
}

// DefaultSeverityThresholds 10 / 7 / 5.
var DefaultSeverityThresholds = SeverityThresholds{Critical: 10, High: 7, Medium: 5}

// Classify maps a matching-observation count to a severity with the default thresholds.
func Classify(count int) domain.Severity {
	return DefaultSeverityThresholds.Classify(count)
}

// Classify checks the thresholds from highest down.
func (t SeverityThresholds) Classify(count int) domain.Severity {
	switch {
	case count >= t.Critical:
		return domain.SeverityCritical
	case count >= t.High:
		return domain.SeverityHigh
	case count >= t.Medium:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
