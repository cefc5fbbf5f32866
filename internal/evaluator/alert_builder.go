package evaluator

import (
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"github.com/google/uuid"
)

// AlertBuilder builds alerts for one barangay+category bucket.
type AlertBuilder struct {
	barangay string
	category string
}

func NewAlertBuilder(barangay, category string) *AlertBuilder {
	return &AlertBuilder{barangay: barangay, category: category}
}

// BuildAlert makes an active alert over matches. Observation ids keep match
// order; sentinel ids are distinct in first-seen order.
func (b *AlertBuilder) BuildAlert(matches []*domain.Observation, severity domain.Severity, now time.Time) *domain.Alert {
	observationIDs := make([]string, 0, len(matches))
	for _, o := range matches {
		observationIDs = append(observationIDs, o.ID)
	}

	return &domain.Alert{
		ID:             uuid.New().String(),
		Barangay:       b.barangay,
		Category:       b.category,
		ObservationIDs: observationIDs,
		SentinelIDs:    DistinctSentinels(matches),
		Severity:       severity,
		Status:         domain.AlertActive,
		CreatedAt:      now,
	}
}

// DistinctSentinels returns the unique sentinel ids of obs in first-seen order.
func DistinctSentinels(obs []*domain.Observation) []string {
	seen := make(map[string]struct{}, len(obs))
	var out []string
	for _, o := range obs {
		if _, ok := seen[o.SentinelID]; ok {
			continue
		}
		seen[o.SentinelID] = struct{}{}
		out = append(out, o.SentinelID)
	}
	return out
}
