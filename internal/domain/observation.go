package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ObservationStatus lifecycle of a report.
type ObservationStatus string

const (
	ObservationPending  ObservationStatus = "pending"
	ObservationVerified ObservationStatus = "verified"
	ObservationSpam     ObservationStatus = "spam"
	ObservationRejected ObservationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ObservationStatus) Valid() bool {
	switch s {
	case ObservationPending, ObservationVerified, ObservationSpam, ObservationRejected:
		return true
	}
	return false
}

// Observation a single sentinel report (observations table).
type Observation struct {
	ID          string            `json:"id" db:"observation_id"`
	SentinelID  string            `json:"sentinelId" db:"sentinel_id"`
	Barangay    string            `json:"barangay" db:"barangay"`
	Category    string            `json:"category" db:"category"` // assigned at intake, never user-chosen
	Type        string            `json:"type" db:"obs_type"`
	Description string            `json:"description" db:"description"`
	Location    string            `json:"location" db:"location"`
	Status      ObservationStatus `json:"status" db:"status"`
	SpamScore   int               `json:"spamScore" db:"spam_score"`
	ReviewedBy  *string           `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// Categorized reports whether intake already assigned a category.
func (o *Observation) Categorized() bool {
	return o.Category != ""
}

// CanTransitionTo reports whether a reviewer may move the observation to next.
// Only pending -> verified and pending -> rejected are allowed.
func (o *Observation) CanTransitionTo(next ObservationStatus) bool {
	if o.Status != ObservationPending {
		return false
	}
	return next == ObservationVerified || next == ObservationRejected
}

// NormalizeBarangay canonicalises a barangay name for bucketing:
// trimmed, inner whitespace collapsed, title-cased.
func NormalizeBarangay(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(strings.ToLower(name))
}

// NormalizeCategory lower-cases and trims a category label.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.Join(strings.Fields(category), " "))
}
