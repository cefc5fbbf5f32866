package domain

import "time"

// Severity of a community alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertStatus lifecycle of an alert. Resolution happens outside this service.
type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertResolved AlertStatus = "resolved"
)

// Alert derived aggregate over observations of one barangay+category bucket (alerts table).
type Alert struct {
	ID             string      `json:"id" db:"alert_id"`
	Barangay       string      `json:"barangay" db:"barangay"`
	Category       string      `json:"category" db:"category"`
	ObservationIDs []string    `json:"observationIds" db:"observation_ids"`
	SentinelIDs    []string    `json:"sentinelIds" db:"sentinel_ids"`
	Severity       Severity    `json:"severity" db:"severity"`
	Status         AlertStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
}

// AlertFilters list filters for alerts.
type AlertFilters struct {
	Barangay string
	Category string
	Status   AlertStatus
	Since    *time.Time
	Limit    int
}
