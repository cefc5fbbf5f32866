package domain

import "time"

// OtpRecord one pending registration verification, keyed by email.
type OtpRecord struct {
	Email       string    `json:"email"`
	Code        string    `json:"code"`
	DisplayName string    `json:"displayName"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether now is past the validity window.
func (r *OtpRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
