package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBarangay(t *testing.T) {
	assert.Equal(t, "San Roque", NormalizeBarangay("  san   roque "))
	assert.Equal(t, "San Roque", NormalizeBarangay("SAN ROQUE"))
	assert.Equal(t, "Poblacion", NormalizeBarangay("poblacion"))
	assert.Equal(t, "", NormalizeBarangay("   "))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "fever", NormalizeCategory(" Fever "))
	assert.Equal(t, "skin rash", NormalizeCategory("Skin   Rash"))
}

func TestObservation_CanTransitionTo(t *testing.T) {
	pending := &Observation{Status: ObservationPending}
	assert.True(t, pending.CanTransitionTo(ObservationVerified))
	assert.True(t, pending.CanTransitionTo(ObservationRejected))
	assert.False(t, pending.CanTransitionTo(ObservationSpam))
	assert.False(t, pending.CanTransitionTo(ObservationPending))

	verified := &Observation{Status: ObservationVerified}
	assert.False(t, verified.CanTransitionTo(ObservationRejected))
}

func TestOtpRecord_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r := &OtpRecord{ExpiresAt: now}
	assert.False(t, r.Expired(now))
	assert.True(t, r.Expired(now.Add(time.Nanosecond)))
}

func TestObservationStatus_Valid(t *testing.T) {
	assert.True(t, ObservationSpam.Valid())
	assert.False(t, ObservationStatus("archived").Valid())
}
