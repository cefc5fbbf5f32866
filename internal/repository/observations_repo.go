package repository

import (
	"context"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

// ObservationsRepository persistence for observations.
type ObservationsRepository interface {
	GetObservation(ctx context.Context, observationID string) (*domain.Observation, error)
	CreateObservation(ctx context.Context, obs *domain.Observation) error

	// SetCategorization writes category/status/spam score once; it fails with
	// ErrConflict when the observation is already categorized.
	SetCategorization(ctx context.Context, observationID, category string, status domain.ObservationStatus, spamScore int) error

	// ListInWindow returns observations of one barangay+category bucket with the
	// given status and created_at strictly after since.
	ListInWindow(ctx context.Context, barangay, category string, status domain.ObservationStatus, since time.Time) ([]*domain.Observation, error)

	// UpdateStatus moves an observation from one status to another; ErrConflict
	// when the current status is not from.
	UpdateStatus(ctx context.Context, observationID string, from, to domain.ObservationStatus, reviewer string, at time.Time) error
}
