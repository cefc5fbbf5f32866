package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

// MemoryObservationsRepo backs observations when DB is disabled.
type MemoryObservationsRepo struct {
	mu           sync.RWMutex
	observations map[string]domain.Observation // observationID -> Observation
}

func NewMemoryObservationsRepo() *MemoryObservationsRepo {
	return &MemoryObservationsRepo{
		observations: map[string]domain.Observation{},
	}
}

func (r *MemoryObservationsRepo) GetObservation(_ context.Context, observationID string) (*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.observations[observationID]
	if !ok {
		return nil, fmt.Errorf("observation %s: %w", observationID, ErrNotFound)
	}
	return &o, nil
}

func (r *MemoryObservationsRepo) CreateObservation(_ context.Context, obs *domain.Observation) error {
	if obs == nil {
		return fmt.Errorf("observation is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.observations[obs.ID]; ok {
		return fmt.Errorf("observation %s already exists: %w", obs.ID, ErrConflict)
	}
	r.observations[obs.ID] = *obs
	return nil
}

func (r *MemoryObservationsRepo) SetCategorization(_ context.Context, observationID, category string, status domain.ObservationStatus, spamScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.observations[observationID]
	if !ok || o.Categorized() {
		return fmt.Errorf("observation %s already categorized or missing: %w", observationID, ErrConflict)
	}
	o.Category = category
	o.Status = status
	o.SpamScore = spamScore
	o.UpdatedAt = time.Now()
	r.observations[observationID] = o
	return nil
}

func (r *MemoryObservationsRepo) ListInWindow(_ context.Context, barangay, category string, status domain.ObservationStatus, since time.Time) ([]*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Observation
	for _, o := range r.observations {
		if o.Barangay != barangay || o.Category != category || o.Status != status {
			continue
		}
		if !o.CreatedAt.After(since) {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryObservationsRepo) UpdateStatus(_ context.Context, observationID string, from, to domain.ObservationStatus, reviewer string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.observations[observationID]
	if !ok || o.Status != from {
		return fmt.Errorf("observation %s is not %s: %w", observationID, from, ErrConflict)
	}
	o.Status = to
	o.ReviewedBy = &reviewer
	o.ReviewedAt = &at
	o.UpdatedAt = at
	r.observations[observationID] = o
	return nil
}
