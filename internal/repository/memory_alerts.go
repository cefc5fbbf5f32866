package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

// MemoryAlertsRepo backs alerts when DB is disabled.
type MemoryAlertsRepo struct {
	mu     sync.RWMutex
	alerts []domain.Alert
}

func NewMemoryAlertsRepo() *MemoryAlertsRepo {
	return &MemoryAlertsRepo{}
}

func (r *MemoryAlertsRepo) CreateAlert(_ context.Context, alert *domain.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a := *alert
	a.ObservationIDs = append([]string(nil), alert.ObservationIDs...)
	a.SentinelIDs = append([]string(nil), alert.SentinelIDs...)
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *MemoryAlertsRepo) ListAlerts(_ context.Context, filters domain.AlertFilters) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if filters.Barangay != "" && a.Barangay != filters.Barangay {
			continue
		}
		if filters.Category != "" && a.Category != filters.Category {
			continue
		}
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		if filters.Since != nil && a.CreatedAt.Before(*filters.Since) {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}
