package repository

import (
	"context"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

// AlertsRepository persistence for alerts. Alerts are insert-only here.
type AlertsRepository interface {
	CreateAlert(ctx context.Context, alert *domain.Alert) error
	ListAlerts(ctx context.Context, filters domain.AlertFilters) ([]*domain.Alert, error)
}
