package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresAlertsRepository alerts table on PostgreSQL.
type PostgresAlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresAlertsRepository creates the repository.
func NewPostgresAlertsRepository(db *sql.DB, logger *zap.Logger) *PostgresAlertsRepository {
	return &PostgresAlertsRepository{db: db, logger: logger}
}

// CreateAlert inserts an alert.
func (r *PostgresAlertsRepository) CreateAlert(ctx context.Context, alert *domain.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert is required")
	}

	query := `
		INSERT INTO alerts (
			alert_id,
			barangay,
			category,
			observation_ids,
			sentinel_ids,
			severity,
			status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.Barangay,
		alert.Category,
		pq.Array(alert.ObservationIDs),
		pq.Array(alert.SentinelIDs),
		string(alert.Severity),
		string(alert.Status),
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts newest first.
func (r *PostgresAlertsRepository) ListAlerts(ctx context.Context, filters domain.AlertFilters) ([]*domain.Alert, error) {
	var where []string
	var args []any
	addArg := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filters.Barangay != "" {
		addArg("barangay = $%d", filters.Barangay)
	}
	if filters.Category != "" {
		addArg("category = $%d", filters.Category)
	}
	if filters.Status != "" {
		addArg("status = $%d", string(filters.Status))
	}
	if filters.Since != nil {
		addArg("created_at >= $%d", *filters.Since)
	}

	query := `
		SELECT
			alert_id,
			barangay,
			category,
			observation_ids,
			sentinel_ids,
			severity,
			status,
			created_at
		FROM alerts`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY created_at DESC"
	limit := filters.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var severity, status string
		if err := rows.Scan(
			&a.ID,
			&a.Barangay,
			&a.Category,
			pq.Array(&a.ObservationIDs),
			pq.Array(&a.SentinelIDs),
			&severity,
			&status,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Severity = domain.Severity(severity)
		a.Status = domain.AlertStatus(status)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return out, nil
}
