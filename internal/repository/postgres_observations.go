package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"go.uber.org/zap"
)

// PostgresObservationsRepository observations table on PostgreSQL.
type PostgresObservationsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresObservationsRepository creates the repository.
func NewPostgresObservationsRepository(db *sql.DB, logger *zap.Logger) *PostgresObservationsRepository {
	return &PostgresObservationsRepository{db: db, logger: logger}
}

const observationColumns = `
	observation_id,
	sentinel_id,
	barangay,
	category,
	obs_type,
	description,
	location,
	status,
	spam_score,
	reviewed_by,
	reviewed_at,
	created_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(row rowScanner) (*domain.Observation, error) {
	var o domain.Observation
	var status string
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	if err := row.Scan(
		&o.ID,
		&o.SentinelID,
		&o.Barangay,
		&o.Category,
		&o.Type,
		&o.Description,
		&o.Location,
		&status,
		&o.SpamScore,
		&reviewedBy,
		&reviewedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.ObservationStatus(status)
	if reviewedBy.Valid {
		o.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		o.ReviewedAt = &reviewedAt.Time
	}
	return &o, nil
}

// GetObservation loads one observation by id.
func (r *PostgresObservationsRepository) GetObservation(ctx context.Context, observationID string) (*domain.Observation, error) {
	if observationID == "" {
		return nil, fmt.Errorf("observation_id is required")
	}

	query := `SELECT` + observationColumns + `
		FROM observations
		WHERE observation_id = $1`

	o, err := scanObservation(r.db.QueryRowContext(ctx, query, observationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("observation %s: %w", observationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	return o, nil
}

// CreateObservation inserts a new observation.
func (r *PostgresObservationsRepository) CreateObservation(ctx context.Context, obs *domain.Observation) error {
	if obs == nil {
		return fmt.Errorf("observation is required")
	}

	query := `
		INSERT INTO observations (
			observation_id,
			sentinel_id,
			barangay,
			category,
			obs_type,
			description,
			location,
			status,
			spam_score,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (observation_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		obs.ID,
		obs.SentinelID,
		obs.Barangay,
		obs.Category,
		obs.Type,
		obs.Description,
		obs.Location,
		string(obs.Status),
		obs.SpamScore,
		obs.CreatedAt,
		obs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create observation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("observation %s already exists: %w", obs.ID, ErrConflict)
	}
	return nil
}

// SetCategorization assigns category/status once.
func (r *PostgresObservationsRepository) SetCategorization(ctx context.Context, observationID, category string, status domain.ObservationStatus, spamScore int) error {
	query := `
		UPDATE observations
		SET category = $2,
		    status = $3,
		    spam_score = $4,
		    updated_at = NOW()
		WHERE observation_id = $1
		  AND category = ''
	`

	res, err := r.db.ExecContext(ctx, query, observationID, category, string(status), spamScore)
	if err != nil {
		return fmt.Errorf("failed to categorize observation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to categorize observation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("observation %s already categorized or missing: %w", observationID, ErrConflict)
	}
	return nil
}

// ListInWindow returns the observations of a bucket, oldest first.
func (r *PostgresObservationsRepository) ListInWindow(ctx context.Context, barangay, category string, status domain.ObservationStatus, since time.Time) ([]*domain.Observation, error) {
	query := `SELECT` + observationColumns + `
		FROM observations
		WHERE barangay = $1
		  AND category = $2
		  AND status = $3
		  AND created_at > $4
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, barangay, category, string(status), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}
	return out, nil
}

// UpdateStatus applies a reviewer transition guarded on the current status.
func (r *PostgresObservationsRepository) UpdateStatus(ctx context.Context, observationID string, from, to domain.ObservationStatus, reviewer string, at time.Time) error {
	query := `
		UPDATE observations
		SET status = $3,
		    reviewed_by = $4,
		    reviewed_at = $5,
		    updated_at = $5
		WHERE observation_id = $1
		  AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query, observationID, string(from), string(to), reviewer, at)
	if err != nil {
		return fmt.Errorf("failed to update observation status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update observation status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("observation %s is not %s: %w", observationID, from, ErrConflict)
	}

	r.logger.Info("Observation reviewed",
		zap.String("observation_id", observationID),
		zap.String("status", string(to)),
		zap.String("reviewer", reviewer),
	)
	return nil
}
