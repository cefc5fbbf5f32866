package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresUsersRepository users table on PostgreSQL.
type PostgresUsersRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresUsersRepository creates the repository.
func NewPostgresUsersRepository(db *sql.DB, logger *zap.Logger) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db, logger: logger}
}

const userColumns = `
	user_id::text,
	email,
	phone_number,
	display_name,
	role,
	barangay,
	purok,
	status,
	created_at,
	updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role, status string
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PhoneNumber,
		&u.DisplayName,
		&role,
		&u.Barangay,
		&u.Purok,
		&status,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	return &u, nil
}

// GetUser loads a user by id.
func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	query := `SELECT` + userColumns + `
		FROM users
		WHERE user_id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail loads a user by email (case-insensitive).
func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// CreateUser inserts the user, assigning an id when empty.
func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", fmt.Errorf("user is required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			user_id,
			email,
			phone_number,
			display_name,
			role,
			barangay,
			purok,
			status,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PhoneNumber,
		user.DisplayName,
		string(user.Role),
		user.Barangay,
		user.Purok,
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return "", fmt.Errorf("email %s already registered: %w", user.Email, ErrConflict)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("barangay", user.Barangay),
	)
	return user.ID, nil
}

// UpdateUserStatus applies an approval transition guarded on the current status.
func (r *PostgresUsersRepository) UpdateUserStatus(ctx context.Context, userID string, from, to domain.UserStatus) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	query := `
		UPDATE users
		SET status = $3,
		    updated_at = NOW()
		WHERE user_id = $1
		  AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query, userID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s is not %s: %w", userID, from, ErrConflict)
	}
	return nil
}

// ListApprovedBHWs returns approved BHWs of a barangay.
func (r *PostgresUsersRepository) ListApprovedBHWs(ctx context.Context, barangay string) ([]*domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE barangay = $1
		  AND role = $2
		  AND status = $3
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, barangay, string(domain.RoleBHW), string(domain.UserApproved))
	if err != nil {
		return nil, fmt.Errorf("failed to query BHWs: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return out, nil
}
