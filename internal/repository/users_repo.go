package repository

import (
	"context"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

// UsersRepository persistence for registered users.
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateUser inserts the user and returns its id. ErrConflict on duplicate email.
	CreateUser(ctx context.Context, user *domain.User) (string, error)
	// UpdateUserStatus moves a user from one status to another; ErrConflict on mismatch.
	UpdateUserStatus(ctx context.Context, userID string, from, to domain.UserStatus) error
	// ListApprovedBHWs returns approved BHWs registered in barangay.
	ListApprovedBHWs(ctx context.Context, barangay string) ([]*domain.User, error)
}
