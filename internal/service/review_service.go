package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"

	"go.uber.org/zap"
)

// ReviewService admin review of observations, registrations and alerts.
type ReviewService struct {
	observations repository.ObservationsRepository
	users        repository.UsersRepository
	alerts       repository.AlertsRepository
	now          func() time.Time
	logger       *zap.Logger
}

func NewReviewService(observations repository.ObservationsRepository, users repository.UsersRepository, alerts repository.AlertsRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		observations: observations,
		users:        users,
		alerts:       alerts,
		now:          time.Now,
		logger:       logger,
	}
}

// ReviewObservation moves a pending observation to verified or rejected.
func (s *ReviewService) ReviewObservation(ctx context.Context, observationID string, status domain.ObservationStatus, reviewer string) (*domain.Observation, error) {
	if strings.TrimSpace(observationID) == "" {
		return nil, invalid("id", "is required")
	}
	if status != domain.ObservationVerified && status != domain.ObservationRejected {
		return nil, invalid("status", "must be verified or rejected")
	}

	obs, err := s.observations.GetObservation(ctx, observationID)
	if err != nil {
		return nil, err
	}
	if !obs.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: observation is %s", ErrInvalidTransition, obs.Status)
	}

	at := s.now()
	if err := s.observations.UpdateStatus(ctx, obs.ID, domain.ObservationPending, status, reviewer, at); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return nil, fmt.Errorf("failed to review observation: %w", err)
	}
	obs.Status = status
	obs.ReviewedBy = &reviewer
	obs.ReviewedAt = &at
	obs.UpdatedAt = at
	return obs, nil
}

// ApproveUser moves a pending registration to approved.
func (s *ReviewService) ApproveUser(ctx context.Context, userID string) error {
	return s.decideUser(ctx, userID, domain.UserApproved)
}

// RejectUser moves a pending registration to rejected.
func (s *ReviewService) RejectUser(ctx context.Context, userID string) error {
	return s.decideUser(ctx, userID, domain.UserRejected)
}

func (s *ReviewService) decideUser(ctx context.Context, userID string, to domain.UserStatus) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("id", "is required")
	}
	if err := s.users.UpdateUserStatus(ctx, userID, domain.UserPending, to); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return err
	}
	s.logger.Info("User registration decided",
		zap.String("user_id", userID),
		zap.String("status", string(to)),
	)
	return nil
}

// ListAlerts returns alerts matching filters, newest first.
func (s *ReviewService) ListAlerts(ctx context.Context, filters domain.AlertFilters) ([]*domain.Alert, error) {
	if filters.Barangay != "" {
		filters.Barangay = domain.NormalizeBarangay(filters.Barangay)
	}
	if filters.Category != "" {
		filters.Category = domain.NormalizeCategory(filters.Category)
	}
	if filters.Status != "" && filters.Status != domain.AlertActive && filters.Status != domain.AlertResolved {
		return nil, invalid("status", "must be active or resolved")
	}
	alerts, err := s.alerts.ListAlerts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
