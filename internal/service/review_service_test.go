package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupReview(t *testing.T) (*ReviewService, *repository.MemoryObservationsRepo, *repository.MemoryUsersRepo, *repository.MemoryAlertsRepo) {
	t.Helper()
	obs := repository.NewMemoryObservationsRepo()
	users := repository.NewMemoryUsersRepo()
	alerts := repository.NewMemoryAlertsRepo()
	return NewReviewService(obs, users, alerts, zap.NewNop()), obs, users, alerts
}

func TestReviewObservation_Transitions(t *testing.T) {
	svc, obs, _, _ := setupReview(t)
	ctx := context.Background()
	require.NoError(t, obs.CreateObservation(ctx, &domain.Observation{ID: "o1", Category: "fever", Status: domain.ObservationPending}))
	require.NoError(t, obs.CreateObservation(ctx, &domain.Observation{ID: "o2", Category: "fever", Status: domain.ObservationSpam}))

	got, err := svc.ReviewObservation(ctx, "o1", domain.ObservationVerified, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ObservationVerified, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, "admin-1", *got.ReviewedBy)

	_, err = svc.ReviewObservation(ctx, "o1", domain.ObservationRejected, "admin-1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = svc.ReviewObservation(ctx, "o2", domain.ObservationVerified, "admin-1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = svc.ReviewObservation(ctx, "o1", domain.ObservationSpam, "admin-1")
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))

	_, err = svc.ReviewObservation(ctx, "missing", domain.ObservationVerified, "admin-1")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestApproveRejectUser(t *testing.T) {
	svc, _, users, _ := setupReview(t)
	ctx := context.Background()
	id, err := users.CreateUser(ctx, &domain.User{Email: "bea@b.com", Role: domain.RoleBHW, Status: domain.UserPending})
	require.NoError(t, err)

	require.NoError(t, svc.ApproveUser(ctx, id))
	u, _ := users.GetUser(ctx, id)
	assert.Equal(t, domain.UserApproved, u.Status)

	assert.True(t, errors.Is(svc.RejectUser(ctx, id), ErrInvalidTransition))
	assert.True(t, errors.Is(svc.ApproveUser(ctx, "missing"), repository.ErrNotFound))
}

func TestListAlerts_NormalizesFilters(t *testing.T) {
	svc, _, _, alerts := setupReview(t)
	ctx := context.Background()
	require.NoError(t, alerts.CreateAlert(ctx, &domain.Alert{ID: "a1", Barangay: "San Roque", Category: "fever", Status: domain.AlertActive, CreatedAt: time.Now()}))

	out, err := svc.ListAlerts(ctx, domain.AlertFilters{Barangay: "san roque", Category: " FEVER "})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = svc.ListAlerts(ctx, domain.AlertFilters{Status: "open"})
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}
