package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/evaluator"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/notify"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCategorizer struct {
	mock.Mock
}

func (m *mockCategorizer) Categorize(ctx context.Context, text, fallbackType string) (string, bool, error) {
	args := m.Called(ctx, text, fallbackType)
	return args.String(0), args.Bool(1), args.Error(2)
}

type mockEvaluator struct {
	mock.Mock
}

func (m *mockEvaluator) Evaluate(ctx context.Context, obs *domain.Observation) (*evaluator.Result, error) {
	args := m.Called(ctx, obs)
	res, _ := args.Get(0).(*evaluator.Result)
	return res, args.Error(1)
}

type observationFixture struct {
	obs   *repository.MemoryObservationsRepo
	users *repository.MemoryUsersRepo
	alert *repository.MemoryAlertsRepo
	ids   []string
}

func setupObservationFixture(t *testing.T, sentinels int) *observationFixture {
	t.Helper()
	f := &observationFixture{
		obs:   repository.NewMemoryObservationsRepo(),
		users: repository.NewMemoryUsersRepo(),
		alert: repository.NewMemoryAlertsRepo(),
	}
	for i := 0; i < sentinels; i++ {
		id, err := f.users.CreateUser(context.Background(), &domain.User{
			Email:    string(rune('a'+i)) + "@b.com",
			Role:     domain.RoleSentinel,
			Barangay: "San Roque",
			Status:   domain.UserApproved,
		})
		require.NoError(t, err)
		f.ids = append(f.ids, id)
	}
	return f
}

func TestProcessObservation_RaisesAlertOnThirdSentinel(t *testing.T) {
	f := setupObservationFixture(t, 3)
	ctx := context.Background()
	eval := evaluator.NewEvaluator(f.obs, f.alert, f.users, notify.NewDispatcher(nil, nil, "SentinelPH", time.Hour, zap.NewNop()), nil, evaluator.Options{}, zap.NewNop())
	svc := NewObservationService(f.obs, f.users, nil, eval, nil, zap.NewNop())

	for i, id := range f.ids[:2] {
		resp, err := svc.ProcessObservation(ctx, ObservationRequest{
			ObservationID: "o" + string(rune('1'+i)),
			SentinelID:    id,
			Type:          "Fever",
			Barangay:      "san roque",
		})
		require.NoError(t, err)
		assert.False(t, resp.AlertRaised)
		require.NoError(t, f.obs.UpdateStatus(ctx, resp.ObservationID, domain.ObservationPending, domain.ObservationVerified, "admin", time.Now()))
	}

	resp, err := svc.ProcessObservation(ctx, ObservationRequest{
		ObservationID: "o3",
		SentinelID:    f.ids[2],
		Type:          "fever",
		Description:   "mataas na lagnat",
		Barangay:      "San Roque",
	})

	require.NoError(t, err)
	assert.Equal(t, "fever", resp.Category)
	assert.Equal(t, domain.ObservationPending, resp.Status)
	require.True(t, resp.AlertRaised)
	assert.Equal(t, domain.SeverityLow, resp.Alert.Severity)
	assert.Equal(t, "San Roque", resp.Alert.Barangay)
	assert.Equal(t, 0, resp.Notified)
}

func TestProcessObservation_Validation(t *testing.T) {
	f := setupObservationFixture(t, 1)
	svc := NewObservationService(f.obs, f.users, nil, &mockEvaluator{}, nil, zap.NewNop())

	cases := []ObservationRequest{
		{SentinelID: f.ids[0], Type: "fever", Barangay: "San Roque"},
		{ObservationID: "o1", Type: "fever", Barangay: "San Roque"},
		{ObservationID: "o1", SentinelID: f.ids[0], Type: "fever"},
		{ObservationID: "o1", SentinelID: f.ids[0], Barangay: "San Roque"},
	}
	for _, req := range cases {
		_, err := svc.ProcessObservation(context.Background(), req)
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr), "%+v", req)
	}
}

func TestProcessObservation_UnknownSentinel(t *testing.T) {
	f := setupObservationFixture(t, 0)
	svc := NewObservationService(f.obs, f.users, nil, &mockEvaluator{}, nil, zap.NewNop())

	_, err := svc.ProcessObservation(context.Background(), ObservationRequest{
		ObservationID: "o1", SentinelID: "ghost", Type: "fever", Barangay: "San Roque",
	})

	assert.True(t, errors.Is(err, ErrSentinelNotFound))
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestProcessObservation_SpamSkipsEvaluation(t *testing.T) {
	f := setupObservationFixture(t, 1)
	cat := &mockCategorizer{}
	cat.On("Categorize", mock.Anything, "buy cheap meds", "fever").Return("fever", true, nil).Once()
	eval := &mockEvaluator{}
	svc := NewObservationService(f.obs, f.users, cat, eval, nil, zap.NewNop())

	resp, err := svc.ProcessObservation(context.Background(), ObservationRequest{
		ObservationID: "o1", SentinelID: f.ids[0], Type: "fever", Description: "buy cheap meds", Barangay: "San Roque",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ObservationSpam, resp.Status)
	stored, err := f.obs.GetObservation(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SpamScore)
	eval.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
}

func TestProcessObservation_CategorizerErrorFallsBack(t *testing.T) {
	f := setupObservationFixture(t, 1)
	cat := &mockCategorizer{}
	cat.On("Categorize", mock.Anything, mock.Anything, mock.Anything).Return("", false, errors.New("openai timeout"))
	eval := &mockEvaluator{}
	eval.On("Evaluate", mock.Anything, mock.Anything).Return(&evaluator.Result{}, nil).Once()
	svc := NewObservationService(f.obs, f.users, cat, eval, nil, zap.NewNop())

	resp, err := svc.ProcessObservation(context.Background(), ObservationRequest{
		ObservationID: "o1", SentinelID: f.ids[0], Type: " Cough ", Barangay: "San Roque",
	})

	require.NoError(t, err)
	assert.Equal(t, "cough", resp.Category)
	assert.Equal(t, domain.ObservationPending, resp.Status)
	eval.AssertExpectations(t)
}

func TestProcessObservation_RedeliveryKeepsCategory(t *testing.T) {
	f := setupObservationFixture(t, 1)
	eval := &mockEvaluator{}
	eval.On("Evaluate", mock.Anything, mock.Anything).Return(&evaluator.Result{}, nil).Once()
	svc := NewObservationService(f.obs, f.users, nil, eval, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ProcessObservation(ctx, ObservationRequest{ObservationID: "o1", SentinelID: f.ids[0], Type: "fever", Barangay: "San Roque"})
	require.NoError(t, err)

	resp, err := svc.ProcessObservation(ctx, ObservationRequest{ObservationID: "o1", SentinelID: f.ids[0], Type: "cough", Barangay: "San Roque"})

	require.NoError(t, err)
	assert.Equal(t, "fever", resp.Category)
	assert.False(t, resp.AlertRaised)
	eval.AssertNumberOfCalls(t, "Evaluate", 1)
}

func TestProcessObservation_EvaluatorError(t *testing.T) {
	f := setupObservationFixture(t, 1)
	eval := &mockEvaluator{}
	eval.On("Evaluate", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	svc := NewObservationService(f.obs, f.users, nil, eval, nil, zap.NewNop())

	_, err := svc.ProcessObservation(context.Background(), ObservationRequest{ObservationID: "o1", SentinelID: f.ids[0], Type: "fever", Barangay: "San Roque"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
