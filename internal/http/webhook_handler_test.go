package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/otp"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "relay-secret"

type mockRegistration struct {
	mock.Mock
}

func (m *mockRegistration) SendOTP(ctx context.Context, req service.SendOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockRegistration) VerifyOTP(ctx context.Context, req service.VerifyOTPRequest) (*service.VerifyOTPResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*service.VerifyOTPResponse)
	return resp, args.Error(1)
}

func (m *mockRegistration) ResendOTP(ctx context.Context, req service.ResendOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockObservations struct {
	mock.Mock
}

func (m *mockObservations) ProcessObservation(ctx context.Context, req service.ObservationRequest) (*service.ObservationResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*service.ObservationResponse)
	return resp, args.Error(1)
}

func newWebhookRouter(reg RegistrationService, obs ObservationService) *Router {
	r := NewRouter(nil, zap.NewNop())
	r.RegisterOpsRoutes()
	r.RegisterWebhookRoutes(NewWebhookHandler(reg, obs, testWebhookSecret, zap.NewNop()))
	return r
}

func postJSON(t *testing.T, h http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case []byte:
		raw = b
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result[json.RawMessage] {
	t.Helper()
	var res Result[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestWebhook_SendOTP(t *testing.T) {
	reg := new(mockRegistration)
	reg.On("SendOTP", mock.Anything, service.SendOTPRequest{Email: "ana@example.com", Name: "Ana"}).Return(nil)
	r := newWebhookRouter(reg, new(mockObservations))

	rec := postJSON(t, r, "/webhook/send-otp", map[string]string{"email": "ana@example.com", "name": "Ana"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "OTP sent successfully", res.Message)
	reg.AssertExpectations(t)
}

func TestWebhook_SendOTP_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "email", Message: "is required"}, http.StatusBadRequest},
		{"email taken", fmt.Errorf("%w: ana@example.com", service.ErrEmailTaken), http.StatusConflict},
		{"delivery", &otp.Error{Kind: otp.ErrDelivery, Email: "ana@example.com", Cause: errors.New("smtp down")}, http.StatusInternalServerError},
		{"store", errors.New("redis down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := new(mockRegistration)
			reg.On("SendOTP", mock.Anything, mock.Anything).Return(tc.err)
			r := newWebhookRouter(reg, new(mockObservations))

			rec := postJSON(t, r, "/webhook/send-otp", map[string]string{"email": "ana@example.com"}, nil)

			assert.Equal(t, tc.want, rec.Code)
			res := decodeResult(t, rec)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestWebhook_SendOTP_DeliveryMessage(t *testing.T) {
	reg := new(mockRegistration)
	reg.On("SendOTP", mock.Anything, mock.Anything).
		Return(&otp.Error{Kind: otp.ErrDelivery, Email: "ana@example.com", Cause: errors.New("smtp down")})
	r := newWebhookRouter(reg, new(mockObservations))

	rec := postJSON(t, r, "/webhook/send-otp", map[string]string{"email": "ana@example.com"}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to send verification email", decodeResult(t, rec).Error)
}

func TestWebhook_InvalidBody(t *testing.T) {
	r := newWebhookRouter(new(mockRegistration), new(mockObservations))

	for _, path := range []string{"/webhook/send-otp", "/webhook/verify-otp", "/webhook/resend-otp"} {
		rec := postJSON(t, r, path, "{not json", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)

		rec = postJSON(t, r, path, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	r := newWebhookRouter(new(mockRegistration), new(mockObservations))

	req := httptest.NewRequest(http.MethodGet, "/webhook/send-otp", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhook_VerifyOTP(t *testing.T) {
	reg := new(mockRegistration)
	reg.On("VerifyOTP", mock.Anything, mock.MatchedBy(func(req service.VerifyOTPRequest) bool {
		return req.Email == "ana@example.com" && req.OTP == "123456" && req.Barangay == "Lahug"
	})).Return(&service.VerifyOTPResponse{UserID: "user-1"}, nil)
	r := newWebhookRouter(reg, new(mockObservations))

	rec := postJSON(t, r, "/webhook/verify-otp", map[string]string{
		"email":    "ana@example.com",
		"otp":      "123456",
		"barangay": "Lahug",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res Result[service.VerifyOTPResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "user-1", res.Result.UserID)
}

func TestWebhook_VerifyOTP_Errors(t *testing.T) {
	cases := []struct {
		name    string
		kind    error
		want    int
		message string
	}{
		{"missing", otp.ErrNotFound, http.StatusBadRequest, "no pending verification for this email"},
		{"mismatch", otp.ErrMismatch, http.StatusBadRequest, "invalid verification code"},
		{"expired", otp.ErrExpired, http.StatusBadRequest, "verification code has expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := new(mockRegistration)
			reg.On("VerifyOTP", mock.Anything, mock.Anything).
				Return(nil, &otp.Error{Kind: tc.kind, Email: "ana@example.com"})
			r := newWebhookRouter(reg, new(mockObservations))

			rec := postJSON(t, r, "/webhook/verify-otp", map[string]string{"email": "ana@example.com", "otp": "000000"}, nil)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.message, decodeResult(t, rec).Error)
		})
	}
}

func TestWebhook_ResendOTP(t *testing.T) {
	reg := new(mockRegistration)
	reg.On("ResendOTP", mock.Anything, service.ResendOTPRequest{Email: "ana@example.com"}).Return(nil).Once()
	reg.On("ResendOTP", mock.Anything, service.ResendOTPRequest{Email: "ghost@example.com"}).
		Return(&otp.Error{Kind: otp.ErrNotFound, Email: "ghost@example.com"}).Once()
	r := newWebhookRouter(reg, new(mockObservations))

	rec := postJSON(t, r, "/webhook/resend-otp", map[string]string{"email": "ana@example.com"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP resent successfully", decodeResult(t, rec).Message)

	rec = postJSON(t, r, "/webhook/resend-otp", map[string]string{"email": "ghost@example.com"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	reg.AssertExpectations(t)
}

func TestWebhook_Observation_Signature(t *testing.T) {
	body := []byte(`{"observationId":"obs-1","sentinelId":"s-1","barangay":"Lahug","type":"fever"}`)

	t.Run("missing signature", func(t *testing.T) {
		obs := new(mockObservations)
		r := newWebhookRouter(new(mockRegistration), obs)

		rec := postJSON(t, r, "/webhook/observation", body, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		obs.AssertNotCalled(t, "ProcessObservation", mock.Anything, mock.Anything)
	})

	t.Run("wrong secret", func(t *testing.T) {
		obs := new(mockObservations)
		r := newWebhookRouter(new(mockRegistration), obs)

		rec := postJSON(t, r, "/webhook/observation", body, map[string]string{
			SignatureHeader: Sign("other-secret", body),
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		obs.AssertNotCalled(t, "ProcessObservation", mock.Anything, mock.Anything)
	})

	t.Run("valid signature", func(t *testing.T) {
		obs := new(mockObservations)
		obs.On("ProcessObservation", mock.Anything, service.ObservationRequest{
			ObservationID: "obs-1",
			SentinelID:    "s-1",
			Barangay:      "Lahug",
			Type:          "fever",
		}).Return(&service.ObservationResponse{ObservationID: "obs-1", Category: "fever", Status: "verified"}, nil)
		r := newWebhookRouter(new(mockRegistration), obs)

		rec := postJSON(t, r, "/webhook/observation", body, map[string]string{
			SignatureHeader: "sha256=" + Sign(testWebhookSecret, body),
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var res Result[service.ObservationResponse]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "fever", res.Result.Category)
		obs.AssertExpectations(t)
	})
}

func TestWebhook_Observation_Errors(t *testing.T) {
	body := []byte(`{"observationId":"obs-1","sentinelId":"missing","barangay":"Lahug","type":"fever"}`)
	headers := map[string]string{SignatureHeader: Sign(testWebhookSecret, body)}

	obs := new(mockObservations)
	obs.On("ProcessObservation", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: user missing", service.ErrSentinelNotFound)).Once()
	obs.On("ProcessObservation", mock.Anything, mock.Anything).
		Return(nil, errors.New("failed to store observation")).Once()
	r := newWebhookRouter(new(mockRegistration), obs)

	rec := postJSON(t, r, "/webhook/observation", body, headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postJSON(t, r, "/webhook/observation", body, headers)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeResult(t, rec).Error)

	bad := []byte(`{"observationId":`)
	rec = postJSON(t, r, "/webhook/observation", bad, map[string]string{SignatureHeader: Sign(testWebhookSecret, bad)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_EmptySecretRejectsAll(t *testing.T) {
	body := []byte(`{"observationId":"obs-1"}`)
	obs := new(mockObservations)
	r := NewRouter(nil, zap.NewNop())
	r.RegisterWebhookRoutes(NewWebhookHandler(new(mockRegistration), obs, "", zap.NewNop()))

	rec := postJSON(t, r, "/webhook/observation", body, map[string]string{SignatureHeader: Sign("", body)})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	obs.AssertNotCalled(t, "ProcessObservation", mock.Anything, mock.Anything)
}

func TestHealthz(t *testing.T) {
	r := newWebhookRouter(new(mockRegistration), new(mockObservations))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
