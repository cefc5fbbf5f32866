package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/service"

	"go.uber.org/zap"
)

// RegistrationService the OTP registration flow.
type RegistrationService interface {
	SendOTP(ctx context.Context, req service.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req service.VerifyOTPRequest) (*service.VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, req service.ResendOTPRequest) error
}

// ObservationService observation intake.
type ObservationService interface {
	ProcessObservation(ctx context.Context, req service.ObservationRequest) (*service.ObservationResponse, error)
}

// WebhookHandler endpoints called by the web client and the observation relay.
type WebhookHandler struct {
	registration RegistrationService
	observations ObservationService
	secret       string
	logger       *zap.Logger
}

func NewWebhookHandler(registration RegistrationService, observations ObservationService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		registration: registration,
		observations: observations,
		secret:       secret,
		logger:       logger,
	}
}

func (h *WebhookHandler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
}

func (h *WebhookHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req service.SendOTPRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.registration.SendOTP(r.Context(), req); err != nil {
		writeError(w, h.logger, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any]("OTP sent successfully", nil))
}

func (h *WebhookHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyOTPRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	resp, err := h.registration.VerifyOTP(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, Ok("Email verified and account created", resp))
}

func (h *WebhookHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req service.ResendOTPRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.registration.ResendOTP(r.Context(), req); err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any]("OTP resent successfully", nil))
}

// Observation verifies the HMAC signature over the raw body before decoding.
func (h *WebhookHandler) Observation(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, maxBodyBytes)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !VerifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("Rejected observation webhook: bad signature", zap.String("remote", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, Fail("invalid signature"))
		return
	}

	var req service.ObservationRequest
	if len(body) == 0 {
		h.badRequest(w, r, errEmptyBody)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	resp, err := h.observations.ProcessObservation(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Ok("Observation processed", resp))
}
