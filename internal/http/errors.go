package httpapi

import (
	"errors"
	"net/http"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/otp"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/service"

	"go.uber.org/zap"
)

// statusFor maps a service error to an HTTP status. otpMissing is the status
// used for otp.ErrNotFound, which differs between verify and resend.
func statusFor(err error, otpMissing int) int {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, otp.ErrNotFound):
		return otpMissing
	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrExpired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrSentinelNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		if errors.Is(err, otp.ErrDelivery) {
			return "failed to send verification email"
		}
		return "internal server error"
	}
	switch {
	case errors.Is(err, otp.ErrNotFound):
		return "no pending verification for this email"
	case errors.Is(err, otp.ErrMismatch):
		return "invalid verification code"
	case errors.Is(err, otp.ErrExpired):
		return "verification code has expired"
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error, otpMissing int) {
	status := statusFor(err, otpMissing)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Warn("Request rejected", fields...)
	}
	writeJSON(w, status, Fail(clientMessage(err, status)))
}
