package otp

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"go.uber.org/zap"
)

// Mailer delivers a freshly issued code.
type Mailer interface {
	SendOTP(ctx context.Context, email, displayName, code string, ttl time.Duration) error
}

// Manager issues, verifies and re-sends registration codes keyed by email.
type Manager struct {
	store     Store
	mailer    Mailer
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	newCode   func() (string, error)
	logger    *zap.Logger
}

// NewManager creates a manager. ttl is the code validity window; retention is how
// long an expired record stays around so verify can still report it as expired.
func NewManager(store Store, mailer Mailer, ttl, retention time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		mailer:    mailer,
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
		newCode:   randomCode,
		logger:    logger,
	}
}

// WithClock replaces the clock.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// TTL returns the code validity window.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue stores a fresh code for email, replacing any live one, and mails it.
// A delivery failure is returned as ErrDelivery; the stored record is kept.
func (m *Manager) Issue(ctx context.Context, email, displayName string) (*domain.OtpRecord, error) {
	email = normalizeEmail(email)

	code, err := m.newCode()
	if err != nil {
		return nil, err
	}
	now := m.now()
	rec := &domain.OtpRecord{
		Email:       email,
		Code:        code,
		DisplayName: displayName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, rec, m.ttl+m.retention); err != nil {
		return nil, err
	}

	if err := m.mailer.SendOTP(ctx, email, displayName, code, m.ttl); err != nil {
		m.logger.Error("Failed to deliver OTP",
			zap.String("email", email),
			zap.Error(err),
		)
		return rec, newError(ErrDelivery, email, err)
	}

	m.logger.Info("OTP issued",
		zap.String("email", email),
		zap.Time("expires_at", rec.ExpiresAt),
	)
	return rec, nil
}

// Verify checks code against the stored record. On success the record is consumed
// and returned. An expired record is deleted; a mismatch leaves the record as is.
func (m *Manager) Verify(ctx context.Context, email, code string) (*domain.OtpRecord, error) {
	email = normalizeEmail(email)

	rec, err := m.store.Load(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, newError(ErrNotFound, email, nil)
	}

	if rec.Expired(m.now()) {
		if err := m.store.Delete(ctx, email); err != nil {
			m.logger.Warn("Failed to delete expired OTP", zap.String("email", email), zap.Error(err))
		}
		return nil, newError(ErrExpired, email, nil)
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(strings.TrimSpace(code))) != 1 {
		return nil, newError(ErrMismatch, email, nil)
	}

	if err := m.store.Delete(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}
	m.logger.Info("OTP verified", zap.String("email", email))
	return rec, nil
}

// Resend re-issues a code for an email that already has a record, keeping its display name.
func (m *Manager) Resend(ctx context.Context, email string) (*domain.OtpRecord, error) {
	email = normalizeEmail(email)

	prev, err := m.store.Load(ctx, email)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, newError(ErrNotFound, email, nil)
	}
	return m.Issue(ctx, email, prev.DisplayName)
}
