package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/metrics"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/otp"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"

	"go.uber.org/zap"
)

// OTPManager the registration code lifecycle (satisfied by *otp.Manager).
type OTPManager interface {
	Issue(ctx context.Context, email, displayName string) (*domain.OtpRecord, error)
	Verify(ctx context.Context, email, code string) (*domain.OtpRecord, error)
	Resend(ctx context.Context, email string) (*domain.OtpRecord, error)
}

// WelcomeMailer sends the post-verification greeting.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email, displayName string) error
}

// RegistrationService gates account creation behind an emailed code.
type RegistrationService struct {
	otp     OTPManager
	users   repository.UsersRepository
	mailer  WelcomeMailer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRegistrationService(otpManager OTPManager, users repository.UsersRepository, mailer WelcomeMailer, m *metrics.Metrics, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		otp:     otpManager,
		users:   users,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
	}
}

type SendOTPRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type VerifyOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	Barangay    string `json:"barangay"`
	Purok       string `json:"purok"`
}

type VerifyOTPResponse struct {
	UserID string `json:"userId"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

func validateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", invalid("email", "is not a valid address")
	}
	return email, nil
}

func validCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func otpResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, otp.ErrNotFound):
		return "not_found"
	case errors.Is(err, otp.ErrMismatch):
		return "mismatch"
	case errors.Is(err, otp.ErrExpired):
		return "expired"
	case errors.Is(err, otp.ErrDelivery):
		return "delivery_failed"
	default:
		return "error"
	}
}

// SendOTP issues a code for an email that is not yet registered.
func (s *RegistrationService) SendOTP(ctx context.Context, req SendOTPRequest) error {
	email, err := validateEmail(req.Email)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("name", "is required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: %s", ErrEmailTaken, email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	_, err = s.otp.Issue(ctx, email, name)
	s.metrics.OTP("issue", otpResult(err))
	return err
}

// VerifyOTP consumes the code and creates the user in pending status.
func (s *RegistrationService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	// 1. Validate
	email, err := validateEmail(req.Email)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.OTP)
	if !validCode(code) {
		return nil, invalid("otp", "must be 6 digits")
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = domain.RoleSentinel
	}
	if role != domain.RoleSentinel && role != domain.RoleBHW {
		return nil, invalid("role", "must be sentinel or bhw")
	}
	barangay := domain.NormalizeBarangay(req.Barangay)
	if barangay == "" {
		return nil, invalid("barangay", "is required")
	}

	// 2. Consume the code
	rec, err := s.otp.Verify(ctx, email, code)
	s.metrics.OTP("verify", otpResult(err))
	if err != nil {
		return nil, err
	}

	// 3. Create the user
	user := &domain.User{
		Email:       email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		DisplayName: rec.DisplayName,
		Role:        role,
		Barangay:    barangay,
		Purok:       strings.TrimSpace(req.Purok),
		Status:      domain.UserPending,
	}
	userID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("User registered",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("barangay", barangay),
	)

	// 4. Welcome email, best effort
	if err := s.mailer.SendWelcome(ctx, email, rec.DisplayName); err != nil {
		s.logger.Warn("Failed to send welcome email", zap.String("user_id", userID), zap.Error(err))
	}

	return &VerifyOTPResponse{UserID: userID}, nil
}

// ResendOTP re-issues the code for an email with a pending record.
func (s *RegistrationService) ResendOTP(ctx context.Context, req ResendOTPRequest) error {
	email, err := validateEmail(req.Email)
	if err != nil {
		return err
	}
	_, err = s.otp.Resend(ctx, email)
	s.metrics.OTP("resend", otpResult(err))
	return err
}
