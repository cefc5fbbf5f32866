package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

const DefaultTwilioBaseURL = "https://api.twilio.com"

// TwilioConfig credentials for the Twilio Messages API.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

// twilioMessage the subset of the Messages API response we read.
type twilioMessage struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// TwilioSender sends SMS through Twilio's REST API.
type TwilioSender struct {
	httpClient *resty.Client
	cfg        TwilioConfig
	logger     *zap.Logger
}

func NewTwilioSender(cfg TwilioConfig, logger *zap.Logger) *TwilioSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTwilioBaseURL
	}
	// no retries: a retried POST can deliver the same SMS twice
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15*time.Second).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &TwilioSender{httpClient: client, cfg: cfg, logger: logger}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, message string) error {
	var result twilioMessage
	var apiErr twilioError
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetPathParam("sid", s.cfg.AccountSID).
		SetFormData(map[string]string{
			"To":   to,
			"From": s.cfg.From,
			"Body": message,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		s.logger.Error("Twilio API call failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to call Twilio API: %w", err)
	}

	if resp.IsError() {
		s.logger.Error("Twilio API returned error",
			zap.String("to", to),
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("code", apiErr.Code),
			zap.String("msg", apiErr.Message),
		)
		return fmt.Errorf("Twilio API error: %s (status: %d)", apiErr.Message, resp.StatusCode())
	}

	s.logger.Debug("SMS queued",
		zap.String("to", to),
		zap.String("sid", result.SID),
		zap.String("status", result.Status),
	)
	return nil
}

// LogSMSSender only logs; used when Twilio is not configured.
type LogSMSSender struct {
	logger *zap.Logger
}

func NewLogSMSSender(logger *zap.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) SendSMS(_ context.Context, to, message string) error {
	s.logger.Info("SMS (not sent, Twilio disabled)",
		zap.String("to", to),
		zap.Int("length", len(message)),
	)
	return nil
}
