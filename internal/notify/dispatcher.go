package notify

import (
	"context"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"go.uber.org/zap"
)

// Channel a delivery channel.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Result outcome of one delivery attempt.
type Result struct {
	Recipient string  `json:"recipient"`
	Channel   Channel `json:"channel"`
	Success   bool    `json:"success"`
	Error     string  `json:"error,omitempty"`
}

// Counts returns the number of successful and failed results.
func Counts(results []Result) (notified, failed int) {
	for _, r := range results {
		if r.Success {
			notified++
		} else {
			failed++
		}
	}
	return notified, failed
}

// Dispatcher fans alert notifications out to BHWs.
type Dispatcher struct {
	email   EmailSender
	sms     SMSSender
	appName string
	window  time.Duration
	logger  *zap.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, appName string, window time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		email:   email,
		sms:     sms,
		appName: appName,
		window:  window,
		logger:  logger,
	}
}

// NotifyBHWs sends the alert to every recipient: SMS when a phone number is
// set, email when an email is set. A failed delivery is recorded and the loop
// continues.
func (d *Dispatcher) NotifyBHWs(ctx context.Context, alert *domain.Alert, recipients []*domain.User) []Result {
	var results []Result
	if len(recipients) == 0 {
		return results
	}

	smsText := alertSMS(d.appName, alert, d.window)
	subject := alertSubject(d.appName, alert)
	body, bodyErr := alertEmailBody(d.appName, alert, d.window)

	for _, bhw := range recipients {
		if bhw.PhoneNumber != "" {
			results = append(results, d.attempt(bhw.PhoneNumber, ChannelSMS, func() error {
				return d.sms.SendSMS(ctx, bhw.PhoneNumber, smsText)
			}))
		}
		if bhw.Email != "" {
			results = append(results, d.attempt(bhw.Email, ChannelEmail, func() error {
				if bodyErr != nil {
					return bodyErr
				}
				return d.email.SendEmail(ctx, bhw.Email, subject, body)
			}))
		}
	}

	notified, failed := Counts(results)
	d.logger.Info("Alert notifications dispatched",
		zap.String("alert_id", alert.ID),
		zap.String("barangay", alert.Barangay),
		zap.Int("recipients", len(recipients)),
		zap.Int("notified", notified),
		zap.Int("failed", failed),
	)
	return results
}

func (d *Dispatcher) attempt(recipient string, ch Channel, send func() error) Result {
	if err := send(); err != nil {
		d.logger.Warn("Alert notification failed",
			zap.String("recipient", recipient),
			zap.String("channel", string(ch)),
			zap.Error(err),
		)
		return Result{Recipient: recipient, Channel: ch, Error: err.Error()}
	}
	return Result{Recipient: recipient, Channel: ch, Success: true}
}
