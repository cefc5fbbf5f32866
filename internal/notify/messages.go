package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

var otpEmailTmpl = template.Must(template.New("otp").Parse(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>{{.AppName}} verification code</h2>
<p>Hello {{.Name}},</p>
<p>Your verification code is:</p>
<p style="font-size:28px;font-weight:bold;letter-spacing:6px">{{.Code}}</p>
<p>This code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
</div>`))

var welcomeEmailTmpl = template.Must(template.New("welcome").Parse(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>Welcome to {{.AppName}}, {{.Name}}!</h2>
<p>Your email has been verified and your registration is now waiting for approval by your barangay administrator.</p>
<p>We will let you know once your account is approved.</p>
</div>`))

var alertEmailTmpl = template.Must(template.New("alert").Parse(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:0 auto">
<h2>{{.AppName}} community alert: {{.Severity}}</h2>
<p>{{.Sentinels}} sentinels reported <b>{{.Category}}</b> in Barangay {{.Barangay}} within the last {{.WindowHours}} hours ({{.Observations}} verified observations).</p>
<p>Please review the observations and coordinate a response.</p>
<p style="color:#888">Alert ID: {{.AlertID}}</p>
</div>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Mailer builds the application's emails on top of an EmailSender.
type Mailer struct {
	sender  EmailSender
	appName string
}

func NewMailer(sender EmailSender, appName string) *Mailer {
	return &Mailer{sender: sender, appName: appName}
}

// SendOTP mails a registration code.
func (m *Mailer) SendOTP(ctx context.Context, email, displayName, code string, ttl time.Duration) error {
	body, err := render(otpEmailTmpl, map[string]any{
		"AppName": m.appName,
		"Name":    displayName,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
	if err != nil {
		return err
	}
	return m.sender.SendEmail(ctx, email, m.appName+" verification code", body)
}

// SendWelcome mails the post-verification greeting.
func (m *Mailer) SendWelcome(ctx context.Context, email, displayName string) error {
	body, err := render(welcomeEmailTmpl, map[string]any{
		"AppName": m.appName,
		"Name":    displayName,
	})
	if err != nil {
		return err
	}
	return m.sender.SendEmail(ctx, email, "Welcome to "+m.appName, body)
}

func alertSubject(appName string, a *domain.Alert) string {
	return fmt.Sprintf("[%s] %s alert: %s in %s", appName, strings.ToUpper(string(a.Severity)), a.Category, a.Barangay)
}

func alertEmailBody(appName string, a *domain.Alert, window time.Duration) (string, error) {
	return render(alertEmailTmpl, map[string]any{
		"AppName":      appName,
		"Severity":     strings.ToUpper(string(a.Severity)),
		"Category":     a.Category,
		"Barangay":     a.Barangay,
		"Sentinels":    len(a.SentinelIDs),
		"Observations": len(a.ObservationIDs),
		"WindowHours":  int(window.Hours()),
		"AlertID":      a.ID,
	})
}

func alertSMS(appName string, a *domain.Alert, window time.Duration) string {
	return fmt.Sprintf("%s ALERT (%s): %d sentinels reported %s in Brgy %s in the last %dh. Please check the dashboard.",
		appName, strings.ToUpper(string(a.Severity)), len(a.SentinelIDs), a.Category, a.Barangay, int(window.Hours()))
}
