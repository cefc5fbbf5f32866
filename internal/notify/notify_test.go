package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

type mockSMSSender struct {
	mock.Mock
}

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	args := m.Called(ctx, to, message)
	return args.Error(0)
}

type fakePublisher struct {
	topic   string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, _ byte, _ bool, payload []byte) error {
	f.topic = topic
	f.payload = payload
	return f.err
}

func testAlert() *domain.Alert {
	return &domain.Alert{
		ID:             "alert-1",
		Barangay:       "San Roque",
		Category:       "fever",
		ObservationIDs: []string{"o1", "o2", "o3"},
		SentinelIDs:    []string{"s1", "s2", "s3"},
		Severity:       domain.SeverityLow,
		Status:         domain.AlertActive,
		CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTwilioSender_SendSMS(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioSender(TwilioConfig{
		AccountSID: "AC1",
		AuthToken:  "secret",
		From:       "+15005550006",
		BaseURL:    srv.URL,
	}, zap.NewNop())

	err := s.SendSMS(context.Background(), "+639170000000", "hello")

	require.NoError(t, err)
	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", gotPath)
	assert.Equal(t, "AC1", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "+639170000000", gotTo)
	assert.Equal(t, "+15005550006", gotFrom)
	assert.Equal(t, "hello", gotBody)
}

func TestTwilioSender_APIError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer srv.Close()

	s := NewTwilioSender(TwilioConfig{AccountSID: "AC1", AuthToken: "x", BaseURL: srv.URL}, zap.NewNop())

	err := s.SendSMS(context.Background(), "bad", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid 'To' Phone Number")
	assert.Equal(t, 1, calls)
}

func TestMailer_SendOTP(t *testing.T) {
	sender := &mockEmailSender{}
	sender.On("SendEmail", mock.Anything, "a@b.com", "SentinelPH verification code",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "482913") && strings.Contains(body, "Ana") && strings.Contains(body, "10 minutes")
		})).Return(nil).Once()

	m := NewMailer(sender, "SentinelPH")
	require.NoError(t, m.SendOTP(context.Background(), "a@b.com", "Ana", "482913", 10*time.Minute))
	sender.AssertExpectations(t)
}

func TestMailer_EscapesDisplayName(t *testing.T) {
	sender := &mockEmailSender{}
	sender.On("SendEmail", mock.Anything, "a@b.com", mock.Anything,
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "&lt;script&gt;") && !strings.Contains(body, "<script>")
		})).Return(nil).Once()

	m := NewMailer(sender, "SentinelPH")
	require.NoError(t, m.SendWelcome(context.Background(), "a@b.com", "<script>alert(1)</script>"))
	sender.AssertExpectations(t)
}

func TestDispatcher_ContinuesAfterFailure(t *testing.T) {
	email := &mockEmailSender{}
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+639171111111", mock.Anything).Return(errors.New("twilio down")).Once()
	sms.On("SendSMS", mock.Anything, "+639172222222", mock.Anything).Return(nil).Once()
	email.On("SendEmail", mock.Anything, "bea@b.com", mock.Anything, mock.Anything).Return(nil).Once()
	email.On("SendEmail", mock.Anything, "cora@b.com", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	email.On("SendEmail", mock.Anything, "dina@b.com", mock.Anything, mock.Anything).Return(nil).Once()

	d := NewDispatcher(email, sms, "SentinelPH", 48*time.Hour, zap.NewNop())
	recipients := []*domain.User{
		{Email: "bea@b.com", PhoneNumber: "+639171111111"},
		{Email: "cora@b.com", PhoneNumber: "+639172222222"},
		{Email: "dina@b.com"},
	}

	results := d.NotifyBHWs(context.Background(), testAlert(), recipients)

	require.Len(t, results, 5)
	notified, failed := Counts(results)
	assert.Equal(t, 3, notified)
	assert.Equal(t, 2, failed)
	assert.Equal(t, "twilio down", results[0].Error)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestDispatcher_NoRecipients(t *testing.T) {
	d := NewDispatcher(&mockEmailSender{}, &mockSMSSender{}, "SentinelPH", 48*time.Hour, zap.NewNop())

	results := d.NotifyBHWs(context.Background(), testAlert(), nil)

	assert.Empty(t, results)
}

func TestAlertSMS(t *testing.T) {
	msg := alertSMS("SentinelPH", testAlert(), 48*time.Hour)
	assert.Equal(t, "SentinelPH ALERT (LOW): 3 sentinels reported fever in Brgy San Roque in the last 48h. Please check the dashboard.", msg)
}

func TestBroadcaster_Broadcast(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer c.Close()

	pub := &fakePublisher{}
	b := NewBroadcaster(pub, "sentinelph/", 1, c, "sentinelph:alerts", zap.NewNop())

	b.Broadcast(context.Background(), testAlert())

	assert.Equal(t, "sentinelph/alerts/San-Roque", pub.topic)
	var got domain.Alert
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "alert-1", got.ID)

	entries, err := c.XRange(context.Background(), "sentinelph:alerts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Values["data"], `"barangay":"San Roque"`)
}

func TestBroadcaster_SwallowsFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker gone")}
	b := NewBroadcaster(pub, "sentinelph", 1, nil, "", zap.NewNop())

	assert.NotPanics(t, func() { b.Broadcast(context.Background(), testAlert()) })

	var nilB *Broadcaster
	assert.NotPanics(t, func() { nilB.Broadcast(context.Background(), testAlert()) })
}
