package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/metrics"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/notify"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultWindow       = 48 * time.Hour
	DefaultMinSentinels = 3
)

// Notifier fans an alert out to BHWs.
type Notifier interface {
	NotifyBHWs(ctx context.Context, alert *domain.Alert, recipients []*domain.User) []notify.Result
}

// Broadcaster publishes a created alert to downstream consumers.
type Broadcaster interface {
	Broadcast(ctx context.Context, alert *domain.Alert)
}

// Options evaluation rule parameters. Zero values fall back to defaults.
type Options struct {
	Window       time.Duration
	MinSentinels int
	Severity     SeverityThresholds
}

// Result outcome of one evaluation.
type Result struct {
	AlertRaised bool
	Alert       *domain.Alert
	Notified    int
	Failed      int
	Deliveries  []notify.Result
}

// Evaluator decides whether an observation completes a community alert.
type Evaluator struct {
	observations repository.ObservationsRepository
	alerts       repository.AlertsRepository
	users        repository.UsersRepository
	notifier     Notifier
	broadcaster  Broadcaster
	metrics      *metrics.Metrics
	opts         Options
	now          func() time.Time
	logger       *zap.Logger
}

func NewEvaluator(
	observations repository.ObservationsRepository,
	alerts repository.AlertsRepository,
	users repository.UsersRepository,
	notifier Notifier,
	broadcaster Broadcaster,
	opts Options,
	logger *zap.Logger,
) *Evaluator {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.MinSentinels <= 0 {
		opts.MinSentinels = DefaultMinSentinels
	}
	if opts.Severity == (SeverityThresholds{}) {
		opts.Severity = DefaultSeverityThresholds
	}
	return &Evaluator{
		observations: observations,
		alerts:       alerts,
		users:        users,
		notifier:     notifier,
		broadcaster:  broadcaster,
		opts:         opts,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock replaces the clock.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// WithMetrics attaches collectors.
func (e *Evaluator) WithMetrics(m *metrics.Metrics) *Evaluator {
	e.metrics = m
	return e
}

// Evaluate counts distinct sentinels with verified observations in obs's
// barangay+category bucket inside the trailing window, plus obs itself. When
// the count reaches the threshold an alert is persisted and BHWs of the
// barangay are notified. Nothing is written otherwise.
func (e *Evaluator) Evaluate(ctx context.Context, obs *domain.Observation) (*Result, error) {
	if obs == nil {
		return nil, fmt.Errorf("observation is required")
	}
	if obs.Status == domain.ObservationSpam || obs.Status == domain.ObservationRejected {
		return &Result{}, nil
	}

	now := e.now()
	since := now.Add(-e.opts.Window)

	// 1. Matching verified observations
	matches, err := e.observations.ListInWindow(ctx, obs.Barangay, obs.Category, domain.ObservationVerified, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query matching observations: %w", err)
	}
	matches = withObservation(matches, obs, since)

	// 2. Threshold on distinct sentinels
	sentinels := DistinctSentinels(matches)
	if len(sentinels) < e.opts.MinSentinels {
		e.logger.Debug("Alert threshold not reached",
			zap.String("observation_id", obs.ID),
			zap.String("barangay", obs.Barangay),
			zap.String("category", obs.Category),
			zap.Int("sentinels", len(sentinels)),
		)
		return &Result{}, nil
	}

	// 3. Build and persist
	alert := NewAlertBuilder(obs.Barangay, obs.Category).
		BuildAlert(matches, e.opts.Severity.Classify(len(matches)), now)
	if err := e.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	e.metrics.AlertRaised(string(alert.Severity))
	e.logger.Info("Alert raised",
		zap.String("alert_id", alert.ID),
		zap.String("barangay", alert.Barangay),
		zap.String("category", alert.Category),
		zap.String("severity", string(alert.Severity)),
		zap.Int("observations", len(alert.ObservationIDs)),
		zap.Int("sentinels", len(alert.SentinelIDs)),
	)

	result := &Result{AlertRaised: true, Alert: alert}

	// 4. Fan out; failures from here on never undo the alert
	if e.broadcaster != nil {
		e.broadcaster.Broadcast(ctx, alert)
	}
	bhws, err := e.users.ListApprovedBHWs(ctx, alert.Barangay)
	if err != nil {
		e.logger.Error("Failed to load BHWs for alert",
			zap.String("alert_id", alert.ID),
			zap.Error(err),
		)
		return result, nil
	}
	if e.notifier != nil {
		result.Deliveries = e.notifier.NotifyBHWs(ctx, alert, bhws)
		result.Notified, result.Failed = notify.Counts(result.Deliveries)
		for _, d := range result.Deliveries {
			e.metrics.Notification(string(d.Channel), d.Success)
		}
	}
	return result, nil
}

// withObservation appends obs to matches unless it is already there or outside the window.
func withObservation(matches []*domain.Observation, obs *domain.Observation, since time.Time) []*domain.Observation {
	for _, m := range matches {
		if m.ID == obs.ID {
			return matches
		}
	}
	if !obs.CreatedAt.IsZero() && !obs.CreatedAt.After(since) {
		return matches
	}
	return append(matches, obs)
}
