package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/categorize"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/evaluator"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/metrics"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"

	"go.uber.org/zap"
)

const uncategorized = "uncategorized"

// AlertEvaluator decides whether an observation completes an alert (satisfied by *evaluator.Evaluator).
type AlertEvaluator interface {
	Evaluate(ctx context.Context, obs *domain.Observation) (*evaluator.Result, error)
}

// ObservationService runs intake for webhook-delivered observations.
type ObservationService struct {
	observations repository.ObservationsRepository
	users        repository.UsersRepository
	categorizer  categorize.Categorizer
	evaluator    AlertEvaluator
	metrics      *metrics.Metrics
	now          func() time.Time
	logger       *zap.Logger
}

func NewObservationService(
	observations repository.ObservationsRepository,
	users repository.UsersRepository,
	categorizer categorize.Categorizer,
	eval AlertEvaluator,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ObservationService {
	if categorizer == nil {
		categorizer = categorize.Noop{}
	}
	return &ObservationService{
		observations: observations,
		users:        users,
		categorizer:  categorizer,
		evaluator:    eval,
		metrics:      m,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock replaces the clock.
func (s *ObservationService) WithClock(now func() time.Time) *ObservationService {
	s.now = now
	return s
}

type ObservationRequest struct {
	ObservationID string `json:"observationId"`
	SentinelID    string `json:"sentinelId"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Location      string `json:"location"`
	Barangay      string `json:"barangay"`
}

type ObservationResponse struct {
	ObservationID string                   `json:"observationId"`
	Category      string                   `json:"category"`
	Status        domain.ObservationStatus `json:"status"`
	AlertRaised   bool                     `json:"alertRaised"`
	Alert         *domain.Alert            `json:"alert,omitempty"`
	Notified      int                      `json:"notified"`
	Failed        int                      `json:"failed"`
}

func (r *ObservationRequest) validate() error {
	r.ObservationID = strings.TrimSpace(r.ObservationID)
	r.SentinelID = strings.TrimSpace(r.SentinelID)
	r.Barangay = domain.NormalizeBarangay(r.Barangay)
	if r.ObservationID == "" {
		return invalid("observationId", "is required")
	}
	if r.SentinelID == "" {
		return invalid("sentinelId", "is required")
	}
	if r.Barangay == "" {
		return invalid("barangay", "is required")
	}
	if strings.TrimSpace(r.Type) == "" && strings.TrimSpace(r.Description) == "" {
		return invalid("type", "type or description is required")
	}
	return nil
}

// ProcessObservation categorizes a new observation once, stores it and runs
// alert evaluation. A redelivered observation returns its stored values and
// is not evaluated again.
func (s *ObservationService) ProcessObservation(ctx context.Context, req ObservationRequest) (*ObservationResponse, error) {
	// 1. Validate
	if err := req.validate(); err != nil {
		return nil, err
	}

	// 2. Sentinel must exist
	if _, err := s.users.GetUser(ctx, req.SentinelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrSentinelNotFound, err)
		}
		return nil, fmt.Errorf("failed to load sentinel: %w", err)
	}

	// 3. Redelivery keeps the stored categorization
	existing, err := s.observations.GetObservation(ctx, req.ObservationID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load observation: %w", err)
	}
	if existing != nil && existing.Categorized() {
		s.logger.Info("Observation already processed",
			zap.String("observation_id", existing.ID),
			zap.String("status", string(existing.Status)),
		)
		return &ObservationResponse{
			ObservationID: existing.ID,
			Category:      existing.Category,
			Status:        existing.Status,
		}, nil
	}

	// 4. Categorize
	category, spam := s.categorize(ctx, req)
	status := domain.ObservationPending
	spamScore := 0
	if spam {
		status = domain.ObservationSpam
		spamScore = 1
	}

	// 5. Persist
	obs, err := s.store(ctx, req, existing, category, status, spamScore)
	if err != nil {
		return nil, err
	}
	s.metrics.Observation(string(obs.Status))

	resp := &ObservationResponse{
		ObservationID: obs.ID,
		Category:      obs.Category,
		Status:        obs.Status,
	}
	if obs.Status == domain.ObservationSpam {
		return resp, nil
	}

	// 6. Evaluate
	result, err := s.evaluator.Evaluate(ctx, obs)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate observation: %w", err)
	}
	resp.AlertRaised = result.AlertRaised
	resp.Alert = result.Alert
	resp.Notified = result.Notified
	resp.Failed = result.Failed
	return resp, nil
}

func (s *ObservationService) categorize(ctx context.Context, req ObservationRequest) (string, bool) {
	text := strings.TrimSpace(req.Description)
	if text == "" {
		text = req.Type
	}
	category, spam, err := s.categorizer.Categorize(ctx, text, req.Type)
	if err != nil {
		s.logger.Warn("Categorization failed, using reported type",
			zap.String("observation_id", req.ObservationID),
			zap.Error(err),
		)
		category, spam, _ = categorize.Noop{}.Categorize(ctx, text, req.Type)
	}
	if category == "" {
		category = uncategorized
	}
	return category, spam
}

func (s *ObservationService) store(ctx context.Context, req ObservationRequest, existing *domain.Observation, category string, status domain.ObservationStatus, spamScore int) (*domain.Observation, error) {
	if existing != nil {
		if err := s.observations.SetCategorization(ctx, existing.ID, category, status, spamScore); err != nil {
			return nil, fmt.Errorf("failed to categorize observation: %w", err)
		}
		existing.Category = category
		existing.Status = status
		existing.SpamScore = spamScore
		return existing, nil
	}

	now := s.now()
	obs := &domain.Observation{
		ID:          req.ObservationID,
		SentinelID:  req.SentinelID,
		Barangay:    req.Barangay,
		Category:    category,
		Type:        strings.TrimSpace(req.Type),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Status:      status,
		SpamScore:   spamScore,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.observations.CreateObservation(ctx, obs); err != nil {
		return nil, fmt.Errorf("failed to store observation: %w", err)
	}
	s.logger.Info("Observation stored",
		zap.String("observation_id", obs.ID),
		zap.String("barangay", obs.Barangay),
		zap.String("category", obs.Category),
		zap.String("status", string(obs.Status)),
	)
	return obs, nil
}
