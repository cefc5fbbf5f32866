package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"go.uber.org/zap"
)

// ReviewService admin review operations.
type ReviewService interface {
	ReviewObservation(ctx context.Context, observationID string, status domain.ObservationStatus, reviewer string) (*domain.Observation, error)
	ApproveUser(ctx context.Context, userID string) error
	RejectUser(ctx context.Context, userID string) error
	ListAlerts(ctx context.Context, filters domain.AlertFilters) ([]*domain.Alert, error)
}

// AdminHandler admin API.
type AdminHandler struct {
	review ReviewService
	logger *zap.Logger
}

func NewAdminHandler(review ReviewService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{review: review, logger: logger}
}

// alertFilters reads barangay, category, status, since (RFC3339 or a duration like 24h) and limit.
func alertFilters(r *http.Request) (domain.AlertFilters, error) {
	q := r.URL.Query()
	f := domain.AlertFilters{
		Barangay: strings.TrimSpace(q.Get("barangay")),
		Category: strings.TrimSpace(q.Get("category")),
		Status:   domain.AlertStatus(strings.TrimSpace(q.Get("status"))),
		Limit:    parseInt(q.Get("limit"), 0),
	}
	if s := strings.TrimSpace(q.Get("since")); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			f.Since = &t
		} else if d, err := time.ParseDuration(s); err == nil && d > 0 {
			t := time.Now().Add(-d)
			f.Since = &t
		} else {
			return f, fmt.Errorf("since must be RFC3339 or a duration")
		}
	}
	return f, nil
}

func (h *AdminHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filters, err := alertFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	alerts, err := h.review.ListAlerts(r.Context(), filters)
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}
	if alerts == nil {
		alerts = []*domain.Alert{}
	}
	writeJSON(w, http.StatusOK, Ok("ok", map[string]any{
		"items": alerts,
		"total": len(alerts),
	}))
}

func (h *AdminHandler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	filters, err := alertFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	alerts, err := h.review.ListAlerts(r.Context(), filters)
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}
	data, err := GenerateAlertsExport(alerts)
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("alerts_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type reviewRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) ReviewObservation(w http.ResponseWriter, r *http.Request, observationID string) {
	var req reviewRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	reviewer, _ := GetUserID(r.Context())

	obs, err := h.review.ReviewObservation(r.Context(), observationID, domain.ObservationStatus(strings.ToLower(strings.TrimSpace(req.Status))), reviewer)
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Ok("Observation reviewed", obs))
}

// DecideUser approves or rejects a pending registration; action is "approve" or "reject".
func (h *AdminHandler) DecideUser(w http.ResponseWriter, r *http.Request, userID, action string) {
	var err error
	message := "User approved"
	if action == "approve" {
		err = h.review.ApproveUser(r.Context(), userID)
	} else {
		err = h.review.RejectUser(r.Context(), userID)
		message = "User rejected"
	}
	if err != nil {
		writeError(w, h.logger, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Ok(message, map[string]string{"userId": userID}))
}
