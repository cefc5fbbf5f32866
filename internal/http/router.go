package httpapi

import (
	"net/http"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/metrics"

	"go.uber.org/zap"
)

// Router wraps http.ServeMux; every route is timed and counted.
type Router struct {
	mux     *http.ServeMux
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRouter(m *metrics.Metrics, logger *zap.Logger) *Router {
	return &Router{
		mux:     http.NewServeMux(),
		metrics: m,
		logger:  logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, r.instrument(pattern, h))
}

// HandleHandler registers a plain http.Handler without instrumentation (metrics endpoint).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, req)
		r.metrics.ObserveHTTP(route, rec.status, time.Since(start))
	}
}

// RegisterOpsRoutes health and metrics.
func (r *Router) RegisterOpsRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, Ok("ok", map[string]string{"status": "healthy"}))
	})
	if r.metrics != nil {
		r.HandleHandler("/metrics", r.metrics.Handler())
	}
}

// RegisterWebhookRoutes registration and observation webhooks.
func (r *Router) RegisterWebhookRoutes(h *WebhookHandler) {
	r.Handle("/webhook/send-otp", postOnly(h.SendOTP))
	r.Handle("/webhook/verify-otp", postOnly(h.VerifyOTP))
	r.Handle("/webhook/resend-otp", postOnly(h.ResendOTP))
	r.Handle("/webhook/observation", postOnly(h.Observation))
}

// RegisterAdminRoutes admin API; every route requires an admin bearer token.
func (r *Router) RegisterAdminRoutes(h *AdminHandler, auth *Authenticator) {
	r.Handle("/api/v1/alerts", auth.RequireRole(RoleAdmin, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListAlerts(w, req)
	}))
	r.Handle("/api/v1/alerts/export", auth.RequireRole(RoleAdmin, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportAlerts(w, req)
	}))

	// observations/{id}/review
	r.Handle("/api/v1/observations/", auth.RequireRole(RoleAdmin, func(w http.ResponseWriter, req *http.Request) {
		id, action, ok := splitIDAction(req.URL.Path, "/api/v1/observations/")
		if !ok || action != "review" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ReviewObservation(w, req, id)
	}))

	// users/{id}/approve | users/{id}/reject
	r.Handle("/api/v1/users/", auth.RequireRole(RoleAdmin, func(w http.ResponseWriter, req *http.Request) {
		id, action, ok := splitIDAction(req.URL.Path, "/api/v1/users/")
		if !ok || (action != "approve" && action != "reject") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.DecideUser(w, req, id, action)
	}))
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}
