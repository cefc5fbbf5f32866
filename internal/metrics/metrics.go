package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics process-wide collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	otpOps        *prometheus.CounterVec
	observations  *prometheus.CounterVec
	alertsRaised  *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelph_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinelph_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		otpOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelph_otp_operations_total",
			Help: "OTP operations by operation and outcome",
		}, []string{"op", "result"}),
		observations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelph_observations_total",
			Help: "Processed observations by intake status",
		}, []string{"status"}),
		alertsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelph_alerts_raised_total",
			Help: "Alerts raised by severity",
		}, []string{"severity"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelph_notifications_total",
			Help: "Alert notifications by channel and outcome",
		}, []string{"channel", "result"}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) OTP(op, result string) {
	if m == nil {
		return
	}
	m.otpOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) Observation(status string) {
	if m == nil {
		return
	}
	m.observations.WithLabelValues(status).Inc()
}

func (m *Metrics) AlertRaised(severity string) {
	if m == nil {
		return
	}
	m.alertsRaised.WithLabelValues(severity).Inc()
}

func (m *Metrics) Notification(channel string, success bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "failed"
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}
