package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the portal.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthAttemptsTotal      *prometheus.CounterVec
	PermissionDenialsTotal *prometheus.CounterVec
	TicketTransitionsTotal *prometheus.CounterVec
	TicketsCreatedTotal    prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all collectors on registry. A nil registry
// gets a fresh one so tests never collide on the default registerer.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_auth_attempts_total",
				Help: "Signup and login attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		PermissionDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_permission_denials_total",
				Help: "Operations rejected by the permission model",
			},
			[]string{"operation"},
		),
		TicketTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_ticket_transitions_total",
				Help: "Ticket status transitions by target status",
			},
			[]string{"status"},
		),
		TicketsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_tickets_created_total",
				Help: "Tickets submitted",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.PermissionDenialsTotal,
		m.TicketTransitionsTotal,
		m.TicketsCreatedTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the backing registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest observes one HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuth counts a signup or login outcome.
func (m *Metrics) RecordAuth(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordDenial counts a permission rejection.
func (m *Metrics) RecordDenial(operation string) {
	if m == nil {
		return
	}
	m.PermissionDenialsTotal.WithLabelValues(operation).Inc()
}

// RecordTransition counts a status transition.
func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.TicketTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordTicketCreated counts a new ticket.
func (m *Metrics) RecordTicketCreated() {
	if m == nil {
		return
	}
	m.TicketsCreatedTotal.Inc()
}
