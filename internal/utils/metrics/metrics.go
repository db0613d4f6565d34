package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/calshare/server/internal/shared/events"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Auth metrics
	AuthEventsTotal *prometheus.CounterVec

	// Unit of work metrics
	UnitsTotal       *prometheus.CounterVec
	UnitAttempts     *prometheus.HistogramVec
	LockAcquireTotal *prometheus.CounterVec

	// Domain metrics
	DomainEventsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimitTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered on reg.
// A nil reg registers on the default prometheus registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "calshare"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Auth metrics
		AuthEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "events_total",
				Help:      "Total number of auth events",
			},
			[]string{"event"}, // register, login_success, login_failed, token_invalid
		),

		// Unit of work metrics
		UnitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "unit_of_work",
				Name:      "total",
				Help:      "Total number of units of work by outcome",
			},
			[]string{"operation", "outcome"}, // outcome: committed, rolled_back, exhausted
		),
		UnitAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "unit_of_work",
				Name:      "attempts",
				Help:      "Attempts needed per unit of work",
				Buckets:   []float64{1, 2, 3, 4, 5, 8},
			},
			[]string{"operation"},
		),
		LockAcquireTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "unit_of_work",
				Name:      "lock_acquire_total",
				Help:      "Aggregate lock acquisitions by result",
			},
			[]string{"result"}, // acquired, contended, degraded
		),

		// Domain metrics
		DomainEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "domain",
				Name:      "events_total",
				Help:      "Total number of published domain events",
			},
			[]string{"type"},
		),

		// Rate limiter metrics
		RateLimitTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rate_limit",
				Name:      "decisions_total",
				Help:      "Rate limiter decisions",
			},
			[]string{"result"}, // allowed, limited, error
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuthEvent records an authentication event.
func (m *Metrics) RecordAuthEvent(event string) {
	m.AuthEventsTotal.WithLabelValues(event).Inc()
}

// ObserveUnit records the outcome of a unit of work.
func (m *Metrics) ObserveUnit(operation, outcome string, attempts int) {
	m.UnitsTotal.WithLabelValues(operation, outcome).Inc()
	m.UnitAttempts.WithLabelValues(operation).Observe(float64(attempts))
}

// ObserveLock records an aggregate lock acquisition result.
func (m *Metrics) ObserveLock(result string) {
	m.LockAcquireTotal.WithLabelValues(result).Inc()
}

// RecordRateLimit records a rate limiter decision.
func (m *Metrics) RecordRateLimit(result string) {
	m.RateLimitTotal.WithLabelValues(result).Inc()
}

// EventCounter counts published domain events by type.
type EventCounter struct {
	metrics *Metrics
}

// NewEventCounter creates an event bus handler that feeds DomainEventsTotal.
func NewEventCounter(m *Metrics) *EventCounter {
	return &EventCounter{metrics: m}
}

// Handles returns every domain event type.
func (h *EventCounter) Handles() []string {
	return []string{
		events.CalendarCreatedType,
		events.CalendarDeletedType,
		events.MembersRemovedType,
		events.InvitationCreatedType,
		events.InvitationAcceptedType,
		events.InvitationRejectedType,
		events.ActivityCreatedType,
		events.ActivityDeletedType,
		events.TodoToggledType,
	}
}

// Handle increments the counter for the event's type.
func (h *EventCounter) Handle(event events.Event) error {
	h.metrics.DomainEventsTotal.WithLabelValues(event.EventType()).Inc()
	return nil
}

var _ events.Handler = (*EventCounter)(nil)
