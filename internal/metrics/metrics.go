// Package metrics defines the Prometheus metrics exposed by the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Outbound LINE API metrics
	RepliesTotal   *prometheus.CounterVec
	MenuLinksTotal *prometheus.CounterVec

	// Consultation state machine metrics
	TransitionsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultbot_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, skipped
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "consultbot_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"},
		),

		RepliesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultbot_replies_total",
				Help: "Total number of reply message calls by status",
			},
			[]string{"status"}, // status: success, error
		),

		MenuLinksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultbot_menu_links_total",
				Help: "Total number of rich menu link calls by menu and status",
			},
			[]string{"menu", "status"}, // status: success, error, not_registered
		),

		TransitionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultbot_transitions_total",
				Help: "Total number of consultation postback outcomes by action and outcome",
			},
			[]string{"action", "outcome"}, // outcome: applied, guard_rejected, unknown_action, store_error
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultbot_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: invalid_signature, malformed_body
		),
	}
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	if duration > 0 {
		m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
	}
}

// RecordReply records a reply message call
func (m *Metrics) RecordReply(status string) {
	m.RepliesTotal.WithLabelValues(status).Inc()
}

// RecordMenuLink records a rich menu link call
func (m *Metrics) RecordMenuLink(menu, status string) {
	m.MenuLinksTotal.WithLabelValues(menu, status).Inc()
}

// RecordTransition records a consultation postback outcome
func (m *Metrics) RecordTransition(action, outcome string) {
	m.TransitionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordHTTPError records an HTTP-level error
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}
