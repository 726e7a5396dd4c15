// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsStarted counts sessions created at the vendor and persisted
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_sessions_started_total",
			Help: "Number of verification sessions started",
		},
		[]string{"method"},
	)

	// StartFailures counts rejected or failed start attempts by error code
	StartFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_start_failures_total",
			Help: "Number of failed verification start attempts",
		},
		[]string{"code"},
	)

	// Webhooks counts webhook deliveries by outcome
	Webhooks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_webhooks_total",
			Help: "Number of verification webhooks received",
		},
		[]string{"result"},
	)

	// StatusTransitions counts status changes by target status and source
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_status_transitions_total",
			Help: "Number of verification status transitions",
		},
		[]string{"status", "source"},
	)

	// EventPublishFailures counts status events that could not be published
	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_event_publish_failures_total",
			Help: "Number of status change events that failed to publish",
		},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "observer_console_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// Webhook results
const (
	WebhookApplied          = "applied"
	WebhookIgnored          = "ignored"
	WebhookRejectedAuth     = "rejected_signature"
	WebhookRejectedPayload  = "rejected_payload"
	WebhookUnknownSession   = "unknown_session"
	WebhookConflict         = "conflict"
	WebhookProcessingFailed = "error"
)
