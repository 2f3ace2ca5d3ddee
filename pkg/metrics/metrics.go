// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// WebhookOutcomes tracks webhook processing outcomes.
	WebhookOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "honeypot_webhook_outcomes_total",
			Help: "Webhook events by processing outcome",
		},
		[]string{"outcome"},
	)

	// ScamDetections tracks scam classifications by resulting phase.
	ScamDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "honeypot_scam_detections_total",
			Help: "Messages classified as scam, by engagement phase",
		},
		[]string{"phase"},
	)

	// IntelExtracted tracks newly merged intel items by kind.
	IntelExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "honeypot_intel_extracted_total",
			Help: "Extracted intelligence items merged into conversation state",
		},
		[]string{"kind"},
	)

	// LLMCallDuration tracks LLM call duration per role and outcome.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "honeypot_llm_call_duration_seconds",
			Help:    "LLM call duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"role", "status"},
	)

	// ConversationsActive tracks live conversation states in the store.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "honeypot_conversations_active",
			Help: "Number of conversation states currently held in memory",
		},
	)

	// ConversationsEvicted tracks TTL evictions.
	ConversationsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "honeypot_conversations_evicted_total",
			Help: "Conversation states removed by TTL eviction",
		},
	)

	// IntelEventsPublished tracks intel events published to NATS.
	IntelEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "honeypot_intel_events_published_total",
			Help: "Intel events published to the event stream",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMCall records metrics for an LLM call.
func RecordLLMCall(role, status string, duration float64) {
	LLMCallDuration.WithLabelValues(role, status).Observe(duration)
}
