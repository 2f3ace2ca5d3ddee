package handler

import (
	"net/http"

	natsclient "github.com/decoylabs/scam-honeypot/internal/nats"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	serviceName string
	natsClient  *natsclient.Client
}

// NewHealthHandler creates a new health handler. natsClient may be nil
// when intel eventing is disabled.
func NewHealthHandler(serviceName string, natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		natsClient:  natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.serviceName,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// NATS is optional; only gate readiness on it when configured.
	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
