// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/decoylabs/scam-honeypot/internal/middleware"
	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/internal/service"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
)

// WebhookHandler handles inbound relay events.
type WebhookHandler struct {
	engagement *service.EngagementService
	logger     *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(svc *service.EngagementService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		engagement: svc,
		logger:     log,
	}
}

// Receive handles POST /webhook
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req model.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateConversationID(req.ConversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateHistory(req.History); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := h.engagement.Handle(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}
