package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/decoylabs/scam-honeypot/internal/middleware"
	"github.com/decoylabs/scam-honeypot/internal/service"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
)

// ConversationHandler serves the read-only operator review API.
type ConversationHandler struct {
	engagement *service.EngagementService
	logger     *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.EngagementService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		engagement: svc,
		logger:     log,
	}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	writeJSON(w, http.StatusOK, h.engagement.List(limit, offset))
}

// Get handles GET /api/v1/conversations/:id
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, ok := h.engagement.Snapshot(conversationID)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
