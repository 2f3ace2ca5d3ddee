package model

// WebhookRequest is the inbound event forwarded by the relay platform.
type WebhookRequest struct {
	ConversationID string         `json:"conversation_id"`
	MessageID      string         `json:"message_id,omitempty"`
	Message        string         `json:"message"`
	History        []HistoryEntry `json:"history,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Engagement reports per-conversation engagement depth for the caller.
type Engagement struct {
	Turns        int    `json:"turns"`
	LastUserMsg  string `json:"last_user_msg"`
	LastAgentMsg string `json:"last_agent_msg"`
}

// WebhookResponse is the reply plus structured signals returned to the
// relay platform. ScamDetected is null when the event was a duplicate.
type WebhookResponse struct {
	ConversationID string         `json:"conversation_id"`
	ScamDetected   *bool          `json:"scam_detected"`
	Confidence     float64        `json:"confidence"`
	Phase          Phase          `json:"phase"`
	Reply          string         `json:"reply"`
	Extracted      ExtractedIntel `json:"extracted"`
	Engagement     Engagement     `json:"engagement"`
	Reasoning      string         `json:"reasoning"`
	Signals        []string       `json:"signals"`
}

// ListConversationsResponse is the response for the review listing.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
	HasMore       bool                  `json:"has_more"`
}
