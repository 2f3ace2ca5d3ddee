package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/decoylabs/scam-honeypot/internal/model"
)

// ValidateConversationID validates an opaque conversation ID.
func ValidateConversationID(id string) error {
	if len(id) == 0 {
		return errors.New("conversation_id cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("conversation_id exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("conversation_id must be valid UTF-8")
	}
	return nil
}

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateHistory validates caller-supplied seed history.
func ValidateHistory(history []model.HistoryEntry) error {
	for _, h := range history {
		if h.Role != model.RoleUser && h.Role != model.RoleAgent {
			return errors.New("history role must be user or agent")
		}
		if !utf8.ValidString(h.Message) {
			return errors.New("history message must be valid UTF-8")
		}
	}
	return nil
}
