// Package model defines data structures for the honeypot platform.
package model

import (
	"sync"
	"time"
)

// Role represents the author of a history entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// HistoryEntry is one message in a conversation, in chronological order.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// ConversationState is the mutable per-conversation entity. All fields
// except ConversationID are guarded by the embedded mutex; callers hold
// Lock for the whole read-modify-write sequence of one webhook event.
type ConversationState struct {
	mu sync.Mutex

	ConversationID      string
	Phase               Phase
	History             []HistoryEntry
	Extracted           ExtractedIntel
	LastSeen            time.Time
	ProcessedMessageIDs map[string]struct{}
}

// NewConversationState creates a fresh state in the SCREEN phase.
func NewConversationState(conversationID string, now time.Time) *ConversationState {
	return &ConversationState{
		ConversationID:      conversationID,
		Phase:               PhaseScreen,
		History:             []HistoryEntry{},
		Extracted:           NewExtractedIntel(),
		LastSeen:            now,
		ProcessedMessageIDs: make(map[string]struct{}),
	}
}

// Lock acquires the per-conversation mutex.
func (s *ConversationState) Lock() { s.mu.Lock() }

// Unlock releases the per-conversation mutex.
func (s *ConversationState) Unlock() { s.mu.Unlock() }

// Append adds a history entry and bumps the last-seen timestamp.
// Caller must hold the lock.
func (s *ConversationState) Append(role Role, message string, now time.Time) {
	s.History = append(s.History, HistoryEntry{Role: role, Message: message})
	s.LastSeen = now
}

// Turns counts agent-authored entries. Derived from history rather than
// stored so it cannot drift. Caller must hold the lock.
func (s *ConversationState) Turns() int {
	n := 0
	for _, h := range s.History {
		if h.Role == RoleAgent {
			n++
		}
	}
	return n
}

// LastSeenTime reads the last-seen timestamp under the lock. Used by
// the store's eviction checks, which do not hold the conversation lock.
func (s *ConversationState) LastSeenTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastSeen
}

// HistoryCopy returns a copy of the history safe to use after the lock
// is released, e.g. for unlocked LLM calls.
func (s *ConversationState) HistoryCopy() []HistoryEntry {
	out := make([]HistoryEntry, len(s.History))
	copy(out, s.History)
	return out
}

// ConversationSnapshot is a read-only view of a conversation for the
// operator review API.
type ConversationSnapshot struct {
	ConversationID string         `json:"conversation_id"`
	Phase          Phase          `json:"phase"`
	Turns          int            `json:"turns"`
	History        []HistoryEntry `json:"history"`
	Extracted      ExtractedIntel `json:"extracted"`
	LastSeen       time.Time      `json:"last_seen"`
}

// Snapshot copies the state under its lock.
func (s *ConversationState) Snapshot() ConversationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ConversationSnapshot{
		ConversationID: s.ConversationID,
		Phase:          s.Phase,
		Turns:          s.Turns(),
		History:        s.HistoryCopy(),
		Extracted:      s.Extracted.Clone(),
		LastSeen:       s.LastSeen,
	}
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ConversationID string         `json:"conversation_id"`
	Phase          Phase          `json:"phase"`
	Turns          int            `json:"turns"`
	IntelCounts    map[string]int `json:"intel_counts"`
	LastSeen       time.Time      `json:"last_seen"`
}

// Summary projects the state into a summary under its lock.
func (s *ConversationState) Summary() ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ConversationSummary{
		ConversationID: s.ConversationID,
		Phase:          s.Phase,
		Turns:          s.Turns(),
		IntelCounts:    s.Extracted.Counts(),
		LastSeen:       s.LastSeen,
	}
}
