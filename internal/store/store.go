// Package store holds in-memory conversation state with TTL eviction.
package store

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
	"github.com/decoylabs/scam-honeypot/pkg/metrics"
)

const shardCount = 32

type shard struct {
	mu            sync.RWMutex
	conversations map[string]*model.ConversationState
}

// Store is a sharded keyed store of conversation state. Shards keep
// eviction sweeps from blocking access to unrelated conversations; the
// per-conversation mutation lock lives on the state itself.
type Store struct {
	shards [shardCount]*shard
	ttl    time.Duration
	logger *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a store. TTL <= 0 disables eviction entirely.
func New(ttl time.Duration, log *logger.Logger) *Store {
	s := &Store{
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{conversations: make(map[string]*model.ConversationState)}
	}
	return s
}

func (s *Store) shardFor(conversationID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(conversationID))
	return s.shards[h.Sum32()%shardCount]
}

// GetOrCreate returns the state for a conversation, creating it on
// first access. A brand-new conversation may be seeded with
// caller-supplied prior history. The accessed shard is swept for
// expired entries opportunistically.
func (s *Store) GetOrCreate(conversationID string, seedHistory []model.HistoryEntry) *model.ConversationState {
	now := s.now()
	sh := s.shardFor(conversationID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	s.sweepLocked(sh, now)

	if st, ok := sh.conversations[conversationID]; ok {
		if !s.expired(st, now) {
			return st
		}
		// Expired but not yet swept: replace with a fresh state.
		delete(sh.conversations, conversationID)
		metrics.ConversationsEvicted.Inc()
		metrics.ConversationsActive.Dec()
	}

	st := model.NewConversationState(conversationID, now)
	if len(seedHistory) > 0 {
		st.History = append(st.History, seedHistory...)
	}
	sh.conversations[conversationID] = st
	metrics.ConversationsActive.Inc()

	s.logger.Debug("conversation created", zap.String("conversation_id", conversationID))
	return st
}

// Get returns the state for an existing, unexpired conversation.
func (s *Store) Get(conversationID string) (*model.ConversationState, bool) {
	sh := s.shardFor(conversationID)
	sh.mu.RLock()
	st, ok := sh.conversations[conversationID]
	sh.mu.RUnlock()
	if !ok || s.expired(st, s.now()) {
		return nil, false
	}
	return st, true
}

// MergeExtracted adds previously-unseen values per kind, preserving
// first-seen confidence and routing tags. It returns only the newly
// added items. Caller must hold the conversation lock.
func (s *Store) MergeExtracted(state *model.ConversationState, in model.ExtractedIntel) model.ExtractedIntel {
	added := model.ExtractedIntel{
		BankAccounts: mergeItems(&state.Extracted.BankAccounts, in.BankAccounts),
		UPIIDs:       mergeItems(&state.Extracted.UPIIDs, in.UPIIDs),
		URLs:         mergeItems(&state.Extracted.URLs, in.URLs),
		Amounts:      mergeItems(&state.Extracted.Amounts, in.Amounts),
	}
	for kind, n := range added.Counts() {
		if n > 0 {
			metrics.IntelExtracted.WithLabelValues(kind).Add(float64(n))
		}
	}
	return added
}

func mergeItems(existing *[]model.IntelItem, items []model.IntelItem) []model.IntelItem {
	seen := make(map[string]struct{}, len(*existing))
	for _, item := range *existing {
		seen[item.Value] = struct{}{}
	}
	added := []model.IntelItem{}
	for _, item := range items {
		if _, ok := seen[item.Value]; ok {
			continue
		}
		*existing = append(*existing, item)
		added = append(added, item)
		seen[item.Value] = struct{}{}
	}
	return added
}

// List returns conversation summaries ordered by most recent activity.
func (s *Store) List(limit, offset int) ([]model.ConversationSummary, int) {
	var summaries []model.ConversationSummary
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, st := range sh.conversations {
			summaries = append(summaries, st.Summary())
		}
		sh.mu.RUnlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastSeen.After(summaries[j].LastSeen)
	})

	total := len(summaries)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return summaries[start:end], total
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.conversations)
		sh.mu.RUnlock()
	}
	return n
}

// expired reports whether a state has outlived the TTL.
func (s *Store) expired(st *model.ConversationState, now time.Time) bool {
	if s.ttl <= 0 {
		return false
	}
	return now.Sub(st.LastSeenTime()) > s.ttl
}

// sweepLocked removes expired entries from one shard. Caller holds the
// shard lock.
func (s *Store) sweepLocked(sh *shard, now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, st := range sh.conversations {
		if now.Sub(st.LastSeenTime()) > s.ttl {
			delete(sh.conversations, id)
			metrics.ConversationsEvicted.Inc()
			metrics.ConversationsActive.Dec()
			s.logger.Debug("conversation evicted", zap.String("conversation_id", id))
		}
	}
}
