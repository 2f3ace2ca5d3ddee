// Package service provides the per-request engagement orchestration.
package service

import (
	"context"
	"time"

	"github.com/decoylabs/scam-honeypot/internal/detector"
	"github.com/decoylabs/scam-honeypot/internal/engage"
	"github.com/decoylabs/scam-honeypot/internal/extractor"
	"github.com/decoylabs/scam-honeypot/internal/model"
	natsclient "github.com/decoylabs/scam-honeypot/internal/nats"
	"github.com/decoylabs/scam-honeypot/internal/store"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
	"github.com/decoylabs/scam-honeypot/pkg/metrics"
)

// maxTurnsReply is the fixed stalling line once the engagement cap is hit.
const maxTurnsReply = "Okay, I'll check and get back to you shortly."

// EngagementService runs the webhook flow: load state, guard max turns
// and duplicates, detect, select phase, reply, extract and merge intel.
type EngagementService struct {
	store     *store.Store
	detector  *detector.Detector
	generator *engage.Generator
	publisher *natsclient.IntelPublisher
	maxTurns  int
	logger    *logger.Logger
}

// NewEngagementService creates the orchestrator.
func NewEngagementService(
	st *store.Store,
	det *detector.Detector,
	gen *engage.Generator,
	pub *natsclient.IntelPublisher,
	maxTurns int,
	log *logger.Logger,
) *EngagementService {
	return &EngagementService{
		store:     st,
		detector:  det,
		generator: gen,
		publisher: pub,
		maxTurns:  maxTurns,
		logger:    log,
	}
}

// Handle processes one inbound webhook event. Every path produces a
// well-formed response; there is no fatal error condition.
func (s *EngagementService) Handle(ctx context.Context, req *model.WebhookRequest) *model.WebhookResponse {
	st := s.store.GetOrCreate(req.ConversationID, req.History)

	st.Lock()

	// Guardrail: stop after max turns to avoid runaway loops.
	if st.Turns() >= s.maxTurns {
		resp := s.maxTurnsResponse(req, st)
		st.Unlock()
		metrics.WebhookOutcomes.WithLabelValues("max_turns").Inc()
		return resp
	}

	// Idempotency: ignore duplicate message events if message_id is provided.
	if req.MessageID != "" {
		if _, dup := st.ProcessedMessageIDs[req.MessageID]; dup {
			resp := s.duplicateResponse(req, st)
			st.Unlock()
			metrics.WebhookOutcomes.WithLabelValues("duplicate").Inc()
			return resp
		}
		st.ProcessedMessageIDs[req.MessageID] = struct{}{}
	}

	priorHistory := st.HistoryCopy()
	priorPhase := st.Phase
	turns := st.Turns()

	st.Append(model.RoleUser, req.Message, time.Now())
	replyHistory := st.HistoryCopy()

	st.Unlock()

	// Detection and reply generation run unlocked against local copies;
	// external capability calls must never hold the conversation lock.
	detection := s.detector.Detect(ctx, req.Message, priorHistory)
	phase := engage.SelectPhase(detection, priorPhase, turns)
	reply := s.generator.Generate(ctx, req.Message, replyHistory, phase)

	intel := extractor.Extract(req.Message)

	st.Lock()
	st.Phase = phase
	st.Append(model.RoleAgent, reply, time.Now())
	added := s.store.MergeExtracted(st, intel)
	turnsAfter := st.Turns()
	extracted := st.Extracted.Clone()
	st.Unlock()

	if detection.ScamDetected {
		metrics.ScamDetections.WithLabelValues(string(phase)).Inc()
		metrics.WebhookOutcomes.WithLabelValues("engaged").Inc()
	} else {
		metrics.WebhookOutcomes.WithLabelValues("not_scam").Inc()
	}

	s.publishIntel(ctx, req.ConversationID, phase, added)

	scam := detection.ScamDetected
	return &model.WebhookResponse{
		ConversationID: req.ConversationID,
		ScamDetected:   &scam,
		Confidence:     detection.Confidence,
		Phase:          phase,
		Reply:          reply,
		Extracted:      extracted,
		Engagement: model.Engagement{
			Turns:        turnsAfter,
			LastUserMsg:  req.Message,
			LastAgentMsg: reply,
		},
		Reasoning: detection.Reasoning,
		Signals:   nonNilSignals(detection.Signals),
	}
}

// Snapshot returns a read-only view of one conversation for the review API.
func (s *EngagementService) Snapshot(conversationID string) (model.ConversationSnapshot, bool) {
	st, ok := s.store.Get(conversationID)
	if !ok {
		return model.ConversationSnapshot{}, false
	}
	return st.Snapshot(), true
}

// List returns conversation summaries for the review API.
func (s *EngagementService) List(limit, offset int) *model.ListConversationsResponse {
	summaries, total := s.store.List(limit, offset)
	if summaries == nil {
		summaries = []model.ConversationSummary{}
	}
	return &model.ListConversationsResponse{
		Conversations: summaries,
		Total:         total,
		HasMore:       offset+len(summaries) < total,
	}
}

// maxTurnsResponse is the fixed terminal response: the detector and
// generator are not invoked and the turn count does not advance.
// Caller holds the conversation lock.
func (s *EngagementService) maxTurnsResponse(req *model.WebhookRequest, st *model.ConversationState) *model.WebhookResponse {
	scam := true
	return &model.WebhookResponse{
		ConversationID: req.ConversationID,
		ScamDetected:   &scam,
		Confidence:     1.0,
		Phase:          st.Phase,
		Reply:          maxTurnsReply,
		Extracted:      st.Extracted.Clone(),
		Engagement: model.Engagement{
			Turns:        st.Turns(),
			LastUserMsg:  req.Message,
			LastAgentMsg: "",
		},
		Reasoning: "Max turns reached",
		Signals:   []string{},
	}
}

// duplicateResponse answers a replayed message_id without mutating
// state. Caller holds the conversation lock.
func (s *EngagementService) duplicateResponse(req *model.WebhookRequest, st *model.ConversationState) *model.WebhookResponse {
	return &model.WebhookResponse{
		ConversationID: req.ConversationID,
		ScamDetected:   nil,
		Confidence:     0.0,
		Phase:          st.Phase,
		Reply:          "",
		Extracted:      st.Extracted.Clone(),
		Engagement: model.Engagement{
			Turns:        st.Turns(),
			LastUserMsg:  "",
			LastAgentMsg: "",
		},
		Reasoning: "Duplicate message_id ignored",
		Signals:   []string{},
	}
}

func (s *EngagementService) publishIntel(ctx context.Context, conversationID string, phase model.Phase, added model.ExtractedIntel) {
	if s.publisher == nil {
		return
	}
	total := 0
	for _, n := range added.Counts() {
		total += n
	}
	if total == 0 {
		return
	}
	s.publisher.Publish(ctx, &natsclient.IntelEvent{
		ConversationID: conversationID,
		Phase:          phase,
		Added:          added,
		Timestamp:      time.Now(),
	})
}

func nonNilSignals(signals []string) []string {
	if signals == nil {
		return []string{}
	}
	return signals
}
