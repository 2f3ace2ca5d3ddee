package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
	"github.com/decoylabs/scam-honeypot/pkg/metrics"
)

const (
	intelStreamName    = "HONEYPOT_INTEL"
	intelSubjectPrefix = "honeypot.intel."
)

// IntelEvent is published whenever an engagement extracts
// previously-unseen intelligence.
type IntelEvent struct {
	ConversationID string               `json:"conversation_id"`
	Phase          model.Phase          `json:"phase"`
	Added          model.ExtractedIntel `json:"added"`
	Timestamp      time.Time            `json:"timestamp"`
}

// IntelPublisher publishes intel events to JetStream. A nil client
// makes every publish a no-op so the service runs without NATS.
type IntelPublisher struct {
	client *Client
	logger *logger.Logger
}

// NewIntelPublisher creates an intel publisher.
func NewIntelPublisher(client *Client, log *logger.Logger) *IntelPublisher {
	return &IntelPublisher{
		client: client,
		logger: log,
	}
}

// EnsureStream creates the intel stream if it does not exist.
func (p *IntelPublisher) EnsureStream(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	_, err := p.client.JetStream().CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     intelStreamName,
		Subjects: []string{intelSubjectPrefix + ">"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure intel stream: %w", err)
	}
	return nil
}

// Publish sends an intel event. Errors are logged and swallowed; intel
// eventing must never fail the webhook request.
func (p *IntelPublisher) Publish(ctx context.Context, event *IntelEvent) {
	if p.client == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal intel event", zap.Error(err))
		metrics.IntelEventsPublished.WithLabelValues("error").Inc()
		return
	}

	subject := intelSubjectPrefix + event.ConversationID
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		p.logger.Warn("failed to publish intel event",
			zap.String("conversation_id", event.ConversationID),
			zap.Error(err),
		)
		metrics.IntelEventsPublished.WithLabelValues("error").Inc()
		return
	}
	metrics.IntelEventsPublished.WithLabelValues("success").Inc()
}
