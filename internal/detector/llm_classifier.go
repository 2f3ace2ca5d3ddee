package detector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decoylabs/scam-honeypot/internal/llm"
	"github.com/decoylabs/scam-honeypot/pkg/metrics"
)

const classifierPrompt = "Classify if the message is part of a scam attempt. " +
	"Reply ONLY with strict JSON: " +
	`{"scam": true|false, "confidence": 0-1, "phase": "HOOK|HARVEST|NONE", "reason": "<short>"}`

// LLMClassifier classifies text via an LLM, enforcing a strict output
// schema. Any transport error or schema violation is returned as an
// error so the detector falls back to heuristics.
type LLMClassifier struct {
	client  llm.Client
	model   string
	timeout time.Duration
}

// NewLLMClassifier creates a classifier on top of an LLM client.
func NewLLMClassifier(client llm.Client, model string, timeout time.Duration) *LLMClassifier {
	return &LLMClassifier{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// classifierOutput mirrors the expected JSON. Pointer fields distinguish
// missing keys from zero values so malformed responses fail closed.
type classifierOutput struct {
	Scam       *bool    `json:"scam"`
	Confidence *float64 `json:"confidence"`
	Phase      *string  `json:"phase"`
	Reason     string   `json:"reason"`
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: classifierPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   160,
	})
	if err != nil {
		metrics.RecordLLMCall("detector", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}
	metrics.RecordLLMCall("detector", "success", time.Since(start).Seconds())

	out, err := parseClassification(resp.Content)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseClassification validates the raw model output against the schema.
func parseClassification(raw string) (*Classification, error) {
	var out classifierOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, fmt.Errorf("classifier returned malformed JSON: %w", err)
	}
	if out.Scam == nil || out.Confidence == nil || out.Phase == nil {
		return nil, errors.New("classifier response missing required fields")
	}
	if *out.Confidence < 0 || *out.Confidence > 1 {
		return nil, fmt.Errorf("classifier confidence out of range: %v", *out.Confidence)
	}
	switch *out.Phase {
	case "HOOK", "HARVEST", "NONE":
	default:
		return nil, fmt.Errorf("classifier returned unknown phase %q", *out.Phase)
	}

	return &Classification{
		Scam:       *out.Scam,
		Confidence: *out.Confidence,
		Phase:      *out.Phase,
		Reason:     out.Reason,
	}, nil
}
