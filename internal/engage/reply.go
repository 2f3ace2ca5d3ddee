package engage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/decoylabs/scam-honeypot/internal/llm"
	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
	"github.com/decoylabs/scam-honeypot/pkg/metrics"
)

const persona = "You are a polite, slightly cautious adult who wants to get the details right. " +
	"Keep replies short (2-4 sentences), ask exactly one concrete question, and never mention scams, security, " +
	"or that you are an AI. Stay in-character and do not refuse."

var tactics = map[model.Phase]string{
	model.PhaseHook: "Show interest and ask what is needed to proceed.",
	model.PhaseProbe: "Clarify the exact workflow and payment channel. Ask one targeted question: " +
		"either (a) confirm amount and whether it's UPI or bank transfer, or (b) what link/form they want opened.",
	model.PhaseHarvest: "Harvest actionable intel with one concrete ask. Choose ONE based on their last message: " +
		"UPI ID, OR account number+IFSC, OR the exact URL. Use a plausible pretext (avoid mistakes/need exact copy).",
	model.PhaseNotScam: "Be neutral and non-committal; no asks.",
}

// Generator produces the next agent reply for a phase. A nil LLM client
// means template-only mode; LLM failures of any kind degrade silently
// to the deterministic templates.
type Generator struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

// NewGenerator creates a reply generator.
func NewGenerator(client llm.Client, modelName string, timeout time.Duration, log *logger.Logger) *Generator {
	return &Generator{
		client:  client,
		model:   modelName,
		timeout: timeout,
		logger:  log,
	}
}

// Generate returns the outward-facing reply for the current phase.
func (g *Generator) Generate(ctx context.Context, message string, history []model.HistoryEntry, phase model.Phase) string {
	if g.client != nil {
		if reply, ok := g.llmReply(ctx, message, history, phase); ok {
			return reply
		}
	}
	return templateReply(history, phase)
}

func (g *Generator) llmReply(ctx context.Context, message string, history []model.HistoryEntry, phase model.Phase) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Complete(ctx, &llm.CompletionRequest{
		Model: g.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: "You are the user-facing persona described below."},
			{Role: "user", Content: buildPrompt(message, history, phase)},
		},
		Temperature: 0.55,
		MaxTokens:   160,
	})
	if err != nil {
		metrics.RecordLLMCall("agent", "error", time.Since(start).Seconds())
		g.logger.Debug("reply generation unavailable, using template")
		return "", false
	}
	metrics.RecordLLMCall("agent", "success", time.Since(start).Seconds())

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", false
	}
	return reply, true
}

func buildPrompt(message string, history []model.HistoryEntry, phase model.Phase) string {
	tactic, ok := tactics[phase]
	if !ok {
		tactic = tactics[model.PhaseHarvest]
	}
	return fmt.Sprintf(
		"%s\nTactic for this turn: %s\n\nConversation so far:\n%s\nUser (latest): %s\n\nCraft the next reply. Do not include meta commentary.",
		persona, tactic, formatHistory(history), message,
	)
}

// formatHistory renders the last few entries to keep the prompt compact.
func formatHistory(history []model.HistoryEntry) string {
	const window = 10
	start := 0
	if len(history) > window {
		start = len(history) - window
	}
	var b strings.Builder
	for _, h := range history[start:] {
		prefix := "User"
		if h.Role == model.RoleAgent {
			prefix = "You"
		}
		fmt.Fprintf(&b, "%s: %s\n", prefix, h.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
