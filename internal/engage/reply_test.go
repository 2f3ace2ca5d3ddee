package engage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/decoylabs/scam-honeypot/internal/llm"
	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
)

type fakeLLM struct {
	content string
	err     error
	lastReq *llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return nil }

func newTestGenerator(client llm.Client) *Generator {
	return NewGenerator(client, "test-model", time.Second, logger.NewNop())
}

func TestGenerateWithoutClient(t *testing.T) {
	g := newTestGenerator(nil)

	tests := []struct {
		name    string
		history []model.HistoryEntry
		phase   model.Phase
		want    string
	}{
		{name: "hook first turn", phase: model.PhaseHook, want: hookLines[0]},
		{
			name:    "pool index follows history length",
			history: make([]model.HistoryEntry, 3),
			phase:   model.PhaseHook,
			want:    hookLines[1],
		},
		{name: "probe", history: make([]model.HistoryEntry, 2), phase: model.PhaseProbe, want: probeLines[0]},
		{name: "harvest", phase: model.PhaseHarvest, want: harvestLines[0]},
		{name: "neutral for benign traffic", phase: model.PhaseNotScam, want: neutralLines[0]},
		{name: "unknown phase falls back to harvest", phase: model.Phase("BOGUS"), want: harvestLines[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Generate(context.Background(), "hi", tt.history, tt.phase)
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateWithClient(t *testing.T) {
	t.Run("uses the model reply when available", func(t *testing.T) {
		client := &fakeLLM{content: "  Sure, which UPI ID should I use?  "}
		g := newTestGenerator(client)

		got := g.Generate(context.Background(), "send it now", nil, model.PhaseHarvest)
		if got != "Sure, which UPI ID should I use?" {
			t.Errorf("Generate() = %q, want trimmed model reply", got)
		}
		if client.lastReq == nil {
			t.Fatal("expected a completion request")
		}
		if client.lastReq.Model != "test-model" {
			t.Errorf("request model = %q, want test-model", client.lastReq.Model)
		}
	})

	t.Run("falls back to template on error", func(t *testing.T) {
		g := newTestGenerator(&fakeLLM{err: errors.New("rate limited")})

		got := g.Generate(context.Background(), "send it now", nil, model.PhaseHook)
		if got != hookLines[0] {
			t.Errorf("Generate() = %q, want %q", got, hookLines[0])
		}
	})

	t.Run("falls back to template on empty content", func(t *testing.T) {
		g := newTestGenerator(&fakeLLM{content: "   "})

		got := g.Generate(context.Background(), "send it now", nil, model.PhaseProbe)
		if got != probeLines[0] {
			t.Errorf("Generate() = %q, want %q", got, probeLines[0])
		}
	})
}

func TestBuildPromptIncludesTactic(t *testing.T) {
	history := []model.HistoryEntry{
		{Role: model.RoleUser, Message: "pay the fee"},
		{Role: model.RoleAgent, Message: "which account?"},
	}

	prompt := buildPrompt("here are the details", history, model.PhaseProbe)

	for _, want := range []string{
		tactics[model.PhaseProbe],
		"User: pay the fee",
		"You: which account?",
		"User (latest): here are the details",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt: %s", want, prompt)
		}
	}
}

func TestFormatHistoryWindow(t *testing.T) {
	history := make([]model.HistoryEntry, 0, 12)
	for i := 0; i < 12; i++ {
		history = append(history, model.HistoryEntry{Role: model.RoleUser, Message: string(rune('a' + i))})
	}

	got := formatHistory(history)
	if strings.Contains(got, "User: a") || strings.Contains(got, "User: b") {
		t.Errorf("expected oldest entries trimmed, got %q", got)
	}
	if !strings.Contains(got, "User: c") || !strings.Contains(got, "User: l") {
		t.Errorf("expected most recent entries kept, got %q", got)
	}
}
