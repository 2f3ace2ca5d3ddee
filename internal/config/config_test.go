package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServiceName != "agentic-honeypot" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.ScamThreshold != 0.35 {
		t.Errorf("ScamThreshold = %v", cfg.ScamThreshold)
	}
	if cfg.HarvestHintThreshold != 0.55 {
		t.Errorf("HarvestHintThreshold = %v", cfg.HarvestHintThreshold)
	}
	if cfg.MaxTurns != 16 {
		t.Errorf("MaxTurns = %d", cfg.MaxTurns)
	}
	if cfg.StateTTL != 2*time.Hour {
		t.Errorf("StateTTL = %v", cfg.StateTTL)
	}
	if cfg.LLMTimeout != 8*time.Second {
		t.Errorf("LLMTimeout = %v", cfg.LLMTimeout)
	}
	if cfg.NATSURL != "" {
		t.Errorf("NATSURL = %q, want empty", cfg.NATSURL)
	}
	if cfg.DefaultLLM != "openai" {
		t.Errorf("DefaultLLM = %q", cfg.DefaultLLM)
	}
	if cfg.TracingEnabled {
		t.Error("TracingEnabled = true, want false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCAM_THRESHOLD", "0.5")
	t.Setenv("MAX_TURNS", "4")
	t.Setenv("STATE_TTL", "30m")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.ScamThreshold != 0.5 {
		t.Errorf("ScamThreshold = %v, want 0.5", cfg.ScamThreshold)
	}
	if cfg.MaxTurns != 4 {
		t.Errorf("MaxTurns = %d, want 4", cfg.MaxTurns)
	}
	if cfg.StateTTL != 30*time.Minute {
		t.Errorf("StateTTL = %v, want 30m", cfg.StateTTL)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled = false, want true")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_TURNS", "lots")
	t.Setenv("SCAM_THRESHOLD", "high")
	t.Setenv("STATE_TTL", "never")

	cfg := Load()

	if cfg.MaxTurns != 16 {
		t.Errorf("MaxTurns = %d, want default 16", cfg.MaxTurns)
	}
	if cfg.ScamThreshold != 0.35 {
		t.Errorf("ScamThreshold = %v, want default 0.35", cfg.ScamThreshold)
	}
	if cfg.StateTTL != 2*time.Hour {
		t.Errorf("StateTTL = %v, want default 2h", cfg.StateTTL)
	}
}
