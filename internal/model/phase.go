package model

// Phase represents the engagement-strategy state of a conversation.
type Phase string

const (
	// PhaseScreen is the initial placeholder before the first classification.
	PhaseScreen Phase = "SCREEN"

	PhaseNotScam Phase = "NOT_SCAM"
	PhaseHook    Phase = "HOOK"
	PhaseProbe   Phase = "PROBE"
	PhaseHarvest Phase = "HARVEST"
)
