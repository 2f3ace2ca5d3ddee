package engage

import "github.com/decoylabs/scam-honeypot/internal/model"

// Fallback phrasing pools, one per phase. Selection is
// pool[len(history) % len(pool)] so output varies between turns but
// stays reproducible for testing.
var (
	hookLines = []string{
		"Hey, just saw this. What do you need from me to finish it?",
		"I can help, tell me what exactly is needed to proceed.",
	}
	probeLines = []string{
		"Is this via bank transfer or UPI? I need the exact details to do it right.",
		"Can you confirm the amount and whether you want it by UPI or account transfer?",
	}
	harvestLines = []string{
		"To avoid mistakes, share the account number, IFSC, and the exact UPI ID or link you want me to use.",
		"Send the exact UPI ID or bank details (account number + IFSC) and the link you mentioned so I don't mistype.",
	}
	neutralLines = []string{
		"Thanks for the update. Let me know if you actually need something specific.",
		"Noted. Nothing here looks actionable yet.",
	}
)

func choose(pool []string, index int) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[index%len(pool)]
}

// templateReply returns the deterministic fallback line for a phase.
func templateReply(history []model.HistoryEntry, phase model.Phase) string {
	switch phase {
	case model.PhaseNotScam:
		return choose(neutralLines, len(history))
	case model.PhaseHook:
		return choose(hookLines, len(history))
	case model.PhaseProbe:
		return choose(probeLines, len(history))
	default:
		return choose(harvestLines, len(history))
	}
}
