// Package engage implements the engagement strategy: the phase state
// machine and the outward-facing reply generation.
package engage

import (
	"github.com/decoylabs/scam-honeypot/internal/detector"
	"github.com/decoylabs/scam-honeypot/internal/model"
)

// SelectPhase maps a detection result, the prior phase, and the
// engagement depth to the next phase. Total over its inputs.
//
//   - not scam: NOT_SCAM, even from a prior scam phase
//   - HARVEST is absorbing once reached
//   - a HARVEST hint jumps straight there regardless of turn count
//   - otherwise first engaged turn HOOK, second PROBE, then HARVEST
func SelectPhase(det detector.Result, priorPhase model.Phase, turns int) model.Phase {
	if !det.ScamDetected {
		return model.PhaseNotScam
	}
	if priorPhase == model.PhaseHarvest {
		return model.PhaseHarvest
	}
	if det.PhaseHint == model.PhaseHarvest {
		return model.PhaseHarvest
	}
	if turns == 0 {
		return model.PhaseHook
	}
	if turns == 1 {
		return model.PhaseProbe
	}
	return model.PhaseHarvest
}
