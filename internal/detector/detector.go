// Package detector scores free text for scam likelihood, combining
// deterministic heuristics with an optional external classifier.
package detector

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
)

var (
	reLongDigits = regexp.MustCompile(`\d{6,}`)
	reCurrency   = regexp.MustCompile(`\b(inr|usd|rs\.?|rupees|dollars?)\b`)
	reLink       = regexp.MustCompile(`https?://`)
)

// Heuristic signal weights. One hit per distinct keyword/phrase; the
// pattern checks count at most once each.
const (
	weightKeyword    = 0.08
	weightUrgency    = 0.05
	weightLongDigits = 0.08
	weightCurrency   = 0.05
	weightLink       = 0.07
)

// Result is the outcome of one detection pass. Produced fresh per
// inbound message and never persisted.
type Result struct {
	ScamDetected bool
	Confidence   float64
	Reasoning    string
	PhaseHint    model.Phase
	Signals      []string
}

// Classification is the strict output schema expected from an external
// classifier.
type Classification struct {
	Scam       bool
	Confidence float64
	Phase      string
	Reason     string
}

// Classifier is an optional external text-classification capability.
// Any error is treated as unavailable and the detector falls back to
// heuristic-only output.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// Config holds the externally tunable thresholds.
type Config struct {
	ScamThreshold        float64
	HarvestHintThreshold float64
}

// Detector scores messages. A nil classifier means heuristic-only mode.
type Detector struct {
	cfg        Config
	classifier Classifier
	logger     *logger.Logger
}

// New creates a detector.
func New(cfg Config, classifier Classifier, log *logger.Logger) *Detector {
	return &Detector{
		cfg:        cfg,
		classifier: classifier,
		logger:     log,
	}
}

// Detect scores the new message together with all prior history text.
func (d *Detector) Detect(ctx context.Context, message string, history []model.HistoryEntry) Result {
	parts := make([]string, 0, len(history)+1)
	for _, h := range history {
		parts = append(parts, h.Message)
	}
	parts = append(parts, message)
	allText := strings.Join(parts, " ")

	score, signals := scoreText(allText)

	var cls *Classification
	if d.classifier != nil {
		var err error
		cls, err = d.classifier.Classify(ctx, allText)
		if err != nil {
			d.logger.Debug("external classifier unavailable, using heuristics")
			cls = nil
		}
	}

	var res Result
	res.Signals = signals

	if cls != nil {
		res.ScamDetected = cls.Scam || score >= d.cfg.ScamThreshold
		res.Confidence = round2(math.Max(cls.Confidence, score))
		res.PhaseHint = combinedPhaseHint(cls.Phase, signals)
		res.Reasoning = fmt.Sprintf("LLM: %s; Heuristic signals: %s", cls.Reason, joinSignals(signals))
	} else {
		res.ScamDetected = score >= d.cfg.ScamThreshold
		res.Confidence = round2(score)
		if score >= d.cfg.HarvestHintThreshold || hasAccountHint(signals) {
			res.PhaseHint = model.PhaseHarvest
		} else {
			res.PhaseHint = model.PhaseHook
		}
		res.Reasoning = fmt.Sprintf("Signals: %s", joinSignals(signals))
	}

	if !res.ScamDetected {
		res.PhaseHint = model.PhaseNotScam
	}

	return res
}

// scoreText accumulates the heuristic score and the ordered signal list.
func scoreText(text string) (float64, []string) {
	textLower := strings.ToLower(text)
	score := 0.0
	var signals []string

	for _, kw := range scamKeywords {
		if strings.Contains(textLower, kw) {
			score += weightKeyword
			signals = append(signals, kw)
		}
	}

	for _, phrase := range urgencyPhrases {
		if strings.Contains(textLower, phrase) {
			score += weightUrgency
			signals = append(signals, phrase)
		}
	}

	// Long digit sequences indicate account/amount/OTP-like content
	if reLongDigits.MatchString(textLower) {
		score += weightLongDigits
		signals = append(signals, "long_digits")
	}

	// Currency tokens suggest payment context
	if reCurrency.MatchString(textLower) {
		score += weightCurrency
		signals = append(signals, "currency")
	}

	// Links hint at phishing
	if reLink.MatchString(textLower) {
		score += weightLink
		signals = append(signals, "link")
	}

	return math.Min(score, 1.0), signals
}

func combinedPhaseHint(externalPhase string, signals []string) model.Phase {
	switch externalPhase {
	case string(model.PhaseHook):
		return model.PhaseHook
	case string(model.PhaseHarvest):
		return model.PhaseHarvest
	}
	if hasAccountHint(signals) {
		return model.PhaseHarvest
	}
	return model.PhaseHook
}

func hasAccountHint(signals []string) bool {
	for _, s := range signals {
		if _, ok := accountHints[s]; ok {
			return true
		}
	}
	return false
}

func joinSignals(signals []string) string {
	if len(signals) == 0 {
		return "none"
	}
	return strings.Join(signals, ", ")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
