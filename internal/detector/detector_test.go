package detector

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
)

type fakeClassifier struct {
	cls *Classification
	err error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	return f.cls, f.err
}

func newTestDetector(classifier Classifier) *Detector {
	return New(Config{
		ScamThreshold:        0.35,
		HarvestHintThreshold: 0.55,
	}, classifier, logger.NewNop())
}

func TestScoreText(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantScore   float64
		wantSignals []string
	}{
		{
			name:        "clean text scores zero",
			text:        "hello there, are we still on for lunch tomorrow?",
			wantScore:   0,
			wantSignals: nil,
		},
		{
			name:        "one keyword",
			text:        "please complete your kyc",
			wantScore:   0.08,
			wantSignals: []string{"kyc"},
		},
		{
			name:        "signals reported in check order",
			text:        "urgent: pay via upi 1234567 usd today https://pay.example",
			wantScore:   0.08 + 0.05 + 0.05 + 0.08 + 0.05 + 0.07,
			wantSignals: []string{"upi", "urgent", "today", "long_digits", "currency", "link"},
		},
		{
			name:        "duplicate keyword counts once",
			text:        "otp otp otp",
			wantScore:   0.08,
			wantSignals: []string{"otp"},
		},
		{
			name:        "multiple digit runs count once",
			text:        "call 1234567 or 7654321",
			wantScore:   0.08,
			wantSignals: []string{"long_digits"},
		},
		{
			name:        "uppercase input is lowercased",
			text:        "SHARE YOUR OTP IMMEDIATELY",
			wantScore:   0.08 + 0.05,
			wantSignals: []string{"otp", "immediately"},
		},
		{
			name:        "score clamps at one",
			text:        strings.Join(scamKeywords, " ") + " " + strings.Join(urgencyPhrases, " "),
			wantScore:   1.0,
			wantSignals: append(append([]string{}, scamKeywords...), urgencyPhrases...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, signals := scoreText(tt.text)
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if !reflect.DeepEqual(signals, tt.wantSignals) {
				t.Errorf("signals = %v, want %v", signals, tt.wantSignals)
			}
		})
	}
}

func TestDetectHeuristicOnly(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantScam     bool
		wantHint     model.Phase
		wantReasonIs string
	}{
		{
			name:         "clean text is not scam",
			message:      "see you at the meeting",
			wantScam:     false,
			wantHint:     model.PhaseNotScam,
			wantReasonIs: "Signals: none",
		},
		{
			name:     "below threshold is not scam",
			message:  "please complete your kyc and share the otp",
			wantScam: false,
			wantHint: model.PhaseNotScam,
		},
		{
			// 4 keywords + 1 urgency phrase = 0.37
			name:     "above threshold without account hints hooks",
			message:  "urgent gift card prize: claim your compensation settlement today",
			wantScam: true,
			wantHint: model.PhaseHook,
		},
		{
			// "bank transfer" is in the account-hint subset
			name:     "account hint escalates to harvest",
			message:  "your refund is blocked, complete kyc and share otp via bank transfer immediately",
			wantScam: true,
			wantHint: model.PhaseHarvest,
		},
		{
			// 7 keywords = 0.56 >= harvest hint threshold
			name:     "high score escalates to harvest",
			message:  "otp kyc refund verification crypto wallet prize",
			wantScam: true,
			wantHint: model.PhaseHarvest,
		},
	}

	d := newTestDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(context.Background(), tt.message, nil)
			if res.ScamDetected != tt.wantScam {
				t.Errorf("ScamDetected = %v, want %v", res.ScamDetected, tt.wantScam)
			}
			if res.PhaseHint != tt.wantHint {
				t.Errorf("PhaseHint = %v, want %v", res.PhaseHint, tt.wantHint)
			}
			if tt.wantReasonIs != "" && res.Reasoning != tt.wantReasonIs {
				t.Errorf("Reasoning = %q, want %q", res.Reasoning, tt.wantReasonIs)
			}
			if res.Confidence < 0 || res.Confidence > 1 {
				t.Errorf("Confidence %v out of range", res.Confidence)
			}
		})
	}
}

func TestDetectIncludesHistory(t *testing.T) {
	d := newTestDetector(nil)
	history := []model.HistoryEntry{
		{Role: model.RoleUser, Message: "your refund is approved, pay the processing charge"},
		{Role: model.RoleAgent, Message: "what do you need from me?"},
	}

	res := d.Detect(context.Background(), "send the fee by wire immediately", history)
	if !res.ScamDetected {
		t.Fatalf("expected scam with accumulated history, got %+v", res)
	}
	want := []string{"refund", "fee", "processing charge", "wire", "immediately"}
	if !reflect.DeepEqual(res.Signals, want) {
		t.Errorf("Signals = %v, want %v", res.Signals, want)
	}
}

func TestDetectWithClassifier(t *testing.T) {
	tests := []struct {
		name       string
		classifier Classifier
		message    string
		wantScam   bool
		wantConf   float64
		wantHint   model.Phase
	}{
		{
			name:       "classifier verdict overrides low heuristic score",
			classifier: &fakeClassifier{cls: &Classification{Scam: true, Confidence: 0.9, Phase: "HOOK", Reason: "advance fee"}},
			message:    "hello friend",
			wantScam:   true,
			wantConf:   0.9,
			wantHint:   model.PhaseHook,
		},
		{
			name:       "classifier harvest hint is honored",
			classifier: &fakeClassifier{cls: &Classification{Scam: true, Confidence: 0.7, Phase: "HARVEST", Reason: "asking for account"}},
			message:    "hello friend",
			wantScam:   true,
			wantConf:   0.7,
			wantHint:   model.PhaseHarvest,
		},
		{
			name:       "unknown classifier phase falls back to signal hints",
			classifier: &fakeClassifier{cls: &Classification{Scam: true, Confidence: 0.6, Phase: "NONE"}},
			message:    "send it via upi",
			wantScam:   true,
			wantConf:   0.6,
			wantHint:   model.PhaseHarvest,
		},
		{
			// With a classifier present the harvest-by-score rule does not
			// apply; only the classifier phase or an account hint escalates.
			name:       "heuristic confidence wins when higher",
			classifier: &fakeClassifier{cls: &Classification{Scam: true, Confidence: 0.1, Phase: "NONE"}},
			message:    "otp kyc refund verification crypto wallet prize",
			wantScam:   true,
			wantConf:   0.56,
			wantHint:   model.PhaseHook,
		},
		{
			name:       "classifier error falls back to heuristics",
			classifier: &fakeClassifier{err: errors.New("timeout")},
			message:    "hello friend",
			wantScam:   false,
			wantConf:   0,
			wantHint:   model.PhaseNotScam,
		},
		{
			name:       "not scam forces NOT_SCAM hint",
			classifier: &fakeClassifier{cls: &Classification{Scam: false, Confidence: 0.2, Phase: "HOOK"}},
			message:    "hello friend",
			wantScam:   false,
			wantConf:   0.2,
			wantHint:   model.PhaseNotScam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(tt.classifier)
			res := d.Detect(context.Background(), tt.message, nil)
			if res.ScamDetected != tt.wantScam {
				t.Errorf("ScamDetected = %v, want %v", res.ScamDetected, tt.wantScam)
			}
			if math.Abs(res.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("Confidence = %v, want %v", res.Confidence, tt.wantConf)
			}
			if res.PhaseHint != tt.wantHint {
				t.Errorf("PhaseHint = %v, want %v", res.PhaseHint, tt.wantHint)
			}
		})
	}
}
