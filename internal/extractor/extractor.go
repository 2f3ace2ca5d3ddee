// Package extractor scans free text for payment and identity artifacts.
package extractor

import (
	"regexp"
	"strings"

	"github.com/decoylabs/scam-honeypot/internal/model"
)

// Pre-compiled extraction patterns (compiled once, used on every message).
var (
	reAccount = regexp.MustCompile(`\b\d{8,18}\b`)
	reIFSC    = regexp.MustCompile(`(?i)\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	reUPI     = regexp.MustCompile(`\b[A-Za-z0-9.\-_]{2,}@\w+\b`)
	reURL     = regexp.MustCompile(`(?i)(https?://[^\s]+)`)
	reAmount  = regexp.MustCompile(`(?i)\b(?:inr|rs\.?|rupees|usd|\$)\s?\d{2,7}\b`)
)

// Static per-pattern confidences. Amounts are tagged low because the
// pattern has a high false-positive rate.
const (
	confAccount = 0.78
	confUPI     = 0.8
	confURL     = 0.75
	confAmount  = 0.4
)

// Extract runs regex-first extraction with light normalization and
// confidence tagging. It is total over any input: no matches yields
// empty sequences, never an error.
func Extract(text string) model.ExtractedIntel {
	intel := model.NewExtractedIntel()

	for _, m := range reAccount.FindAllString(text, -1) {
		intel.BankAccounts = append(intel.BankAccounts, model.IntelItem{Value: m, Confidence: confAccount})
	}
	for _, m := range reUPI.FindAllString(text, -1) {
		intel.UPIIDs = append(intel.UPIIDs, model.IntelItem{Value: strings.ToLower(m), Confidence: confUPI})
	}
	for _, m := range reURL.FindAllString(text, -1) {
		intel.URLs = append(intel.URLs, model.IntelItem{Value: cleanURL(m), Confidence: confURL})
	}
	for _, m := range reAmount.FindAllString(text, -1) {
		intel.Amounts = append(intel.Amounts, model.IntelItem{Value: m, Confidence: confAmount})
	}

	// Pair accounts with routing codes positionally; accounts beyond the
	// number of codes all get the last code. Best effort, not guaranteed.
	ifscCodes := reIFSC.FindAllString(text, -1)
	if len(intel.BankAccounts) > 0 && len(ifscCodes) > 0 {
		for i := range intel.BankAccounts {
			idx := i
			if idx > len(ifscCodes)-1 {
				idx = len(ifscCodes) - 1
			}
			intel.BankAccounts[i].IFSC = strings.ToUpper(ifscCodes[idx])
		}
	}

	return intel
}

// cleanURL strips trailing punctuation and brackets that commonly trail
// pasted links.
func cleanURL(url string) string {
	return strings.TrimSpace(strings.TrimRight(url, ".,);]"))
}
