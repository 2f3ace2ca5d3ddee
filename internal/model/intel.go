package model

// IntelItem is a single extracted artifact with its extraction-time
// confidence. IFSC is set only on bank accounts that could be paired
// with a routing code.
type IntelItem struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	IFSC       string  `json:"ifsc,omitempty"`
}

// ExtractedIntel groups extracted artifacts by kind. Values are
// deduplicated by exact string match over the conversation's lifetime.
type ExtractedIntel struct {
	BankAccounts []IntelItem `json:"bank_accounts"`
	UPIIDs       []IntelItem `json:"upi_ids"`
	URLs         []IntelItem `json:"urls"`
	Amounts      []IntelItem `json:"amounts"`
}

// NewExtractedIntel returns an ExtractedIntel with empty (non-nil)
// slices so all four keys serialize as arrays.
func NewExtractedIntel() ExtractedIntel {
	return ExtractedIntel{
		BankAccounts: []IntelItem{},
		UPIIDs:       []IntelItem{},
		URLs:         []IntelItem{},
		Amounts:      []IntelItem{},
	}
}

// Counts returns the number of items per kind, keyed by the JSON field name.
func (e ExtractedIntel) Counts() map[string]int {
	return map[string]int{
		"bank_accounts": len(e.BankAccounts),
		"upi_ids":       len(e.UPIIDs),
		"urls":          len(e.URLs),
		"amounts":       len(e.Amounts),
	}
}

// Clone returns a deep copy safe to hand out after releasing the
// conversation lock.
func (e ExtractedIntel) Clone() ExtractedIntel {
	out := ExtractedIntel{
		BankAccounts: make([]IntelItem, len(e.BankAccounts)),
		UPIIDs:       make([]IntelItem, len(e.UPIIDs)),
		URLs:         make([]IntelItem, len(e.URLs)),
		Amounts:      make([]IntelItem, len(e.Amounts)),
	}
	copy(out.BankAccounts, e.BankAccounts)
	copy(out.UPIIDs, e.UPIIDs)
	copy(out.URLs, e.URLs)
	copy(out.Amounts, e.Amounts)
	return out
}
