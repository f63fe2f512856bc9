package model

// Reason names a signal that contributed to a candidate pair's confidence.
// The ordered reasons list is what the manual-review UI shows next to a
// proposed match.
type Reason string

const (
	ReasonAmountMatch         Reason = "amount_match"
	ReasonExchangeAmountMatch Reason = "exchange_amount_match"
	ReasonDateWithinTolerance Reason = "date_within_tolerance"
	ReasonNameMatch           Reason = "name_match"
	ReasonKeywordMatch        Reason = "keyword_match"
)

// CandidatePair is a proposed match between one outgoing and one incoming
// transaction from different source accounts.
type CandidatePair struct {
	OutgoingID string   `json:"outgoing_id"`
	IncomingID string   `json:"incoming_id"`
	Confidence float64  `json:"confidence"`
	Reasons    []Reason `json:"reasons"`
}

// Involves reports whether the pair references the given transaction ID.
func (p CandidatePair) Involves(txID string) bool {
	return p.OutgoingID == txID || p.IncomingID == txID
}

// ConflictGroup holds two or more above-threshold candidates that share a
// transaction and could not be disambiguated automatically. None of them
// are auto-confirmed; the whole group goes to manual review.
type ConflictGroup struct {
	Pairs []CandidatePair `json:"pairs"`
}

// TransferSet is the reconciliation engine's final output for one run.
type TransferSet struct {
	// Confirmed pairs; each transaction ID appears in at most one entry.
	Confirmed []CandidatePair `json:"confirmed"`
	// Potential pairs below the confirmation threshold, or superseded by a
	// better match for the same transaction, ranked by confidence.
	Potential []CandidatePair `json:"potential"`
	// Conflicts that need manual resolution.
	Conflicts []ConflictGroup `json:"conflicts"`
	// Overrides maps every transaction ID in Confirmed to the configured
	// pair category. Downstream categorization must consult this map before
	// applying any keyword rule.
	Overrides map[string]string `json:"overrides"`
}
