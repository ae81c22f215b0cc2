package domain

// MatchExplanation breaks a match score into its component signals.
// All components are in [0,1]; DayDiff is the rounded day distance used for
// the date component. Produced once per scoring call, never recomputed.
type MatchExplanation struct {
	Reference float64 `json:"reference"`
	Amount    float64 `json:"amount"`
	Date      float64 `json:"date"`
	Customer  float64 `json:"customer"`
	DayDiff   int     `json:"day_diff"`
}

// MatchCandidate is a scored (ledger, transaction) pairing. It is transient:
// the engine keeps at most the best candidate per unmatched ledger record.
type MatchCandidate struct {
	Txn         TransactionRecord `json:"transaction"`
	Score       float64           `json:"score"`
	AmountPass  bool              `json:"amount_pass"`
	Explanation MatchExplanation  `json:"explanation"`
}

// MatchResult is a committed pairing. The transaction may be a composite from
// the grouping fallback; its constituents appear in no other result.
type MatchResult struct {
	Ledger      LedgerRecord      `json:"ledger"`
	Txn         TransactionRecord `json:"transaction"`
	Score       float64           `json:"score"`
	Explanation MatchExplanation  `json:"explanation"`
}

// UnmatchedLedger is a ledger record that found no committable transaction,
// retaining the best-scoring candidate (if any) for review.
type UnmatchedLedger struct {
	Ledger    LedgerRecord    `json:"ledger"`
	Candidate *MatchCandidate `json:"candidate,omitempty"`
}
