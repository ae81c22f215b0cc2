package domain

import (
	"github.com/shopspring/decimal"
)

// Outcome is the terminal state of a reconciliation run.
type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeCancelled Outcome = "CANCELLED"
)

// ReconciliationResult is the raw output of the matching engine. At the end
// of a completed run every input record appears in exactly one of the three
// sets. A cancelled run carries empty sets: partial commits never leak.
type ReconciliationResult struct {
	Outcome         Outcome             `json:"outcome"`
	Matched         []MatchResult       `json:"matched"`
	UnmatchedLedger []UnmatchedLedger   `json:"unmatched_ledger"`
	UnmatchedTxn    []TransactionRecord `json:"unmatched_transactions"`
}

// Cancelled reports whether the run terminated on the cancellation path.
func (r *ReconciliationResult) Cancelled() bool {
	return r.Outcome == OutcomeCancelled
}

// Summary provides high-level statistics of a reconciliation run, echoing the
// settings it ran under so an exported report is self-describing.
type Summary struct {
	RunID                 string          `json:"run_id"`
	GeneratedAt           string          `json:"generated_at"`
	Outcome               Outcome         `json:"outcome"`
	Settings              Settings        `json:"settings"`
	TotalLedgerRecords    int             `json:"total_ledger_records"`
	TotalTxnRecords       int             `json:"total_transaction_records"`
	MatchedCount          int             `json:"matched_count"`
	UnmatchedLedgerCount  int             `json:"unmatched_ledger_count"`
	UnmatchedTxnCount     int             `json:"unmatched_transaction_count"`
	TotalLedgerAmount     decimal.Decimal `json:"total_ledger_amount"`
	TotalTxnAmount        decimal.Decimal `json:"total_transaction_amount"`
	MatchedLedgerAmount   decimal.Decimal `json:"matched_ledger_amount"`
	UnmatchedLedgerAmount decimal.Decimal `json:"unmatched_ledger_amount"`
}

// ReconciliationReport is the top-level structure for the final output,
// consumed by the JSON presenter and the XLSX exporter.
type ReconciliationReport struct {
	Summary         Summary             `json:"summary"`
	Matched         []MatchResult       `json:"matched"`
	UnmatchedLedger []UnmatchedLedger   `json:"unmatched_ledger"`
	UnmatchedTxn    []TransactionRecord `json:"unmatched_transactions"`
}
