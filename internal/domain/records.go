package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawRow is a single undecoded spreadsheet row, keyed by raw column name.
// Values are always text; typing happens in the normalizer.
type RawRow map[string]string

// FieldMapping maps a semantic field name (e.g. "amount", "reference") to the
// raw column that supplies it. One mapping per dataset per run.
type FieldMapping map[string]string

// LedgerRecord represents an invoice-side entry to be matched.
// Immutable after normalization. Dates are ISO YYYY-MM-DD strings; an empty
// date means the source value was absent or unparsable.
type LedgerRecord struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Reference     string          `json:"reference"`
}

// TransactionRecord represents a bank/payment-side entry to be matched.
// It may be a composite synthesized by the grouping fallback, in which case
// ID concatenates the constituent IDs and Amount is their sum.
type TransactionRecord struct {
	ID              string          `json:"id"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Reference       string          `json:"reference"`
	BankID          string          `json:"bank_id"`
}

// MergeTransactions synthesizes a composite transaction from two constituents:
// summed amount, first member's date and currency, joined identifiers.
func MergeTransactions(a, b TransactionRecord) TransactionRecord {
	return TransactionRecord{
		ID:              a.ID + " + " + b.ID,
		TransactionDate: a.TransactionDate,
		Description:     a.Description + " | " + b.Description,
		Amount:          a.Amount.Add(b.Amount),
		Currency:        a.Currency,
		Reference:       a.Reference + " | " + b.Reference,
		BankID:          a.BankID + " | " + b.BankID,
	}
}

// ConstituentIDs returns the IDs that make up this transaction: a single
// element for a plain record, every member for a composite.
func (t TransactionRecord) ConstituentIDs() []string {
	return strings.Split(t.ID, " + ")
}
