// Package normalize canonicalizes raw spreadsheet rows into typed records.
// Per-cell parsing is total: malformed amounts collapse to zero and malformed
// dates to the empty string, so dirty data degrades scores instead of failing
// the run.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ar-reconciliation/internal/domain"
)

// DefaultCurrency is assumed when a row carries no currency code.
const DefaultCurrency = "USD"

// excelEpochOffset is the day count between the spreadsheet serial-date epoch
// (1899-12-30, with the 1900 leap-year bug baked in) and the Unix epoch.
const excelEpochOffset = 25569

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// CleanText collapses whitespace, trims, and upper-cases a text field.
func CleanText(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), " "))
}

// ParseAmount extracts a signed decimal amount from free-form cell text.
// Everything except digits, the first decimal point, and a leading minus is
// stripped; anything still unparsable collapses to zero.
func ParseAmount(value string) decimal.Decimal {
	var b strings.Builder
	seenDot := false
	seenDigit := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		case r == '-' && !seenDigit && b.Len() == 0:
			b.WriteRune(r)
		}
	}

	amount, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// ParseDate normalizes a cell to an ISO YYYY-MM-DD date string. Numeric cells
// are treated as spreadsheet serial dates; textual cells are tried against a
// set of common layouts. Unparsable or absent values yield "".
func ParseDate(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		days := int64(serial) - excelEpochOffset
		return time.Unix(days*86400, 0).UTC().Format(time.DateOnly)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return ""
}

// LedgerRecords normalizes raw invoice-side rows using the resolved field
// mapping. Each record receives a synthetic sequential identifier.
func LedgerRecords(rows []domain.RawRow, mapping domain.FieldMapping) []domain.LedgerRecord {
	records := make([]domain.LedgerRecord, 0, len(rows))
	for i, row := range rows {
		id := fmt.Sprintf("INV-%d", i+1)
		invoiceDate := ParseDate(row[mapping["invoiceDate"]])
		dueDate := ParseDate(row[mapping["dueDate"]])
		if dueDate == "" {
			dueDate = invoiceDate
		}
		records = append(records, domain.LedgerRecord{
			ID:            id,
			InvoiceNumber: CleanText(firstNonEmpty(row[mapping["invoiceNumber"]], row[mapping["reference"]], id)),
			CustomerName:  CleanText(row[mapping["customerName"]]),
			InvoiceDate:   invoiceDate,
			DueDate:       dueDate,
			Amount:        ParseAmount(row[mapping["amount"]]),
			Currency:      currencyOrDefault(row[mapping["currency"]]),
			Reference:     CleanText(firstNonEmpty(row[mapping["reference"]], row[mapping["invoiceNumber"]])),
		})
	}
	return records
}

// TransactionRecords normalizes raw bank-side rows using the resolved field
// mapping.
func TransactionRecords(rows []domain.RawRow, mapping domain.FieldMapping) []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		id := fmt.Sprintf("BNK-%d", i+1)
		records = append(records, domain.TransactionRecord{
			ID:              id,
			TransactionDate: ParseDate(row[mapping["transactionDate"]]),
			Description:     CleanText(row[mapping["description"]]),
			Amount:          ParseAmount(row[mapping["amount"]]),
			Currency:        currencyOrDefault(row[mapping["currency"]]),
			Reference:       CleanText(firstNonEmpty(row[mapping["reference"]], row[mapping["bankId"]])),
			BankID:          CleanText(firstNonEmpty(row[mapping["bankId"]], id)),
		})
	}
	return records
}

func currencyOrDefault(value string) string {
	if cleaned := CleanText(value); cleaned != "" {
		return cleaned
	}
	return DefaultCurrency
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
