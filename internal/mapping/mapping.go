// Package mapping infers which raw spreadsheet column supplies each semantic
// field, using per-dataset synonym dictionaries. Detection is pure: the same
// headers and dictionary always produce the same mapping.
package mapping

import (
	"sort"
	"strings"

	"ar-reconciliation/internal/domain"
)

// Dictionary maps a semantic field name to the accepted substrings that
// identify it in a raw column header. Matching is case-insensitive over
// whitespace-normalized header names. Synonym lists are configuration data;
// new synonyms are additive.
type Dictionary map[string][]string

// LedgerDictionary returns the built-in synonym table for the invoice-side
// dataset. Every key is a required semantic field.
func LedgerDictionary() Dictionary {
	return Dictionary{
		"invoiceNumber": {"invoice", "invoice number", "invoice no", "inv", "inv no", "number"},
		"customerName":  {"customer", "client", "account", "customer name", "name"},
		"invoiceDate":   {"invoice date", "date", "inv date"},
		"dueDate":       {"due date", "due", "payment due"},
		"amount":        {"amount", "total", "invoice amount", "value"},
		"currency":      {"currency", "ccy", "curr"},
		"reference":     {"reference", "ref", "memo", "payment ref"},
	}
}

// TransactionDictionary returns the built-in synonym table for the bank-side
// dataset.
func TransactionDictionary() Dictionary {
	return Dictionary{
		"transactionDate": {"transaction date", "date", "value date", "posted"},
		"description":     {"description", "details", "narrative", "memo"},
		"amount":          {"amount", "value", "payment"},
		"currency":        {"currency", "ccy", "curr"},
		"reference":       {"reference", "ref", "payment ref"},
		"bankId":          {"bank id", "id", "transaction id"},
	}
}

// Extend returns a copy of d with extra synonyms appended per field. Fields
// unknown to d are added as new required fields.
func (d Dictionary) Extend(extra map[string][]string) Dictionary {
	out := make(Dictionary, len(d))
	for field, syns := range d {
		out[field] = append([]string(nil), syns...)
	}
	for field, syns := range extra {
		out[field] = append(out[field], syns...)
	}
	return out
}

// Fields returns the semantic field names of the dictionary in stable order.
func (d Dictionary) Fields() []string {
	fields := make([]string, 0, len(d))
	for field := range d {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

// Detect selects, for each semantic field, the first raw column whose
// normalized name contains any of the field's synonyms. Fields with no
// matching column are absent from the result.
func Detect(headers []string, dict Dictionary) domain.FieldMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	mapping := make(domain.FieldMapping)
	for _, field := range dict.Fields() {
		for i, header := range normalized {
			if containsAny(header, dict[field]) {
				mapping[field] = headers[i]
				break
			}
		}
	}
	return mapping
}

func containsAny(header string, synonyms []string) bool {
	for _, syn := range synonyms {
		if strings.Contains(header, syn) {
			return true
		}
	}
	return false
}

// Validate runs Detect, applies explicit overrides on top, and reports the
// required fields still left unmapped. A non-empty missing list means the
// caller must resolve the mapping before normalization can proceed.
func Validate(headers []string, dict Dictionary, overrides domain.FieldMapping) (domain.FieldMapping, []string) {
	mapping := Detect(headers, dict)
	for field, column := range overrides {
		if column != "" {
			mapping[field] = column
		}
	}

	var missing []string
	for _, field := range dict.Fields() {
		if mapping[field] == "" {
			missing = append(missing, field)
		}
	}
	return mapping, missing
}
