package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"ar-reconciliation/internal/domain"
)

const (
	sheetSummary         = "Summary"
	sheetMatched         = "Matched"
	sheetUnmatchedLedger = "Unmatched Ledger"
	sheetUnmatchedTxn    = "Unmatched Transactions"
)

// ExcelReportWriter exports a reconciliation report as an XLSX workbook with
// a Summary sheet of label/value rows plus the three result sheets.
type ExcelReportWriter struct{}

// NewExcelReportWriter creates a new exporter instance.
func NewExcelReportWriter() *ExcelReportWriter {
	return &ExcelReportWriter{}
}

// Write renders the report workbook and saves it at path.
func (w *ExcelReportWriter) Write(report *domain.ReconciliationReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummary(f, report.Summary); err != nil {
		return err
	}
	if err := w.writeMatched(f, report.Matched); err != nil {
		return err
	}
	if err := w.writeUnmatchedLedger(f, report.UnmatchedLedger); err != nil {
		return err
	}
	if err := w.writeUnmatchedTxn(f, report.UnmatchedTxn); err != nil {
		return err
	}

	// drop the default sheet created by excelize
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report workbook %s: %w", path, err)
	}
	return nil
}

func (w *ExcelReportWriter) writeSummary(f *excelize.File, s domain.Summary) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"AR Reconciliation Engine Report"},
		{"Run ID", s.RunID},
		{"Generated", s.GeneratedAt},
		{"Outcome", string(s.Outcome)},
		{"Threshold", s.Settings.Threshold},
		{"Tolerance", s.Settings.Tolerance.String()},
		{"Allow Variance", s.Settings.AllowVariance},
		{"Grouping", s.Settings.Grouping},
		{"Date Window", s.Settings.DateWindow},
		{"Use Customer", s.Settings.UseCustomer},
		{"Ledger Records", s.TotalLedgerRecords},
		{"Transaction Records", s.TotalTxnRecords},
		{"Matched", s.MatchedCount},
		{"Unmatched Ledger", s.UnmatchedLedgerCount},
		{"Unmatched Transactions", s.UnmatchedTxnCount},
		{"Total Ledger Amount", s.TotalLedgerAmount.String()},
		{"Total Transaction Amount", s.TotalTxnAmount.String()},
		{"Matched Ledger Amount", s.MatchedLedgerAmount.String()},
		{"Unmatched Ledger Amount", s.UnmatchedLedgerAmount.String()},
	}
	return writeRows(f, sheetSummary, rows)
}

func (w *ExcelReportWriter) writeMatched(f *excelize.File, matched []domain.MatchResult) error {
	if _, err := f.NewSheet(sheetMatched); err != nil {
		return fmt.Errorf("failed to create matched sheet: %w", err)
	}

	rows := [][]interface{}{{
		"Invoice Number", "Customer Name", "Invoice Date", "Due Date",
		"Invoice Amount", "Currency", "Bank Reference", "Bank Description",
		"Bank Amount", "Score", "Explanation",
	}}
	for _, m := range matched {
		explanation, err := json.Marshal(m.Explanation)
		if err != nil {
			return fmt.Errorf("failed to serialize explanation: %w", err)
		}
		rows = append(rows, []interface{}{
			m.Ledger.InvoiceNumber,
			m.Ledger.CustomerName,
			m.Ledger.InvoiceDate,
			m.Ledger.DueDate,
			m.Ledger.Amount.String(),
			m.Ledger.Currency,
			m.Txn.Reference,
			m.Txn.Description,
			m.Txn.Amount.String(),
			m.Score,
			string(explanation),
		})
	}
	return writeRows(f, sheetMatched, rows)
}

func (w *ExcelReportWriter) writeUnmatchedLedger(f *excelize.File, unmatched []domain.UnmatchedLedger) error {
	if _, err := f.NewSheet(sheetUnmatchedLedger); err != nil {
		return fmt.Errorf("failed to create unmatched ledger sheet: %w", err)
	}

	rows := [][]interface{}{{
		"Invoice Number", "Customer Name", "Invoice Date", "Due Date",
		"Amount", "Currency", "Reference", "Candidate Score",
	}}
	for _, u := range unmatched {
		candidateScore := 0.0
		if u.Candidate != nil {
			candidateScore = u.Candidate.Score
		}
		rows = append(rows, []interface{}{
			u.Ledger.InvoiceNumber,
			u.Ledger.CustomerName,
			u.Ledger.InvoiceDate,
			u.Ledger.DueDate,
			u.Ledger.Amount.String(),
			u.Ledger.Currency,
			u.Ledger.Reference,
			candidateScore,
		})
	}
	return writeRows(f, sheetUnmatchedLedger, rows)
}

func (w *ExcelReportWriter) writeUnmatchedTxn(f *excelize.File, unmatched []domain.TransactionRecord) error {
	if _, err := f.NewSheet(sheetUnmatchedTxn); err != nil {
		return fmt.Errorf("failed to create unmatched transactions sheet: %w", err)
	}

	rows := [][]interface{}{{
		"Bank ID", "Transaction Date", "Description", "Amount", "Currency", "Reference",
	}}
	for _, t := range unmatched {
		rows = append(rows, []interface{}{
			t.BankID,
			t.TransactionDate,
			t.Description,
			t.Amount.String(),
			t.Currency,
			t.Reference,
		})
	}
	return writeRows(f, sheetUnmatchedTxn, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
