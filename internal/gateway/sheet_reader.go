package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"ar-reconciliation/internal/domain"
)

// SpreadsheetReader implements the usecase.SheetSource interface for CSV and
// XLSX files. The file extension selects the decoder.
type SpreadsheetReader struct {
	// Sheet optionally names the worksheet to read from XLSX workbooks;
	// empty selects the first sheet.
	Sheet string
}

// NewSpreadsheetReader creates a reader that decodes the first worksheet.
func NewSpreadsheetReader() *SpreadsheetReader {
	return &SpreadsheetReader{}
}

// ReadSheet decodes the dataset at path into ordered headers and raw rows.
// Short data rows are padded with empty cells so every row carries a value
// for every header.
func (r *SpreadsheetReader) ReadSheet(ctx context.Context, path string) ([]string, []domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = r.readXLSX(path)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q for %s", ext, path)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file %s contains no header row", path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]domain.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(domain.RawRow, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *SpreadsheetReader) readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from %s: %w", sheet, path, err)
	}
	return rows, nil
}
