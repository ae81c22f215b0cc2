package usecase

import (
	"context"

	"ar-reconciliation/internal/domain"
)

// SheetSource defines the interface for decoding a tabular dataset from a
// spreadsheet file. The usecase layer depends on this interface, not on a
// concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_source.go -source=interface.go SheetSource
type SheetSource interface {
	// ReadSheet returns the ordered raw column names and the data rows of
	// the first (or configured) sheet of the file at path.
	ReadSheet(ctx context.Context, path string) ([]string, []domain.RawRow, error)
}

// ProgressFunc observes engine progress at stage transitions and chunk
// boundaries. Informational only; the values carry no contract.
type ProgressFunc func(percent int, stage string)

// Progress stages, in the order a full run visits them.
const (
	StageParsing     = "parsing"
	StageNormalizing = "normalizing"
	StageScoring     = "scoring"
	StageMatching    = "matching"
	StageGrouping    = "grouping"
	StageDone        = "done"
)
