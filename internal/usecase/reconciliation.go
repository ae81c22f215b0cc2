package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ar-reconciliation/internal/domain"
	"ar-reconciliation/internal/mapping"
	"ar-reconciliation/internal/normalize"
	"ar-reconciliation/internal/scoring"
)

// MappingOverrides are explicit field-to-column assignments applied on top of
// synonym detection, one set per dataset. This is the manual-mapping
// resolution step for headless runs.
type MappingOverrides struct {
	Ledger      domain.FieldMapping
	Transaction domain.FieldMapping
}

// ReconciliationUseCase orchestrates a full run: decode both sheets, infer
// field mappings, normalize, reconcile, and assemble the report.
type ReconciliationUseCase struct {
	source     SheetSource
	settings   domain.Settings
	ledgerDict mapping.Dictionary
	txnDict    mapping.Dictionary
	overrides  MappingOverrides
	logger     *slog.Logger
	progress   ProgressFunc
	now        func() time.Time
}

// NewReconciliationUseCase creates a new instance of the usecase with the
// built-in synonym dictionaries and the wall clock.
func NewReconciliationUseCase(source SheetSource, settings domain.Settings, logger *slog.Logger) *ReconciliationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconciliationUseCase{
		source:     source,
		settings:   settings,
		ledgerDict: mapping.LedgerDictionary(),
		txnDict:    mapping.TransactionDictionary(),
		logger:     logger,
		now:        time.Now,
	}
}

// ExtendDictionaries adds configured synonyms to the built-in tables.
func (uc *ReconciliationUseCase) ExtendDictionaries(ledger, txn map[string][]string) {
	uc.ledgerDict = uc.ledgerDict.Extend(ledger)
	uc.txnDict = uc.txnDict.Extend(txn)
}

// SetMappingOverrides installs explicit field mappings resolved by the user.
func (uc *ReconciliationUseCase) SetMappingOverrides(overrides MappingOverrides) {
	uc.overrides = overrides
}

// OnProgress registers an optional progress observer.
func (uc *ReconciliationUseCase) OnProgress(fn ProgressFunc) {
	uc.progress = fn
}

// WithClock pins the reference clock used for empty-date scoring fallback
// and the report timestamp.
func (uc *ReconciliationUseCase) WithClock(now func() time.Time) {
	uc.now = now
}

func (uc *ReconciliationUseCase) report(percent int, stage string) {
	if uc.progress != nil {
		uc.progress(percent, stage)
	}
}

// Run executes one reconciliation over the two dataset files. Mapping
// failures fail closed with *domain.ErrMissingFields; per-cell parse noise
// fails open inside normalization. Cancellation surfaces as a report with
// the cancelled outcome and empty result sets, not as an error.
func (uc *ReconciliationUseCase) Run(ctx context.Context, ledgerPath, txnPath string) (*domain.ReconciliationReport, error) {
	uc.report(10, StageParsing)

	ledgerHeaders, ledgerRows, err := uc.source.ReadSheet(ctx, ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("could not read ledger dataset: %w", err)
	}
	txnHeaders, txnRows, err := uc.source.ReadSheet(ctx, txnPath)
	if err != nil {
		return nil, fmt.Errorf("could not read transaction dataset: %w", err)
	}

	ledgerMapping, missing := mapping.Validate(ledgerHeaders, uc.ledgerDict, uc.overrides.Ledger)
	if len(missing) > 0 {
		return nil, &domain.ErrMissingFields{Dataset: "ledger", Fields: missing}
	}
	txnMapping, missing := mapping.Validate(txnHeaders, uc.txnDict, uc.overrides.Transaction)
	if len(missing) > 0 {
		return nil, &domain.ErrMissingFields{Dataset: "transaction", Fields: missing}
	}

	uc.report(25, StageNormalizing)
	ledger := normalize.LedgerRecords(ledgerRows, ledgerMapping)
	txns := normalize.TransactionRecords(txnRows, txnMapping)

	engine := NewEngine(uc.settings, scoring.NewScorerWithClock(uc.settings, uc.now), uc.logger)
	engine.OnProgress(uc.progress)
	result, err := engine.Reconcile(ctx, ledger, txns)
	if err != nil {
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	return uc.buildReport(result, ledger, txns), nil
}

// buildReport assembles the serializable report: a summary echoing settings
// and totals, plus the three result sheets.
func (uc *ReconciliationUseCase) buildReport(result *domain.ReconciliationResult, ledger []domain.LedgerRecord, txns []domain.TransactionRecord) *domain.ReconciliationReport {
	totalLedger := decimal.Zero
	for _, r := range ledger {
		totalLedger = totalLedger.Add(r.Amount)
	}
	totalTxn := decimal.Zero
	for _, t := range txns {
		totalTxn = totalTxn.Add(t.Amount)
	}
	matchedAmount := decimal.Zero
	for _, m := range result.Matched {
		matchedAmount = matchedAmount.Add(m.Ledger.Amount)
	}
	unmatchedAmount := decimal.Zero
	for _, u := range result.UnmatchedLedger {
		unmatchedAmount = unmatchedAmount.Add(u.Ledger.Amount)
	}

	return &domain.ReconciliationReport{
		Summary: domain.Summary{
			RunID:                 uuid.NewString(),
			GeneratedAt:           uc.now().UTC().Format(time.RFC3339),
			Outcome:               result.Outcome,
			Settings:              uc.settings,
			TotalLedgerRecords:    len(ledger),
			TotalTxnRecords:       len(txns),
			MatchedCount:          len(result.Matched),
			UnmatchedLedgerCount:  len(result.UnmatchedLedger),
			UnmatchedTxnCount:     len(result.UnmatchedTxn),
			TotalLedgerAmount:     totalLedger,
			TotalTxnAmount:        totalTxn,
			MatchedLedgerAmount:   matchedAmount,
			UnmatchedLedgerAmount: unmatchedAmount,
		},
		Matched:         result.Matched,
		UnmatchedLedger: result.UnmatchedLedger,
		UnmatchedTxn:    result.UnmatchedTxn,
	}
}
