package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ar-reconciliation/internal/domain"
	"ar-reconciliation/internal/scoring"
	"ar-reconciliation/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func newTestEngine(settings domain.Settings) *usecase.Engine {
	return usecase.NewEngine(settings, scoring.NewScorerWithClock(settings, fixedClock), nil)
}

func ledgerRecord(id, ref, date, amount string) domain.LedgerRecord {
	return domain.LedgerRecord{
		ID:            id,
		InvoiceNumber: ref,
		InvoiceDate:   date,
		DueDate:       date,
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		Reference:     ref,
	}
}

func txnRecord(id, ref, desc, date, amount string) domain.TransactionRecord {
	return domain.TransactionRecord{
		ID:              id,
		TransactionDate: date,
		Description:     desc,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "USD",
		Reference:       ref,
		BankID:          id,
	}
}

func TestEngine_Reconcile_CommitsStrongMatch(t *testing.T) {
	engine := newTestEngine(domain.DefaultSettings())

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
	}
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "PAYMENT INV-0001", "2024-01-03", "1000.00"),
		txnRecord("BNK-2", "", "MISC DEBIT", "", "500.00"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, txns)

	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, result.Outcome)
	assert.Len(t, result.Matched, 1)
	assert.Empty(t, result.UnmatchedLedger)

	match := result.Matched[0]
	assert.Equal(t, "BNK-1", match.Txn.ID)
	assert.GreaterOrEqual(t, match.Score, 0.75)
	assert.Equal(t, 2, match.Explanation.DayDiff)

	// the leftover transaction survives in input order
	assert.Len(t, result.UnmatchedTxn, 1)
	assert.Equal(t, "BNK-2", result.UnmatchedTxn[0].ID)
}

func TestEngine_Reconcile_AmountGateBlocksCommit(t *testing.T) {
	engine := newTestEngine(domain.DefaultSettings())

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
	}
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "PAYMENT INV-0001", "2024-01-03", "1050.00"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, txns)

	assert.NoError(t, err)
	assert.Empty(t, result.Matched)
	assert.Len(t, result.UnmatchedLedger, 1)

	// the off-amount transaction is still surfaced as the best candidate
	candidate := result.UnmatchedLedger[0].Candidate
	if assert.NotNil(t, candidate) {
		assert.Equal(t, "BNK-1", candidate.Txn.ID)
		assert.False(t, candidate.AmountPass)
		assert.Equal(t, 0.0, candidate.Explanation.Amount)
	}
	assert.Len(t, result.UnmatchedTxn, 1)
}

func TestEngine_Reconcile_GroupingFallback(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Grouping = true
	engine := newTestEngine(settings)

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
	}
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "PART PAYMENT INV-0001", "2024-01-02", "600.00"),
		txnRecord("BNK-2", "INV-0001", "PART PAYMENT INV-0001", "2024-01-02", "400.00"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, txns)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)
	assert.Empty(t, result.UnmatchedLedger)
	assert.Empty(t, result.UnmatchedTxn)

	composite := result.Matched[0].Txn
	assert.Equal(t, "BNK-1 + BNK-2", composite.ID)
	assert.ElementsMatch(t, []string{"BNK-1", "BNK-2"}, composite.ConstituentIDs())
	assert.True(t, composite.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "PART PAYMENT INV-0001 | PART PAYMENT INV-0001", composite.Description)
	assert.Equal(t, "2024-01-02", composite.TransactionDate)
	assert.GreaterOrEqual(t, result.Matched[0].Score, settings.Threshold)
}

func TestEngine_Reconcile_GroupingFirstFit(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Grouping = true
	engine := newTestEngine(settings)

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
	}
	// two qualifying pairs exist; the first in input order wins
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "INV-0001 SPLIT A", "2024-01-01", "700.00"),
		txnRecord("BNK-2", "INV-0001", "INV-0001 SPLIT B", "2024-01-01", "300.00"),
		txnRecord("BNK-3", "INV-0001", "INV-0001 SPLIT C", "2024-01-01", "500.00"),
		txnRecord("BNK-4", "INV-0001", "INV-0001 SPLIT D", "2024-01-01", "500.00"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, txns)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)
	assert.Equal(t, "BNK-1 + BNK-2", result.Matched[0].Txn.ID)
	assert.Len(t, result.UnmatchedTxn, 2)
	assert.Equal(t, "BNK-3", result.UnmatchedTxn[0].ID)
	assert.Equal(t, "BNK-4", result.UnmatchedTxn[1].ID)
}

func TestEngine_Reconcile_CancellationReturnsNoPartialResults(t *testing.T) {
	engine := newTestEngine(domain.DefaultSettings())

	ledger := make([]domain.LedgerRecord, 500)
	for i := range ledger {
		ledger[i] = ledgerRecord(fmt.Sprintf("INV-%d", i+1), fmt.Sprintf("INV-%04d", i+1), "2024-01-01", "100.00")
	}
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "PAYMENT INV-0001", "2024-01-01", "100.00"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	engine.OnProgress(func(percent int, stage string) {
		// fires at the first chunk boundary, before the second chunk starts
		if stage == usecase.StageMatching {
			cancel()
		}
	})

	result, err := engine.Reconcile(ctx, ledger, txns)

	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, result.Outcome)
	assert.True(t, result.Cancelled())
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.UnmatchedLedger)
	assert.Empty(t, result.UnmatchedTxn)
}

func TestEngine_Reconcile_EmptyTransactionDataset(t *testing.T) {
	engine := newTestEngine(domain.DefaultSettings())

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
		ledgerRecord("INV-2", "INV-0002", "2024-01-02", "250.00"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, nil)

	assert.NoError(t, err)
	assert.Empty(t, result.Matched)
	assert.Len(t, result.UnmatchedLedger, 2)
	for _, entry := range result.UnmatchedLedger {
		assert.Nil(t, entry.Candidate)
	}
	assert.Empty(t, result.UnmatchedTxn)
}

func TestEngine_Reconcile_TieBreaksOnInputOrder(t *testing.T) {
	engine := newTestEngine(domain.DefaultSettings())

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
	}
	// identical transactions: the first seen must win
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "PAYMENT INV-0001", "2024-01-01", "1000.00"),
		txnRecord("BNK-2", "INV-0001", "PAYMENT INV-0001", "2024-01-01", "1000.00"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, txns)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)
	assert.Equal(t, "BNK-1", result.Matched[0].Txn.ID)
	assert.Equal(t, "BNK-2", result.UnmatchedTxn[0].ID)
}

func TestEngine_Reconcile_Deterministic(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Grouping = true

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
		ledgerRecord("INV-2", "INV-0002", "2024-01-04", "320.50"),
		ledgerRecord("INV-3", "INV-0003", "", "75.00"),
	}
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0002", "PAYMENT INV-0002", "2024-01-05", "320.50"),
		txnRecord("BNK-2", "", "UNRELATED CHARGE", "2024-01-06", "12.00"),
		txnRecord("BNK-3", "INV-0001", "INV-0001 PART ONE", "2024-01-02", "400.00"),
		txnRecord("BNK-4", "INV-0001", "INV-0001 PART TWO", "2024-01-02", "600.00"),
	}

	first, err := newTestEngine(settings).Reconcile(context.Background(), ledger, txns)
	assert.NoError(t, err)
	second, err := newTestEngine(settings).Reconcile(context.Background(), ledger, txns)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Reconcile_Invariants(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Grouping = true
	engine := newTestEngine(settings)

	ledger := []domain.LedgerRecord{
		ledgerRecord("INV-1", "INV-0001", "2024-01-01", "1000.00"),
		ledgerRecord("INV-2", "INV-0002", "2024-01-02", "500.00"),
		ledgerRecord("INV-3", "INV-0003", "2024-01-03", "999.99"),
	}
	txns := []domain.TransactionRecord{
		txnRecord("BNK-1", "INV-0001", "PAYMENT INV-0001", "2024-01-01", "1000.00"),
		txnRecord("BNK-2", "INV-0002", "INV-0002 FIRST HALF", "2024-01-02", "250.00"),
		txnRecord("BNK-3", "INV-0002", "INV-0002 SECOND HALF", "2024-01-02", "250.00"),
		txnRecord("BNK-4", "", "NOISE", "2024-01-09", "77.70"),
	}

	result, err := engine.Reconcile(context.Background(), ledger, txns)
	assert.NoError(t, err)

	// threshold soundness
	for _, m := range result.Matched {
		assert.GreaterOrEqual(t, m.Score, settings.Threshold)
	}

	// injectivity over constituent transaction ids
	seen := map[string]bool{}
	for _, m := range result.Matched {
		for _, id := range m.Txn.ConstituentIDs() {
			assert.False(t, seen[id], "transaction %s matched twice", id)
			seen[id] = true
		}
	}

	// every record lands in exactly one output set
	assert.Equal(t, len(ledger), len(result.Matched)+len(result.UnmatchedLedger))
	constituents := 0
	for _, m := range result.Matched {
		constituents += len(m.Txn.ConstituentIDs())
	}
	assert.Equal(t, len(txns), constituents+len(result.UnmatchedTxn))
}
