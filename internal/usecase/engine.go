package usecase

import (
	"context"
	"log/slog"
	"sync"

	"ar-reconciliation/internal/domain"
	"ar-reconciliation/internal/scoring"
)

// ChunkSize is the number of ledger records scored between cancellation
// checks and progress reports. A chunk's internal loop is not interruptible.
const ChunkSize = 250

// Engine assigns ledger records to transaction records one-to-one by greedy
// best-score selection, with an optional many-to-one grouping fallback over
// the residue. One logical run at a time per instance; concurrent Reconcile
// calls are serialized by a run-scoped lock.
type Engine struct {
	settings domain.Settings
	scorer   *scoring.Scorer
	logger   *slog.Logger
	progress ProgressFunc

	runMu sync.Mutex
}

// NewEngine creates an engine for the given settings. The scorer carries the
// reference clock used for empty-date fallback.
func NewEngine(settings domain.Settings, scorer *scoring.Scorer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{settings: settings, scorer: scorer, logger: logger}
}

// OnProgress registers an optional progress observer. Must be set before
// Reconcile is called.
func (e *Engine) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

func (e *Engine) report(percent int, stage string) {
	if e.progress != nil {
		e.progress(percent, stage)
	}
}

// Reconcile partitions the inputs into matched and unmatched sets. It
// processes ledger records in chunks of ChunkSize, checking ctx between
// chunks; a cancelled run returns the cancelled outcome with empty sets and
// no error. Input order is preserved in every output set.
func (e *Engine) Reconcile(ctx context.Context, ledger []domain.LedgerRecord, txns []domain.TransactionRecord) (*domain.ReconciliationResult, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if err := e.settings.Validate(); err != nil {
		return nil, err
	}

	e.logger.Info("reconciliation started",
		"ledger_records", len(ledger),
		"transaction_records", len(txns),
		"threshold", e.settings.Threshold,
		"grouping", e.settings.Grouping,
	)
	e.report(45, StageScoring)

	matched := make([]domain.MatchResult, 0)
	unmatchedLedger := make([]domain.UnmatchedLedger, 0)
	claimed := make(map[string]struct{}, len(txns))

	for start := 0; start < len(ledger); start += ChunkSize {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("reconciliation cancelled", "processed", start)
			return cancelledResult(), nil
		}

		end := start + ChunkSize
		if end > len(ledger) {
			end = len(ledger)
		}
		for _, record := range ledger[start:end] {
			best := e.bestCandidate(record, txns, claimed)
			if best != nil && best.Score >= e.settings.Threshold && best.AmountPass {
				claimed[best.Txn.ID] = struct{}{}
				matched = append(matched, domain.MatchResult{
					Ledger:      record,
					Txn:         best.Txn,
					Score:       best.Score,
					Explanation: best.Explanation,
				})
			} else {
				unmatchedLedger = append(unmatchedLedger, domain.UnmatchedLedger{
					Ledger:    record,
					Candidate: best,
				})
			}
		}

		e.report(45+int(float64(start)/float64(len(ledger))*40), StageMatching)
	}

	unmatchedTxn := make([]domain.TransactionRecord, 0)
	for _, txn := range txns {
		if _, ok := claimed[txn.ID]; !ok {
			unmatchedTxn = append(unmatchedTxn, txn)
		}
	}

	if e.settings.Grouping {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("reconciliation cancelled before grouping")
			return cancelledResult(), nil
		}
		e.report(85, StageGrouping)
		var grouped []domain.MatchResult
		grouped, unmatchedLedger, unmatchedTxn = e.groupMatch(unmatchedLedger, unmatchedTxn)
		matched = append(matched, grouped...)
	}

	e.report(100, StageDone)
	e.logger.Info("reconciliation completed",
		"matched", len(matched),
		"unmatched_ledger", len(unmatchedLedger),
		"unmatched_transactions", len(unmatchedTxn),
	)

	return &domain.ReconciliationResult{
		Outcome:         domain.OutcomeCompleted,
		Matched:         matched,
		UnmatchedLedger: unmatchedLedger,
		UnmatchedTxn:    unmatchedTxn,
	}, nil
}

// bestCandidate scores record against every unclaimed transaction and keeps
// the strictly highest score; the first transaction seen wins ties, so the
// result is deterministic in input order.
func (e *Engine) bestCandidate(record domain.LedgerRecord, txns []domain.TransactionRecord, claimed map[string]struct{}) *domain.MatchCandidate {
	var best *domain.MatchCandidate
	for _, txn := range txns {
		if _, ok := claimed[txn.ID]; ok {
			continue
		}
		candidate := e.scorer.Score(record, txn)
		if best == nil || candidate.Score > best.Score {
			best = &candidate
		}
	}
	return best
}

// groupMatch searches, for each leftover ledger record, unordered pairs of
// leftover transactions whose summed amount satisfies the tolerance, and
// commits the first pair whose composite still clears the threshold. This is
// first-fit by input order, not best-fit, and only ever pairs. It runs over
// the residual pools, which keeps the quadratic pair scan bounded.
func (e *Engine) groupMatch(unmatched []domain.UnmatchedLedger, remaining []domain.TransactionRecord) ([]domain.MatchResult, []domain.UnmatchedLedger, []domain.TransactionRecord) {
	matched := make([]domain.MatchResult, 0)
	stillUnmatched := make([]domain.UnmatchedLedger, 0, len(unmatched))
	pool := append([]domain.TransactionRecord(nil), remaining...)

	for _, entry := range unmatched {
		i, j, candidate := e.findPair(entry.Ledger, pool)
		if candidate == nil {
			stillUnmatched = append(stillUnmatched, entry)
			continue
		}

		composite := domain.MergeTransactions(pool[i], pool[j])
		matched = append(matched, domain.MatchResult{
			Ledger:      entry.Ledger,
			Txn:         composite,
			Score:       candidate.Score,
			Explanation: candidate.Explanation,
		})
		// remove j first so i stays valid
		pool = append(pool[:j], pool[j+1:]...)
		pool = append(pool[:i], pool[i+1:]...)
	}

	return matched, stillUnmatched, pool
}

// findPair returns the indices of the first qualifying pair along with the
// re-scored candidate. The scoring view carries the first member's reference
// and the space-joined descriptions, so token overlap behaves as if the two
// payments were one.
func (e *Engine) findPair(ledger domain.LedgerRecord, pool []domain.TransactionRecord) (int, int, *domain.MatchCandidate) {
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			sum := pool[i].Amount.Add(pool[j].Amount)
			if sum.Sub(ledger.Amount).Abs().Cmp(e.settings.Tolerance) > 0 {
				continue
			}
			view := pool[i]
			view.Amount = sum
			view.Description = pool[i].Description + " " + pool[j].Description
			candidate := e.scorer.Score(ledger, view)
			if candidate.Score >= e.settings.Threshold {
				return i, j, &candidate
			}
		}
	}
	return 0, 0, nil
}

func cancelledResult() *domain.ReconciliationResult {
	return &domain.ReconciliationResult{
		Outcome:         domain.OutcomeCancelled,
		Matched:         []domain.MatchResult{},
		UnmatchedLedger: []domain.UnmatchedLedger{},
		UnmatchedTxn:    []domain.TransactionRecord{},
	}
}
