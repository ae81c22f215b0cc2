// Package scoring combines textual, amount, date, and customer similarity
// into a single weighted match score with an explanation breakdown.
package scoring

import (
	"math"
	"time"

	"ar-reconciliation/internal/domain"
	"ar-reconciliation/internal/similarity"
)

// Component weights. Reference/description text is the strongest
// discriminator; amount is primarily a hard gate; date and customer are
// corroborating signals.
const (
	referenceWeight = 0.5
	amountWeight    = 0.25
	dateWeight      = 0.15
	customerWeight  = 0.10
)

// Scorer evaluates ledger/transaction pairings under a fixed set of
// settings. The clock only matters when a record carries no usable date; it
// is injectable so tests stay deterministic.
type Scorer struct {
	settings domain.Settings
	now      func() time.Time
}

// NewScorer creates a scorer using the wall clock for empty-date fallback.
func NewScorer(settings domain.Settings) *Scorer {
	return NewScorerWithClock(settings, time.Now)
}

// NewScorerWithClock creates a scorer with an explicit reference clock.
func NewScorerWithClock(settings domain.Settings, now func() time.Time) *Scorer {
	return &Scorer{settings: settings, now: now}
}

// Score evaluates one candidate pairing. The returned candidate always
// carries a full explanation, whether or not the pairing is later committed.
func (s *Scorer) Score(ledger domain.LedgerRecord, txn domain.TransactionRecord) domain.MatchCandidate {
	// The identifying token may sit in either the reference or the free-text
	// description depending on the data source; take the better of the two
	// plausible cross-field comparisons.
	refScore := math.Max(
		similarity.Score(ledger.Reference, firstNonEmpty(txn.Reference, txn.Description)),
		similarity.Score(ledger.InvoiceNumber, firstNonEmpty(txn.Description, txn.Reference)),
	)

	diff := ledger.Amount.Sub(txn.Amount).Abs()
	amountPass := diff.Cmp(s.settings.Tolerance) <= 0 || s.settings.AllowVariance
	amountScore := 0.0
	if amountPass {
		base := math.Max(ledger.Amount.InexactFloat64(), 1)
		amountScore = 1 - math.Min(diff.InexactFloat64()/base, 1)
	}

	ledgerDate := s.parseDate(ledger.InvoiceDate, ledger.DueDate)
	txnDate := s.parseDate(txn.TransactionDate)
	dayDiff := math.Abs(ledgerDate.Sub(txnDate).Hours() / 24)
	window := math.Max(float64(s.settings.DateWindow), 1)
	dateScore := math.Max(0, 1-dayDiff/window)

	customerScore := 0.0
	if s.settings.UseCustomer {
		customerScore = similarity.Score(ledger.CustomerName, txn.Description)
	}

	score := referenceWeight*refScore +
		amountWeight*amountScore +
		dateWeight*dateScore +
		customerWeight*customerScore

	return domain.MatchCandidate{
		Txn:        txn,
		Score:      score,
		AmountPass: amountPass,
		Explanation: domain.MatchExplanation{
			Reference: refScore,
			Amount:    amountScore,
			Date:      dateScore,
			Customer:  customerScore,
			DayDiff:   int(math.Round(dayDiff)),
		},
	}
}

// parseDate returns the first parsable ISO date among values, falling back
// to the reference clock when every value is empty or malformed.
func (s *Scorer) parseDate(values ...string) time.Time {
	for _, v := range values {
		if v == "" {
			continue
		}
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			return t
		}
	}
	return s.now()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
