package matching

import (
	"context"
	"math"
	"sort"

	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// Signals carries the raw evidence a strategy observed for one candidate.
// Persisted verbatim on the relationship row for audit.
type Signals struct {
	AmountDelta    decimal.Decimal `json:"amount_delta"`
	DateDeltaDays  int             `json:"date_delta_days"`
	ReferenceEqual bool            `json:"reference_equal,omitempty"`
}

// Candidate is one potential link between an anchor and a target record. It is
// never persisted directly; the scorer and the acceptance threshold sit
// between a candidate and a relationship row.
type Candidate struct {
	Anchor  models.SourceRecord
	Target  models.SourceRecord
	Kind    string
	Method  string
	Signals Signals
}

// Strategy discovers candidates for one anchor against one target stream.
// Each call re-queries the store; malformed anchors yield no candidates and
// no error.
type Strategy interface {
	Name() string
	AnchorStream() models.Stream
	Match(ctx context.Context, anchor models.SourceRecord, store repository.RecordStore) ([]Candidate, error)
}

func methodRank(method string) int {
	switch method {
	case models.MethodDirectID:
		return 0
	case models.MethodReferenceMatch:
		return 1
	}
	return 2
}

// orderAndCap sorts candidates deterministically (exact-key methods first,
// then smaller date delta, smaller amount delta, lowest target id) and
// truncates to the configured cap.
func orderAndCap(cands []Candidate, max int) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if ra, rb := methodRank(a.Method), methodRank(b.Method); ra != rb {
			return ra < rb
		}
		if a.Signals.DateDeltaDays != b.Signals.DateDeltaDays {
			return a.Signals.DateDeltaDays < b.Signals.DateDeltaDays
		}
		if !a.Signals.AmountDelta.Equal(b.Signals.AmountDelta) {
			return a.Signals.AmountDelta.LessThan(b.Signals.AmountDelta)
		}
		return a.Target.ID < b.Target.ID
	})
	if max > 0 && len(cands) > max {
		cands = cands[:max]
	}
	return cands
}

func dateDeltaDays(a, b models.SourceRecord) int {
	if a.OccurredOn == nil || b.OccurredOn == nil {
		return 0
	}
	return int(math.Abs(a.OccurredOn.Sub(*b.OccurredOn).Hours()) / 24)
}

func amountDelta(anchorAmount decimal.Decimal, target models.SourceRecord) decimal.Decimal {
	if target.Amount == nil {
		return decimal.Zero
	}
	return target.Amount.Sub(anchorAmount).Abs()
}

// proximityMethod names the match method after the target stream and, for
// receipts, the spend category. The scorer keys base confidence and decay off
// these names.
func proximityMethod(target models.SourceRecord) string {
	switch target.Stream {
	case models.StreamPayment:
		return "payment_proximity_match"
	case models.StreamBankLine:
		return "bank_line_amount_match"
	case models.StreamReceipt:
		switch target.Category {
		case models.ReceiptCategoryFuel:
			return "fuel_proximity_match"
		case models.ReceiptCategoryMaintenance:
			return "maintenance_proximity_match"
		}
		return "receipt_proximity_match"
	}
	return "proximity_match"
}
