package reconciliation

import (
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/services/matching"
)

// ScoredCandidate pairs a candidate with its confidence score.
type ScoredCandidate struct {
	matching.Candidate
	Score float64
}

// Flag is the classification of a record no candidate could link.
type Flag struct {
	ItemKind string
	Reason   string
	Priority string
}

// Classify decides how an unlinked anchor surfaces in the review queue.
// Near-misses (candidates exist, all under threshold) rank MEDIUM so a human
// looks at them; zero-amount and cancelled records rank LOW; everything else
// with money outstanding ranks HIGH.
func Classify(anchor models.SourceRecord, scored []ScoredCandidate) Flag {
	kind := models.ItemKindUnmatchedBooking
	reason := "no matching payments/receipts/banking found"
	if anchor.Stream == models.StreamBankLine {
		kind = models.ItemKindUnmatchedBankLine
		reason = "no matching receipts found"
	}

	switch {
	case !anchor.HasAmount() || anchor.Cancelled:
		return Flag{ItemKind: kind, Reason: reason, Priority: models.PriorityLow}
	case len(scored) > 0:
		return Flag{ItemKind: kind, Reason: "candidates below acceptance threshold", Priority: models.PriorityMedium}
	}
	return Flag{ItemKind: kind, Reason: reason, Priority: models.PriorityHigh}
}
