package matching

import (
	"context"
	"strconv"

	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// exactKeyPass finds targets carrying the anchor's own id or external
// reference verbatim in their reference field.
func exactKeyPass(
	ctx context.Context,
	store repository.RecordStore,
	anchor models.SourceRecord,
	targetStream models.Stream,
	kind string,
) ([]Candidate, error) {
	anchorIDStr := strconv.FormatInt(anchor.ID, 10)
	refs := []string{anchorIDStr}
	if anchor.ExternalReference != "" {
		refs = append(refs, anchor.ExternalReference)
	}

	targets, err := store.FetchByReference(ctx, targetStream, refs)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, target := range targets {
		method := ""
		switch {
		case target.ExternalReference == anchorIDStr:
			method = models.MethodDirectID
		case anchor.ExternalReference != "" && target.ExternalReference == anchor.ExternalReference:
			method = models.MethodReferenceMatch
		default:
			continue
		}

		signals := Signals{ReferenceEqual: true, DateDeltaDays: dateDeltaDays(anchor, target)}
		if anchor.Amount != nil {
			signals.AmountDelta = amountDelta(*anchor.Amount, target)
		}

		out = append(out, Candidate{
			Anchor:  anchor,
			Target:  target,
			Kind:    kind,
			Method:  method,
			Signals: signals,
		})
	}
	return out, nil
}

// proximityPass finds targets inside the date window whose amount sits within
// the tolerance of the anchor amount. Anchors without a usable amount or date
// emit nothing: a zero-amount booking must not match everything on date alone.
func proximityPass(
	ctx context.Context,
	store repository.RecordStore,
	anchor models.SourceRecord,
	targetStream models.Stream,
	kind string,
	windowDays int,
	tolerance decimal.Decimal,
	absAmount bool,
	seen map[int64]bool,
) ([]Candidate, error) {
	if !anchor.HasAmount() || !anchor.HasDate() {
		return nil, nil
	}

	refAmount := *anchor.Amount
	if absAmount {
		refAmount = refAmount.Abs()
	}

	q := repository.CandidateQuery{
		DateFrom:  anchor.OccurredOn.AddDate(0, 0, -windowDays),
		DateTo:    anchor.OccurredOn.AddDate(0, 0, windowDays),
		AmountMin: refAmount.Sub(tolerance),
		AmountMax: refAmount.Add(tolerance),
	}

	targets, err := store.FetchCandidates(ctx, targetStream, q)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, target := range targets {
		if seen[target.ID] {
			continue
		}
		out = append(out, Candidate{
			Anchor: anchor,
			Target: target,
			Kind:   kind,
			Method: proximityMethod(target),
			Signals: Signals{
				AmountDelta:   amountDelta(refAmount, target),
				DateDeltaDays: dateDeltaDays(anchor, target),
			},
		})
	}
	return out, nil
}

// seenTargets collects target ids already claimed by an earlier pass so the
// proximity pass does not emit a duplicate candidate for the same target.
func seenTargets(cands []Candidate) map[int64]bool {
	seen := make(map[int64]bool, len(cands))
	for _, c := range cands {
		seen[c.Target.ID] = true
	}
	return seen
}
