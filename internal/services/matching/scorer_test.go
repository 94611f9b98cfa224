package matching

import (
	"math"
	"testing"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
)

func amt(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func proximityCandidate(method string, anchorAmount float64, amountDelta float64, dateDelta int) Candidate {
	return Candidate{
		Anchor: models.SourceRecord{Stream: models.StreamBooking, ID: 1, Amount: amt(anchorAmount)},
		Target: models.SourceRecord{Stream: models.StreamReceipt, ID: 2},
		Kind:   models.KindBookingReceipt,
		Method: method,
		Signals: Signals{
			AmountDelta:   decimal.NewFromFloat(amountDelta),
			DateDeltaDays: dateDelta,
		},
	}
}

func TestScoreExactKeyMethods(t *testing.T) {
	cfg := config.DefaultMatching()

	direct := Candidate{Method: models.MethodDirectID}
	if got := Score(cfg, direct); got != 1.0 {
		t.Errorf("direct_id score = %v, want 1.0", got)
	}

	ref := Candidate{Method: models.MethodReferenceMatch}
	if got := Score(cfg, ref); got != 0.95 {
		t.Errorf("reference_match score = %v, want 0.95", got)
	}
}

func TestScoreFuelProximity(t *testing.T) {
	cfg := config.DefaultMatching()

	// 0.8 - 5/200 - 1/7
	c := proximityCandidate("fuel_proximity_match", 200, 5, 1)
	want := 0.8 - 5.0/200 - 1.0/7
	if got := Score(cfg, c); math.Abs(got-want) > 1e-9 {
		t.Errorf("fuel proximity score = %v, want %v", got, want)
	}
}

func TestScoreBaseConfidencePerCategory(t *testing.T) {
	cfg := config.DefaultMatching()

	cases := []struct {
		method string
		want   float64
	}{
		{"fuel_proximity_match", 0.8},
		{"maintenance_proximity_match", 0.6},
		{"receipt_proximity_match", 0.4},
		{"payment_proximity_match", 0.4},
		{"bank_line_amount_match", 0.4},
	}
	for _, tc := range cases {
		c := proximityCandidate(tc.method, 100, 0, 0)
		if got := Score(cfg, c); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s with zero deltas = %v, want %v", tc.method, got, tc.want)
		}
	}
}

func TestScoreFloorAndCeiling(t *testing.T) {
	cfg := config.DefaultMatching()

	// Deltas large enough to push the raw score negative.
	weak := proximityCandidate("receipt_proximity_match", 10, 49, 3)
	if got := Score(cfg, weak); got != ScoreFloor {
		t.Errorf("weak candidate score = %v, want floor %v", got, ScoreFloor)
	}

	for _, c := range []Candidate{
		proximityCandidate("fuel_proximity_match", 500, 0, 0),
		{Method: models.MethodDirectID},
	} {
		if got := Score(cfg, c); got < 0 || got > 1 {
			t.Errorf("score %v outside [0,1]", got)
		}
	}
}

func TestScoreMonotonicity(t *testing.T) {
	cfg := config.DefaultMatching()

	// Same method: smaller deltas never score lower.
	for _, method := range []string{"fuel_proximity_match", "payment_proximity_match"} {
		closer := proximityCandidate(method, 300, 2, 1)
		farther := proximityCandidate(method, 300, 20, 4)
		if Score(cfg, closer) < Score(cfg, farther) {
			t.Errorf("%s: closer candidate scored below farther one", method)
		}
	}
}

func TestScoreDecayWindowPerMethod(t *testing.T) {
	cfg := config.DefaultMatching()

	// Same deltas, receipt methods decay over 7 days, payments over 14.
	receipt := proximityCandidate("receipt_proximity_match", 100, 0, 2)
	payment := proximityCandidate("payment_proximity_match", 100, 0, 2)

	wantReceipt := 0.4 - 2.0/7
	wantPayment := 0.4 - 2.0/14
	if got := Score(cfg, receipt); math.Abs(got-wantReceipt) > 1e-9 {
		t.Errorf("receipt decay score = %v, want %v", got, wantReceipt)
	}
	if got := Score(cfg, payment); math.Abs(got-wantPayment) > 1e-9 {
		t.Errorf("payment decay score = %v, want %v", got, wantPayment)
	}
}

func TestScoreNegativeAnchorAmountUsesAbsolute(t *testing.T) {
	cfg := config.DefaultMatching()

	c := proximityCandidate("fuel_proximity_match", -200, 5, 1)
	want := 0.8 - 5.0/200 - 1.0/7
	if got := Score(cfg, c); math.Abs(got-want) > 1e-9 {
		t.Errorf("debit anchor score = %v, want %v", got, want)
	}
}
