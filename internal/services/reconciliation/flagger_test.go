package reconciliation

import (
	"testing"

	"transport-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
)

func amt(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestClassify(t *testing.T) {
	zero := decimal.Zero
	near := []ScoredCandidate{{Score: 0.1}}

	cases := []struct {
		name         string
		anchor       models.SourceRecord
		scored       []ScoredCandidate
		wantKind     string
		wantPriority string
	}{
		{
			name:         "booking with amount due and no candidates",
			anchor:       models.SourceRecord{Stream: models.StreamBooking, ID: 1, Amount: amt(450)},
			wantKind:     models.ItemKindUnmatchedBooking,
			wantPriority: models.PriorityHigh,
		},
		{
			name:         "near misses rank medium",
			anchor:       models.SourceRecord{Stream: models.StreamBooking, ID: 2, Amount: amt(450)},
			scored:       near,
			wantKind:     models.ItemKindUnmatchedBooking,
			wantPriority: models.PriorityMedium,
		},
		{
			name:         "zero amount ranks low",
			anchor:       models.SourceRecord{Stream: models.StreamBooking, ID: 3, Amount: &zero},
			wantKind:     models.ItemKindUnmatchedBooking,
			wantPriority: models.PriorityLow,
		},
		{
			name:         "cancelled booking ranks low even with near misses",
			anchor:       models.SourceRecord{Stream: models.StreamBooking, ID: 4, Amount: amt(100), Cancelled: true},
			scored:       near,
			wantKind:     models.ItemKindUnmatchedBooking,
			wantPriority: models.PriorityLow,
		},
		{
			name:         "bank line debit with no receipts",
			anchor:       models.SourceRecord{Stream: models.StreamBankLine, ID: 5, Amount: amt(-80)},
			wantKind:     models.ItemKindUnmatchedBankLine,
			wantPriority: models.PriorityHigh,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flag := Classify(tc.anchor, tc.scored)
			if flag.ItemKind != tc.wantKind {
				t.Errorf("item kind = %s, want %s", flag.ItemKind, tc.wantKind)
			}
			if flag.Priority != tc.wantPriority {
				t.Errorf("priority = %s, want %s", flag.Priority, tc.wantPriority)
			}
			if flag.Reason == "" {
				t.Error("reason must not be empty")
			}
		})
	}
}
