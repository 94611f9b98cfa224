package matching

import (
	"context"
	"reflect"
	"testing"
	"time"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"

	"github.com/shopspring/decimal"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestBookingPaymentExactKey(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Payments = []models.Payment{
		{ID: 10, ReceivedOn: day("2026-01-22"), Amount: amt(450), ReferenceNumber: "025432"},
		{ID: 11, ReceivedOn: day("2026-01-25"), Amount: amt(450), ReferenceNumber: "7"},
	}

	booking := models.Booking{
		ID:                7,
		ReservationNumber: "025432",
		PickupOn:          day("2026-01-22"),
		AmountDue:         amt(450),
	}

	strategy := NewBookingPayment(config.DefaultMatching())
	cands, err := strategy.Match(context.Background(), booking.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}

	// Payment 11 carries the booking's own id: direct_id ranks first.
	if cands[0].Target.ID != 11 || cands[0].Method != models.MethodDirectID {
		t.Errorf("first candidate = (%d, %s), want (11, direct_id)", cands[0].Target.ID, cands[0].Method)
	}
	if cands[1].Target.ID != 10 || cands[1].Method != models.MethodReferenceMatch {
		t.Errorf("second candidate = (%d, %s), want (10, reference_match)", cands[1].Target.ID, cands[1].Method)
	}
	if !cands[1].Signals.ReferenceEqual {
		t.Error("reference match candidate should carry reference_equal signal")
	}
}

func TestBookingPaymentProximityOrderingAndCap(t *testing.T) {
	store := repository.NewMemoryStore()
	deltas := map[int64]string{
		1: "2026-02-04", // 3 days
		2: "2026-02-02", // 1 day
		3: "2026-02-01", // 0 days
		4: "2026-02-03", // 2 days
		5: "2026-01-31", // 1 day
		6: "2026-02-06", // 5 days
		7: "2026-02-05", // 4 days
	}
	for id, d := range deltas {
		store.Payments = append(store.Payments, models.Payment{ID: id, ReceivedOn: day(d), Amount: amt(450)})
	}

	booking := models.Booking{ID: 1, PickupOn: day("2026-02-01"), AmountDue: amt(450)}
	strategy := NewBookingPayment(config.DefaultMatching())

	first, err := strategy.Match(context.Background(), booking.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	var gotIDs []int64
	for _, c := range first {
		gotIDs = append(gotIDs, c.Target.ID)
	}
	// Smaller date delta first, id breaks the tie between 2 and 5.
	wantIDs := []int64{3, 2, 5, 4, 1}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("candidate order = %v, want %v", gotIDs, wantIDs)
	}

	// A second invocation re-queries and reproduces the same ordering.
	second, err := strategy.Match(context.Background(), booking.Source(), store)
	if err != nil {
		t.Fatalf("Match (second): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two invocations over unchanged data produced different candidate lists")
	}
}

func TestProximitySkipsAnchorsWithoutAmountOrDate(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Payments = []models.Payment{
		{ID: 1, ReceivedOn: day("2026-03-01"), Amount: amt(100)},
	}
	strategy := NewBookingPayment(config.DefaultMatching())

	zero := decimal.Zero
	cases := []struct {
		name    string
		booking models.Booking
	}{
		{"nil amount", models.Booking{ID: 1, PickupOn: day("2026-03-01")}},
		{"zero amount", models.Booking{ID: 1, PickupOn: day("2026-03-01"), AmountDue: &zero}},
		{"nil date", models.Booking{ID: 1, AmountDue: amt(100)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cands, err := strategy.Match(context.Background(), tc.booking.Source(), store)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if len(cands) != 0 {
				t.Errorf("got %d candidates, want 0", len(cands))
			}
		})
	}
}

func TestBookingReceiptUsesTighterWindowAndTolerance(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Receipts = []models.Receipt{
		{ID: 1, PurchasedOn: day("2026-02-02"), Amount: amt(205), Category: models.ReceiptCategoryFuel},
		{ID: 2, PurchasedOn: day("2026-02-06"), Amount: amt(205), Category: models.ReceiptCategoryFuel}, // outside +-3d
		{ID: 3, PurchasedOn: day("2026-02-02"), Amount: amt(275), Category: models.ReceiptCategoryFuel}, // outside $50
	}

	booking := models.Booking{ID: 1, PickupOn: day("2026-02-01"), AmountDue: amt(200)}
	strategy := NewBookingReceipt(config.DefaultMatching())

	cands, err := strategy.Match(context.Background(), booking.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(cands) != 1 || cands[0].Target.ID != 1 {
		t.Fatalf("candidates = %v, want only receipt 1", cands)
	}
	if cands[0].Method != "fuel_proximity_match" {
		t.Errorf("method = %s, want fuel_proximity_match", cands[0].Method)
	}
	if cands[0].Signals.DateDeltaDays != 1 {
		t.Errorf("date delta = %d, want 1", cands[0].Signals.DateDeltaDays)
	}
	if !cands[0].Signals.AmountDelta.Equal(decimal.NewFromInt(5)) {
		t.Errorf("amount delta = %v, want 5", cands[0].Signals.AmountDelta)
	}
}

func TestBookingBankLineRequiresExactAmount(t *testing.T) {
	store := repository.NewMemoryStore()
	store.BankLines = []models.BankLine{
		{ID: 1, PostedOn: day("2026-01-23"), Amount: amt(450)},
		{ID: 2, PostedOn: day("2026-01-23"), Amount: amt(449.5)},
	}

	booking := models.Booking{ID: 1, PickupOn: day("2026-01-22"), AmountDue: amt(450)}
	strategy := NewBookingBankLine(config.DefaultMatching())

	cands, err := strategy.Match(context.Background(), booking.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(cands) != 1 || cands[0].Target.ID != 1 {
		t.Fatalf("candidates = %v, want only line 1", cands)
	}
	if cands[0].Method != "bank_line_amount_match" {
		t.Errorf("method = %s, want bank_line_amount_match", cands[0].Method)
	}
}

func TestBankLineReceiptMatchesDebitsOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Receipts = []models.Receipt{
		{ID: 1, PurchasedOn: day("2026-04-10"), Amount: amt(80), Category: models.ReceiptCategoryFuel},
	}
	strategy := NewBankLineReceipt(config.DefaultMatching())

	debit := models.BankLine{ID: 5, PostedOn: day("2026-04-11"), Amount: amt(-80)}
	cands, err := strategy.Match(context.Background(), debit.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(cands) != 1 || cands[0].Target.ID != 1 {
		t.Fatalf("debit candidates = %v, want receipt 1", cands)
	}
	if cands[0].Kind != models.KindBankLineReceipt {
		t.Errorf("kind = %s, want %s", cands[0].Kind, models.KindBankLineReceipt)
	}

	credit := models.BankLine{ID: 6, PostedOn: day("2026-04-11"), Amount: amt(80)}
	cands, err = strategy.Match(context.Background(), credit.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("credit produced %d candidates, want 0", len(cands))
	}
}

func TestExactKeyTargetNotDuplicatedByProximity(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Payments = []models.Payment{
		{ID: 10, ReceivedOn: day("2026-01-22"), Amount: amt(450), ReferenceNumber: "RES-9"},
	}

	booking := models.Booking{
		ID:                9,
		ReservationNumber: "RES-9",
		PickupOn:          day("2026-01-22"),
		AmountDue:         amt(450),
	}
	strategy := NewBookingPayment(config.DefaultMatching())

	cands, err := strategy.Match(context.Background(), booking.Source(), store)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1 (no proximity duplicate)", len(cands))
	}
	if cands[0].Method != models.MethodReferenceMatch {
		t.Errorf("method = %s, want reference_match", cands[0].Method)
	}
}

func TestForStream(t *testing.T) {
	cfg := config.DefaultMatching()

	bookingStrategies := ForStream(cfg, models.StreamBooking)
	if len(bookingStrategies) != 3 {
		t.Errorf("booking strategies = %d, want 3", len(bookingStrategies))
	}
	bankStrategies := ForStream(cfg, models.StreamBankLine)
	if len(bankStrategies) != 1 {
		t.Errorf("bank line strategies = %d, want 1", len(bankStrategies))
	}
	if ForStream(cfg, models.StreamPayment) != nil {
		t.Error("payments must not anchor any strategy")
	}
}
