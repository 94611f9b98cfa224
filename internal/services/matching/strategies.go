package matching

import (
	"context"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// BookingPayment links bookings to customer payments: exact reference keys
// first, then amount+date proximity inside the payment window.
type BookingPayment struct {
	cfg config.Matching
}

func NewBookingPayment(cfg config.Matching) *BookingPayment {
	return &BookingPayment{cfg: cfg}
}

func (s *BookingPayment) Name() string                { return "booking_payment" }
func (s *BookingPayment) AnchorStream() models.Stream { return models.StreamBooking }

func (s *BookingPayment) Match(ctx context.Context, anchor models.SourceRecord, store repository.RecordStore) ([]Candidate, error) {
	exact, err := exactKeyPass(ctx, store, anchor, models.StreamPayment, models.KindBookingPayment)
	if err != nil {
		return nil, err
	}

	prox, err := proximityPass(ctx, store, anchor, models.StreamPayment, models.KindBookingPayment,
		s.cfg.PaymentWindowDays, s.cfg.AmountTolerance, false, seenTargets(exact))
	if err != nil {
		return nil, err
	}

	return orderAndCap(append(exact, prox...), s.cfg.MaxCandidates), nil
}

// BookingReceipt links bookings to vendor receipts tied to the booking's
// vehicle activity. The receipt window is tighter than the payment window.
type BookingReceipt struct {
	cfg config.Matching
}

func NewBookingReceipt(cfg config.Matching) *BookingReceipt {
	return &BookingReceipt{cfg: cfg}
}

func (s *BookingReceipt) Name() string                { return "booking_receipt" }
func (s *BookingReceipt) AnchorStream() models.Stream { return models.StreamBooking }

func (s *BookingReceipt) Match(ctx context.Context, anchor models.SourceRecord, store repository.RecordStore) ([]Candidate, error) {
	exact, err := exactKeyPass(ctx, store, anchor, models.StreamReceipt, models.KindBookingReceipt)
	if err != nil {
		return nil, err
	}

	prox, err := proximityPass(ctx, store, anchor, models.StreamReceipt, models.KindBookingReceipt,
		s.cfg.ReceiptWindowDays, s.cfg.AmountTolerance, false, seenTargets(exact))
	if err != nil {
		return nil, err
	}

	return orderAndCap(append(exact, prox...), s.cfg.MaxCandidates), nil
}

// BookingBankLine links bookings to bank-statement credits. Amount matching is
// exact: statement amounts are signed and settle to the cent.
type BookingBankLine struct {
	cfg config.Matching
}

func NewBookingBankLine(cfg config.Matching) *BookingBankLine {
	return &BookingBankLine{cfg: cfg}
}

func (s *BookingBankLine) Name() string                { return "booking_bank_line" }
func (s *BookingBankLine) AnchorStream() models.Stream { return models.StreamBooking }

func (s *BookingBankLine) Match(ctx context.Context, anchor models.SourceRecord, store repository.RecordStore) ([]Candidate, error) {
	exact, err := exactKeyPass(ctx, store, anchor, models.StreamBankLine, models.KindBookingBankLine)
	if err != nil {
		return nil, err
	}

	prox, err := proximityPass(ctx, store, anchor, models.StreamBankLine, models.KindBookingBankLine,
		s.cfg.BankLineWindowDays, decimal.Zero, false, seenTargets(exact))
	if err != nil {
		return nil, err
	}

	return orderAndCap(append(exact, prox...), s.cfg.MaxCandidates), nil
}

// BankLineReceipt links bank-statement debits to vendor receipts. Only debits
// are anchored: credits are customer money and belong to the booking side.
// The debit's absolute value is compared against receipt amounts.
type BankLineReceipt struct {
	cfg config.Matching
}

func NewBankLineReceipt(cfg config.Matching) *BankLineReceipt {
	return &BankLineReceipt{cfg: cfg}
}

func (s *BankLineReceipt) Name() string                { return "bank_line_receipt" }
func (s *BankLineReceipt) AnchorStream() models.Stream { return models.StreamBankLine }

func (s *BankLineReceipt) Match(ctx context.Context, anchor models.SourceRecord, store repository.RecordStore) ([]Candidate, error) {
	if anchor.Amount != nil && anchor.Amount.IsPositive() {
		return nil, nil
	}

	exact, err := exactKeyPass(ctx, store, anchor, models.StreamReceipt, models.KindBankLineReceipt)
	if err != nil {
		return nil, err
	}

	prox, err := proximityPass(ctx, store, anchor, models.StreamReceipt, models.KindBankLineReceipt,
		s.cfg.ReceiptWindowDays, s.cfg.AmountTolerance, true, seenTargets(exact))
	if err != nil {
		return nil, err
	}

	return orderAndCap(append(exact, prox...), s.cfg.MaxCandidates), nil
}

// ForStream returns the strategies applicable to one anchor stream, in
// evaluation order.
func ForStream(cfg config.Matching, stream models.Stream) []Strategy {
	switch stream {
	case models.StreamBooking:
		return []Strategy{
			NewBookingPayment(cfg),
			NewBookingReceipt(cfg),
			NewBookingBankLine(cfg),
		}
	case models.StreamBankLine:
		return []Strategy{NewBankLineReceipt(cfg)}
	}
	return nil
}
