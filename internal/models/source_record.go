package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stream identifies which of the four source tables a record came from.
type Stream string

const (
	StreamBooking  Stream = "booking"
	StreamPayment  Stream = "payment"
	StreamReceipt  Stream = "receipt"
	StreamBankLine Stream = "bank_line"
)

// Receipt categories carried through to scoring.
const (
	ReceiptCategoryFuel        = "fuel"
	ReceiptCategoryMaintenance = "maintenance"
)

// SourceRecord is the stream-tagged view of one row from any of the four
// source tables. Optional fields are pointers; matchers must treat a nil
// OccurredOn or nil Amount as "skip", never as a wildcard.
type SourceRecord struct {
	Stream            Stream
	ID                int64
	OccurredOn        *time.Time
	Amount            *decimal.Decimal
	FreeText          string
	ExternalReference string

	// Stream-specific extras.
	AssignedVehicleID int64  // bookings
	Category          string // receipts
	Cancelled         bool   // bookings
}

// HasAmount reports whether the record carries a usable, nonzero amount.
func (r SourceRecord) HasAmount() bool {
	return r.Amount != nil && !r.Amount.IsZero()
}

// HasDate reports whether the record carries an occurrence date.
func (r SourceRecord) HasDate() bool {
	return r.OccurredOn != nil && !r.OccurredOn.IsZero()
}
