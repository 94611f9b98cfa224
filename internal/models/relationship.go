package models

import (
	"time"

	"gorm.io/datatypes"
)

// Relationship kinds, one per stream pair the engine links.
const (
	KindBookingPayment  = "booking_payment"
	KindBookingReceipt  = "booking_receipt"
	KindBookingBankLine = "booking_bank_line"
	KindBankLineReceipt = "bank_line_receipt"
)

// Match methods recorded on relationships.
const (
	MethodDirectID       = "direct_id"
	MethodReferenceMatch = "reference_match"
)

// Relationship is one discovered edge between two source records. The unique
// index on the key tuple is what makes re-runs idempotent: a second run inserts
// with ON CONFLICT DO NOTHING and leaves the original row in place.
type Relationship struct {
	ID               int64  `gorm:"primaryKey"`
	SourceStream     Stream `gorm:"uniqueIndex:idx_relationship_key;size:16"`
	SourceID         int64  `gorm:"uniqueIndex:idx_relationship_key"`
	TargetStream     Stream `gorm:"uniqueIndex:idx_relationship_key;size:16"`
	TargetID         int64  `gorm:"uniqueIndex:idx_relationship_key"`
	RelationshipKind string `gorm:"uniqueIndex:idx_relationship_key;size:32"`
	Confidence       float64
	Method           string `gorm:"index"`
	Signals          datatypes.JSON
	CreatedAt        time.Time
}
