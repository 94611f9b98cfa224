package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Review priorities for unmatched items.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Item kinds surfaced to the review queue.
const (
	ItemKindUnmatchedBooking  = "unmatched_booking"
	ItemKindUnmatchedBankLine = "unmatched_bank_line"
	ItemKindPersistenceError  = "persistence_error"
)

// UnmatchedItem flags one record the orchestrator could not link. Keyed by
// (stream, record_id) so a later run supersedes the row instead of adding a
// second flag for the same record.
type UnmatchedItem struct {
	ID          int64  `gorm:"primaryKey"`
	Stream      Stream `gorm:"uniqueIndex:idx_unmatched_record;size:16"`
	RecordID    int64  `gorm:"uniqueIndex:idx_unmatched_record"`
	ItemKind    string `gorm:"index"`
	Description string
	Amount      *decimal.Decimal `gorm:"type:decimal(20,4)"`
	OccurredOn  *time.Time
	Reason      string
	Priority    string `gorm:"index;size:8"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
