package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankLine is one imported bank-statement line. Amount keeps the statement
// sign: credits positive, debits negative.
type BankLine struct {
	ID              int64 `gorm:"primaryKey"`
	PostedOn        *time.Time
	Amount          *decimal.Decimal `gorm:"type:decimal(20,4);index"`
	Description     string
	ReferenceNumber string `gorm:"index"`
	StatementID     int64  `gorm:"index"`
	CreatedAt       time.Time
}

func (l *BankLine) Source() SourceRecord {
	return SourceRecord{
		Stream:            StreamBankLine,
		ID:                l.ID,
		OccurredOn:        l.PostedOn,
		Amount:            l.Amount,
		FreeText:          l.Description,
		ExternalReference: l.ReferenceNumber,
	}
}
