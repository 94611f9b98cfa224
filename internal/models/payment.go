package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a customer payment captured by the booking office.
type Payment struct {
	ID              int64 `gorm:"primaryKey"`
	ReceivedOn      *time.Time
	Amount          *decimal.Decimal `gorm:"type:decimal(20,4);index"`
	PayerName       string
	ReferenceNumber string `gorm:"index"`
	CreatedAt       time.Time
}

func (p *Payment) Source() SourceRecord {
	return SourceRecord{
		Stream:            StreamPayment,
		ID:                p.ID,
		OccurredOn:        p.ReceivedOn,
		Amount:            p.Amount,
		FreeText:          p.PayerName,
		ExternalReference: p.ReferenceNumber,
	}
}
