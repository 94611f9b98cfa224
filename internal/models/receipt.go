package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a vendor receipt entered against fleet spend (fuel, maintenance,
// tolls). Vendor is the only source field the engine may rewrite, and only
// through the canonicalizer.
type Receipt struct {
	ID              int64 `gorm:"primaryKey"`
	PurchasedOn     *time.Time
	Amount          *decimal.Decimal `gorm:"type:decimal(20,4);index"`
	Vendor          string           `gorm:"index"`
	Category        string           `gorm:"index"`
	ReferenceNumber string           `gorm:"index"`
	VehicleID       int64            `gorm:"index"`
	CreatedAt       time.Time
}

func (r *Receipt) Source() SourceRecord {
	return SourceRecord{
		Stream:            StreamReceipt,
		ID:                r.ID,
		OccurredOn:        r.PurchasedOn,
		Amount:            r.Amount,
		FreeText:          r.Vendor,
		ExternalReference: r.ReferenceNumber,
		Category:          r.Category,
	}
}
