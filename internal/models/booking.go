package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is a service booking (trip or charter). Reconciliation reads it as
// the anchor of most matches and never mutates it.
type Booking struct {
	ID                int64  `gorm:"primaryKey"`
	ReservationNumber string `gorm:"index"`
	CustomerName      string
	PickupOn          *time.Time       `gorm:"index"`
	AmountDue         *decimal.Decimal `gorm:"type:decimal(20,4);index"`
	AssignedVehicleID int64            `gorm:"index"`
	Cancelled         bool
	Notes             string
	CreatedAt         time.Time
}

func (b *Booking) Source() SourceRecord {
	return SourceRecord{
		Stream:            StreamBooking,
		ID:                b.ID,
		OccurredOn:        b.PickupOn,
		Amount:            b.AmountDue,
		FreeText:          b.Notes,
		ExternalReference: b.ReservationNumber,
		AssignedVehicleID: b.AssignedVehicleID,
		Cancelled:         b.Cancelled,
	}
}
