package models

import "time"

// VendorCanonicalization is the append-only audit trail of vendor-name
// rewrites. The receipt keeps only the canonical name; the original spelling
// lives here.
type VendorCanonicalization struct {
	ID            int64 `gorm:"primaryKey"`
	ReceiptID     int64 `gorm:"index"`
	OriginalName  string
	CanonicalName string `gorm:"index"`
	RuleMatched   string
	AppliedAt     time.Time
}
