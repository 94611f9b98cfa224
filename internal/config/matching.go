package config

import (
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Matching holds the tunables of the reconciliation engine. The defaults mirror
// the values the finance team signed off on; override via environment only when
// re-tuning against a known ledger.
type Matching struct {
	// AcceptThreshold is the minimum confidence score a candidate needs to be
	// persisted as a relationship.
	AcceptThreshold float64

	// Date windows (days on either side of the anchor date) per target stream.
	ReceiptWindowDays  int
	PaymentWindowDays  int
	BankLineWindowDays int

	// AmountTolerance is the absolute amount difference allowed by the
	// proximity matchers. Bank-line matching ignores it and requires exact
	// signed amounts.
	AmountTolerance decimal.Decimal

	// MaxCandidates caps how many candidates a single strategy may return.
	MaxCandidates int

	// Base confidences per receipt category for proximity matches.
	FuelBaseConfidence        float64
	MaintenanceBaseConfidence float64
	DefaultBaseConfidence     float64

	// Decay windows (days) dividing the date delta in the score formula.
	ShortDecayDays int
	LongDecayDays  int

	// PersistRetries bounds how often a failed upsert is retried before the
	// anchor is flagged with a persistence-error item.
	PersistRetries int
}

// DefaultMatching returns the stock configuration.
func DefaultMatching() Matching {
	return Matching{
		AcceptThreshold:           0.3,
		ReceiptWindowDays:         3,
		PaymentWindowDays:         7,
		BankLineWindowDays:        7,
		AmountTolerance:           decimal.NewFromInt(50),
		MaxCandidates:             5,
		FuelBaseConfidence:        0.8,
		MaintenanceBaseConfidence: 0.6,
		DefaultBaseConfidence:     0.4,
		ShortDecayDays:            7,
		LongDecayDays:             14,
		PersistRetries:            3,
	}
}

// MatchingFromEnv starts from the defaults and applies any overrides present in
// the environment.
func MatchingFromEnv() Matching {
	m := DefaultMatching()

	if v := os.Getenv("MATCH_ACCEPT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.AcceptThreshold = f
		}
	}
	if v := os.Getenv("MATCH_AMOUNT_TOLERANCE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			m.AmountTolerance = d
		}
	}
	if v := os.Getenv("MATCH_RECEIPT_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m.ReceiptWindowDays = n
		}
	}
	if v := os.Getenv("MATCH_PAYMENT_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m.PaymentWindowDays = n
		}
	}
	if v := os.Getenv("MATCH_BANK_LINE_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m.BankLineWindowDays = n
		}
	}

	return m
}
