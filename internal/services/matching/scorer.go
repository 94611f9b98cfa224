package matching

import (
	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
)

// ScoreFloor is the lowest score the scorer emits for any candidate: weak but
// non-zero evidence, kept around for audit even when it falls under the
// acceptance threshold.
const ScoreFloor = 0.1

// Score turns a candidate's raw signals into a confidence value in [0,1].
// Pure: same candidate and config always score the same.
func Score(cfg config.Matching, c Candidate) float64 {
	switch c.Method {
	case models.MethodDirectID:
		return 1.0
	case models.MethodReferenceMatch:
		return 0.95
	}

	base := baseConfidence(cfg, c.Method)
	decay := float64(decayWindowDays(cfg, c.Method))

	anchorAmount := 1.0
	if c.Anchor.Amount != nil {
		if f := c.Anchor.Amount.Abs().InexactFloat64(); f > anchorAmount {
			anchorAmount = f
		}
	}

	score := base -
		c.Signals.AmountDelta.InexactFloat64()/anchorAmount -
		float64(c.Signals.DateDeltaDays)/decay

	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

func baseConfidence(cfg config.Matching, method string) float64 {
	switch method {
	case "fuel_proximity_match":
		return cfg.FuelBaseConfidence
	case "maintenance_proximity_match":
		return cfg.MaintenanceBaseConfidence
	}
	return cfg.DefaultBaseConfidence
}

func decayWindowDays(cfg config.Matching, method string) int {
	switch method {
	case "fuel_proximity_match", "maintenance_proximity_match", "receipt_proximity_match":
		return cfg.ShortDecayDays
	}
	return cfg.LongDecayDays
}
