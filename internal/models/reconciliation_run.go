package models

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ReconciliationRun records one orchestrator pass for operators: how many
// anchors were processed and how they resolved.
type ReconciliationRun struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status            string    `gorm:"index"`
	AnchorCount       int
	LinkedCount       int
	FlaggedCount      int
	SkippedCount      int
	RelationshipCount int
	StartedAt         time.Time
	CompletedAt       *time.Time
	CreatedAt         time.Time
}
