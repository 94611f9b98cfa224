package reconciliation

import (
	"context"
	"encoding/json"
	"time"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"
	"transport-reconciliation-backend/internal/services/matching"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Anchor states within one pass. An anchor that hits a store error stays
// pending and is picked up again on the next run.
const (
	anchorLinked  = "linked"
	anchorFlagged = "flagged"
	anchorSkipped = "skipped"
)

// Service is the reconciliation orchestrator: it walks the anchor streams,
// runs every applicable matcher, persists accepted links, and flags anchors
// nothing could link. Re-running over unchanged data is a no-op thanks to the
// key-tuple upserts in the store.
type Service struct {
	store repository.RecordStore
	cfg   config.Matching
	db    *gorm.DB // run bookkeeping only; nil outside the server/batch binaries
	log   *logrus.Logger
}

func NewService(store repository.RecordStore, cfg config.Matching) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		log:   config.GetLogger(),
	}
}

// WithRunRecorder persists ReconciliationRun rows through db.
func (s *Service) WithRunRecorder(db *gorm.DB) *Service {
	s.db = db
	return s
}

// RunSummary reports one orchestrator pass.
type RunSummary struct {
	RunID         uuid.UUID `json:"run_id"`
	Anchors       int       `json:"anchors"`
	Linked        int       `json:"linked"`
	Flagged       int       `json:"flagged"`
	Skipped       int       `json:"skipped"`
	Relationships int       `json:"relationships"`
}

// Run executes one full reconciliation pass: bookings first, then
// bank-statement debits against receipts.
func (s *Service) Run(ctx context.Context, filter repository.AnchorFilter) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.New()}
	run := s.startRun(summary.RunID)

	for _, stream := range []models.Stream{models.StreamBooking, models.StreamBankLine} {
		anchors, err := s.store.FetchAnchors(ctx, stream, filter)
		if err != nil {
			s.log.WithFields(logrus.Fields{"run_id": summary.RunID, "stream": stream}).
				WithError(err).Error("anchor fetch failed, aborting run")
			s.finishRun(run, summary, models.RunStatusFailed)
			return summary, err
		}

		for _, anchor := range anchors {
			// Statement credits are targets of booking matching, not anchors;
			// only debits (vendor spend) anchor the receipt pass.
			if stream == models.StreamBankLine && anchor.Amount != nil && anchor.Amount.IsPositive() {
				continue
			}
			summary.Anchors++
			status, links := s.processAnchor(ctx, anchor)
			switch status {
			case anchorLinked:
				summary.Linked++
				summary.Relationships += links
			case anchorFlagged:
				summary.Flagged++
			default:
				summary.Skipped++
			}
		}
	}

	s.finishRun(run, summary, models.RunStatusCompleted)
	s.log.WithFields(logrus.Fields{
		"run_id":        summary.RunID,
		"anchors":       summary.Anchors,
		"linked":        summary.Linked,
		"flagged":       summary.Flagged,
		"skipped":       summary.Skipped,
		"relationships": summary.Relationships,
	}).Info("reconciliation run finished")

	return summary, nil
}

// processAnchor drives one anchor through PENDING -> MATCHING -> LINKED or
// FLAGGED. A matcher failure leaves the anchor pending for the next run and
// never aborts the batch.
func (s *Service) processAnchor(ctx context.Context, anchor models.SourceRecord) (string, int) {
	var scored []ScoredCandidate
	for _, strategy := range matching.ForStream(s.cfg, anchor.Stream) {
		cands, err := strategy.Match(ctx, anchor, s.store)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"stream":   anchor.Stream,
				"anchor":   anchor.ID,
				"strategy": strategy.Name(),
			}).WithError(err).Error("matcher failed, anchor left pending")
			return anchorSkipped, 0
		}
		for _, c := range cands {
			scored = append(scored, ScoredCandidate{Candidate: c, Score: matching.Score(s.cfg, c)})
		}
	}

	var accepted []ScoredCandidate
	for _, sc := range scored {
		if sc.Score >= s.cfg.AcceptThreshold {
			accepted = append(accepted, sc)
		}
	}

	if len(accepted) == 0 {
		return s.flagAnchor(ctx, anchor, Classify(anchor, scored)), 0
	}
	return s.linkAnchor(ctx, anchor, accepted)
}

// linkAnchor persists every accepted candidate as its own relationship row
// (multi-edge linkage, not best-match selection) and clears any stale
// unmatched flag from an earlier run.
func (s *Service) linkAnchor(ctx context.Context, anchor models.SourceRecord, accepted []ScoredCandidate) (string, int) {
	if err := s.store.DeleteUnmatchedItem(ctx, anchor.Stream, anchor.ID); err != nil {
		s.log.WithFields(logrus.Fields{"stream": anchor.Stream, "anchor": anchor.ID}).
			WithError(err).Warn("could not clear stale unmatched item")
	}

	persisted := 0
	for _, sc := range accepted {
		signals, _ := json.Marshal(sc.Signals)
		rel := &models.Relationship{
			SourceStream:     sc.Anchor.Stream,
			SourceID:         sc.Anchor.ID,
			TargetStream:     sc.Target.Stream,
			TargetID:         sc.Target.ID,
			RelationshipKind: sc.Kind,
			Confidence:       sc.Score,
			Method:           sc.Method,
			Signals:          signals,
			CreatedAt:        time.Now(),
		}
		if err := s.withRetry(func() error { return s.store.UpsertRelationship(ctx, rel) }); err != nil {
			s.log.WithFields(logrus.Fields{
				"stream": anchor.Stream,
				"anchor": anchor.ID,
				"target": sc.Target.ID,
			}).WithError(err).Error("relationship persistence failed after retries")
			continue
		}
		persisted++
	}

	if persisted == 0 {
		return s.flagAnchor(ctx, anchor, Flag{
			ItemKind: models.ItemKindPersistenceError,
			Reason:   "persistence error",
			Priority: models.PriorityHigh,
		}), 0
	}
	return anchorLinked, persisted
}

func (s *Service) flagAnchor(ctx context.Context, anchor models.SourceRecord, flag Flag) string {
	item := &models.UnmatchedItem{
		Stream:      anchor.Stream,
		RecordID:    anchor.ID,
		ItemKind:    flag.ItemKind,
		Description: anchor.FreeText,
		Amount:      anchor.Amount,
		OccurredOn:  anchor.OccurredOn,
		Reason:      flag.Reason,
		Priority:    flag.Priority,
	}
	if err := s.withRetry(func() error { return s.store.UpsertUnmatchedItem(ctx, item) }); err != nil {
		s.log.WithFields(logrus.Fields{"stream": anchor.Stream, "anchor": anchor.ID}).
			WithError(err).Error("unmatched item persistence failed after retries")
		return anchorSkipped
	}
	return anchorFlagged
}

func (s *Service) withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < s.cfg.PersistRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return err
}

func (s *Service) startRun(id uuid.UUID) *models.ReconciliationRun {
	run := &models.ReconciliationRun{
		ID:        id,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	if s.db != nil {
		if err := s.db.Create(run).Error; err != nil {
			s.log.WithError(err).Warn("could not record reconciliation run")
		}
	}
	return run
}

func (s *Service) finishRun(run *models.ReconciliationRun, summary RunSummary, status string) {
	now := time.Now()
	run.Status = status
	run.AnchorCount = summary.Anchors
	run.LinkedCount = summary.Linked
	run.FlaggedCount = summary.Flagged
	run.SkippedCount = summary.Skipped
	run.RelationshipCount = summary.Relationships
	run.CompletedAt = &now
	if s.db != nil {
		if err := s.db.Save(run).Error; err != nil {
			s.log.WithError(err).Warn("could not finalize reconciliation run")
		}
	}
}

// GetRun loads one run record for the progress endpoint.
func (s *Service) GetRun(id uuid.UUID) (*models.ReconciliationRun, error) {
	if s.db == nil {
		return nil, gorm.ErrRecordNotFound
	}
	var run models.ReconciliationRun
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Stats summarises unmatched items by priority for the review queue header.
type Stats struct {
	HighCount   int64 `json:"high_count"`
	MediumCount int64 `json:"medium_count"`
	LowCount    int64 `json:"low_count"`
	Total       int64 `json:"total"`
}

func (s *Service) UnmatchedStats() (Stats, error) {
	var stats Stats
	if s.db == nil {
		return stats, nil
	}

	var rows []struct {
		Priority string
		Count    int64
	}
	err := s.db.Model(&models.UnmatchedItem{}).
		Select("priority, COUNT(*) as count").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	for _, r := range rows {
		stats.Total += r.Count
		switch r.Priority {
		case models.PriorityHigh:
			stats.HighCount = r.Count
		case models.PriorityMedium:
			stats.MediumCount = r.Count
		case models.PriorityLow:
			stats.LowCount = r.Count
		}
	}
	return stats, nil
}
