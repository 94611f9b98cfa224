package repository

import (
	"context"
	"errors"
	"math"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the postgres-backed RecordStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for run bookkeeping and migrations.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) FetchAnchors(ctx context.Context, stream models.Stream, f AnchorFilter) ([]models.SourceRecord, error) {
	switch stream {
	case models.StreamBooking:
		var bookings []models.Booking
		q := s.db.WithContext(ctx).Model(&models.Booking{}).Order("pickup_on ASC, id ASC")
		if f.From != nil {
			q = q.Where("pickup_on >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("pickup_on <= ?", *f.To)
		}
		if f.Limit > 0 {
			q = q.Limit(f.Limit).Offset(f.Offset)
		}
		if err := q.Find(&bookings).Error; err != nil {
			return nil, storeErr("fetch booking anchors", err)
		}
		out := make([]models.SourceRecord, 0, len(bookings))
		for i := range bookings {
			out = append(out, bookings[i].Source())
		}
		return out, nil

	case models.StreamBankLine:
		var lines []models.BankLine
		q := s.db.WithContext(ctx).Model(&models.BankLine{}).Order("posted_on ASC, id ASC")
		if f.From != nil {
			q = q.Where("posted_on >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("posted_on <= ?", *f.To)
		}
		if f.Limit > 0 {
			q = q.Limit(f.Limit).Offset(f.Offset)
		}
		if err := q.Find(&lines).Error; err != nil {
			return nil, storeErr("fetch bank line anchors", err)
		}
		out := make([]models.SourceRecord, 0, len(lines))
		for i := range lines {
			out = append(out, lines[i].Source())
		}
		return out, nil
	}

	return nil, storeErr("fetch anchors", errors.New("stream is not an anchor stream: "+string(stream)))
}

func (s *GormStore) FetchCandidates(ctx context.Context, stream models.Stream, q CandidateQuery) ([]models.SourceRecord, error) {
	switch stream {
	case models.StreamPayment:
		var payments []models.Payment
		err := s.db.WithContext(ctx).
			Where("received_on IS NOT NULL AND received_on BETWEEN ? AND ?", q.DateFrom, q.DateTo).
			Where("amount IS NOT NULL AND amount BETWEEN ? AND ?", q.AmountMin, q.AmountMax).
			Order("received_on ASC, id ASC").
			Find(&payments).Error
		if err != nil {
			return nil, storeErr("fetch payment candidates", err)
		}
		out := make([]models.SourceRecord, 0, len(payments))
		for i := range payments {
			out = append(out, payments[i].Source())
		}
		return out, nil

	case models.StreamReceipt:
		var receipts []models.Receipt
		err := s.db.WithContext(ctx).
			Where("purchased_on IS NOT NULL AND purchased_on BETWEEN ? AND ?", q.DateFrom, q.DateTo).
			Where("amount IS NOT NULL AND amount BETWEEN ? AND ?", q.AmountMin, q.AmountMax).
			Order("purchased_on ASC, id ASC").
			Find(&receipts).Error
		if err != nil {
			return nil, storeErr("fetch receipt candidates", err)
		}
		out := make([]models.SourceRecord, 0, len(receipts))
		for i := range receipts {
			out = append(out, receipts[i].Source())
		}
		return out, nil

	case models.StreamBankLine:
		var lines []models.BankLine
		err := s.db.WithContext(ctx).
			Where("posted_on IS NOT NULL AND posted_on BETWEEN ? AND ?", q.DateFrom, q.DateTo).
			Where("amount IS NOT NULL AND amount BETWEEN ? AND ?", q.AmountMin, q.AmountMax).
			Order("posted_on ASC, id ASC").
			Find(&lines).Error
		if err != nil {
			return nil, storeErr("fetch bank line candidates", err)
		}
		out := make([]models.SourceRecord, 0, len(lines))
		for i := range lines {
			out = append(out, lines[i].Source())
		}
		return out, nil
	}

	return nil, storeErr("fetch candidates", errors.New("unknown candidate stream: "+string(stream)))
}

func (s *GormStore) FetchByReference(ctx context.Context, stream models.Stream, refs []string) ([]models.SourceRecord, error) {
	clean := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != "" {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return nil, nil
	}

	switch stream {
	case models.StreamPayment:
		var payments []models.Payment
		err := s.db.WithContext(ctx).
			Where("reference_number IN ?", clean).
			Order("id ASC").
			Find(&payments).Error
		if err != nil {
			return nil, storeErr("fetch payments by reference", err)
		}
		out := make([]models.SourceRecord, 0, len(payments))
		for i := range payments {
			out = append(out, payments[i].Source())
		}
		return out, nil

	case models.StreamReceipt:
		var receipts []models.Receipt
		err := s.db.WithContext(ctx).
			Where("reference_number IN ?", clean).
			Order("id ASC").
			Find(&receipts).Error
		if err != nil {
			return nil, storeErr("fetch receipts by reference", err)
		}
		out := make([]models.SourceRecord, 0, len(receipts))
		for i := range receipts {
			out = append(out, receipts[i].Source())
		}
		return out, nil

	case models.StreamBankLine:
		var lines []models.BankLine
		err := s.db.WithContext(ctx).
			Where("reference_number IN ?", clean).
			Order("id ASC").
			Find(&lines).Error
		if err != nil {
			return nil, storeErr("fetch bank lines by reference", err)
		}
		out := make([]models.SourceRecord, 0, len(lines))
		for i := range lines {
			out = append(out, lines[i].Source())
		}
		return out, nil
	}

	return nil, storeErr("fetch by reference", errors.New("unknown reference stream: "+string(stream)))
}

// UpsertRelationship inserts the relationship unless a row with the same key
// tuple already exists. An existing row is left untouched; if it disagrees on
// method or confidence a warning is logged for manual review.
func (s *GormStore) UpsertRelationship(ctx context.Context, rel *models.Relationship) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "source_stream"},
			{Name: "source_id"},
			{Name: "target_stream"},
			{Name: "target_id"},
			{Name: "relationship_kind"},
		},
		DoNothing: true,
	}).Create(rel)
	if result.Error != nil {
		return storeErr("upsert relationship", result.Error)
	}

	if result.RowsAffected == 0 {
		var existing models.Relationship
		err := s.db.WithContext(ctx).
			Where("source_stream = ? AND source_id = ? AND target_stream = ? AND target_id = ? AND relationship_kind = ?",
				rel.SourceStream, rel.SourceID, rel.TargetStream, rel.TargetID, rel.RelationshipKind).
			First(&existing).Error
		if err != nil {
			return storeErr("load conflicting relationship", err)
		}
		if existing.Method != rel.Method || math.Abs(existing.Confidence-rel.Confidence) > 1e-9 {
			config.GetLogger().WithFields(logrus.Fields{
				"source_stream": rel.SourceStream,
				"source_id":     rel.SourceID,
				"target_stream": rel.TargetStream,
				"target_id":     rel.TargetID,
				"kind":          rel.RelationshipKind,
				"existing":      existing.Method,
				"incoming":      rel.Method,
			}).Warn("relationship upsert conflict with non-equivalent row")
		}
	}

	return nil
}

// UpsertUnmatchedItem writes or supersedes the flag for (stream, record_id).
func (s *GormStore) UpsertUnmatchedItem(ctx context.Context, item *models.UnmatchedItem) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stream"}, {Name: "record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"item_kind", "description", "amount", "occurred_on", "reason", "priority", "updated_at",
		}),
	}).Create(item).Error
	return storeErr("upsert unmatched item", err)
}

func (s *GormStore) DeleteUnmatchedItem(ctx context.Context, stream models.Stream, recordID int64) error {
	err := s.db.WithContext(ctx).
		Where("stream = ? AND record_id = ?", stream, recordID).
		Delete(&models.UnmatchedItem{}).Error
	return storeErr("delete unmatched item", err)
}

func (s *GormStore) FetchReceiptsWithVendor(ctx context.Context) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("vendor IS NOT NULL AND vendor <> ''").
		Order("id ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, storeErr("fetch receipts with vendor", err)
	}
	return receipts, nil
}

func (s *GormStore) RewriteVendorName(ctx context.Context, receiptID int64, canonical string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("id = ?", receiptID).
		Update("vendor", canonical).Error
	return storeErr("rewrite vendor name", err)
}

func (s *GormStore) AppendCanonicalizationAudit(ctx context.Context, audit *models.VendorCanonicalization) error {
	err := s.db.WithContext(ctx).Create(audit).Error
	return storeErr("append canonicalization audit", err)
}
