package repository

import (
	"context"
	"time"

	"transport-reconciliation-backend/internal/models"

	"github.com/shopspring/decimal"
)

// AnchorFilter restricts which anchors a reconciliation pass visits. Zero
// value means the full stream.
type AnchorFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// CandidateQuery is the structured predicate the proximity matchers hand to
// the store: a closed date range and a closed amount range. The engine never
// builds query text itself.
type CandidateQuery struct {
	DateFrom  time.Time
	DateTo    time.Time
	AmountMin decimal.Decimal
	AmountMax decimal.Decimal
}

// RecordStore is the engine's only boundary to persistence. Read access to the
// four source streams, write access to the three output tables. All reads
// return records ordered by occurred_on then id; callers must tolerate empty
// results. Records missing a date or amount are excluded from candidate reads.
type RecordStore interface {
	FetchAnchors(ctx context.Context, stream models.Stream, f AnchorFilter) ([]models.SourceRecord, error)
	FetchCandidates(ctx context.Context, stream models.Stream, q CandidateQuery) ([]models.SourceRecord, error)
	FetchByReference(ctx context.Context, stream models.Stream, refs []string) ([]models.SourceRecord, error)

	UpsertRelationship(ctx context.Context, rel *models.Relationship) error
	UpsertUnmatchedItem(ctx context.Context, item *models.UnmatchedItem) error
	DeleteUnmatchedItem(ctx context.Context, stream models.Stream, recordID int64) error

	FetchReceiptsWithVendor(ctx context.Context) ([]models.Receipt, error)
	RewriteVendorName(ctx context.Context, receiptID int64, canonical string) error
	AppendCanonicalizationAudit(ctx context.Context, audit *models.VendorCanonicalization) error
}
