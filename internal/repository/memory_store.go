package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"transport-reconciliation-backend/internal/models"
)

// MemoryStore is an in-memory RecordStore with the same query semantics as
// GormStore: inclusive ranges, records missing a date or amount excluded from
// candidate reads, results ordered by occurred_on then id. Used by the test
// suites and by the offline demo mode of the batch runner.
type MemoryStore struct {
	mu sync.Mutex

	Bookings  []models.Booking
	Payments  []models.Payment
	Receipts  []models.Receipt
	BankLines []models.BankLine

	Relationships  []models.Relationship
	UnmatchedItems []models.UnmatchedItem
	Audits         []models.VendorCanonicalization

	// Fault injection for error-path tests. Keyed by candidate stream for
	// reads; RelationshipErr fails every relationship upsert.
	CandidateErr    map[models.Stream]error
	RelationshipErr error

	nextRelID   int64
	nextItemID  int64
	nextAuditID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{CandidateErr: map[models.Stream]error{}}
}

func sortRecords(records []models.SourceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.OccurredOn == nil && b.OccurredOn != nil:
			return true
		case b.OccurredOn == nil && a.OccurredOn != nil:
			return false
		case a.OccurredOn != nil && !a.OccurredOn.Equal(*b.OccurredOn):
			return a.OccurredOn.Before(*b.OccurredOn)
		}
		return a.ID < b.ID
	})
}

func (s *MemoryStore) FetchAnchors(ctx context.Context, stream models.Stream, f AnchorFilter) ([]models.SourceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.SourceRecord
	switch stream {
	case models.StreamBooking:
		for i := range s.Bookings {
			out = append(out, s.Bookings[i].Source())
		}
	case models.StreamBankLine:
		for i := range s.BankLines {
			out = append(out, s.BankLines[i].Source())
		}
	}

	filtered := out[:0]
	for _, r := range out {
		if f.From != nil && (r.OccurredOn == nil || r.OccurredOn.Before(*f.From)) {
			continue
		}
		if f.To != nil && (r.OccurredOn == nil || r.OccurredOn.After(*f.To)) {
			continue
		}
		filtered = append(filtered, r)
	}
	out = filtered

	sortRecords(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) candidateRecords(stream models.Stream) []models.SourceRecord {
	var out []models.SourceRecord
	switch stream {
	case models.StreamPayment:
		for i := range s.Payments {
			out = append(out, s.Payments[i].Source())
		}
	case models.StreamReceipt:
		for i := range s.Receipts {
			out = append(out, s.Receipts[i].Source())
		}
	case models.StreamBankLine:
		for i := range s.BankLines {
			out = append(out, s.BankLines[i].Source())
		}
	}
	return out
}

func (s *MemoryStore) FetchCandidates(ctx context.Context, stream models.Stream, q CandidateQuery) ([]models.SourceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.CandidateErr[stream]; err != nil {
		return nil, storeErr("fetch candidates", err)
	}

	var out []models.SourceRecord
	for _, r := range s.candidateRecords(stream) {
		if r.OccurredOn == nil || r.Amount == nil {
			continue
		}
		if r.OccurredOn.Before(q.DateFrom) || r.OccurredOn.After(q.DateTo) {
			continue
		}
		if r.Amount.LessThan(q.AmountMin) || r.Amount.GreaterThan(q.AmountMax) {
			continue
		}
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (s *MemoryStore) FetchByReference(ctx context.Context, stream models.Stream, refs []string) ([]models.SourceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.CandidateErr[stream]; err != nil {
		return nil, storeErr("fetch by reference", err)
	}

	wanted := map[string]bool{}
	for _, r := range refs {
		if r != "" {
			wanted[r] = true
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	var out []models.SourceRecord
	for _, r := range s.candidateRecords(stream) {
		if wanted[r.ExternalReference] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpsertRelationship(ctx context.Context, rel *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RelationshipErr != nil {
		return storeErr("upsert relationship", s.RelationshipErr)
	}

	for i := range s.Relationships {
		e := &s.Relationships[i]
		if e.SourceStream == rel.SourceStream && e.SourceID == rel.SourceID &&
			e.TargetStream == rel.TargetStream && e.TargetID == rel.TargetID &&
			e.RelationshipKind == rel.RelationshipKind {
			return nil // existing row wins
		}
	}

	s.nextRelID++
	stored := *rel
	stored.ID = s.nextRelID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.Relationships = append(s.Relationships, stored)
	return nil
}

func (s *MemoryStore) UpsertUnmatchedItem(ctx context.Context, item *models.UnmatchedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.UnmatchedItems {
		e := &s.UnmatchedItems[i]
		if e.Stream == item.Stream && e.RecordID == item.RecordID {
			e.ItemKind = item.ItemKind
			e.Description = item.Description
			e.Amount = item.Amount
			e.OccurredOn = item.OccurredOn
			e.Reason = item.Reason
			e.Priority = item.Priority
			e.UpdatedAt = time.Now()
			return nil
		}
	}

	s.nextItemID++
	stored := *item
	stored.ID = s.nextItemID
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.UnmatchedItems = append(s.UnmatchedItems, stored)
	return nil
}

func (s *MemoryStore) DeleteUnmatchedItem(ctx context.Context, stream models.Stream, recordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.UnmatchedItems[:0]
	for _, e := range s.UnmatchedItems {
		if e.Stream == stream && e.RecordID == recordID {
			continue
		}
		kept = append(kept, e)
	}
	s.UnmatchedItems = kept
	return nil
}

func (s *MemoryStore) FetchReceiptsWithVendor(ctx context.Context) ([]models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Receipt
	for _, r := range s.Receipts {
		if r.Vendor != "" {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) RewriteVendorName(ctx context.Context, receiptID int64, canonical string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.Receipts {
		if s.Receipts[i].ID == receiptID {
			s.Receipts[i].Vendor = canonical
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) AppendCanonicalizationAudit(ctx context.Context, audit *models.VendorCanonicalization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAuditID++
	stored := *audit
	stored.ID = s.nextAuditID
	if stored.AppliedAt.IsZero() {
		stored.AppliedAt = time.Now()
	}
	s.Audits = append(s.Audits, stored)
	return nil
}
