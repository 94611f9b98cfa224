package vendors

import (
	"context"
	"strings"
	"time"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// Rule maps one canonical vendor name to the substrings that identify it in
// raw receipt text. Rules are evaluated in slice order and the first match
// wins, so keep specific spellings ahead of generic ones.
type Rule struct {
	Canonical string
	Variants  []string
}

// Canonicalizer rewrites free-text vendor names on receipts into the fixed
// vocabulary, leaving an audit row per rewrite. Receipts no rule matches are
// left untouched.
type Canonicalizer struct {
	store repository.RecordStore
	rules []Rule
	log   *logrus.Logger
}

func NewCanonicalizer(store repository.RecordStore, rules []Rule) *Canonicalizer {
	return &Canonicalizer{
		store: store,
		rules: rules,
		log:   config.GetLogger(),
	}
}

// Summary reports one canonicalization pass.
type Summary struct {
	Receipts  int `json:"receipts"`
	Rewritten int `json:"rewritten"`
	Errors    int `json:"errors"`
}

// Run walks every receipt with a vendor string. A rewrite happens only when a
// rule matches and the canonical name differs from the stored value, which
// makes a second pass over the same data a no-op.
func (c *Canonicalizer) Run(ctx context.Context) (Summary, error) {
	receipts, err := c.store.FetchReceiptsWithVendor(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Receipts: len(receipts)}
	for _, receipt := range receipts {
		canonical, variant, ok := c.Lookup(receipt.Vendor)
		if !ok || canonical == receipt.Vendor {
			continue
		}

		audit := &models.VendorCanonicalization{
			ReceiptID:     receipt.ID,
			OriginalName:  receipt.Vendor,
			CanonicalName: canonical,
			RuleMatched:   variant,
			AppliedAt:     time.Now(),
		}
		if err := c.store.AppendCanonicalizationAudit(ctx, audit); err != nil {
			c.log.WithFields(logrus.Fields{"receipt": receipt.ID}).
				WithError(err).Error("canonicalization audit failed")
			summary.Errors++
			continue
		}
		if err := c.store.RewriteVendorName(ctx, receipt.ID, canonical); err != nil {
			c.log.WithFields(logrus.Fields{"receipt": receipt.ID}).
				WithError(err).Error("vendor rewrite failed")
			summary.Errors++
			continue
		}
		summary.Rewritten++
	}

	c.log.WithFields(logrus.Fields{
		"receipts":  summary.Receipts,
		"rewritten": summary.Rewritten,
		"errors":    summary.Errors,
	}).Info("vendor canonicalization finished")

	return summary, nil
}

// Lookup returns the canonical name and matched variant for a raw vendor
// string, first rule wins.
func (c *Canonicalizer) Lookup(raw string) (canonical, variant string, ok bool) {
	lowered := strings.ToLower(raw)
	for _, rule := range c.rules {
		for _, v := range rule.Variants {
			if strings.Contains(lowered, strings.ToLower(v)) {
				return rule.Canonical, v, true
			}
		}
	}
	return "", "", false
}
