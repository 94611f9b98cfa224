package handler

import (
	"net/http"
	"strconv"

	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"
	service "transport-reconciliation-backend/internal/services/reconciliation"
	"transport-reconciliation-backend/internal/services/vendors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReconciliationHandler struct {
	service *service.Service
	canon   *vendors.Canonicalizer
	db      *gorm.DB
}

func NewReconciliationHandler(s *service.Service, canon *vendors.Canonicalizer, db *gorm.DB) *ReconciliationHandler {
	return &ReconciliationHandler{service: s, canon: canon, db: db}
}

// RunReconciliation executes one orchestrator pass and returns the summary.
func (h *ReconciliationHandler) RunReconciliation(c *gin.Context) {
	summary, err := h.service.Run(c.Request.Context(), repository.AnchorFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation completed", "summary": summary})
}

func (h *ReconciliationHandler) GetRunProgress(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}

	run, err := h.service.GetRun(runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        run.Status,
		"anchors":       run.AnchorCount,
		"linked":        run.LinkedCount,
		"flagged":       run.FlaggedCount,
		"skipped":       run.SkippedCount,
		"relationships": run.RelationshipCount,
	})
}

// ListUnmatchedItems returns the review queue, HIGH priority first.
func (h *ReconciliationHandler) ListUnmatchedItems(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	query := h.db.Model(&models.UnmatchedItem{}).
		Order("CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END, id ASC").
		Limit(limit + 1)

	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if cursor := c.Query("cursor"); cursor != "" {
		if id, err := strconv.ParseInt(cursor, 10, 64); err == nil {
			query = query.Where("id > ?", id)
		}
	}

	var items []models.UnmatchedItem
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hasMore := false
	var nextCursor string
	if len(items) > limit {
		hasMore = true
		nextCursor = strconv.FormatInt(items[limit-1].ID, 10)
		items = items[:limit]
	}

	stats, _ := h.service.UnmatchedStats()
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
		"stats":       stats,
	})
}

// ListRelationships returns the edges touching one record.
func (h *ReconciliationHandler) ListRelationships(c *gin.Context) {
	stream := c.Query("stream")
	recordID, err := strconv.ParseInt(c.Query("record_id"), 10, 64)
	if stream == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stream and record_id required"})
		return
	}

	var rels []models.Relationship
	err = h.db.
		Where("(source_stream = ? AND source_id = ?) OR (target_stream = ? AND target_id = ?)",
			stream, recordID, stream, recordID).
		Order("id ASC").
		Find(&rels).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": rels})
}

// CanonicalizeVendors runs the vendor-name pass over all receipts.
func (h *ReconciliationHandler) CanonicalizeVendors(c *gin.Context) {
	summary, err := h.canon.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "canonicalization completed", "summary": summary})
}

func (h *ReconciliationHandler) UnmatchedStats(c *gin.Context) {
	stats, err := h.service.UnmatchedStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
