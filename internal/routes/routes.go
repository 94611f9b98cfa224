package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"transport-reconciliation-backend/internal/config"
	handler "transport-reconciliation-backend/internal/handlers"
	"transport-reconciliation-backend/internal/repository"
	service "transport-reconciliation-backend/internal/services/reconciliation"
	"transport-reconciliation-backend/internal/services/vendors"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	store := repository.NewGormStore(db)
	cfg := config.MatchingFromEnv()

	reconService := service.NewService(store, cfg).WithRunRecorder(db)
	canonicalizer := vendors.NewCanonicalizer(store, vendors.DefaultRules())

	reconHandler := handler.NewReconciliationHandler(reconService, canonicalizer, db)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Reconciliation runs
	recon := api.Group("/reconciliation")
	recon.POST("/run", reconHandler.RunReconciliation)
	recon.GET("/runs/:runId", reconHandler.GetRunProgress)
	recon.GET("/stats", reconHandler.UnmatchedStats)

	// Review queue and linkage graph
	api.GET("/unmatched-items", reconHandler.ListUnmatchedItems)
	api.GET("/relationships", reconHandler.ListRelationships)

	// Vendor vocabulary
	api.POST("/vendors/canonicalize", reconHandler.CanonicalizeVendors)
}
