package main

import (
	"context"
	"flag"
	"os"
	"time"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/repository"
	"transport-reconciliation-backend/internal/services/reconciliation"
	"transport-reconciliation-backend/internal/services/vendors"

	"github.com/joho/godotenv"
)

// Batch entrypoint: one vendor-canonicalization pass followed by one full
// reconciliation pass, run to completion. Safe to re-run; both passes are
// idempotent.
func main() {
	var (
		vendorsOnly = flag.Bool("vendors-only", false, "run only the vendor canonicalization pass")
		skipVendors = flag.Bool("skip-vendors", false, "skip the vendor canonicalization pass")
		fromStr     = flag.String("from", "", "only reconcile anchors on or after this date (YYYY-MM-DD)")
		toStr       = flag.String("to", "", "only reconcile anchors on or before this date (YYYY-MM-DD)")
	)
	flag.Parse()

	log := config.GetLogger()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on system env")
	}

	db := config.InitDB()
	db.AutoMigrate(
		&models.Relationship{},
		&models.UnmatchedItem{},
		&models.VendorCanonicalization{},
		&models.ReconciliationRun{},
	)

	store := repository.NewGormStore(db)
	cfg := config.MatchingFromEnv()
	ctx := context.Background()

	if !*skipVendors {
		canon := vendors.NewCanonicalizer(store, vendors.DefaultRules())
		if _, err := canon.Run(ctx); err != nil {
			log.WithError(err).Error("vendor canonicalization failed")
			os.Exit(1)
		}
	}
	if *vendorsOnly {
		return
	}

	filter := repository.AnchorFilter{}
	if *fromStr != "" {
		from, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			log.WithError(err).Fatal("invalid -from date")
		}
		filter.From = &from
	}
	if *toStr != "" {
		to, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			log.WithError(err).Fatal("invalid -to date")
		}
		filter.To = &to
	}

	svc := reconciliation.NewService(store, cfg).WithRunRecorder(db)
	if _, err := svc.Run(ctx, filter); err != nil {
		log.WithError(err).Error("reconciliation run failed")
		os.Exit(1)
	}
}
