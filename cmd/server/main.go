package main

import (
	"time"

	"transport-reconciliation-backend/internal/config"
	"transport-reconciliation-backend/internal/models"
	"transport-reconciliation-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log := config.GetLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on system env")
	}

	db := config.InitDB()

	db.AutoMigrate(
		&models.Booking{},
		&models.Payment{},
		&models.Receipt{},
		&models.BankLine{},
		&models.Relationship{},
		&models.UnmatchedItem{},
		&models.VendorCanonicalization{},
		&models.ReconciliationRun{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)

	r.Run(":8080")
}
