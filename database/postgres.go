package database

import (
	"log"
	"pagai-backend/config"
	"pagai-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the audit database. The audit trail is best-effort, so a
// missing DATABASE_URL only disables it instead of stopping the service.
func Connect() {
	if config.AppConfig.DatabaseURL == "" {
		log.Println("⚠️  DATABASE_URL not set, audit trail disabled")
		return
	}

	var err error
	DB, err = gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Println("⚠️  Audit database unavailable, audit trail disabled:", err)
		DB = nil
		return
	}

	if err := DB.AutoMigrate(&models.AuditEvent{}); err != nil {
		log.Fatal("Failed to migrate audit database:", err)
	}

	log.Println("✅ Audit database connected")
}
