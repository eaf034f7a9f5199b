package services

import (
	"log"

	"pagai-backend/database"
	"pagai-backend/models"
)

// RecordAuditEvent persists an audit row best-effort. The primary mutation
// already succeeded by the time this runs, so a failure here is logged and
// swallowed — never surfaced, never rolled back.
func RecordAuditEvent(event models.AuditEvent) {
	if database.DB == nil {
		return
	}
	if err := database.DB.Create(&event).Error; err != nil {
		log.Printf("⚠️  Audit write failed (%s), primary change is intact: %v", event.Type, err)
	}
}
