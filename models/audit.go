package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit event types
const (
	EventPaymentDeleted = "payment_delete"
	EventDebtorDeleted  = "debtor_delete"
)

// AuditEvent records destructive actions best-effort: a failed write here
// never rolls back or fails the primary mutation.
type AuditEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"index;size:128" json:"owner_id"`
	Type      string    `gorm:"not null;size:30" json:"type"`
	DebtorID  string    `gorm:"size:128" json:"debtor_id"`
	PaymentID string    `gorm:"size:128" json:"payment_id,omitempty"`
	Amount    float64   `gorm:"type:decimal(12,2)" json:"amount,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
