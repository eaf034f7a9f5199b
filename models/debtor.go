package models

// Debtor is a person who owes the owner money. Debtors are never
// hard-deleted: `deleted` hides them everywhere, `archived` only removes
// them from the default list and metrics. Stored in the `debtors`
// Firestore collection; timestamps are epoch milliseconds.
type Debtor struct {
	ID         string  `firestore:"-" json:"id"`
	OwnerID    string  `firestore:"ownerUid" json:"owner_id"`
	Name       string  `firestore:"name" json:"name"`
	Total      float64 `firestore:"total" json:"total"`
	CreatedAt  int64   `firestore:"createdAt" json:"created_at"`
	Deleted    bool    `firestore:"deleted" json:"deleted"`
	DeletedAt  int64   `firestore:"deletedAt" json:"deleted_at,omitempty"`
	DeletedBy  string  `firestore:"deletedBy" json:"deleted_by,omitempty"`
	Archived   bool    `firestore:"archived" json:"archived"`
	ArchivedAt int64   `firestore:"archivedAt" json:"archived_at,omitempty"`
}

// Request structs
type CreateDebtorRequest struct {
	Name  string `json:"name" binding:"required"`
	Total string `json:"total" binding:"required"` // human-entered, e.g. "1.000,50"
}

// Response structs
type DebtorResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Total          float64 `json:"total"`
	TotalFormatted string  `json:"total_formatted"`
	CreatedAt      int64   `json:"created_at"`
	Archived       bool    `json:"archived"`
	Balance        Balance `json:"balance"`
}

type DebtorDetailResponse struct {
	DebtorResponse
	Payments []PaymentResponse `json:"payments"`
}
