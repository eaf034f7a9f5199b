package models

// Payment methods (closed set; MethodOther carries a free-text label)
const (
	MethodPix        = "pix"
	MethodCreditCard = "credit-card"
	MethodDebitCard  = "debit-card"
	MethodCash       = "cash"
	MethodOther      = "other"
)

var paymentMethodLabels = map[string]string{
	MethodPix:        "PIX",
	MethodCreditCard: "Cartão de Crédito",
	MethodDebitCard:  "Cartão de Débito",
	MethodCash:       "Dinheiro",
	MethodOther:      "Outros",
}

func ValidPaymentMethod(m string) bool {
	_, ok := paymentMethodLabels[m]
	return ok
}

// Payment lives in the `payments` subcollection of its debtor. `date` is
// when the payment was effectively made (user-editable); `createdAt` is the
// record's own creation time and never enters balance math.
type Payment struct {
	ID          string  `firestore:"-" json:"id"`
	DebtorID    string  `firestore:"debtorId" json:"debtor_id"`
	OwnerID     string  `firestore:"ownerUid" json:"owner_id"`
	Amount      float64 `firestore:"amount" json:"amount"`
	Date        int64   `firestore:"date" json:"date"`
	Note        string  `firestore:"note" json:"note,omitempty"`
	Method      string  `firestore:"paymentMethod" json:"payment_method"`
	MethodOther string  `firestore:"paymentMethodOther" json:"payment_method_other,omitempty"`
	CreatedAt   int64   `firestore:"createdAt" json:"created_at"`
	Deleted     bool    `firestore:"deleted" json:"deleted"`
	DeletedAt   int64   `firestore:"deletedAt" json:"deleted_at,omitempty"`
	DeletedBy   string  `firestore:"deletedBy" json:"deleted_by,omitempty"`
}

// MethodLabel returns the display label for the payment method, appending
// the free-text label for "other" ("Outros: fiado").
func (p Payment) MethodLabel() string {
	if p.Method == "" {
		return ""
	}
	label, ok := paymentMethodLabels[p.Method]
	if !ok {
		return p.Method
	}
	if p.Method == MethodOther && p.MethodOther != "" {
		return label + ": " + p.MethodOther
	}
	return label
}

// Request structs
type CreatePaymentRequest struct {
	Amount      string `json:"amount" binding:"required"` // human-entered, e.g. "100,50"
	Date        int64  `json:"date"`                      // epoch ms; zero means now
	Note        string `json:"note"`
	Method      string `json:"payment_method" binding:"required"`
	MethodOther string `json:"payment_method_other"`
}

// Response structs
type PaymentResponse struct {
	ID              string  `json:"id"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
	Date            int64   `json:"date"`
	Note            string  `json:"note,omitempty"`
	Method          string  `json:"payment_method"`
	MethodLabel     string  `json:"payment_method_label"`
	CreatedAt       int64   `json:"created_at"`
}
