package models

// Balance is the derived position of a single debtor. It is recomputed from
// the latest live payments on every read and never persisted.
type Balance struct {
	Paid            float64 `json:"paid"`
	Remaining       float64 `json:"remaining"`
	ProgressPercent int     `json:"progress_percent"`
	Settled         bool    `json:"settled"`
}

// MetricsSnapshot is returned for GET /api/metrics
type MetricsSnapshot struct {
	Mode         string        `json:"mode"` // aggregate, monthly
	TotalDebtors int           `json:"total_debtors"`
	TotalOwed    float64       `json:"total_owed"`
	TotalPaid    float64       `json:"total_paid"`    // all time, or the reference month in monthly mode
	TotalPending float64       `json:"total_pending"` // always against all-time paid
	Received     []ReceivedRow `json:"received"`
}

// ReceivedRow ranks a debtor by the amount received from them in the
// selected period. Debtors with nothing received are omitted.
type ReceivedRow struct {
	DebtorID  string  `json:"debtor_id"`
	Name      string  `json:"name"`
	CreatedAt int64   `json:"created_at"`
	Amount    float64 `json:"amount"`
}
