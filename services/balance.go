package services

import (
	"math"

	"pagai-backend/models"
	"pagai-backend/utils"
)

// Epsilon absorbs float rounding noise when classifying a debtor as
// settled: remaining balances at or below one cent count as paid off.
const Epsilon = 0.01

// ComputeBalance derives a debtor's position from its payments. Deleted
// payments never count; remaining never goes negative even when payments
// overshoot the declared total.
func ComputeBalance(d models.Debtor, payments []models.Payment) models.Balance {
	var paid float64
	for _, p := range payments {
		if IsLivePayment(p) {
			paid += p.Amount
		}
	}

	remaining := math.Max(0, d.Total-paid)
	// classify on the 2-dp value the caller sees, so Settled can never
	// disagree with the reported Remaining
	settled := utils.RoundToTwo(remaining) <= Epsilon

	progress := 0
	if d.Total > 0 {
		progress = int(math.Min(100, math.Round(paid/d.Total*100)))
	} else if settled {
		// zero-total debtor: nothing to collect
		progress = 100
	}

	return models.Balance{
		Paid:            utils.RoundToTwo(paid),
		Remaining:       utils.RoundToTwo(remaining),
		ProgressPercent: progress,
		Settled:         settled,
	}
}

// BuildDebtorResponse pairs a debtor with its computed balance for the API.
func BuildDebtorResponse(d models.Debtor, payments []models.Payment) models.DebtorResponse {
	return models.DebtorResponse{
		ID:             d.ID,
		Name:           d.Name,
		Total:          d.Total,
		TotalFormatted: utils.FormatAmount(d.Total),
		CreatedAt:      d.CreatedAt,
		Archived:       d.Archived,
		Balance:        ComputeBalance(d, payments),
	}
}

// BuildPaymentResponse shapes a live payment for the API.
func BuildPaymentResponse(p models.Payment) models.PaymentResponse {
	return models.PaymentResponse{
		ID:              p.ID,
		Amount:          p.Amount,
		AmountFormatted: utils.FormatAmount(p.Amount),
		Date:            p.Date,
		Note:            p.Note,
		Method:          p.Method,
		MethodLabel:     p.MethodLabel(),
		CreatedAt:       p.CreatedAt,
	}
}
