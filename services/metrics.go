package services

import (
	"math"
	"sort"
	"time"

	"pagai-backend/models"
	"pagai-backend/utils"
)

// Metrics modes
const (
	ModeAggregate = "aggregate"
	ModeMonthly   = "monthly"
)

func ValidMetricsMode(mode string) bool {
	return mode == ModeAggregate || mode == ModeMonthly
}

// MonthRange returns the inclusive epoch-ms boundaries of ref's calendar
// month in loc — the timezone basis shared with the calendar views.
func MonthRange(ref time.Time, loc *time.Location) (startMs, endMs int64) {
	ref = ref.In(loc)
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start.UnixMilli(), end.UnixMilli()
}

// ComputeMetrics aggregates the portfolio across active debtors. Payments
// count only when live and belonging to an active debtor. In monthly mode
// total_paid is restricted to payments dated inside ref's month, but
// total_pending is always measured against the all-time paid figure — a
// partial-period paid must not inflate pending.
func ComputeMetrics(debtors []models.Debtor, payments []models.Payment, mode string, ref time.Time, loc *time.Location) models.MetricsSnapshot {
	active := ActiveDebtors(debtors)
	byID := make(map[string]models.Debtor, len(active))
	for _, d := range active {
		byID[d.ID] = d
	}

	startMs, endMs := MonthRange(ref, loc)
	inMonth := func(p models.Payment) bool { return p.Date >= startMs && p.Date <= endMs }

	var totalOwed, paidAllTime, paidInMonth float64
	for _, d := range active {
		totalOwed += d.Total
	}

	var ranked []models.Payment
	for _, p := range payments {
		if !IsLivePayment(p) {
			continue
		}
		if _, ok := byID[p.DebtorID]; !ok {
			continue
		}
		paidAllTime += p.Amount
		if inMonth(p) {
			paidInMonth += p.Amount
		}
		if mode != ModeMonthly || inMonth(p) {
			ranked = append(ranked, p)
		}
	}

	totalPaid := paidAllTime
	if mode == ModeMonthly {
		totalPaid = paidInMonth
	}

	return models.MetricsSnapshot{
		Mode:         mode,
		TotalDebtors: len(active),
		TotalOwed:    utils.RoundToTwo(totalOwed),
		TotalPaid:    utils.RoundToTwo(totalPaid),
		TotalPending: utils.RoundToTwo(math.Max(0, totalOwed-paidAllTime)),
		Received:     rankReceived(ranked, byID),
	}
}

// rankReceived groups payments by debtor and sorts descending by amount.
// The sort is stable over first-payment order; debtors with nothing
// received in the period are omitted rather than listed at zero.
func rankReceived(payments []models.Payment, byID map[string]models.Debtor) []models.ReceivedRow {
	sums := make(map[string]int) // debtorID -> index into rows
	var rows []models.ReceivedRow

	for _, p := range payments {
		i, ok := sums[p.DebtorID]
		if !ok {
			d := byID[p.DebtorID]
			i = len(rows)
			sums[p.DebtorID] = i
			rows = append(rows, models.ReceivedRow{
				DebtorID:  p.DebtorID,
				Name:      d.Name,
				CreatedAt: d.CreatedAt,
			})
		}
		rows[i].Amount += p.Amount
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })
	for i := range rows {
		rows[i].Amount = utils.RoundToTwo(rows[i].Amount)
	}
	return rows
}
