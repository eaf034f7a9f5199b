package services

import "pagai-backend/models"

// Visibility is the closed set of predicates every view must pick from.
// Deleted wins over archived: a deleted debtor is invisible everywhere,
// archiving only moves a live debtor out of the default list and metrics.
//
//	home list, metrics   -> active  (live && !archived)
//	archive list         -> archived view (live && archived)
//	calendar browsing    -> live
//	payment sums, export -> live payments

func IsLiveDebtor(d models.Debtor) bool     { return !d.Deleted }
func IsActiveDebtor(d models.Debtor) bool   { return !d.Deleted && !d.Archived }
func IsArchivedDebtor(d models.Debtor) bool { return !d.Deleted && d.Archived }
func IsLivePayment(p models.Payment) bool   { return !p.Deleted }

func LiveDebtors(debtors []models.Debtor) []models.Debtor {
	return filterDebtors(debtors, IsLiveDebtor)
}

func ActiveDebtors(debtors []models.Debtor) []models.Debtor {
	return filterDebtors(debtors, IsActiveDebtor)
}

func ArchivedDebtors(debtors []models.Debtor) []models.Debtor {
	return filterDebtors(debtors, IsArchivedDebtor)
}

func LivePayments(payments []models.Payment) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if IsLivePayment(p) {
			out = append(out, p)
		}
	}
	return out
}

func filterDebtors(debtors []models.Debtor, keep func(models.Debtor) bool) []models.Debtor {
	out := make([]models.Debtor, 0, len(debtors))
	for _, d := range debtors {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
