package services

import (
	"sort"
	"time"

	"pagai-backend/models"
)

// Calendar browsing groups debtors by the month of their createdAt.
// Archived debtors still show up here — only deleted ones vanish.

// YearsWithDebtors returns the distinct creation years of live debtors,
// newest first.
func YearsWithDebtors(debtors []models.Debtor, loc *time.Location) []int {
	seen := make(map[int]bool)
	for _, d := range LiveDebtors(debtors) {
		seen[time.UnixMilli(d.CreatedAt).In(loc).Year()] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// MonthsPresent returns the months (1..12) of a year that contain at least
// one live debtor.
func MonthsPresent(debtors []models.Debtor, year int, loc *time.Location) []time.Month {
	seen := make(map[time.Month]bool)
	for _, d := range LiveDebtors(debtors) {
		t := time.UnixMilli(d.CreatedAt).In(loc)
		if t.Year() == year {
			seen[t.Month()] = true
		}
	}
	months := make([]time.Month, 0, len(seen))
	for m := time.January; m <= time.December; m++ {
		if seen[m] {
			months = append(months, m)
		}
	}
	return months
}

// DebtorsInMonth returns live debtors created inside the month's inclusive
// boundaries, newest first. A debtor lands only in the bucket containing
// its createdAt.
func DebtorsInMonth(debtors []models.Debtor, year int, month time.Month, loc *time.Location) []models.Debtor {
	startMs, endMs := MonthRange(time.Date(year, month, 1, 0, 0, 0, 0, loc), loc)
	var out []models.Debtor
	for _, d := range LiveDebtors(debtors) {
		if d.CreatedAt >= startMs && d.CreatedAt <= endMs {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}
