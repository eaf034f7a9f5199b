package services

import (
	"strings"
	"time"

	"pagai-backend/models"
	"pagai-backend/utils"
)

const (
	ReportFilename = "planilha-devedores.csv"
	ReportMIME     = "text/csv; charset=utf-8"

	reportSep       = ";"
	reportTimestamp = "02/01/2006 15:04:05"
)

var reportHeader = strings.Join([]string{
	"DEVEDOR", "TOTAL DEVIDO", "CRIADO EM", "VALOR PAGO", "DATA PAGAMENTO", "MÉTODO PAGAMENTO", "OBSERVACAO",
}, reportSep)

// ExportReport serializes debtor × payment rows as spreadsheet-friendly
// CSV: semicolon separators, CRLF rows, every populated field quoted with
// embedded quotes doubled, and a UTF-8 BOM so Excel picks the right
// encoding. A debtor with no live payments still yields one row, with the
// payment cells empty. Row order follows the supplied debtor order; within
// a debtor, the supplied payment order — the exporter never re-sorts.
func ExportReport(debtors []models.Debtor, payments []models.Payment, loc *time.Location) string {
	byDebtor := make(map[string][]models.Payment)
	for _, p := range LivePayments(payments) {
		byDebtor[p.DebtorID] = append(byDebtor[p.DebtorID], p)
	}

	lines := []string{reportHeader}
	for _, d := range debtors {
		name := quoteField(d.Name)
		total := quoteField(utils.FormatAmount(d.Total))
		created := quoteField(formatReportTime(d.CreatedAt, loc))

		plist := byDebtor[d.ID]
		if len(plist) == 0 {
			lines = append(lines, strings.Join([]string{name, total, created, "", "", "", ""}, reportSep))
			continue
		}
		for _, p := range plist {
			lines = append(lines, strings.Join([]string{
				name,
				total,
				created,
				quoteField(utils.FormatAmount(p.Amount)),
				quoteField(formatReportTime(p.Date, loc)),
				quoteField(p.MethodLabel()),
				quoteField(p.Note),
			}, reportSep))
		}
	}

	return "\uFEFF" + strings.Join(lines, "\r\n")
}

func quoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func formatReportTime(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).In(loc).Format(reportTimestamp)
}
