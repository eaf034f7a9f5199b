package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"pagai-backend/config"
	"pagai-backend/services"
	"pagai-backend/store"
	"pagai-backend/utils"
)

// GET /api/metrics?mode=aggregate|monthly&month=YYYY-MM
// Monthly mode defaults to the current month.
func GetMetrics(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	loc := config.AppConfig.Timezone

	mode := c.DefaultQuery("mode", services.ModeAggregate)
	if !services.ValidMetricsMode(mode) {
		utils.BadRequest(c, "mode must be aggregate or monthly")
		return
	}

	ref := time.Now().In(loc)
	if month := c.Query("month"); month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, loc)
		if err != nil {
			utils.BadRequest(c, "month must look like 2024-03")
			return
		}
		ref = parsed
	}

	ctx, cancel := readContext(c)
	defer cancel()

	debtors, err := store.ReadDebtors(ctx, Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	payments, err := store.ReadOwnerPayments(ctx, Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	snapshot := services.ComputeMetrics(debtors, payments, mode, ref, loc)
	utils.SuccessResponse(c, http.StatusOK, "", snapshot)
}

// GET /api/report — the spreadsheet download: active debtors × live
// payments, same visibility and formatting rules as the live views.
func DownloadReport(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	ctx, cancel := readContext(c)
	defer cancel()

	debtors, err := store.ReadDebtors(ctx, Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	payments, err := store.ReadOwnerPayments(ctx, Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	active := services.ActiveDebtors(debtors)
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt > active[j].CreatedAt })

	csv := services.ExportReport(active, payments, config.AppConfig.Timezone)

	c.Header("Content-Disposition", `attachment; filename="`+services.ReportFilename+`"`)
	c.Data(http.StatusOK, services.ReportMIME, []byte(csv))
}
