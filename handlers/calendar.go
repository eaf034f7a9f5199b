package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pagai-backend/config"
	"pagai-backend/models"
	"pagai-backend/services"
	"pagai-backend/store"
	"pagai-backend/utils"
)

// GET /api/calendar/years
func GetCalendarYears(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	ctx, cancel := readContext(c)
	defer cancel()

	debtors, err := store.ReadDebtors(ctx, Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	years := services.YearsWithDebtors(debtors, config.AppConfig.Timezone)
	utils.SuccessResponse(c, http.StatusOK, "", years)
}

// GET /api/calendar/:year/months — months of the year with at least one
// live debtor, as 1..12.
func GetCalendarMonths(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	year, ok := parseYear(c)
	if !ok {
		return
	}

	ctx, cancel := readContext(c)
	defer cancel()

	debtors, err := store.ReadDebtors(ctx, Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	months := services.MonthsPresent(debtors, year, config.AppConfig.Timezone)
	nums := make([]int, 0, len(months))
	for _, m := range months {
		nums = append(nums, int(m))
	}
	utils.SuccessResponse(c, http.StatusOK, "", nums)
}

// GET /api/calendar/:year/:month — live debtors created in that month,
// with their balances (archived ones still show here).
func GetCalendarMonthDebtors(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	year, ok := parseYear(c)
	if !ok {
		return
	}
	monthNum, err := strconv.Atoi(c.Param("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		utils.BadRequest(c, "Invalid month")
		return
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

	inMonth := services.DebtorsInMonth(debtors, year, time.Month(monthNum), config.AppConfig.Timezone)
	byDebtor := groupPaymentsByDebtor(payments)

	responses := make([]models.DebtorResponse, 0, len(inMonth))
	for _, d := range inMonth {
		responses = append(responses, services.BuildDebtorResponse(d, byDebtor[d.ID]))
	}
	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

func parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		utils.BadRequest(c, "Invalid year")
		return 0, false
	}
	return year, true
}
