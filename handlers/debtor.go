package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"pagai-backend/models"
	"pagai-backend/services"
	"pagai-backend/store"
	"pagai-backend/utils"
)

// GET /api/debtors — the home list: active debtors with live balances,
// newest first.
func GetDebtors(c *gin.Context) {
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

	byDebtor := groupPaymentsByDebtor(payments)
	responses := make([]models.DebtorResponse, 0, len(active))
	for _, d := range active {
		responses = append(responses, services.BuildDebtorResponse(d, byDebtor[d.ID]))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/archived — archived debtors, most recently archived first.
func GetArchivedDebtors(c *gin.Context) {
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

	archived := services.ArchivedDebtors(debtors)
	sort.Slice(archived, func(i, j int) bool { return archived[i].ArchivedAt > archived[j].ArchivedAt })

	byDebtor := groupPaymentsByDebtor(payments)
	responses := make([]models.DebtorResponse, 0, len(archived))
	for _, d := range archived {
		responses = append(responses, services.BuildDebtorResponse(d, byDebtor[d.ID]))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// POST /api/debtors
func CreateDebtor(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateDebtorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	total, err := utils.ParseAmount(req.Total)
	if err != nil {
		utils.BadRequest(c, "Invalid amount, use a value like 1.000,50")
		return
	}
	if total < 0 {
		utils.BadRequest(c, "Total owed cannot be negative")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.BadRequest(c, "Debtor name is required")
		return
	}

	debtor := models.Debtor{
		OwnerID:   userID,
		Name:      name,
		Total:     utils.RoundToTwo(total),
		CreatedAt: nowMillis(),
	}

	ctx, cancel := readContext(c)
	defer cancel()
	if _, err := Store.CreateDebtor(ctx, &debtor); err != nil {
		writeStoreError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Debtor added", services.BuildDebtorResponse(debtor, nil))
}

// GET /api/debtors/:id — debtor detail with its live payments. Supports
// ?q= note search and ?sort=asc|desc by payment date (desc default).
func GetDebtor(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	debtorID := c.Param("id")
	ctx, cancel := readContext(c)
	defer cancel()

	debtor, err := store.ReadDebtor(ctx, Store, userID, debtorID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if debtor == nil || debtor.Deleted {
		utils.NotFound(c, "Debtor not found or already deleted")
		return
	}

	payments, err := store.ReadPayments(ctx, Store, userID, debtorID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	live := services.LivePayments(payments)

	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := live[:0]
		for _, p := range live {
			if strings.Contains(strings.ToLower(p.Note), q) {
				filtered = append(filtered, p)
			}
		}
		live = filtered
	}

	asc := c.Query("sort") == "asc"
	sort.SliceStable(live, func(i, j int) bool {
		if asc {
			return live[i].Date < live[j].Date
		}
		return live[i].Date > live[j].Date
	})

	detail := models.DebtorDetailResponse{
		DebtorResponse: services.BuildDebtorResponse(*debtor, payments),
		Payments:       make([]models.PaymentResponse, 0, len(live)),
	}
	for _, p := range live {
		detail.Payments = append(detail.Payments, services.BuildPaymentResponse(p))
	}

	utils.SuccessResponse(c, http.StatusOK, "", detail)
}

// POST /api/debtors/:id/archive
func ArchiveDebtor(c *gin.Context) {
	setArchived(c, true, "Debtor archived")
}

// POST /api/debtors/:id/unarchive
func UnarchiveDebtor(c *gin.Context) {
	setArchived(c, false, "Debtor unarchived")
}

func setArchived(c *gin.Context, archived bool, message string) {
	userID := utils.GetCurrentUserID(c)
	ctx, cancel := readContext(c)
	defer cancel()

	if err := Store.SetDebtorArchived(ctx, userID, c.Param("id"), archived, nowMillis()); err != nil {
		writeStoreError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, nil)
}

// DELETE /api/debtors/:id — soft delete; the record stays in the store but
// leaves every view.
func DeleteDebtor(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	debtorID := c.Param("id")
	ctx, cancel := readContext(c)
	defer cancel()

	if err := Store.SoftDeleteDebtor(ctx, userID, debtorID, nowMillis()); err != nil {
		writeStoreError(c, err)
		return
	}

	services.RecordAuditEvent(models.AuditEvent{
		OwnerID:  userID,
		Type:     models.EventDebtorDeleted,
		DebtorID: debtorID,
	})

	utils.SuccessResponse(c, http.StatusOK, "Debtor deleted", nil)
}

func groupPaymentsByDebtor(payments []models.Payment) map[string][]models.Payment {
	byDebtor := make(map[string][]models.Payment)
	for _, p := range payments {
		byDebtor[p.DebtorID] = append(byDebtor[p.DebtorID], p)
	}
	return byDebtor
}
