package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pagai-backend/models"
	"pagai-backend/services"
	"pagai-backend/store"
	"pagai-backend/utils"
)

// POST /api/debtors/:id/payments
func CreatePayment(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	debtorID := c.Param("id")

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		utils.BadRequest(c, "Invalid amount, use a value like 100,50")
		return
	}
	if amount < 0 {
		utils.BadRequest(c, "Payment amount cannot be negative")
		return
	}
	if !models.ValidPaymentMethod(req.Method) {
		utils.BadRequest(c, "Unknown payment method")
		return
	}
	methodOther := strings.TrimSpace(req.MethodOther)
	if req.Method == models.MethodOther && methodOther == "" {
		utils.BadRequest(c, "Specify the payment method")
		return
	}
	if req.Method != models.MethodOther {
		methodOther = ""
	}

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

	date := req.Date
	if date == 0 {
		date = nowMillis()
	}

	payment := models.Payment{
		DebtorID:    debtorID,
		OwnerID:     userID,
		Amount:      utils.RoundToTwo(amount),
		Date:        date,
		Note:        strings.TrimSpace(req.Note),
		Method:      req.Method,
		MethodOther: methodOther,
		CreatedAt:   nowMillis(),
	}

	if _, err := Store.CreatePayment(ctx, &payment); err != nil {
		writeStoreError(c, err)
		return
	}

	// The payment may have settled the debtor; recompute and notify.
	if payments, err := store.ReadPayments(ctx, Store, userID, debtorID); err == nil {
		if balance := services.ComputeBalance(*debtor, payments); balance.Settled {
			go services.GetNotificationService().NotifyDebtorSettled(userID, *debtor, balance)
		}
	}

	utils.SuccessResponse(c, http.StatusCreated, "Payment added", services.BuildPaymentResponse(payment))
}

// DELETE /api/debtors/:id/payments/:pid — soft delete. Deleting a payment
// that is gone or was deleted concurrently answers 404, not a server error.
func DeletePayment(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	debtorID := c.Param("id")
	paymentID := c.Param("pid")

	ctx, cancel := readContext(c)
	defer cancel()

	// snapshot the amount before it disappears, for the audit trail
	var amount float64
	if payments, err := store.ReadPayments(ctx, Store, userID, debtorID); err == nil {
		for _, p := range payments {
			if p.ID == paymentID {
				amount = p.Amount
				break
			}
		}
	}

	if err := Store.SoftDeletePayment(ctx, userID, debtorID, paymentID, nowMillis()); err != nil {
		writeStoreError(c, err)
		return
	}

	services.RecordAuditEvent(models.AuditEvent{
		OwnerID:   userID,
		Type:      models.EventPaymentDeleted,
		DebtorID:  debtorID,
		PaymentID: paymentID,
		Amount:    amount,
	})

	utils.SuccessResponse(c, http.StatusOK, "Payment deleted", nil)
}
