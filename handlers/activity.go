package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagai-backend/database"
	"pagai-backend/models"
	"pagai-backend/utils"
)

// GET /api/activity — the deletion audit trail, newest first. Empty when
// the audit database is not configured.
func GetActivity(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	events := []models.AuditEvent{}
	if database.DB != nil {
		var pagination utils.PaginationQuery
		c.ShouldBindQuery(&pagination)

		database.DB.Where("owner_id = ?", userID).
			Order("created_at DESC").
			Offset(pagination.Offset()).
			Limit(pagination.Limit).
			Find(&events)
	}

	utils.SuccessResponse(c, http.StatusOK, "", events)
}
