package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"pagai-backend/services"
	"pagai-backend/utils"
)

// GET /api/debtors/stream — server-sent events with the live home list.
// Each event is the full recomputed active-debtor view; the watcher and
// all its nested payment subscriptions are released when the client
// disconnects.
func StreamDebtors(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	watcher, err := services.NewLedgerWatcher(c.Request.Context(), Store, userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	defer watcher.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-watcher.Snapshots():
			if !ok {
				return false
			}
			c.SSEvent("debtors", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
