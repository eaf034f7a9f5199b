package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"pagai-backend/store"
	"pagai-backend/utils"
)

// Package-level collaborators, wired in main (tests swap in the memory store).
var (
	Store      store.Store
	AuthClient *firebaseauth.Client
)

const readTimeout = 10 * time.Second

func readContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), readTimeout)
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// writeStoreError maps the store's error taxonomy onto HTTP so clients can
// tell bad references from retry-worthy server-side failures. The engine
// never retries on its own.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.NotFound(c, "Record not found or already deleted")
	case errors.Is(err, store.ErrPermissionDenied):
		utils.ErrorResponse(c, http.StatusForbidden, "You do not own this record")
	case errors.Is(err, store.ErrUnavailable):
		utils.BadGateway(c, "Store unavailable: "+err.Error())
	default:
		utils.BadGateway(c, "Store operation failed: "+err.Error())
	}
}
