package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pagai-backend/database"
	"pagai-backend/utils"
)

type SessionRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type SessionResponse struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

// POST /auth/session — exchange a Firebase ID token for a backend session
// token. Verified tokens are cached in Redis until they expire so repeated
// exchanges skip the Firebase round trip.
func CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if AuthClient == nil {
		utils.InternalError(c, "Auth is not configured")
		return
	}

	ctx, cancel := readContext(c)
	defer cancel()

	cacheKey := "idtok:" + hashToken(req.IDToken)
	uid := cachedUID(ctx, cacheKey)

	if uid == "" {
		decoded, err := AuthClient.VerifyIDToken(ctx, req.IDToken)
		if err != nil {
			utils.Unauthorized(c, "Invalid Firebase ID token")
			return
		}
		uid = decoded.UID
		cacheUID(ctx, cacheKey, uid, time.Until(time.Unix(decoded.Expires, 0)))
	}

	token, err := utils.GenerateToken(uid)
	if err != nil {
		utils.InternalError(c, "Failed to generate token")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session created", SessionResponse{
		Token: token,
		UID:   uid,
	})
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func cachedUID(ctx context.Context, key string) string {
	if database.Redis == nil {
		return ""
	}
	uid, err := database.Redis.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return uid
}

func cacheUID(ctx context.Context, key, uid string, ttl time.Duration) {
	if database.Redis == nil || ttl <= 0 {
		return
	}
	database.Redis.Set(ctx, key, uid, ttl)
}
