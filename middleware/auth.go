package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pagai-backend/utils"
)

// AuthRequired validates the Bearer session token and stores the owner's
// uid on the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			utils.Unauthorized(c, "Missing authorization token")
			c.Abort()
			return
		}

		uid, err := utils.ParseToken(token)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", uid)
		c.Next()
	}
}
