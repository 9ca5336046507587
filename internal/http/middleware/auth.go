package middleware

import (
	"net/http"
	"strings"

	"hamsterhub/internal/service"

	"github.com/gin-gonic/gin"
)

const memberIDKey = "member_id"

// Auth validates the bearer token and stashes the member id in the context
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		memberID, err := service.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(memberIDKey, memberID)
		c.Next()
	}
}

// MemberID pulls the authenticated member id out of the gin context
func MemberID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(memberIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
