package middlewares

import (
	"net/http"
	"strings"

	"eqcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserEmailKey is the gin context key holding the authenticated email.
const UserEmailKey = "userEmail"

// AuthMiddleware verifies the JWT and sets the user email in context. Browsers
// cannot set headers on websocket upgrades, so a "token" query parameter is
// accepted when the header is absent.
func AuthMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
				return
			}
			token = parts[1]
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			return
		}

		email, err := utils.EmailFromToken(token)
		if err != nil {
			log.Debug("rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserEmailKey, email)
		c.Next()
	}
}

// UserEmail returns the authenticated email set by AuthMiddleware.
func UserEmail(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}
