package middleware

import (
	"net/http"
	"strings"

	"homelead/utils"

	"github.com/gin-gonic/gin"
)

// SessionTokenMiddleware validates the bearer token issued when a chat
// session was created and puts the session ID on the request context.
// A token only ever grants access to its own session, which keeps
// concurrent conversations isolated at the API edge.
func SessionTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing session token",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sessionID, err := utils.ExtractSessionIDFromToken(tokenString)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session token",
			})
			return
		}

		c.Set("sessionID", sessionID)
		c.Next()
	}
}
