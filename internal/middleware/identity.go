package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the calling user's ID in the Gin context.
const userIDKey = contextKey("userID")

// defaultUserID attributes writes when no identity header is present, e.g.
// internal tooling or scheduled runs.
const defaultUserID = "system"

// IdentityMiddleware reads the caller identity set by the authenticating
// reverse proxy in front of this service. The ID is only used for audit
// fields and review-queue assignment.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = defaultUserID
		}
		c.Set(string(userIDKey), userID)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the calling user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) string {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return defaultUserID
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return defaultUserID
	}
	return userID
}
