package handlers

import "github.com/gin-gonic/gin"

// userIDKey is the context key the auth middleware writes.
const userIDKey = "userID"

// SetUserID stores the authenticated user ID in the request context.
func SetUserID(c *gin.Context, userID uint64) {
	c.Set(userIDKey, userID)
}

// getUserID returns the authenticated user ID, or zero if absent.
func getUserID(c *gin.Context) uint64 {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0
	}
	id, ok := value.(uint64)
	if !ok {
		return 0
	}
	return id
}
