package handlers

import "github.com/gin-gonic/gin"

// currentUserID reads the authenticated user from the gin context. Auth
// middleware guarantees it is set on protected routes.
func currentUserID(c *gin.Context) uint {
	v, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	id, ok := v.(uint)
	if !ok {
		return 0
	}
	return id
}
