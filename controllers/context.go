package controllers

import (
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"github.com/gin-gonic/gin"
)

// getCurrentUserID reads the authenticated user id set by the auth
// middleware.
func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func getCurrentRole(c *gin.Context) (models.Role, bool) {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(models.Role); ok {
			return role, true
		}
	}
	return "", false
}
