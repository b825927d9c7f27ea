package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListUsers returns all accounts for the admin user screen. Admin
// viewers see real email addresses.
func ListUsers(c *gin.Context) {
	query := config.DB.Where("delete_at IS NULL")
	if role := c.Query("role"); role != "" {
		if !models.Role(role).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role filter"})
			return
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("create_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole changes an account's role. A plain admin may not edit
// a super_admin, and nobody grants super_admin except a super_admin.
func UpdateUserRole(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newRole := models.Role(req.Role)
	if !newRole.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	actorRole, _ := getCurrentRole(c)

	var target models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	if !services.CanEditRole(actorRole, target.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may not edit this user's role"})
		return
	}
	if newRole == models.RoleSuperAdmin && actorRole != models.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only a super admin may grant super_admin"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&models.User{}).
		Where("user_id = ?", target.UserID).
		Updates(map[string]interface{}{"role": newRole, "update_at": now}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role updated"})
}
