package controllers

import (
	"net/http"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/services"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/utils"

	"github.com/gin-gonic/gin"
)

// GetProfile returns current user profile
func GetProfile(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var user models.User
	if err := config.DB.
		Where("user_id = ?", userID).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

type updateProfileRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Institution *string `json:"institution"`
	Bio         *string `json:"bio"`
	Expertise   *string `json:"expertise"`
}

// UpdateProfile lets a user edit their own profile fields. The role
// field is deliberately absent; roles only change through the admin
// user endpoints.
func UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getCurrentUserID(c)

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"update_at": now}
	if name := utils.SanitizeInput(req.FirstName); name != "" {
		updates["first_name"] = name
	}
	if name := utils.SanitizeInput(req.LastName); name != "" {
		updates["last_name"] = name
	}
	if req.Institution != nil {
		updates["institution"] = utils.SanitizeInput(*req.Institution)
	}
	if req.Bio != nil {
		updates["bio"] = utils.SanitizeInput(*req.Bio)
	}
	if req.Expertise != nil {
		updates["expertise"] = utils.SanitizeInput(*req.Expertise)
	}

	if err := config.DB.Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

// GetUserProfile returns another account's public profile, with the
// email masked for non-admin viewers. A missing or unreadable row
// degrades to the deterministic placeholder instead of failing.
func GetUserProfile(c *gin.Context) {
	viewerID, _ := getCurrentUserID(c)
	viewerRole, _ := getCurrentRole(c)
	targetUUID := c.Param("uuid")

	var target models.User
	err := config.DB.Where("user_uuid = ? AND delete_at IS NULL", targetUUID).First(&target).Error
	if err != nil {
		if services.IsPolicyDenied(err) {
			c.JSON(http.StatusOK, gin.H{
				"profile": services.FallbackProfile("Author", targetUUID),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	kind := "Author"
	if target.Role == models.RoleReviewer {
		kind = "Reviewer"
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": services.DisplayUser(viewerRole, viewerID, &target, kind, targetUUID),
	})
}
