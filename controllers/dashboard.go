package controllers

import (
	"net/http"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/services"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns dashboard statistics for the caller's role.
func GetDashboardStats(c *gin.Context) {
	userID, userExists := getCurrentUserID(c)
	role, roleExists := getCurrentRole(c)
	if !userExists || !roleExists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication context missing",
		})
		return
	}

	var stats gin.H
	switch {
	case role.IsAdmin():
		stats = getAdminDashboard()
	case role == models.RoleReviewer:
		stats = getReviewerDashboard(userID)
	default:
		stats = getAuthorDashboard(userID)
	}

	stats["current_date"] = time.Now().Format("2006-01-02")

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// getAuthorDashboard aggregates the caller's own manuscripts.
func getAuthorDashboard(userID int) gin.H {
	var manuscripts []models.Manuscript
	config.DB.Where("author_id = ? AND delete_at IS NULL", userID).Find(&manuscripts)

	return gin.H{
		"manuscripts": services.ComputeStats(manuscripts),
	}
}

// getReviewerDashboard aggregates the caller's assignments. Overdue is
// the derived property, not the stored status.
func getReviewerDashboard(userID int) gin.H {
	now := time.Now()

	var reviews []models.Review
	config.DB.Where("reviewer_id = ? AND delete_at IS NULL", userID).Find(&reviews)

	completed := 0
	overdue := 0
	pending := 0
	for _, review := range reviews {
		switch {
		case review.CompletedDate != nil:
			completed++
		case services.IsOverdue(review, now):
			overdue++
		default:
			pending++
		}
	}

	return gin.H{
		"assignments": gin.H{
			"total":     len(reviews),
			"pending":   pending,
			"completed": completed,
			"overdue":   overdue,
		},
	}
}

// getAdminDashboard aggregates the whole portal.
func getAdminDashboard() gin.H {
	var manuscripts []models.Manuscript
	config.DB.Where("delete_at IS NULL").Find(&manuscripts)

	var awaitingApproval int64
	config.DB.Model(&models.Review{}).
		Where("status = ? AND delete_at IS NULL", models.ReviewPendingAdminApproval).
		Count(&awaitingApproval)

	var activeReviews int64
	config.DB.Model(&models.Review{}).
		Where("completed_date IS NULL AND delete_at IS NULL").
		Count(&activeReviews)

	return gin.H{
		"manuscripts": services.ComputeStats(manuscripts),
		"reviews": gin.H{
			"active":            activeReviews,
			"awaiting_approval": awaitingApproval,
		},
	}
}
