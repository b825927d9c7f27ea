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
)

type assignReviewersRequest struct {
	ReviewerIDs []int `json:"reviewer_ids" binding:"required"`
}

// AssignReviewers attaches reviewers to a manuscript. Reviewers already
// assigned are skipped; when every requested reviewer is a duplicate
// the call fails without writing anything.
func AssignReviewers(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	var req assignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reviewer ids must reference reviewer accounts.
	var reviewerCount int64
	if err := config.DB.Model(&models.User{}).
		Where("user_id IN ? AND role = ? AND delete_at IS NULL", req.ReviewerIDs, models.RoleReviewer).
		Count(&reviewerCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify reviewers"})
		return
	}
	if int(reviewerCount) != len(uniqueIDs(req.ReviewerIDs)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more ids do not belong to reviewer accounts"})
		return
	}

	created, err := services.NewAssignmentService(config.DB).
		AssignReviewers(manuscriptID, req.ReviewerIDs, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateAssignment):
			c.JSON(http.StatusConflict, gin.H{"error": "All requested reviewers are already assigned to this manuscript"})
		case errors.Is(err, services.ErrNoReviewers):
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one reviewer id is required"})
		case errors.Is(err, services.ErrManuscriptMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign reviewers"})
		}
		return
	}

	// Notify each newly assigned reviewer.
	var manuscript models.Manuscript
	if err := config.DB.Where("manuscript_id = ?", manuscriptID).First(&manuscript).Error; err == nil {
		notifications := services.NewNotificationService(config.DB)
		for _, review := range created {
			var reviewer models.User
			if err := config.DB.Where("user_id = ?", review.ReviewerID).First(&reviewer).Error; err != nil {
				continue
			}
			manuscriptRef := manuscriptID
			notifications.Notify(reviewer, &manuscriptRef, services.EventReviewerAssigned, "reviewer", "info", map[string]string{
				"name":     reviewer.FirstName + " " + reviewer.LastName,
				"title":    manuscript.Title,
				"due_date": review.DueDate.Format("2006-01-02"),
			})
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"assigned": created,
		"message":  "Reviewers assigned; manuscript is now under review",
	})
}

// ListManuscriptReviews returns every review for a manuscript with full
// reviewer profiles (admins see real emails).
func ListManuscriptReviews(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	now := time.Now()
	var reviews []models.Review
	if err := config.DB.Preload("Reviewer").Preload("AssessmentFile").Preload("ReviewedFile").
		Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
		Order("assigned_date ASC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	rows := make([]gin.H, 0, len(reviews))
	for _, review := range reviews {
		rows = append(rows, reviewRow(review, now))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": rows,
		"total":   len(reviews),
	})
}

// ApproveReview releases a submitted review to the author.
func ApproveReview(c *gin.Context) {
	resolveReview(c, true)
}

// RejectReview sends a submitted review back without releasing it.
func RejectReview(c *gin.Context) {
	resolveReview(c, false)
}

func resolveReview(c *gin.Context, approve bool) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review id"})
		return
	}

	review, err := services.NewAssignmentService(config.DB).ResolveReview(reviewID, approve, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrReviewMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// SweepReminders triggers a due-date reminder sweep (3 or 7 days).
func SweepReminders(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "3"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
		return
	}

	sent, err := services.NewReminderService(config.DB).SweepReminders(days, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sent": sent})
}

// SweepOverdue promotes past-due unfinished reviews to the stored
// overdue status.
func SweepOverdue(c *gin.Context) {
	promoted, err := services.NewReminderService(config.DB).SweepOverdue(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "promoted": promoted})
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
