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

// reviewRow augments a review with the derived overdue flag. The flag
// is computed on every read; the stored status only says overdue after
// the background sweep has run.
func reviewRow(review models.Review, now time.Time) gin.H {
	return gin.H{
		"review":  review,
		"overdue": services.IsOverdue(review, now),
	}
}

// GetMyReviews lists the caller's review assignments.
func GetMyReviews(c *gin.Context) {
	userID, _ := getCurrentUserID(c)
	now := time.Now()

	query := config.DB.Preload("Manuscript").
		Where("reviewer_id = ? AND delete_at IS NULL", userID)
	if status := c.Query("status"); status != "" {
		if !models.ReviewStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var reviews []models.Review
	if err := query.Order("due_date ASC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	rows := make([]gin.H, 0, len(reviews))
	overdueCount := 0
	for _, review := range reviews {
		if services.IsOverdue(review, now) {
			overdueCount++
		}
		rows = append(rows, reviewRow(review, now))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": rows,
		"overdue": overdueCount,
		"total":   len(reviews),
	})
}

// GetReview returns one of the caller's assignments, including the
// manuscript under review. The author's email is masked for reviewers.
func GetReview(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review id"})
		return
	}

	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	var review models.Review
	query := config.DB.Preload("Manuscript").Preload("Manuscript.File").
		Preload("Manuscript.Author").Preload("AssessmentFile").
		Where("review_id = ? AND delete_at IS NULL", reviewID)
	if !role.IsAdmin() {
		query = query.Where("reviewer_id = ?", userID)
	}
	if err := query.First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	var author services.DisplayProfile
	if review.Manuscript != nil {
		uuid := ""
		if review.Manuscript.Author != nil {
			uuid = review.Manuscript.Author.UserUUID
		}
		author = services.DisplayUser(role, userID, review.Manuscript.Author, "Author", uuid)
		review.Manuscript.Author = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
		"author":  author,
		"overdue": services.IsOverdue(review, time.Now()),
	})
}

// StartReview moves an assignment to in_progress.
func StartReview(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review id"})
		return
	}

	userID, _ := getCurrentUserID(c)

	review, err := services.NewAssignmentService(config.DB).StartReview(reviewID, userID, time.Now())
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

type submitReviewRequest struct {
	Rating         int    `json:"rating" binding:"required"`
	Recommendation string `json:"recommendation" binding:"required"`
	Comments       string `json:"comments" binding:"required"`
}

// SubmitReview records the reviewer's assessment and parks it for admin
// approval.
func SubmitReview(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review id"})
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getCurrentUserID(c)

	review, err := services.NewAssignmentService(config.DB).
		SubmitReview(reviewID, userID, req.Rating, req.Recommendation, req.Comments, time.Now())
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	if review.Manuscript == nil {
		var manuscript models.Manuscript
		if err := config.DB.Where("manuscript_id = ?", review.ManuscriptID).First(&manuscript).Error; err == nil {
			review.Manuscript = &manuscript
		}
	}
	title := ""
	if review.Manuscript != nil {
		title = review.Manuscript.Title
	}
	services.NewNotificationService(config.DB).NotifyAdmins(&review.ManuscriptID,
		services.EventReviewSubmitted, "info", map[string]string{"title": title})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
		"message": "Review submitted for admin approval",
	})
}

// UploadAssessment attaches the reviewer's assessment file (or an
// annotated manuscript) to their review.
func UploadAssessment(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review id"})
		return
	}

	userID, _ := getCurrentUserID(c)

	var review models.Review
	if err := config.DB.Where("review_id = ? AND reviewer_id = ? AND delete_at IS NULL", reviewID, userID).
		First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}

	now := time.Now()
	record, err := saveUploadedFile(c, file, userID, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to store file: " + err.Error()})
		return
	}

	column := "assessment_file_id"
	if c.PostForm("kind") == "reviewed_manuscript" {
		column = "reviewed_file_id"
	}

	if err := config.DB.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{column: record.FileID, "update_at": now}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"file":    record,
		"message": "File attached to review",
	})
}

func respondAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReviewMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	case errors.Is(err, services.ErrNotReviewOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "This review belongs to another reviewer"})
	case errors.Is(err, services.ErrReviewFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "Review has already been submitted"})
	case errors.Is(err, services.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
	case errors.Is(err, services.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recommendation and comments are required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
	}
}
