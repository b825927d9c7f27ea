package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/services"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateManuscript handles a new submission: metadata plus the
// manuscript file and an optional cover letter in one multipart form.
func CreateManuscript(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	title := utils.SanitizeInput(c.PostForm("title"))
	abstract := utils.SanitizeInput(c.PostForm("abstract"))
	if title == "" || abstract == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and abstract are required"})
		return
	}

	manuscriptFile, err := c.FormFile("manuscript_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Manuscript file is required"})
		return
	}

	now := time.Now()

	fileRecord, err := saveUploadedFile(c, manuscriptFile, userID, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to store manuscript file: " + err.Error()})
		return
	}

	manuscript := models.Manuscript{
		ManuscriptUUID: uuid.New().String(),
		Title:          title,
		Abstract:       abstract,
		Status:         models.StatusSubmitted,
		AuthorID:       userID,
		FileID:         &fileRecord.FileID,
		SubmittedAt:    now,
		CreateAt:       &now,
		UpdateAt:       &now,
	}
	if keywords := utils.SanitizeInput(c.PostForm("keywords")); keywords != "" {
		manuscript.Keywords = &keywords
	}
	if coAuthors := utils.SanitizeInput(c.PostForm("co_authors")); coAuthors != "" {
		manuscript.CoAuthors = &coAuthors
	}

	if coverLetter, err := c.FormFile("cover_letter"); err == nil {
		coverRecord, err := saveUploadedFile(c, coverLetter, userID, now)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to store cover letter: " + err.Error()})
			return
		}
		manuscript.CoverLetterID = &coverRecord.FileID
	}

	if err := config.DB.Create(&manuscript).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create manuscript"})
		return
	}

	var author models.User
	if err := config.DB.Where("user_id = ?", userID).First(&author).Error; err == nil {
		notifications := services.NewNotificationService(config.DB)
		data := map[string]string{
			"name":  author.FirstName + " " + author.LastName,
			"title": manuscript.Title,
		}
		notifications.Notify(author, &manuscript.ManuscriptID, services.EventManuscriptSubmitted, "author", "success", data)
		notifications.NotifyAdmins(&manuscript.ManuscriptID, services.EventManuscriptSubmitted, "info", data)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"manuscript": manuscript,
		"message":    "Manuscript submitted successfully",
	})
}

// GetMyManuscripts lists the caller's own manuscripts with the
// dashboard aggregation.
func GetMyManuscripts(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	query := config.DB.Where("author_id = ? AND delete_at IS NULL", userID)
	if status := c.Query("status"); status != "" {
		if !models.ManuscriptStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var manuscripts []models.Manuscript
	if err := query.Order("submitted_at DESC").Find(&manuscripts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch manuscripts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"manuscripts": manuscripts,
		"stats":       services.ComputeStats(manuscripts),
		"total":       len(manuscripts),
	})
}

// GetManuscript returns one of the caller's manuscripts with its final
// documents and any admin-approved review feedback. Reviewer identity
// is never exposed to authors: each review carries the deterministic
// placeholder profile instead.
func GetManuscript(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	query := config.DB.Preload("File").Preload("CoverLetter").
		Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID)
	if !role.IsAdmin() {
		query = query.Where("author_id = ?", userID)
	}

	var manuscript models.Manuscript
	if err := query.First(&manuscript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load manuscript"})
		return
	}

	var finalDocuments []models.FinalDocument
	if err := config.DB.Preload("File").
		Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
		Order("uploaded_at DESC").
		Find(&finalDocuments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load final documents"})
		return
	}

	var approved []models.Review
	if err := config.DB.Preload("Reviewer").
		Where("manuscript_id = ? AND status = ? AND delete_at IS NULL", manuscriptID, models.ReviewAdminApproved).
		Find(&approved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}

	feedback := make([]gin.H, 0, len(approved))
	for _, review := range approved {
		reviewerUUID := ""
		if review.Reviewer != nil {
			reviewerUUID = review.Reviewer.UserUUID
		}
		entry := gin.H{
			"review_id": review.ReviewID,
			"reviewer":  services.FallbackProfile("Reviewer", reviewerUUID),
		}
		if review.Rating != nil {
			entry["rating"] = *review.Rating
		}
		if review.Recommendation != nil {
			entry["recommendation"] = *review.Recommendation
		}
		if review.Comments != nil {
			entry["comments"] = *review.Comments
		}
		feedback = append(feedback, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"manuscript":      manuscript,
		"final_documents": finalDocuments,
		"reviews":         feedback,
	})
}

// GetFinalDocuments lists the final documents for one of the caller's
// manuscripts.
func GetFinalDocuments(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	var manuscript models.Manuscript
	query := config.DB.Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID)
	if !role.IsAdmin() {
		query = query.Where("author_id = ?", userID)
	}
	if err := query.First(&manuscript).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
		return
	}

	var documents []models.FinalDocument
	if err := config.DB.Preload("File").
		Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
		Order("uploaded_at DESC").
		Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load final documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": documents,
		"total":     len(documents),
	})
}
