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
	"gorm.io/gorm"
)

// ListManuscripts returns every manuscript for the admin dashboard,
// with an optional status filter. A missing author row degrades to the
// placeholder profile instead of failing the listing.
func ListManuscripts(c *gin.Context) {
	viewerID, _ := getCurrentUserID(c)
	viewerRole, _ := getCurrentRole(c)

	query := config.DB.Preload("Author").Where("delete_at IS NULL")
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

	rows := make([]gin.H, 0, len(manuscripts))
	for _, m := range manuscripts {
		rows = append(rows, gin.H{
			"manuscript": m,
			"author":     services.DisplayUser(viewerRole, viewerID, m.Author, "Author", ""),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"manuscripts": rows,
		"stats":       services.ComputeStats(manuscripts),
		"total":       len(manuscripts),
	})
}

type updateManuscriptRequest struct {
	Title      *string `json:"title"`
	Abstract   *string `json:"abstract"`
	Keywords   *string `json:"keywords"`
	CoAuthors  *string `json:"co_authors"`
	AdminNotes *string `json:"admin_notes"`
}

// UpdateManuscript edits manuscript metadata and admin notes.
func UpdateManuscript(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	var req updateManuscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var manuscript models.Manuscript
	if err := config.DB.Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).First(&manuscript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load manuscript"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"update_at": now}
	if req.Title != nil {
		if title := utils.SanitizeInput(*req.Title); title != "" {
			updates["title"] = title
		}
	}
	if req.Abstract != nil {
		if abstract := utils.SanitizeInput(*req.Abstract); abstract != "" {
			updates["abstract"] = abstract
		}
	}
	if req.Keywords != nil {
		updates["keywords"] = utils.SanitizeInput(*req.Keywords)
	}
	if req.CoAuthors != nil {
		updates["co_authors"] = utils.SanitizeInput(*req.CoAuthors)
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = utils.SanitizeInput(*req.AdminNotes)
	}

	if err := config.DB.Model(&models.Manuscript{}).
		Where("manuscript_id = ?", manuscript.ManuscriptID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update manuscript"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Manuscript updated"})
}

// UpdateManuscriptStatus moves a manuscript to a new workflow status
// and notifies the author. The decision date follows the status: set
// for decision statuses, cleared otherwise.
func UpdateManuscriptStatus(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, _ := getCurrentRole(c)
	newStatus := models.ManuscriptStatus(req.Status)

	lifecycle := services.NewLifecycleService(config.DB)
	manuscript, err := lifecycle.Transition(manuscriptID, newStatus, role, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotPermitted):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins may change manuscript status"})
		case errors.Is(err, services.ErrManuscriptMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	var author models.User
	if err := config.DB.Where("user_id = ?", manuscript.AuthorID).First(&author).Error; err == nil {
		services.NewNotificationService(config.DB).Notify(author, &manuscript.ManuscriptID,
			services.EventStatusChanged, "author", "info", map[string]string{
				"name":   author.FirstName + " " + author.LastName,
				"title":  manuscript.Title,
				"status": string(manuscript.Status),
			})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"manuscript": manuscript,
		"message":    "Status updated",
	})
}

// DeleteManuscript soft-deletes a manuscript together with its reviews
// and final documents in one transaction.
func DeleteManuscript(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	lifecycle := services.NewLifecycleService(config.DB)
	if err := lifecycle.Delete(manuscriptID, time.Now()); err != nil {
		if errors.Is(err, services.ErrManuscriptMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete manuscript"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Manuscript deleted"})
}

// UploadFinalDocument attaches a final document to a manuscript.
// Existing documents are never edited; a new upload supersedes by
// adding a row.
func UploadFinalDocument(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	userID, _ := getCurrentUserID(c)

	var manuscript models.Manuscript
	if err := config.DB.Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).First(&manuscript).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
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

	document := models.FinalDocument{
		ManuscriptID: manuscriptID,
		FileID:       record.FileID,
		UploadedBy:   userID,
		UploadedAt:   now,
	}
	if err := config.DB.Create(&document).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record final document"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"document": document,
		"message":  "Final document uploaded",
	})
}

// SendFinalDocuments emails the author that final documents are ready.
// When no documents exist the request short-circuits with a warning and
// writes nothing.
func SendFinalDocuments(c *gin.Context) {
	manuscriptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || manuscriptID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manuscript id"})
		return
	}

	var manuscript models.Manuscript
	if err := config.DB.Preload("Author").
		Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
		First(&manuscript).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manuscript not found"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.FinalDocument{}).
		Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check final documents"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"warning": "No final documents to send for this manuscript",
		})
		return
	}

	if manuscript.Author == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Manuscript has no author on record"})
		return
	}

	services.NewNotificationService(config.DB).Notify(*manuscript.Author, &manuscript.ManuscriptID,
		services.EventFinalDocumentsSent, "author", "success", map[string]string{
			"name":  manuscript.Author.FirstName + " " + manuscript.Author.LastName,
			"title": manuscript.Title,
		})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Final documents sent to the author",
	})
}
