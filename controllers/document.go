package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxUploadBytes = 25 << 20 // 25 MB

var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
	".odt":  true,
}

var errUnsupportedFileType = errors.New("unsupported file type")

// saveUploadedFile persists the upload to disk and records its
// metadata. The stored name is a uuid so originals can never collide or
// traverse paths.
func saveUploadedFile(c *gin.Context, file *multipart.FileHeader, uploadedBy int, now time.Time) (*models.FileRecord, error) {
	if file.Size > maxUploadBytes {
		return nil, errors.New("file exceeds the 25 MB limit")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExtensions[ext] {
		return nil, errUnsupportedFileType
	}

	storedFilename := utils.StoredFilename(file.Filename)
	fullPath := utils.StoredFilePath(storedFilename, now)
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return nil, err
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		return nil, err
	}

	record := models.FileRecord{
		OriginalFilename: filepath.Base(file.Filename),
		StoredFilename:   storedFilename,
		FileType:         file.Header.Get("Content-Type"),
		FileSize:         file.Size,
		UploadedBy:       uploadedBy,
		UploadedAt:       &now,
		CreateAt:         &now,
		UpdateAt:         &now,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		// Orphaned bytes on disk are cleaned up so a failed insert
		// leaves no dangling file.
		os.Remove(fullPath)
		return nil, err
	}
	return &record, nil
}

// canAccessFile implements the row-level download policy: admins read
// everything, authors read files attached to their own manuscripts and
// final documents, reviewers read manuscript files for their
// assignments plus their own assessment uploads.
func canAccessFile(userID int, role models.Role, fileID int) bool {
	if role.IsAdmin() {
		return true
	}

	var count int64

	// Uploader always reads their own file.
	config.DB.Model(&models.FileRecord{}).
		Where("file_id = ? AND uploaded_by = ? AND delete_at IS NULL", fileID, userID).
		Count(&count)
	if count > 0 {
		return true
	}

	switch role {
	case models.RoleAuthor:
		config.DB.Model(&models.Manuscript{}).
			Where("author_id = ? AND delete_at IS NULL", userID).
			Where("file_id = ? OR cover_letter_id = ?", fileID, fileID).
			Count(&count)
		if count > 0 {
			return true
		}
		config.DB.Model(&models.FinalDocument{}).
			Joins("JOIN manuscripts ON manuscripts.manuscript_id = final_documents.manuscript_id").
			Where("manuscripts.author_id = ? AND final_documents.file_id = ?", userID, fileID).
			Where("final_documents.delete_at IS NULL AND manuscripts.delete_at IS NULL").
			Count(&count)
		return count > 0
	case models.RoleReviewer:
		config.DB.Model(&models.Review{}).
			Joins("JOIN manuscripts ON manuscripts.manuscript_id = reviews.manuscript_id").
			Where("reviews.reviewer_id = ? AND reviews.delete_at IS NULL", userID).
			Where("manuscripts.file_id = ? OR manuscripts.cover_letter_id = ?", fileID, fileID).
			Count(&count)
		return count > 0
	}
	return false
}

// DownloadFile streams a stored file to an authorized caller.
func DownloadFile(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("file_id"))
	if err != nil || fileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file id"})
		return
	}

	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	var record models.FileRecord
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", fileID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file"})
		return
	}

	if !canAccessFile(userID, role, fileID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this file"})
		return
	}

	uploadedAt := time.Now()
	if record.UploadedAt != nil {
		uploadedAt = *record.UploadedAt
	}
	fullPath := utils.StoredFilePath(record.StoredFilename, uploadedAt)
	if _, err := os.Stat(fullPath); err != nil {
		// Older rows predate the year/month layout.
		fullPath = filepath.Join(utils.UploadRoot(), record.StoredFilename)
		if _, err := os.Stat(fullPath); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "File is missing from storage"})
			return
		}
	}

	c.FileAttachment(fullPath, record.OriginalFilename)
}
