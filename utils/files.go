// utils/files.go - Upload path and stored filename helpers
package utils

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadRoot returns the base directory for stored files.
func UploadRoot() string {
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	return uploadPath
}

// StoredFilename generates a collision-free on-disk name, keeping only
// the sanitized extension of the original upload.
func StoredFilename(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\\x00") {
		ext = ""
	}
	return uuid.New().String() + ext
}

// StoredFilePath resolves the full on-disk path for a stored filename
// uploaded at the given time. Files are bucketed by year/month so a
// single directory never grows unbounded.
func StoredFilePath(storedFilename string, uploadedAt time.Time) string {
	return filepath.Join(UploadRoot(), uploadedAt.Format("2006/01"), storedFilename)
}
