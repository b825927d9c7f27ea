package models

import (
	"time"
)

// FileRecord is the metadata row for an uploaded binary (manuscript,
// cover letter, assessment, final document). The bytes live on disk
// under UPLOAD_PATH/<yyyy>/<mm>/<stored_filename>.
type FileRecord struct {
	FileID           int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	OriginalFilename string     `gorm:"column:original_filename" json:"original_filename"`
	StoredFilename   string     `gorm:"column:stored_filename" json:"stored_filename"`
	FileType         string     `gorm:"column:file_type" json:"file_type"`
	FileSize         int64      `gorm:"column:file_size" json:"file_size"`
	UploadedBy       int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// FinalDocument links a post-review consolidated file to its
// manuscript. Rows are immutable; superseding uploads add new rows.
type FinalDocument struct {
	FinalDocumentID int        `gorm:"primaryKey;column:final_document_id" json:"final_document_id"`
	ManuscriptID    int        `gorm:"column:manuscript_id" json:"manuscript_id"`
	FileID          int        `gorm:"column:file_id" json:"file_id"`
	UploadedBy      int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt      time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Manuscript *Manuscript `gorm:"foreignKey:ManuscriptID" json:"manuscript,omitempty"`
	File       *FileRecord `gorm:"foreignKey:FileID" json:"file,omitempty"`
}

// TableName overrides
func (FileRecord) TableName() string {
	return "files"
}

func (FinalDocument) TableName() string {
	return "final_documents"
}
