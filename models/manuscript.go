package models

import (
	"time"
)

// ManuscriptStatus is the editorial workflow state of a manuscript.
// Any status may be set from any other by an admin; there is no strict
// transition graph, only a decision set that pins the decision date.
type ManuscriptStatus string

const (
	StatusSubmitted               ManuscriptStatus = "submitted"
	StatusUnderReview             ManuscriptStatus = "under_review"
	StatusInternalReview          ManuscriptStatus = "internal_review"
	StatusExternalReview          ManuscriptStatus = "external_review"
	StatusRevisionRequested       ManuscriptStatus = "revision_requested"
	StatusAcceptWithoutCorrection ManuscriptStatus = "accept_without_correction"
	StatusAcceptMinorCorrections  ManuscriptStatus = "accept_minor_corrections"
	StatusAcceptMajorCorrections  ManuscriptStatus = "accept_major_corrections"
	StatusReject                  ManuscriptStatus = "reject"
	StatusPublished               ManuscriptStatus = "published"

	// Legacy terminal aliases still present in older rows.
	StatusAccepted ManuscriptStatus = "accepted"
	StatusRejected ManuscriptStatus = "rejected"
)

// Valid reports whether s is a known manuscript status.
func (s ManuscriptStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusInternalReview,
		StatusExternalReview, StatusRevisionRequested,
		StatusAcceptWithoutCorrection, StatusAcceptMinorCorrections,
		StatusAcceptMajorCorrections, StatusReject, StatusPublished,
		StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s carries an editorial decision. Setting a
// decision status stamps the manuscript's decision date; setting any
// other status clears it.
func (s ManuscriptStatus) IsDecision() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusAcceptWithoutCorrection,
		StatusAcceptMinorCorrections, StatusAcceptMajorCorrections,
		StatusPublished, StatusReject:
		return true
	}
	return false
}

// IsTerminal reports whether the workflow ends at s.
func (s ManuscriptStatus) IsTerminal() bool {
	return s == StatusPublished || s == StatusReject || s == StatusRejected
}

type Manuscript struct {
	ManuscriptID   int              `gorm:"primaryKey;column:manuscript_id" json:"manuscript_id"`
	ManuscriptUUID string           `gorm:"column:manuscript_uuid;unique" json:"manuscript_uuid"`
	Title          string           `gorm:"column:title" json:"title"`
	Abstract       string           `gorm:"column:abstract" json:"abstract"`
	Keywords       *string          `gorm:"column:keywords" json:"keywords,omitempty"`     // JSON-encoded string list
	CoAuthors      *string          `gorm:"column:co_authors" json:"co_authors,omitempty"` // JSON-encoded string list
	Status         ManuscriptStatus `gorm:"column:status" json:"status"`
	AuthorID       int              `gorm:"column:author_id" json:"author_id"`
	FileID         *int             `gorm:"column:file_id" json:"file_id,omitempty"`
	CoverLetterID  *int             `gorm:"column:cover_letter_id" json:"cover_letter_id,omitempty"`
	AdminNotes     *string          `gorm:"column:admin_notes" json:"admin_notes,omitempty"`
	SubmittedAt    time.Time        `gorm:"column:submitted_at" json:"submitted_at"`
	DecisionDate   *time.Time       `gorm:"column:decision_date" json:"decision_date,omitempty"`
	CreateAt       *time.Time       `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time       `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time       `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Author      *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	File        *FileRecord `gorm:"foreignKey:FileID" json:"file,omitempty"`
	CoverLetter *FileRecord `gorm:"foreignKey:CoverLetterID" json:"cover_letter,omitempty"`
	Reviews     []Review    `gorm:"foreignKey:ManuscriptID" json:"reviews,omitempty"`
}

// TableName overrides
func (Manuscript) TableName() string {
	return "manuscripts"
}
