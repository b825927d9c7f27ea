package models

import "time"

// ReviewStatus is the state of one reviewer's assignment.
type ReviewStatus string

const (
	ReviewAssigned             ReviewStatus = "assigned"
	ReviewInProgress           ReviewStatus = "in_progress"
	ReviewCompleted            ReviewStatus = "completed"
	ReviewOverdue              ReviewStatus = "overdue"
	ReviewPendingAdminApproval ReviewStatus = "pending_admin_approval"
	ReviewAdminApproved        ReviewStatus = "admin_approved"
	ReviewAdminRejected        ReviewStatus = "admin_rejected"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewAssigned, ReviewInProgress, ReviewCompleted, ReviewOverdue,
		ReviewPendingAdminApproval, ReviewAdminApproved, ReviewAdminRejected:
		return true
	}
	return false
}

// Review is one reviewer's assignment and eventual assessment of a
// manuscript. The unique index on (manuscript_id, reviewer_id) is the
// authoritative guard against double assignment; the read-side check in
// the assignment service only exists for the friendly error message.
type Review struct {
	ReviewID      int          `gorm:"primaryKey;column:review_id" json:"review_id"`
	ManuscriptID  int          `gorm:"column:manuscript_id;uniqueIndex:idx_manuscript_reviewer" json:"manuscript_id"`
	ReviewerID    int          `gorm:"column:reviewer_id;uniqueIndex:idx_manuscript_reviewer" json:"reviewer_id"`
	Status        ReviewStatus `gorm:"column:status" json:"status"`
	AssignedDate  time.Time    `gorm:"column:assigned_date" json:"assigned_date"`
	DueDate       time.Time    `gorm:"column:due_date" json:"due_date"`
	CompletedDate *time.Time   `gorm:"column:completed_date" json:"completed_date,omitempty"`

	Rating         *int    `gorm:"column:rating" json:"rating,omitempty"` // 1-5
	Recommendation *string `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Comments       *string `gorm:"column:comments" json:"comments,omitempty"`

	AssessmentFileID *int `gorm:"column:assessment_file_id" json:"assessment_file_id,omitempty"`
	ReviewedFileID   *int `gorm:"column:reviewed_file_id" json:"reviewed_file_id,omitempty"`

	// Reminder bookkeeping so the due-date sweeps stay idempotent.
	Reminder3DaySentAt *time.Time `gorm:"column:reminder_3day_sent_at" json:"-"`
	Reminder7DaySentAt *time.Time `gorm:"column:reminder_7day_sent_at" json:"-"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Manuscript     *Manuscript `gorm:"foreignKey:ManuscriptID;references:ManuscriptID" json:"manuscript,omitempty"`
	Reviewer       *User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	AssessmentFile *FileRecord `gorm:"foreignKey:AssessmentFileID" json:"assessment_file,omitempty"`
	ReviewedFile   *FileRecord `gorm:"foreignKey:ReviewedFileID" json:"reviewed_file,omitempty"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}
