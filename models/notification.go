package models

import "time"

type Notification struct {
	NotificationID      int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID              int        `gorm:"column:user_id" json:"user_id"`
	Title               string     `gorm:"column:title" json:"title"`
	Message             string     `gorm:"column:message" json:"message"`
	Type                string     `gorm:"column:type" json:"type"` // info|success|warning|error
	RelatedManuscriptID *int       `gorm:"column:related_manuscript_id" json:"related_manuscript_id,omitempty"`
	IsRead              bool       `gorm:"column:is_read" json:"is_read"`
	CreateAt            time.Time  `gorm:"column:create_at" json:"created_at"`
	UpdateAt            *time.Time `gorm:"column:update_at" json:"-"`
}

// EmailTemplate holds the subject/body pair for one lifecycle event and
// audience. Placeholders use {{name}} syntax. When no active row exists
// for an event the notification service falls back to a compiled-in
// template.
type EmailTemplate struct {
	TemplateID      int        `gorm:"primaryKey;column:template_id" json:"template_id"`
	EventKey        string     `gorm:"column:event_key" json:"event_key"`
	SendTo          string     `gorm:"column:send_to" json:"send_to"` // author|reviewer|admin
	SubjectTemplate string     `gorm:"column:subject_template" json:"subject_template"`
	BodyTemplate    string     `gorm:"column:body_template" json:"body_template"`
	IsActive        bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName overrides
func (Notification) TableName() string {
	return "notifications"
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}
