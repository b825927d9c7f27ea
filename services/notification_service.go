package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/config"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"gorm.io/gorm"
)

// Lifecycle event keys. Each key pairs with an audience ("author",
// "reviewer", "admin") to pick an email template.
const (
	EventManuscriptSubmitted = "manuscript_submitted"
	EventStatusChanged       = "manuscript_status_changed"
	EventReviewerAssigned    = "reviewer_assigned"
	EventReviewSubmitted     = "review_submitted"
	EventFinalDocumentsSent  = "final_documents_sent"
	EventReviewReminder      = "review_reminder"
)

// sendMailFunc is swapped out in tests.
var sendMailFunc = config.SendMail

// builtinTemplates back the email_templates table so a missing or
// deactivated row never silences an event.
var builtinTemplates = map[string]models.EmailTemplate{
	EventManuscriptSubmitted + ":author": {
		SubjectTemplate: "Manuscript received: {{title}}",
		BodyTemplate:    "<p>Dear {{name}},</p><p>We received your manuscript <strong>{{title}}</strong>. You can follow its progress from your dashboard.</p>",
	},
	EventManuscriptSubmitted + ":admin": {
		SubjectTemplate: "New submission: {{title}}",
		BodyTemplate:    "<p>A new manuscript <strong>{{title}}</strong> was submitted and is awaiting reviewer assignment.</p>",
	},
	EventStatusChanged + ":author": {
		SubjectTemplate: "Status update for {{title}}",
		BodyTemplate:    "<p>Dear {{name}},</p><p>Your manuscript <strong>{{title}}</strong> is now <strong>{{status}}</strong>.</p>",
	},
	EventReviewerAssigned + ":reviewer": {
		SubjectTemplate: "Review assignment: {{title}}",
		BodyTemplate:    "<p>Dear {{name}},</p><p>You have been assigned to review <strong>{{title}}</strong>. The review is due on {{due_date}}.</p>",
	},
	EventReviewSubmitted + ":admin": {
		SubjectTemplate: "Review submitted for {{title}}",
		BodyTemplate:    "<p>A review for <strong>{{title}}</strong> was submitted and is awaiting approval.</p>",
	},
	EventFinalDocumentsSent + ":author": {
		SubjectTemplate: "Final documents for {{title}}",
		BodyTemplate:    "<p>Dear {{name}},</p><p>The final documents for <strong>{{title}}</strong> are available. Sign in to download them.</p>",
	},
	EventReviewReminder + ":reviewer": {
		SubjectTemplate: "Reminder: review of {{title}} due {{due_date}}",
		BodyTemplate:    "<p>Dear {{name}},</p><p>Your review of <strong>{{title}}</strong> is due on {{due_date}}.</p>",
	},
}

// NotificationService writes in-app notification rows and dispatches
// templated email. Email is fire and forget: failures are logged and
// never surfaced to the request that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func applyTemplatePlaceholders(text string, data map[string]string) string {
	result := text
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// BuildMessage resolves the template for (eventKey, sendTo) and fills
// the placeholders. DB templates win over the built-ins.
func (s *NotificationService) BuildMessage(eventKey, sendTo string, data map[string]string) (subject, body string, err error) {
	var tmpl models.EmailTemplate
	dbErr := s.db.Where("event_key = ? AND send_to = ? AND is_active = ?", eventKey, sendTo, true).
		First(&tmpl).Error
	if dbErr != nil {
		fallback, ok := builtinTemplates[eventKey+":"+sendTo]
		if !ok {
			return "", "", fmt.Errorf("no template for event %s -> %s", eventKey, sendTo)
		}
		tmpl = fallback
	}

	subject = applyTemplatePlaceholders(tmpl.SubjectTemplate, data)
	body = applyTemplatePlaceholders(tmpl.BodyTemplate, data)
	return subject, body, nil
}

// Notify records an in-app notification for the recipient and sends the
// matching email in the background. notifType is one of
// info|success|warning|error for the UI badge.
func (s *NotificationService) Notify(recipient models.User, manuscriptID *int, eventKey, sendTo, notifType string, data map[string]string) {
	subject, body, err := s.BuildMessage(eventKey, sendTo, data)
	if err != nil {
		log.Printf("[notify] template error for event %s: %v", eventKey, err)
		return
	}

	notification := models.Notification{
		UserID:              recipient.UserID,
		Title:               subject,
		Message:             stripTags(body),
		Type:                notifType,
		RelatedManuscriptID: manuscriptID,
		IsRead:              false,
		CreateAt:            time.Now(),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("[notify] failed to store notification for user %d: %v", recipient.UserID, err)
	}

	go func(email, subject, body string) {
		if err := sendMailFunc([]string{email}, subject, body); err != nil {
			log.Printf("[notify] failed to send %s email to %s: %v", eventKey, email, err)
		}
	}(recipient.Email, subject, body)
}

// NotifyAdmins fans an event out to every active admin account.
func (s *NotificationService) NotifyAdmins(manuscriptID *int, eventKey, notifType string, data map[string]string) {
	var admins []models.User
	if err := s.db.Where("role IN ? AND delete_at IS NULL", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}).
		Find(&admins).Error; err != nil {
		log.Printf("[notify] failed to load admins for event %s: %v", eventKey, err)
		return
	}
	for _, admin := range admins {
		s.Notify(admin, manuscriptID, eventKey, "admin", notifType, data)
	}
}

// stripTags reduces the HTML body to plain text for the in-app message.
func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
