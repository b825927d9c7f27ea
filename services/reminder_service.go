package services

import (
	"fmt"
	"log"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"gorm.io/gorm"
)

// ReminderService runs the due-date sweeps. Each sweep is independent
// and idempotent: reminders record a sent-at column in the same
// transaction as the notification row, and the overdue sweep only
// promotes rows still in an active status. Both are triggered
// externally (cron or the admin endpoints), never from request flow.
type ReminderService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{db: db, notifications: NewNotificationService(db)}
}

// SweepReminders dispatches reminders for reviews due within the given
// number of days (3 or 7). The sent-at stamp and the notification row
// commit together, so a failed insert leaves the reminder re-sendable
// and a crash after commit never double-sends. Email goes out only
// after the commit. Returns how many reminders went out.
func (s *ReminderService) SweepReminders(days int, now time.Time) (int, error) {
	if days != 3 && days != 7 {
		return 0, fmt.Errorf("unsupported reminder window: %d days", days)
	}
	sentColumn := "reminder_3day_sent_at"
	if days == 7 {
		sentColumn = "reminder_7day_sent_at"
	}

	cutoff := now.AddDate(0, 0, days)

	var due []models.Review
	if err := s.db.Preload("Manuscript").Preload("Reviewer").
		Where("completed_date IS NULL AND delete_at IS NULL").
		Where("due_date > ? AND due_date <= ?", now, cutoff).
		Where(sentColumn + " IS NULL").
		Find(&due).Error; err != nil {
		return 0, fmt.Errorf("failed to load reviews for %d-day sweep: %w", days, err)
	}

	sent := 0
	for _, review := range due {
		if review.Reviewer == nil || review.Manuscript == nil {
			log.Printf("[reminder] review %d missing reviewer or manuscript, skipping", review.ReviewID)
			continue
		}

		subject, body, err := s.notifications.BuildMessage(EventReviewReminder, "reviewer", map[string]string{
			"name":     review.Reviewer.FirstName + " " + review.Reviewer.LastName,
			"title":    review.Manuscript.Title,
			"due_date": review.DueDate.Format("2006-01-02"),
		})
		if err != nil {
			log.Printf("[reminder] template error for review %d: %v", review.ReviewID, err)
			continue
		}

		marked := false
		err = s.db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Review{}).
				Where("review_id = ? AND "+sentColumn+" IS NULL", review.ReviewID).
				Update(sentColumn, now)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// A concurrent sweep already claimed this review.
				return nil
			}
			marked = true

			manuscriptID := review.ManuscriptID
			notification := models.Notification{
				UserID:              review.ReviewerID,
				Title:               subject,
				Message:             stripTags(body),
				Type:                "warning",
				RelatedManuscriptID: &manuscriptID,
				IsRead:              false,
				CreateAt:            now,
			}
			return tx.Create(&notification).Error
		})
		if err != nil {
			log.Printf("[reminder] failed to record reminder for review %d: %v", review.ReviewID, err)
			continue
		}
		if !marked {
			continue
		}

		go func(email, subject, body string) {
			if err := sendMailFunc([]string{email}, subject, body); err != nil {
				log.Printf("[reminder] failed to send reminder to %s: %v", email, err)
			}
		}(review.Reviewer.Email, subject, body)
		sent++
	}
	return sent, nil
}

// SweepOverdue persists the overdue status for reviews past their due
// date and still unfinished. This is the only place the stored overdue
// status is written; reads always recompute it via IsOverdue.
func (s *ReminderService) SweepOverdue(now time.Time) (int64, error) {
	result := s.db.Model(&models.Review{}).
		Where("due_date < ? AND completed_date IS NULL AND delete_at IS NULL", now).
		Where("status IN ?", []models.ReviewStatus{models.ReviewAssigned, models.ReviewInProgress}).
		Update("status", models.ReviewOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to promote overdue reviews: %w", result.Error)
	}
	return result.RowsAffected, nil
}
