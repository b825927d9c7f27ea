package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"gorm.io/gorm"
)

var (
	ErrUnknownStatus     = errors.New("unknown manuscript status")
	ErrNotPermitted      = errors.New("caller may not change manuscript status")
	ErrManuscriptMissing = errors.New("manuscript not found")
)

// LifecycleService owns manuscript status changes and the decision-date
// rule: the decision date is set exactly when the new status carries an
// editorial decision and cleared otherwise.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// DecisionDate returns the decision_date value implied by newStatus:
// now for decision statuses, nil for everything else.
func DecisionDate(newStatus models.ManuscriptStatus, now time.Time) *time.Time {
	if newStatus.IsDecision() {
		return &now
	}
	return nil
}

// Transition sets a manuscript's status. Admins may move between any
// two statuses; there is deliberately no transition graph. The caller
// re-fetches on failure, nothing is updated optimistically.
func (s *LifecycleService) Transition(manuscriptID int, newStatus models.ManuscriptStatus, actorRole models.Role, now time.Time) (*models.Manuscript, error) {
	if !actorRole.IsAdmin() {
		return nil, ErrNotPermitted
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, newStatus)
	}

	var manuscript models.Manuscript
	if err := s.db.Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).First(&manuscript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManuscriptMissing
		}
		return nil, fmt.Errorf("failed to load manuscript: %w", err)
	}

	if err := s.db.Model(&models.Manuscript{}).
		Where("manuscript_id = ?", manuscript.ManuscriptID).
		Updates(map[string]interface{}{
			"status":        newStatus,
			"decision_date": DecisionDate(newStatus, now),
			"update_at":     now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update manuscript status: %w", err)
	}

	manuscript.Status = newStatus
	manuscript.DecisionDate = DecisionDate(newStatus, now)
	manuscript.UpdateAt = &now
	return &manuscript, nil
}

// Delete soft-deletes a manuscript together with its reviews and final
// documents. All three writes share one transaction so the cascade can
// never land partially.
func (s *LifecycleService) Delete(manuscriptID int, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var manuscript models.Manuscript
		if err := tx.Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).First(&manuscript).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrManuscriptMissing
			}
			return fmt.Errorf("failed to load manuscript: %w", err)
		}

		if err := tx.Model(&models.Manuscript{}).
			Where("manuscript_id = ?", manuscriptID).
			Updates(map[string]interface{}{"delete_at": now, "update_at": now}).Error; err != nil {
			return fmt.Errorf("failed to delete manuscript: %w", err)
		}
		if err := tx.Model(&models.Review{}).
			Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
			Updates(map[string]interface{}{"delete_at": now, "update_at": now}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Model(&models.FinalDocument{}).
			Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
			Update("delete_at", now).Error; err != nil {
			return fmt.Errorf("failed to delete final documents: %w", err)
		}
		return nil
	})
}

// ManuscriptStats is the dashboard aggregation over a manuscript set.
type ManuscriptStats struct {
	Total       int `json:"total"`
	Submitted   int `json:"submitted"`
	UnderReview int `json:"under_review"`
	Completed   int `json:"completed"`
}

// ComputeStats aggregates counts over manuscripts. Pure, no I/O.
// Completed counts only the legacy terminal aliases, matching the
// historical dashboard behavior.
func ComputeStats(manuscripts []models.Manuscript) ManuscriptStats {
	stats := ManuscriptStats{Total: len(manuscripts)}
	for _, m := range manuscripts {
		switch m.Status {
		case models.StatusSubmitted:
			stats.Submitted++
		case models.StatusUnderReview:
			stats.UnderReview++
		case models.StatusAccepted, models.StatusRejected:
			stats.Completed++
		}
	}
	return stats
}
