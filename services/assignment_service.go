package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"gorm.io/gorm"
)

const defaultReviewDueDays = 14

var (
	ErrDuplicateAssignment = errors.New("all requested reviewers are already assigned")
	ErrNoReviewers         = errors.New("at least one reviewer id is required")
	ErrReviewMissing       = errors.New("review not found")
	ErrNotReviewOwner      = errors.New("review belongs to another reviewer")
	ErrReviewFinalized     = errors.New("review has already been submitted")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrMissingFields       = errors.New("recommendation and comments are required")
)

// AssignmentService coordinates reviewer assignments: at most one
// review per (manuscript, reviewer) pair, a due date a fixed number of
// days out, and the manuscript moved to under_review once at least one
// reviewer is attached.
type AssignmentService struct {
	db      *gorm.DB
	dueDays int
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	dueDays, err := strconv.Atoi(os.Getenv("REVIEW_DUE_DAYS"))
	if err != nil || dueDays <= 0 {
		dueDays = defaultReviewDueDays
	}
	return &AssignmentService{db: db, dueDays: dueDays}
}

// DueDate computes the review deadline for an assignment made at now.
func (s *AssignmentService) DueDate(now time.Time) time.Time {
	return now.AddDate(0, 0, s.dueDays)
}

// NewReviewerIDs returns the requested ids not yet present in existing,
// preserving request order and dropping request-side duplicates.
func NewReviewerIDs(requested, existing []int) []int {
	known := make(map[int]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	fresh := make([]int, 0, len(requested))
	for _, id := range requested {
		if id <= 0 || known[id] {
			continue
		}
		known[id] = true
		fresh = append(fresh, id)
	}
	return fresh
}

// AssignReviewers creates one Review per reviewer not already assigned
// to the manuscript and moves the manuscript to under_review. Both
// writes happen in a single transaction so a failure cannot leave
// reviews without the status change or vice versa. When every requested
// reviewer is already assigned it returns ErrDuplicateAssignment and
// writes nothing.
func (s *AssignmentService) AssignReviewers(manuscriptID int, reviewerIDs []int, now time.Time) ([]models.Review, error) {
	if len(reviewerIDs) == 0 {
		return nil, ErrNoReviewers
	}

	var created []models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var manuscript models.Manuscript
		if err := tx.Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).First(&manuscript).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrManuscriptMissing
			}
			return fmt.Errorf("failed to load manuscript: %w", err)
		}

		var existing []int
		if err := tx.Model(&models.Review{}).
			Where("manuscript_id = ? AND delete_at IS NULL", manuscriptID).
			Pluck("reviewer_id", &existing).Error; err != nil {
			return fmt.Errorf("failed to load existing reviews: %w", err)
		}

		fresh := NewReviewerIDs(reviewerIDs, existing)
		if len(fresh) == 0 {
			return ErrDuplicateAssignment
		}

		dueDate := s.DueDate(now)
		for _, reviewerID := range fresh {
			review := models.Review{
				ManuscriptID: manuscriptID,
				ReviewerID:   reviewerID,
				Status:       models.ReviewAssigned,
				AssignedDate: now,
				DueDate:      dueDate,
				CreateAt:     &now,
				UpdateAt:     &now,
			}
			if err := tx.Create(&review).Error; err != nil {
				// The unique (manuscript_id, reviewer_id) index backstops
				// the read-check against concurrent admins.
				if IsDuplicateKey(err) {
					return ErrDuplicateAssignment
				}
				return fmt.Errorf("failed to create review: %w", err)
			}
			created = append(created, review)
		}

		if err := tx.Model(&models.Manuscript{}).
			Where("manuscript_id = ?", manuscriptID).
			Updates(map[string]interface{}{
				"status":        models.StatusUnderReview,
				"decision_date": DecisionDate(models.StatusUnderReview, now),
				"update_at":     now,
			}).Error; err != nil {
			return fmt.Errorf("failed to move manuscript under review: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// StartReview marks an assigned review as in progress.
func (s *AssignmentService) StartReview(reviewID, reviewerID int, now time.Time) (*models.Review, error) {
	review, err := s.loadOwnedReview(reviewID, reviewerID)
	if err != nil {
		return nil, err
	}
	if review.CompletedDate != nil {
		return nil, ErrReviewFinalized
	}

	if err := s.db.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{
			"status":    models.ReviewInProgress,
			"update_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to start review: %w", err)
	}

	review.Status = models.ReviewInProgress
	review.UpdateAt = &now
	return review, nil
}

// SubmitReview records the reviewer's assessment. The canonical
// completion path parks the review at pending_admin_approval until an
// admin signs off; completed_date is stamped with the call time either
// way.
func (s *AssignmentService) SubmitReview(reviewID, reviewerID int, rating int, recommendation, comments string, now time.Time) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	recommendation = strings.TrimSpace(recommendation)
	comments = strings.TrimSpace(comments)
	if recommendation == "" || comments == "" {
		return nil, ErrMissingFields
	}

	review, err := s.loadOwnedReview(reviewID, reviewerID)
	if err != nil {
		return nil, err
	}
	if review.CompletedDate != nil {
		return nil, ErrReviewFinalized
	}

	if err := s.db.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{
			"status":         models.ReviewPendingAdminApproval,
			"rating":         rating,
			"recommendation": recommendation,
			"comments":       comments,
			"completed_date": now,
			"update_at":      now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	review.Status = models.ReviewPendingAdminApproval
	review.Rating = &rating
	review.Recommendation = &recommendation
	review.Comments = &comments
	review.CompletedDate = &now
	review.UpdateAt = &now
	return review, nil
}

// ResolveReview records the admin decision on a submitted review.
func (s *AssignmentService) ResolveReview(reviewID int, approve bool, now time.Time) (*models.Review, error) {
	var review models.Review
	if err := s.db.Where("review_id = ? AND delete_at IS NULL", reviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewMissing
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review.Status != models.ReviewPendingAdminApproval {
		return nil, fmt.Errorf("review %d is not awaiting admin approval", reviewID)
	}

	status := models.ReviewAdminApproved
	if !approve {
		status = models.ReviewAdminRejected
	}

	if err := s.db.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{
			"status":    status,
			"update_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve review: %w", err)
	}

	review.Status = status
	review.UpdateAt = &now
	return &review, nil
}

// IsOverdue is the derived overdue property: past due and not yet
// completed. Recomputed on every read; the stored overdue status is
// only written by the explicit background sweep.
func IsOverdue(review models.Review, now time.Time) bool {
	return review.CompletedDate == nil && review.DueDate.Before(now)
}

func (s *AssignmentService) loadOwnedReview(reviewID, reviewerID int) (*models.Review, error) {
	var review models.Review
	if err := s.db.Where("review_id = ? AND delete_at IS NULL", reviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewMissing
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review.ReviewerID != reviewerID {
		return nil, ErrNotReviewOwner
	}
	return &review, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}
