package services

import (
	"database/sql/driver"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"
)

func TestNewReviewerIDs(t *testing.T) {
	tests := []struct {
		name      string
		requested []int
		existing  []int
		want      []int
	}{
		{"all fresh", []int{5, 6}, nil, []int{5, 6}},
		{"skips existing", []int{5, 6, 7}, []int{6}, []int{5, 7}},
		{"drops request duplicates", []int{5, 5, 6}, nil, []int{5, 6}},
		{"drops non-positive ids", []int{0, -1, 5}, nil, []int{5}},
		{"all already assigned", []int{5, 6}, []int{5, 6}, []int{}},
		{"preserves request order", []int{9, 3, 7}, nil, []int{9, 3, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewReviewerIDs(tt.requested, tt.existing)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewReviewerIDs(%v, %v) = %v, want %v", tt.requested, tt.existing, got, tt.want)
			}
		})
	}
}

func TestDueDateDefault(t *testing.T) {
	t.Setenv("REVIEW_DUE_DAYS", "")
	svc := NewAssignmentService(nil)

	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	want := time.Date(2025, 5, 15, 8, 0, 0, 0, time.UTC)
	if got := svc.DueDate(now); !got.Equal(want) {
		t.Errorf("DueDate(%v) = %v, want %v", now, got, want)
	}
}

func TestDueDateFromEnv(t *testing.T) {
	t.Setenv("REVIEW_DUE_DAYS", "5")
	svc := NewAssignmentService(nil)

	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	want := time.Date(2025, 5, 6, 8, 0, 0, 0, time.UTC)
	if got := svc.DueDate(now); !got.Equal(want) {
		t.Errorf("DueDate(%v) = %v, want %v", now, got, want)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	done := now.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		review models.Review
		want   bool
	}{
		{"past due, unfinished", models.Review{DueDate: now.AddDate(0, 0, -2)}, true},
		{"past due, completed", models.Review{DueDate: now.AddDate(0, 0, -2), CompletedDate: &done}, false},
		{"not yet due", models.Review{DueDate: now.AddDate(0, 0, 2)}, false},
	}
	for _, tt := range tests {
		if got := IsOverdue(tt.review, now); got != tt.want {
			t.Errorf("%s: IsOverdue = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAssignReviewersRequiresIDs(t *testing.T) {
	t.Setenv("REVIEW_DUE_DAYS", "")
	svc := NewAssignmentService(nil)
	if _, err := svc.AssignReviewers(1, nil, time.Now()); !errors.Is(err, ErrNoReviewers) {
		t.Errorf("AssignReviewers with no ids: err = %v, want ErrNoReviewers", err)
	}
}

func TestAssignReviewersAllDuplicate(t *testing.T) {
	t.Setenv("REVIEW_DUE_DAYS", "")

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `manuscripts` WHERE manuscript_id = \\? AND delete_at IS NULL"),
			columns: []string{"manuscript_id", "status", "author_id"},
			rows: [][]driver.Value{
				{int64(4), "under_review", int64(2)},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT `reviewer_id` FROM `reviews` WHERE manuscript_id = \\? AND delete_at IS NULL"),
			columns: []string{"reviewer_id"},
			rows: [][]driver.Value{
				{int64(8)},
				{int64(9)},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	if _, err := svc.AssignReviewers(4, []int{8, 9}, time.Now()); !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("AssignReviewers: err = %v, want ErrDuplicateAssignment", err)
	}
	// Both writes must be skipped when nothing is assignable.
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestAssignReviewersCreatesAndMovesUnderReview(t *testing.T) {
	t.Setenv("REVIEW_DUE_DAYS", "")
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `manuscripts` WHERE manuscript_id = \\? AND delete_at IS NULL"),
			columns: []string{"manuscript_id", "status", "author_id"},
			rows: [][]driver.Value{
				{int64(4), "submitted", int64(2)},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT `reviewer_id` FROM `reviews` WHERE manuscript_id = \\? AND delete_at IS NULL"),
			columns: []string{"reviewer_id"},
			rows: [][]driver.Value{
				{int64(6)},
			},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `reviews`"),
			result:  scriptedResult{lastInsertID: 11, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `manuscripts` SET .*`status`.* WHERE manuscript_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	created, err := svc.AssignReviewers(4, []int{5, 6, 5}, now)
	if err != nil {
		t.Fatalf("AssignReviewers returned error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d reviews, want 1", len(created))
	}

	review := created[0]
	if review.ReviewID != 11 {
		t.Errorf("review_id = %d, want 11", review.ReviewID)
	}
	if review.ReviewerID != 5 {
		t.Errorf("reviewer_id = %d, want 5", review.ReviewerID)
	}
	if review.Status != models.ReviewAssigned {
		t.Errorf("status = %s, want assigned", review.Status)
	}
	if want := now.AddDate(0, 0, 14); !review.DueDate.Equal(want) {
		t.Errorf("due_date = %v, want %v", review.DueDate, want)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitReviewValidation(t *testing.T) {
	svc := NewAssignmentService(nil)
	now := time.Now()

	if _, err := svc.SubmitReview(1, 2, 0, "accept", "solid work", now); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("rating 0: err = %v, want ErrInvalidRating", err)
	}
	if _, err := svc.SubmitReview(1, 2, 6, "accept", "solid work", now); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("rating 6: err = %v, want ErrInvalidRating", err)
	}
	if _, err := svc.SubmitReview(1, 2, 3, "  ", "solid work", now); !errors.Is(err, ErrMissingFields) {
		t.Errorf("blank recommendation: err = %v, want ErrMissingFields", err)
	}
	if _, err := svc.SubmitReview(1, 2, 3, "accept", "", now); !errors.Is(err, ErrMissingFields) {
		t.Errorf("blank comments: err = %v, want ErrMissingFields", err)
	}
}

func TestSubmitReviewParksPendingApproval(t *testing.T) {
	now := time.Date(2025, 5, 12, 15, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE review_id = \\? AND delete_at IS NULL"),
			columns: []string{"review_id", "manuscript_id", "reviewer_id", "status"},
			rows: [][]driver.Value{
				{int64(11), int64(4), int64(5), "in_progress"},
			},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET .*`status`.* WHERE review_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	review, err := svc.SubmitReview(11, 5, 4, "accept with minor corrections", "Methods need a power analysis.", now)
	if err != nil {
		t.Fatalf("SubmitReview returned error: %v", err)
	}
	if review.Status != models.ReviewPendingAdminApproval {
		t.Errorf("status = %s, want pending_admin_approval", review.Status)
	}
	if review.CompletedDate == nil || !review.CompletedDate.Equal(now) {
		t.Errorf("completed_date = %v, want %v", review.CompletedDate, now)
	}
	if review.Rating == nil || *review.Rating != 4 {
		t.Errorf("rating = %v, want 4", review.Rating)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitReviewRejectsOtherOwner(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE review_id = \\? AND delete_at IS NULL"),
			columns: []string{"review_id", "manuscript_id", "reviewer_id", "status"},
			rows: [][]driver.Value{
				{int64(11), int64(4), int64(9), "assigned"},
			},
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	if _, err := svc.SubmitReview(11, 5, 4, "accept", "fine", time.Now()); !errors.Is(err, ErrNotReviewOwner) {
		t.Errorf("SubmitReview as non-owner: err = %v, want ErrNotReviewOwner", err)
	}
}

func TestStartReviewAlreadyFinalized(t *testing.T) {
	completed := time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE review_id = \\? AND delete_at IS NULL"),
			columns: []string{"review_id", "manuscript_id", "reviewer_id", "status", "completed_date"},
			rows: [][]driver.Value{
				{int64(11), int64(4), int64(5), "pending_admin_approval", completed},
			},
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	if _, err := svc.StartReview(11, 5, time.Now()); !errors.Is(err, ErrReviewFinalized) {
		t.Errorf("StartReview on finalized review: err = %v, want ErrReviewFinalized", err)
	}
}

func TestResolveReviewApprove(t *testing.T) {
	now := time.Date(2025, 5, 13, 10, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE review_id = \\? AND delete_at IS NULL"),
			columns: []string{"review_id", "manuscript_id", "reviewer_id", "status"},
			rows: [][]driver.Value{
				{int64(11), int64(4), int64(5), "pending_admin_approval"},
			},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET .*`status`.* WHERE review_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	review, err := svc.ResolveReview(11, true, now)
	if err != nil {
		t.Fatalf("ResolveReview returned error: %v", err)
	}
	if review.Status != models.ReviewAdminApproved {
		t.Errorf("status = %s, want admin_approved", review.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestResolveReviewNotPending(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE review_id = \\? AND delete_at IS NULL"),
			columns: []string{"review_id", "manuscript_id", "reviewer_id", "status"},
			rows: [][]driver.Value{
				{int64(11), int64(4), int64(5), "assigned"},
			},
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	if _, err := svc.ResolveReview(11, true, time.Now()); err == nil {
		t.Error("ResolveReview on non-pending review: expected error, got nil")
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !IsDuplicateKey(errors.New("Error 1062: Duplicate entry '4-5' for key 'idx_manuscript_reviewer'")) {
		t.Error("mysql duplicate entry error not recognized")
	}
	if IsDuplicateKey(errors.New("connection refused")) {
		t.Error("unrelated error treated as duplicate key")
	}
	if IsDuplicateKey(nil) {
		t.Error("nil error treated as duplicate key")
	}
}
