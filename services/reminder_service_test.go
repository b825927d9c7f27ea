package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"
)

func reminderSweepSteps(due time.Time) []*queryStep {
	return []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE \\(completed_date IS NULL AND delete_at IS NULL\\) AND \\(due_date > \\? AND due_date <= \\?\\) AND reminder_3day_sent_at IS NULL"),
			columns: []string{"review_id", "manuscript_id", "reviewer_id", "status", "due_date"},
			rows: [][]driver.Value{
				{int64(11), int64(4), int64(5), "in_progress", due},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `manuscripts`"),
			columns: []string{"manuscript_id", "title"},
			rows: [][]driver.Value{
				{int64(4), "Wetland Carbon Flux"},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `users`"),
			columns: []string{"user_id", "first_name", "last_name", "email"},
			rows: [][]driver.Value{
				{int64(5), "Grace", "Hopper", "grace@example.org"},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `email_templates`"),
			columns: []string{"template_id"},
		},
	}
}

func TestSweepRemindersRejectsOtherWindows(t *testing.T) {
	svc := NewReminderService(nil)
	for _, days := range []int{0, 1, 5, 14} {
		if _, err := svc.SweepReminders(days, time.Now()); err == nil {
			t.Errorf("SweepReminders(%d) accepted an unsupported window", days)
		}
	}
}

func TestSweepRemindersMarksAndNotifies(t *testing.T) {
	now := time.Date(2025, 5, 12, 6, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 2)

	steps := append(reminderSweepSteps(due),
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET `reminder_3day_sent_at`=\\? WHERE review_id = \\? AND reminder_3day_sent_at IS NULL"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	done := make(chan string, 1)
	origSendMail := sendMailFunc
	sendMailFunc = func(to []string, subject, body string) error {
		done <- subject
		return nil
	}
	defer func() { sendMailFunc = origSendMail }()

	svc := NewReminderService(db)
	sent, err := svc.SweepReminders(3, now)
	if err != nil {
		t.Fatalf("SweepReminders returned error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	subject := <-done
	want := "Reminder: review of Wetland Carbon Flux due " + due.Format("2006-01-02")
	if subject != want {
		t.Errorf("reminder subject = %q, want %q", subject, want)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSweepRemindersSkipsConcurrentlyMarked(t *testing.T) {
	now := time.Date(2025, 5, 12, 6, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 2)

	steps := append(reminderSweepSteps(due),
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET `reminder_3day_sent_at`=\\? WHERE review_id = \\? AND reminder_3day_sent_at IS NULL"),
			result:  scriptedResult{rowsAffected: 0},
		},
	)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	var mailed int32
	origSendMail := sendMailFunc
	sendMailFunc = func([]string, string, string) error {
		atomic.AddInt32(&mailed, 1)
		return nil
	}
	defer func() { sendMailFunc = origSendMail }()

	svc := NewReminderService(db)
	sent, err := svc.SweepReminders(3, now)
	if err != nil {
		t.Fatalf("SweepReminders returned error: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 when another sweep already claimed the review", sent)
	}
	if atomic.LoadInt32(&mailed) != 0 {
		t.Error("email dispatched for a review the sweep did not claim")
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSweepRemindersFailedInsertSendsNothing(t *testing.T) {
	now := time.Date(2025, 5, 12, 6, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 2)

	steps := append(reminderSweepSteps(due),
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET `reminder_3day_sent_at`=\\? WHERE review_id = \\? AND reminder_3day_sent_at IS NULL"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			err:     errors.New("Error 1114: The table 'notifications' is full"),
		},
	)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	var mailed int32
	origSendMail := sendMailFunc
	sendMailFunc = func([]string, string, string) error {
		atomic.AddInt32(&mailed, 1)
		return nil
	}
	defer func() { sendMailFunc = origSendMail }()

	svc := NewReminderService(db)
	// The transaction rolls back, so the sent-at stamp is undone and the
	// reminder stays eligible for the next sweep.
	sent, err := svc.SweepReminders(3, now)
	if err != nil {
		t.Fatalf("SweepReminders returned error: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 when the notification insert fails", sent)
	}
	if atomic.LoadInt32(&mailed) != 0 {
		t.Error("email dispatched for an uncommitted reminder")
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSweepOverdue(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET `status`=\\? WHERE \\(due_date < \\? AND completed_date IS NULL AND delete_at IS NULL\\) AND status IN \\(\\?,\\?\\)"),
			result:  scriptedResult{rowsAffected: 2},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReminderService(db)
	promoted, err := svc.SweepOverdue(time.Now())
	if err != nil {
		t.Fatalf("SweepOverdue returned error: %v", err)
	}
	if promoted != 2 {
		t.Errorf("promoted = %d, want 2", promoted)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
