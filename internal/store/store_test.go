package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hagwonlabs/reviewd/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestStudent(t *testing.T, s *Store, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		Role:         model.UserRoleStudent,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("insertTestStudent: %v", err)
	}
	return id
}

func testItems() []model.ReviewItem {
	return []model.ReviewItem{
		{
			Prompt:     "Capital of France?",
			AnswerType: model.AnswerMultipleChoice,
			Choices: []model.Choice{
				{Content: "Paris", IsCorrect: true},
				{Content: "London"},
				{Content: "Rome"},
			},
		},
		{
			Prompt:     "Eiffel Tower facts",
			AnswerType: model.AnswerShortAnswer,
			Fields: []model.ShortField{
				{Label: "City", Answer: "Paris"},
				{Label: "Year built", Answer: "1889"},
			},
		},
	}
}

func insertTestTask(t *testing.T, s *Store, studentID int64, title string) int64 {
	t.Helper()
	id, err := s.CreateTask(model.Task{StudentID: studentID, Title: title}, testItems())
	if err != nil {
		t.Fatalf("insertTestTask: %v", err)
	}
	return id
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	studentID := insertTestStudent(t, s, "mina")

	count, err := s.TaskCount()
	if err != nil {
		t.Fatalf("TaskCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 tasks, got %d", count)
	}

	taskID := insertTestTask(t, s, studentID, "Week 12 vocabulary")

	task, err := s.GetTask(taskID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Title != "Week 12 vocabulary" {
		t.Errorf("expected title 'Week 12 vocabulary', got %q", task.Title)
	}
	if task.Status != model.TaskPending {
		t.Errorf("expected status pending, got %q", task.Status)
	}
	if task.StudentID != studentID {
		t.Errorf("expected student %d, got %d", studentID, task.StudentID)
	}

	// Not found.
	_, err = s.GetTask(9999)
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// Status update.
	if err := s.UpdateTaskStatus(taskID, model.TaskInProgress); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	task, _ = s.GetTask(taskID)
	if task.Status != model.TaskInProgress {
		t.Errorf("expected status in_progress, got %q", task.Status)
	}
}

func TestListTasksForStudent(t *testing.T) {
	s := newTestStore(t)
	mina := insertTestStudent(t, s, "mina")
	juno := insertTestStudent(t, s, "juno")

	insertTestTask(t, s, mina, "T1")
	insertTestTask(t, s, juno, "T2")
	insertTestTask(t, s, mina, "T3")

	tasks, err := s.ListTasksForStudent(mina)
	if err != nil {
		t.Fatalf("ListTasksForStudent: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	// Newest first.
	if tasks[0].Title != "T3" || tasks[1].Title != "T1" {
		t.Errorf("unexpected order: %q, %q", tasks[0].Title, tasks[1].Title)
	}

	all, err := s.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
}

func TestItemsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	studentID := insertTestStudent(t, s, "mina")
	taskID := insertTestTask(t, s, studentID, "T")

	items, err := s.ListItemsForTask(taskID)
	if err != nil {
		t.Fatalf("ListItemsForTask: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Position order preserved.
	if items[0].Position != 0 || items[1].Position != 1 {
		t.Errorf("unexpected positions: %d, %d", items[0].Position, items[1].Position)
	}

	mc := items[0]
	if mc.AnswerType != model.AnswerMultipleChoice {
		t.Errorf("expected multiple_choice, got %q", mc.AnswerType)
	}
	if len(mc.Choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(mc.Choices))
	}
	if !mc.Choices[0].IsCorrect || mc.Choices[1].IsCorrect {
		t.Error("choice correctness not preserved")
	}
	if mc.Streak != 0 || mc.LastResult != "" || mc.NextReviewAt != nil || mc.CompletedAt != nil {
		t.Error("new item should have zero review state")
	}

	sa := items[1]
	if len(sa.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(sa.Fields))
	}
	if sa.Fields[0].Answer != "Paris" || sa.Fields[1].Answer != "1889" {
		t.Errorf("field order not preserved: %q, %q", sa.Fields[0].Answer, sa.Fields[1].Answer)
	}

	// GetItem loads the same details.
	got, err := s.GetItem(mc.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || len(got.Choices) != 3 {
		t.Fatal("GetItem did not load choices")
	}

	// Missing item returns nil, nil.
	got, err = s.GetItem(9999)
	if err != nil {
		t.Fatalf("GetItem missing: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing item")
	}
}

func TestUpdateItemReview(t *testing.T) {
	s := newTestStore(t)
	studentID := insertTestStudent(t, s, "mina")
	taskID := insertTestTask(t, s, studentID, "T")
	items, _ := s.ListItemsForTask(taskID)
	item := items[0]

	next := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)
	item.Streak = 1
	item.LastResult = model.ResultPass
	item.NextReviewAt = &next

	if err := s.UpdateItemReview(item); err != nil {
		t.Fatalf("UpdateItemReview: %v", err)
	}

	got, err := s.GetItem(item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Streak != 1 {
		t.Errorf("expected streak 1, got %d", got.Streak)
	}
	if got.LastResult != model.ResultPass {
		t.Errorf("expected last result pass, got %q", got.LastResult)
	}
	if got.NextReviewAt == nil || !got.NextReviewAt.Equal(next) {
		t.Errorf("expected next review %v, got %v", next, got.NextReviewAt)
	}
	if got.CompletedAt != nil {
		t.Error("expected nil completed_at")
	}

	// Completion clears the schedule.
	done := time.Now().UTC().Truncate(time.Second)
	item.Streak = 3
	item.NextReviewAt = nil
	item.CompletedAt = &done
	if err := s.UpdateItemReview(item); err != nil {
		t.Fatalf("UpdateItemReview completion: %v", err)
	}
	got, _ = s.GetItem(item.ID)
	if got.NextReviewAt != nil {
		t.Error("expected nil next_review_at after completion")
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("expected completed_at %v, got %v", done, got.CompletedAt)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id := insertTestStudent(t, s, "mina")

	u, err := s.GetUserByUsername("mina")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatal("expected to find user mina")
	}
	if u.Role != model.UserRoleStudent {
		t.Errorf("expected role student, got %q", u.Role)
	}

	missing, err := s.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}

	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	u, _ = s.GetUserByID(id)
	if u.Active {
		t.Error("expected user to be inactive after toggle")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	id := insertTestStudent(t, s, "mina")

	token, err := s.CreateAuthSession(id, time.Hour)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatal("expected session for user")
	}

	// Unknown token.
	sess, err = s.GetAuthSession("bogus")
	if err != nil {
		t.Fatalf("GetAuthSession bogus: %v", err)
	}
	if sess != nil {
		t.Error("expected nil session for unknown token")
	}

	// Expired session is deleted on read.
	expired, err := s.CreateAuthSession(id, -time.Hour)
	if err != nil {
		t.Fatalf("CreateAuthSession expired: %v", err)
	}
	sess, err = s.GetAuthSession(expired)
	if err != nil {
		t.Fatalf("GetAuthSession expired: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}

	// Delete.
	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, _ = s.GetAuthSession(token)
	if sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.GetImportedFileHash("/some/tasks.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/tasks.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/tasks.json")
	if hash != "abc123" {
		t.Errorf("expected 'abc123', got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/tasks.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/tasks.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestExportAllTasks(t *testing.T) {
	s := newTestStore(t)
	studentID := insertTestStudent(t, s, "mina")
	taskID := insertTestTask(t, s, studentID, "Week 12")

	items, _ := s.ListItemsForTask(taskID)
	done := time.Now().UTC().Truncate(time.Second)
	items[0].Streak = 3
	items[0].LastResult = model.ResultPass
	items[0].CompletedAt = &done
	if err := s.UpdateItemReview(items[0]); err != nil {
		t.Fatalf("UpdateItemReview: %v", err)
	}

	results, err := s.ExportAllTasks()
	if err != nil {
		t.Fatalf("ExportAllTasks: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Username != "mina" || r.Title != "Week 12" {
		t.Errorf("unexpected result header: %q, %q", r.Username, r.Title)
	}
	if len(r.Items) != 2 {
		t.Fatalf("expected 2 item results, got %d", len(r.Items))
	}
	if r.Items[0].Streak != 3 || r.Items[0].CompletedAt == nil {
		t.Error("completed item state not exported")
	}
	if r.Items[1].Streak != 0 || r.Items[1].CompletedAt != nil {
		t.Error("untouched item state not exported")
	}
}
