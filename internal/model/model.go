package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a student user role.
	UserRoleStudent UserRole = "student"
	// UserRoleTeacher is a teacher user role.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// AnswerType selects the grading algorithm for an item.
type AnswerType string

const (
	AnswerMultipleChoice AnswerType = "multiple_choice"
	AnswerShortAnswer    AnswerType = "short_answer"
)

// Result is the outcome of the most recent grading of an item.
// Empty string means the item has never been graded.
type Result string

const (
	ResultPass    Result = "pass"
	ResultNonpass Result = "nonpass"
)

// TaskStatus represents the aggregate status of a review task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCanceled   TaskStatus = "canceled"
)

// Task is a set of review items assigned to one student.
type Task struct {
	ID        int64      `json:"id"`
	StudentID int64      `json:"student_id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Choice is one selectable option on a multiple-choice item.
type Choice struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	Content   string `json:"content"`
	IsCorrect bool   `json:"is_correct"`
}

// ShortField is one expected input on a short-answer item.
type ShortField struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

// ReviewItem is one student's progress on one workbook item within a task.
// NextReviewAt nil means the item is eligible for review right now.
// CompletedAt, once set, permanently retires the item.
type ReviewItem struct {
	ID           int64        `json:"id"`
	TaskID       int64        `json:"task_id"`
	Position     int          `json:"position"`
	Prompt       string       `json:"prompt"`
	AnswerType   AnswerType   `json:"answer_type"`
	Streak       int          `json:"streak"`
	LastResult   Result       `json:"last_result,omitempty"`
	NextReviewAt *time.Time   `json:"next_review_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	Choices      []Choice     `json:"choices,omitempty"`
	Fields       []ShortField `json:"fields,omitempty"`
}

// Submission is a student's answer to one review item. Exactly one of
// the two payloads is expected, matching the item's answer type.
type Submission struct {
	ChoiceIDs []int64  `json:"choice_ids" validate:"required_without=Answers,omitempty,unique"`
	Answers   []string `json:"answers" validate:"required_without=ChoiceIDs,omitempty,max=50,dive,max=500"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	SecureCookies bool          // Set Secure flag on cookies (disable for local dev)
	SessionTTL    time.Duration // Auth session lifetime
}

// TaskImport is used for loading tasks from JSON.
type TaskImport struct {
	Student string       `json:"student"`
	Title   string       `json:"title"`
	Items   []ItemImport `json:"items"`
}

// ItemImport is one workbook item in a task import file.
type ItemImport struct {
	Prompt  string         `json:"prompt"`
	Type    AnswerType     `json:"type"`
	Choices []ChoiceImport `json:"choices,omitempty"`
	Fields  []FieldImport  `json:"fields,omitempty"`
}

// ChoiceImport is one choice in an imported multiple-choice item.
type ChoiceImport struct {
	Content string `json:"content"`
	Correct bool   `json:"correct"`
}

// FieldImport is one expected input in an imported short-answer item.
type FieldImport struct {
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

// TaskProgress combines a task with its item completion counts for display.
type TaskProgress struct {
	Task      Task `json:"task"`
	Total     int  `json:"total"`
	Completed int  `json:"completed"`
	Due       int  `json:"due"`
}
