package model

import "time"

// ReviewExport is the top-level JSON structure for task progress export.
type ReviewExport struct {
	Academy     string       `json:"academy,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
	Tasks       []TaskResult `json:"tasks"`
}

// TaskResult holds one student's task progress for export.
type TaskResult struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Title       string       `json:"title"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Items       []ItemResult `json:"items"`
}

// ItemResult holds per-item progress for export.
type ItemResult struct {
	Prompt       string     `json:"prompt"`
	Type         AnswerType `json:"type"`
	Streak       int        `json:"streak"`
	LastResult   Result     `json:"last_result,omitempty"`
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
