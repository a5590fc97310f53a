package store

import (
	"fmt"

	"github.com/hagwonlabs/reviewd/internal/model"
)

// ExportAllTasks builds export-ready task results for every task.
func (s *Store) ExportAllTasks() ([]model.TaskResult, error) {
	tasks, err := s.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var results []model.TaskResult
	for _, task := range tasks {
		user, err := s.GetUserByID(task.StudentID)
		if err != nil {
			return nil, fmt.Errorf("get user %d: %w", task.StudentID, err)
		}

		var username, displayName string
		if user != nil {
			username = user.Username
			displayName = user.DisplayName
		}

		items, err := s.ListItemsForTask(task.ID)
		if err != nil {
			return nil, fmt.Errorf("list items for task %d: %w", task.ID, err)
		}

		var itemResults []model.ItemResult
		for _, it := range items {
			itemResults = append(itemResults, model.ItemResult{
				Prompt:       it.Prompt,
				Type:         it.AnswerType,
				Streak:       it.Streak,
				LastResult:   it.LastResult,
				NextReviewAt: it.NextReviewAt,
				CompletedAt:  it.CompletedAt,
			})
		}

		results = append(results, model.TaskResult{
			Username:    username,
			DisplayName: displayName,
			Title:       task.Title,
			Status:      task.Status,
			CreatedAt:   task.CreatedAt,
			Items:       itemResults,
		})
	}

	return results, nil
}
