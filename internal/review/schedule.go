package review

import (
	"time"

	"github.com/hagwonlabs/reviewd/internal/model"
)

// Review intervals form a three-rung ladder: a miss forces a one-minute
// retry, the first correct answer schedules a ten-minute check, the
// second a one-day check, and the third retires the item. These are
// fixed policy, not configuration.
const (
	RetryInterval  = time.Minute
	FirstInterval  = 10 * time.Minute
	SecondInterval = 24 * time.Hour

	// CompletionStreak is the number of consecutive correct answers
	// that retires an item.
	CompletionStreak = 3
)

// Advance returns the item's next state after an answer graded correct
// or not at time now. The input item is not mutated. Completed items are
// terminal and come back unchanged.
func Advance(item model.ReviewItem, correct bool, now time.Time) model.ReviewItem {
	if item.CompletedAt != nil {
		return item
	}

	if !correct {
		item.Streak = 0
		item.LastResult = model.ResultNonpass
		due := now.Add(RetryInterval)
		item.NextReviewAt = &due
		return item
	}

	item.LastResult = model.ResultPass
	switch item.Streak {
	case 0:
		item.Streak = 1
		due := now.Add(FirstInterval)
		item.NextReviewAt = &due
	case 1:
		item.Streak = 2
		due := now.Add(SecondInterval)
		item.NextReviewAt = &due
	default:
		// Third consecutive correct answer retires the item.
		item.Streak = CompletionStreak
		item.NextReviewAt = nil
		done := now
		item.CompletedAt = &done
	}
	return item
}

// AggregateStatus recomputes a task's status from its items. Canceled is
// sticky; completed requires at least one item and every item retired.
func AggregateStatus(current model.TaskStatus, items []model.ReviewItem) model.TaskStatus {
	if current == model.TaskCanceled {
		return model.TaskCanceled
	}
	if len(items) == 0 {
		return model.TaskPending
	}

	completed := 0
	started := false
	for _, it := range items {
		if it.CompletedAt != nil {
			completed++
		}
		if it.LastResult != "" || it.Streak > 0 || it.NextReviewAt != nil {
			started = true
		}
	}

	switch {
	case completed == len(items):
		return model.TaskCompleted
	case completed > 0 || started:
		return model.TaskInProgress
	default:
		return model.TaskPending
	}
}
