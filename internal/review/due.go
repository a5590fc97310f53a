package review

import (
	"time"

	"github.com/hagwonlabs/reviewd/internal/model"
)

// IsDue reports whether the item is eligible for review at time now:
// not completed, and either never scheduled or scheduled at or before now.
func IsDue(item model.ReviewItem, now time.Time) bool {
	if item.CompletedAt != nil {
		return false
	}
	return item.NextReviewAt == nil || !item.NextReviewAt.After(now)
}

// Due returns the items eligible for review at time now, preserving the
// input order. Items are never reordered by streak or due-time proximity.
func Due(items []model.ReviewItem, now time.Time) []model.ReviewItem {
	var due []model.ReviewItem
	for _, it := range items {
		if IsDue(it, now) {
			due = append(due, it)
		}
	}
	return due
}

// NextScheduled returns a copy of the non-completed item with the earliest
// review time strictly after now, or nil if no item is scheduled. Used to
// show "next review at" when nothing is currently due.
func NextScheduled(items []model.ReviewItem, now time.Time) *model.ReviewItem {
	var next *model.ReviewItem
	for i := range items {
		it := &items[i]
		if it.CompletedAt != nil || it.NextReviewAt == nil || !it.NextReviewAt.After(now) {
			continue
		}
		if next == nil || it.NextReviewAt.Before(*next.NextReviewAt) {
			next = it
		}
	}
	if next == nil {
		return nil
	}
	cp := *next
	return &cp
}
