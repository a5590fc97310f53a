// Package review implements the spaced-repetition core: grading submitted
// answers, advancing an item's review state, and selecting items that are
// currently due. Every function here is pure; reading and writing item
// state is the caller's job.
package review

import (
	"strings"

	"github.com/hagwonlabs/reviewd/internal/model"
)

// Grade reports whether the submission answers the item correctly.
// It is a total predicate: a submission whose shape does not match the
// item (wrong payload kind, wrong number of answers) grades as incorrect
// rather than erroring.
func Grade(item model.ReviewItem, sub model.Submission) bool {
	switch item.AnswerType {
	case model.AnswerMultipleChoice:
		return gradeChoices(item.Choices, sub.ChoiceIDs)
	case model.AnswerShortAnswer:
		return gradeFields(item.Fields, sub.Answers)
	}
	return false
}

// gradeChoices checks that the selected set exactly equals the set of
// correct choices. Single-answer items are the one-correct-choice case;
// subsets and supersets both fail.
func gradeChoices(choices []model.Choice, selected []int64) bool {
	if len(selected) == 0 {
		return false
	}
	correct := make(map[int64]bool)
	for _, c := range choices {
		if c.IsCorrect {
			correct[c.ID] = true
		}
	}
	if len(correct) == 0 {
		return false
	}
	picked := make(map[int64]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}
	if len(picked) != len(correct) {
		return false
	}
	for id := range picked {
		if !correct[id] {
			return false
		}
	}
	return true
}

// gradeFields checks every submitted answer against the expected answer
// at the same position, after trimming whitespace and case-folding.
// A length mismatch or any single field mismatch fails the whole item.
func gradeFields(fields []model.ShortField, answers []string) bool {
	if len(fields) == 0 || len(answers) != len(fields) {
		return false
	}
	for i, f := range fields {
		got := strings.TrimSpace(answers[i])
		want := strings.TrimSpace(f.Answer)
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}
