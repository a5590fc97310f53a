// Package taskimport loads review tasks from JSON into the store. It is
// shared by the CLI import command and the admin upload endpoint.
package taskimport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/hagwonlabs/reviewd/internal/model"
	"github.com/hagwonlabs/reviewd/internal/store"
)

// Load validates the imports and creates one task per entry. It returns
// the created task IDs. The whole batch is rejected on the first invalid
// entry; nothing is created past the failure point.
func Load(s *store.Store, imports []model.TaskImport) ([]int64, error) {
	var ids []int64
	for i, ti := range imports {
		if ti.Title == "" {
			return ids, fmt.Errorf("task %d: title required", i)
		}
		if len(ti.Items) == 0 {
			return ids, fmt.Errorf("task %d (%s): no items", i, ti.Title)
		}

		student, err := s.GetUserByUsername(ti.Student)
		if err != nil {
			return ids, fmt.Errorf("task %d (%s): look up student: %w", i, ti.Title, err)
		}
		if student == nil {
			return ids, fmt.Errorf("task %d (%s): unknown student %q", i, ti.Title, ti.Student)
		}

		items, err := buildItems(ti.Items)
		if err != nil {
			return ids, fmt.Errorf("task %d (%s): %w", i, ti.Title, err)
		}

		id, err := s.CreateTask(model.Task{StudentID: student.ID, Title: ti.Title}, items)
		if err != nil {
			return ids, fmt.Errorf("task %d (%s): create: %w", i, ti.Title, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildItems(imports []model.ItemImport) ([]model.ReviewItem, error) {
	var items []model.ReviewItem
	for i, ii := range imports {
		if ii.Prompt == "" {
			return nil, fmt.Errorf("item %d: prompt required", i)
		}
		item := model.ReviewItem{Prompt: ii.Prompt, AnswerType: ii.Type}

		switch ii.Type {
		case model.AnswerMultipleChoice:
			if len(ii.Choices) < 2 {
				return nil, fmt.Errorf("item %d: multiple_choice needs at least 2 choices", i)
			}
			correct := 0
			for _, c := range ii.Choices {
				if c.Correct {
					correct++
				}
				item.Choices = append(item.Choices, model.Choice{
					Content:   c.Content,
					IsCorrect: c.Correct,
				})
			}
			if correct == 0 {
				return nil, fmt.Errorf("item %d: multiple_choice needs a correct choice", i)
			}
		case model.AnswerShortAnswer:
			if len(ii.Fields) == 0 {
				return nil, fmt.Errorf("item %d: short_answer needs at least 1 field", i)
			}
			for j, f := range ii.Fields {
				if f.Answer == "" {
					return nil, fmt.Errorf("item %d: field %d has no expected answer", i, j)
				}
				item.Fields = append(item.Fields, model.ShortField{
					Label:  f.Label,
					Answer: f.Answer,
				})
			}
		default:
			return nil, fmt.Errorf("item %d: unknown answer type %q", i, ii.Type)
		}

		items = append(items, item)
	}
	return items, nil
}

// LoadFile imports tasks from a JSON file, skipping files whose content
// hash matches a previous import. A changed file is skipped with a
// warning rather than re-imported, to avoid duplicating existing tasks.
func LoadFile(s *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	hash := sha256sum(data)
	storedHash, err := s.GetImportedFileHash(path)
	if err != nil {
		return fmt.Errorf("check import status for %s: %w", path, err)
	}
	if storedHash == hash {
		slog.Info("task file unchanged, skipping", "path", path)
		return nil
	}
	if storedHash != "" {
		slog.Warn("task file changed since last import, skipping to avoid duplicating tasks", "path", path)
		return nil
	}

	var imports []model.TaskImport
	if err := json.Unmarshal(data, &imports); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	ids, err := Load(s, imports)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	if err := s.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported tasks", "path", path, "count", len(ids))
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
