package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hagwonlabs/reviewd/internal/model"
	"github.com/hagwonlabs/reviewd/internal/review"
	"github.com/hagwonlabs/reviewd/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	clock    review.Clock
	validate *validator.Validate
	config   model.ServerConfig

	mu      sync.Mutex
	cursors map[cursorKey]*review.Cursor
}

// cursorKey identifies one learner's review rotation within one task.
type cursorKey struct {
	userID int64
	taskID int64
}

// New creates a new Handler.
func New(s *store.Store, clock review.Clock, cfg model.ServerConfig) *Handler {
	return &Handler{
		store:    s,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		config:   cfg,
		cursors:  make(map[cursorKey]*review.Cursor),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/logout", h.handleLogout)
		r.Get("/tasks", h.handleListTasks)
		r.Get("/tasks/{taskID}/review", h.handleReviewSummary)
		r.Get("/tasks/{taskID}/next", h.handleNextItem)
		r.Post("/items/{itemID}/answer", h.handleSubmitAnswer)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(model.UserRoleTeacher, model.UserRoleAdmin))
			r.Get("/users", h.handleListUsers)
			r.Post("/users", h.handleCreateUser)
			r.Post("/users/{userID}/toggle", h.handleToggleUserActive)
			r.Get("/tasks", h.handleListAllTasks)
			r.Post("/tasks", h.handleUploadTasks)
			r.Post("/tasks/{taskID}/cancel", h.handleCancelTask)
		})
	})
}

// itemView is an item as shown to the learner: the answer key (correct
// flags, expected answers) is stripped.
type itemView struct {
	ID         int64            `json:"id"`
	Prompt     string           `json:"prompt"`
	AnswerType model.AnswerType `json:"answer_type"`
	Streak     int              `json:"streak"`
	Choices    []choiceView     `json:"choices,omitempty"`
	Fields     []fieldView      `json:"fields,omitempty"`
}

type choiceView struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

type fieldView struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

func viewOf(it model.ReviewItem) itemView {
	v := itemView{
		ID:         it.ID,
		Prompt:     it.Prompt,
		AnswerType: it.AnswerType,
		Streak:     it.Streak,
	}
	for _, c := range it.Choices {
		v.Choices = append(v.Choices, choiceView{ID: c.ID, Content: c.Content})
	}
	for _, f := range it.Fields {
		v.Fields = append(v.Fields, fieldView{ID: f.ID, Label: f.Label})
	}
	return v
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	tasks, err := h.store.ListTasksForStudent(user.ID)
	if err != nil {
		slog.Error("list tasks", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := h.clock.Now()
	progress := make([]model.TaskProgress, 0, len(tasks))
	for _, task := range tasks {
		items, err := h.store.ListItemsForTask(task.ID)
		if err != nil {
			slog.Error("list items", "task_id", task.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		completed := 0
		for _, it := range items {
			if it.CompletedAt != nil {
				completed++
			}
		}
		progress = append(progress, model.TaskProgress{
			Task:      task,
			Total:     len(items),
			Completed: completed,
			Due:       len(review.Due(items, now)),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": progress})
}

// reviewSummary is the due/not-due partition of one task's items.
type reviewSummary struct {
	TaskID       int64            `json:"task_id"`
	Status       model.TaskStatus `json:"status"`
	Total        int              `json:"total"`
	Completed    int              `json:"completed"`
	Due          []itemView       `json:"due"`
	NextReviewAt *time.Time       `json:"next_review_at,omitempty"`
}

func (h *Handler) handleReviewSummary(w http.ResponseWriter, r *http.Request) {
	task, items, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	now := h.clock.Now()
	due := review.Due(items, now)

	summary := reviewSummary{
		TaskID: task.ID,
		Status: task.Status,
		Total:  len(items),
		Due:    make([]itemView, 0, len(due)),
	}
	for _, it := range items {
		if it.CompletedAt != nil {
			summary.Completed++
		}
	}
	for _, it := range due {
		summary.Due = append(summary.Due, viewOf(it))
	}
	if len(due) == 0 {
		if next := review.NextScheduled(items, now); next != nil {
			summary.NextReviewAt = next.NextReviewAt
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleNextItem serves the session rotation: each call returns the item
// under the caller's cursor and advances it, wrapping at the end of the
// due list. The cursor resets when the due set changes.
func (h *Handler) handleNextItem(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	task, items, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	now := h.clock.Now()
	due := review.Due(items, now)

	h.mu.Lock()
	key := cursorKey{userID: user.ID, taskID: task.ID}
	c, found := h.cursors[key]
	if !found {
		c = review.NewCursor(due)
		h.cursors[key] = c
	} else {
		c.Sync(due)
	}
	id, hasItem := c.Current()
	c.Next()
	h.mu.Unlock()

	if !hasItem {
		resp := map[string]any{"due_count": 0}
		if next := review.NextScheduled(items, now); next != nil {
			resp["next_review_at"] = next.NextReviewAt
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for _, it := range due {
		if it.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{
				"due_count": len(due),
				"item":      viewOf(it),
			})
			return
		}
	}
	// Cursor and due list are always synced above, so this is unreachable
	// unless the store changed mid-request.
	writeError(w, http.StatusInternalServerError, "internal error")
}

// answerResponse reports the item's new state after a graded submission.
type answerResponse struct {
	Success      bool             `json:"success"`
	Result       model.Result     `json:"result"`
	Streak       int              `json:"streak"`
	Completed    bool             `json:"completed"`
	NextReviewAt *time.Time       `json:"next_review_at,omitempty"`
	TaskStatus   model.TaskStatus `json:"task_status"`
}

func (h *Handler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(sub); err != nil {
		writeError(w, http.StatusBadRequest, "submission must include choice ids or answers")
		return
	}

	item, err := h.store.GetItem(itemID)
	if err != nil {
		slog.Error("get item", "item_id", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	task, err := h.store.GetTask(item.TaskID)
	if err != nil {
		slog.Error("get task", "task_id", item.TaskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if task.StudentID != user.ID {
		writeError(w, http.StatusForbidden, "task does not belong to you")
		return
	}
	if task.Status == model.TaskCanceled {
		writeError(w, http.StatusBadRequest, "task is canceled")
		return
	}
	if item.CompletedAt != nil {
		writeError(w, http.StatusBadRequest, "item already completed")
		return
	}

	now := h.clock.Now()
	correct := review.Grade(*item, sub)
	next := review.Advance(*item, correct, now)

	if err := h.store.UpdateItemReview(next); err != nil {
		slog.Error("update item review", "item_id", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Recompute the owning task's aggregate status from the persisted items.
	items, err := h.store.ListItemsForTask(task.ID)
	if err != nil {
		slog.Error("list items after answer", "task_id", task.ID, "error", err)
	} else if status := review.AggregateStatus(task.Status, items); status != task.Status {
		if err := h.store.UpdateTaskStatus(task.ID, status); err != nil {
			slog.Error("update task status", "task_id", task.ID, "status", status, "error", err)
		}
		task.Status = status
	}

	slog.Info("answer graded",
		"user_id", user.ID,
		"item_id", itemID,
		"result", next.LastResult,
		"streak", next.Streak,
		"completed", next.CompletedAt != nil,
	)

	writeJSON(w, http.StatusOK, answerResponse{
		Success:      true,
		Result:       next.LastResult,
		Streak:       next.Streak,
		Completed:    next.CompletedAt != nil,
		NextReviewAt: next.NextReviewAt,
		TaskStatus:   task.Status,
	})
}

// loadOwnedTask parses {taskID}, loads the task and its items, and
// enforces ownership: students see only their own tasks, teachers and
// admins see all. On failure it writes the error response and returns
// ok=false.
func (h *Handler) loadOwnedTask(w http.ResponseWriter, r *http.Request) (model.Task, []model.ReviewItem, bool) {
	user := model.UserFromContext(r.Context())

	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return model.Task{}, nil, false
	}

	task, err := h.store.GetTask(taskID)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "task not found")
		return model.Task{}, nil, false
	}
	if err != nil {
		slog.Error("get task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return model.Task{}, nil, false
	}

	if user.Role == model.UserRoleStudent && task.StudentID != user.ID {
		writeError(w, http.StatusForbidden, "task does not belong to you")
		return model.Task{}, nil, false
	}

	items, err := h.store.ListItemsForTask(taskID)
	if err != nil {
		slog.Error("list items", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return model.Task{}, nil, false
	}

	return task, items, true
}
