package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hagwonlabs/reviewd/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (student_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS review_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		prompt TEXT NOT NULL,
		answer_type TEXT NOT NULL,
		streak INTEGER NOT NULL DEFAULT 0,
		last_result TEXT NOT NULL DEFAULT '',
		next_review_at DATETIME,
		completed_at DATETIME,
		FOREIGN KEY (task_id) REFERENCES tasks(id)
	);

	CREATE TABLE IF NOT EXISTS item_choices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		is_correct INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (item_id) REFERENCES review_items(id)
	);

	CREATE TABLE IF NOT EXISTS item_fields (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL,
		FOREIGN KEY (item_id) REFERENCES review_items(id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateTask creates a task with its review items, choices, and fields
// in one transaction. Item IDs are assigned by the database.
func (s *Store) CreateTask(task model.Task, items []model.ReviewItem) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	status := task.Status
	if status == "" {
		status = model.TaskPending
	}
	res, err := tx.Exec(
		`INSERT INTO tasks (student_id, title, status, created_at) VALUES (?, ?, ?, ?)`,
		task.StudentID, task.Title, status, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	taskID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for pos, item := range items {
		res, err := tx.Exec(
			`INSERT INTO review_items (task_id, position, prompt, answer_type) VALUES (?, ?, ?, ?)`,
			taskID, pos, item.Prompt, item.AnswerType,
		)
		if err != nil {
			return 0, err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for _, c := range item.Choices {
			_, err := tx.Exec(
				`INSERT INTO item_choices (item_id, content, is_correct) VALUES (?, ?, ?)`,
				itemID, c.Content, c.IsCorrect,
			)
			if err != nil {
				return 0, err
			}
		}
		for fpos, f := range item.Fields {
			_, err := tx.Exec(
				`INSERT INTO item_fields (item_id, position, label, answer) VALUES (?, ?, ?, ?)`,
				itemID, fpos, f.Label, f.Answer,
			)
			if err != nil {
				return 0, err
			}
		}
	}

	return taskID, tx.Commit()
}

// GetTask returns a task by ID.
func (s *Store) GetTask(id int64) (model.Task, error) {
	var t model.Task
	err := s.db.QueryRow(
		`SELECT id, student_id, title, status, created_at FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.StudentID, &t.Title, &t.Status, &t.CreatedAt)
	return t, err
}

// ListTasksForStudent returns a student's tasks, newest first.
func (s *Store) ListTasksForStudent(studentID int64) ([]model.Task, error) {
	return s.listTasks(`SELECT id, student_id, title, status, created_at FROM tasks WHERE student_id = ? ORDER BY id DESC`, studentID)
}

// ListTasks returns all tasks, newest first.
func (s *Store) ListTasks() ([]model.Task, error) {
	return s.listTasks(`SELECT id, student_id, title, status, created_at FROM tasks ORDER BY id DESC`)
}

func (s *Store) listTasks(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.StudentID, &t.Title, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus updates the task status.
func (s *Store) UpdateTaskStatus(id int64, status model.TaskStatus) error {
	_, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	return err
}

// GetItem returns an item with its choices and fields loaded, or nil if
// it does not exist.
func (s *Store) GetItem(id int64) (*model.ReviewItem, error) {
	var it model.ReviewItem
	err := s.db.QueryRow(
		`SELECT id, task_id, position, prompt, answer_type, streak, last_result, next_review_at, completed_at
		 FROM review_items WHERE id = ?`, id,
	).Scan(&it.ID, &it.TaskID, &it.Position, &it.Prompt, &it.AnswerType, &it.Streak, &it.LastResult, &it.NextReviewAt, &it.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadItemDetails(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItemsForTask returns a task's items in position order, with
// choices and fields loaded.
func (s *Store) ListItemsForTask(taskID int64) ([]model.ReviewItem, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, position, prompt, answer_type, streak, last_result, next_review_at, completed_at
		 FROM review_items WHERE task_id = ? ORDER BY position, id`, taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.ReviewItem
	for rows.Next() {
		var it model.ReviewItem
		if err := rows.Scan(&it.ID, &it.TaskID, &it.Position, &it.Prompt, &it.AnswerType, &it.Streak, &it.LastResult, &it.NextReviewAt, &it.CompletedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if err := s.loadItemDetails(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Store) loadItemDetails(it *model.ReviewItem) error {
	crows, err := s.db.Query(
		`SELECT id, item_id, content, is_correct FROM item_choices WHERE item_id = ? ORDER BY id`, it.ID,
	)
	if err != nil {
		return err
	}
	defer crows.Close()
	for crows.Next() {
		var c model.Choice
		if err := crows.Scan(&c.ID, &c.ItemID, &c.Content, &c.IsCorrect); err != nil {
			return err
		}
		it.Choices = append(it.Choices, c)
	}
	if err := crows.Err(); err != nil {
		return err
	}

	frows, err := s.db.Query(
		`SELECT id, item_id, label, answer FROM item_fields WHERE item_id = ? ORDER BY position, id`, it.ID,
	)
	if err != nil {
		return err
	}
	defer frows.Close()
	for frows.Next() {
		var f model.ShortField
		if err := frows.Scan(&f.ID, &f.ItemID, &f.Label, &f.Answer); err != nil {
			return err
		}
		it.Fields = append(it.Fields, f)
	}
	return frows.Err()
}

// UpdateItemReview persists the scheduling state of an item after a
// graded answer. Last write wins; there is no optimistic concurrency.
func (s *Store) UpdateItemReview(item model.ReviewItem) error {
	_, err := s.db.Exec(
		`UPDATE review_items SET streak = ?, last_result = ?, next_review_at = ?, completed_at = ? WHERE id = ?`,
		item.Streak, item.LastResult, item.NextReviewAt, item.CompletedAt, item.ID,
	)
	return err
}

// TaskCount returns the number of tasks in the database.
func (s *Store) TaskCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}
