package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/migration"
	"github.com/julianstephens/morrow/internal/models"
)

// taskDB holds the list and task queries shared by the sqlite and postgres
// stores. Queries are written with "?" and rebound for postgres.
type taskDB struct {
	db      *sql.DB
	dialect migration.Dialect
	now     func() time.Time
}

const taskColumns = `id, list_id, title, notes, due, status, position, created_at, completed_at`

func (t *taskDB) q(query string) string {
	if t.dialect != migration.Postgres {
		return query
	}
	return rebind(query)
}

// rebind rewrites "?" placeholders as $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (t *taskDB) timestamp() string {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return now().UTC().Format(time.RFC3339)
}

func (t *taskDB) FindList(title string) (models.TaskList, error) {
	var l models.TaskList
	err := t.db.QueryRow(t.q(`SELECT id, title FROM task_lists WHERE title = ?`), title).Scan(&l.ID, &l.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskList{}, fmt.Errorf("%w: %q", apperrors.ErrListNotFound, title)
	}
	if err != nil {
		return models.TaskList{}, fmt.Errorf("failed to find list %q: %w", title, err)
	}
	return l, nil
}

// EnsureList returns the list with the given title, creating it if needed.
func (t *taskDB) EnsureList(title string) (models.TaskList, error) {
	l, err := t.FindList(title)
	if err == nil || !errors.Is(err, apperrors.ErrListNotFound) {
		return l, err
	}

	l = models.TaskList{ID: uuid.NewString(), Title: title}
	_, err = t.db.Exec(t.q(`INSERT INTO task_lists (id, title, created_at) VALUES (?, ?, ?)`),
		l.ID, l.Title, t.timestamp())
	if err != nil {
		return models.TaskList{}, fmt.Errorf("failed to create list %q: %w", title, err)
	}
	return l, nil
}

// AddTask appends a task to the end of its list. ID, status, position and
// creation time are filled in when empty.
func (t *taskDB) AddTask(task models.Task) (models.Task, error) {
	if task.ListID == "" {
		return models.Task{}, fmt.Errorf("task list id cannot be empty")
	}
	if strings.TrimSpace(task.Title) == "" {
		return models.Task{}, fmt.Errorf("task title cannot be empty")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusNeedsAction
	}
	if task.CreatedAt == "" {
		task.CreatedAt = t.timestamp()
	}

	tx, err := t.db.Begin()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxPos sql.NullInt64
	if err := tx.QueryRow(t.q(`SELECT MAX(position) FROM tasks WHERE list_id = ?`), task.ListID).Scan(&maxPos); err != nil {
		return models.Task{}, fmt.Errorf("failed to read list position: %w", err)
	}
	task.Position = 0
	if maxPos.Valid {
		task.Position = int(maxPos.Int64) + 1
	}

	_, err = tx.Exec(t.q(`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		task.ID, task.ListID, task.Title, task.Notes, task.Due, string(task.Status),
		task.Position, task.CreatedAt, task.CompletedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("failed to commit task: %w", err)
	}
	return task, nil
}

func (t *taskDB) query(where string, args ...interface{}) ([]models.Task, error) {
	rows, err := t.db.Query(t.q(`SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY position, created_at`), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		var status string
		var completedAt sql.NullString
		if err := rows.Scan(&task.ID, &task.ListID, &task.Title, &task.Notes, &task.Due, &status,
			&task.Position, &task.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		task.Status = models.TaskStatus(status)
		if completedAt.Valid {
			task.CompletedAt = &completedAt.String
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetTasks returns every task in the list in insertion order.
func (t *taskDB) GetTasks(listID string) ([]models.Task, error) {
	return t.query(`list_id = ?`, listID)
}

// GetPendingTasks returns the list's incomplete tasks in insertion order.
func (t *taskDB) GetPendingTasks(listID string) ([]models.Task, error) {
	return t.query(`list_id = ? AND status = ?`, listID, string(models.TaskStatusNeedsAction))
}

// GetTasksDue returns the list's tasks due on date (YYYY-MM-DD).
func (t *taskDB) GetTasksDue(listID, date string) ([]models.Task, error) {
	return t.query(`list_id = ? AND due = ?`, listID, date)
}

func (t *taskDB) HasIncompleteTasks(listID string) (bool, error) {
	var count int
	err := t.db.QueryRow(t.q(`SELECT COUNT(*) FROM tasks WHERE list_id = ? AND status = ?`),
		listID, string(models.TaskStatusNeedsAction)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count incomplete tasks: %w", err)
	}
	return count > 0, nil
}

func (t *taskDB) CompleteTask(id string) error {
	res, err := t.db.Exec(t.q(`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`),
		string(models.TaskStatusCompleted), t.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTaskNotFound, id)
	}
	return nil
}

// ClearList deletes every task in the list and returns how many were removed.
func (t *taskDB) ClearList(listID string) (int, error) {
	res, err := t.db.Exec(t.q(`DELETE FROM tasks WHERE list_id = ?`), listID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
