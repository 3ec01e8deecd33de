package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "morrow.db"))
	store.now = func() time.Time { return time.Date(2026, 10, 15, 21, 0, 0, 0, time.UTC) }
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustList(t *testing.T, store *SQLiteStore, title string) models.TaskList {
	t.Helper()
	l, err := store.EnsureList(title)
	if err != nil {
		t.Fatalf("EnsureList(%q) failed: %v", title, err)
	}
	return l
}

func mustAdd(t *testing.T, store *SQLiteStore, task models.Task) models.Task {
	t.Helper()
	added, err := store.AddTask(task)
	if err != nil {
		t.Fatalf("AddTask(%q) failed: %v", task.Title, err)
	}
	return added
}

func TestLoadBeforeInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, apperrors.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want %v", err, apperrors.ErrNotInitialized)
	}
}

func TestInitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "morrow.db")
	store := NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	list := mustList(t, store, "Inbox")
	mustAdd(t, store, models.Task{ListID: list.ID, Title: "persisted"})
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer reopened.Close()

	tasks, err := reopened.GetTasks(list.ID)
	if err != nil {
		t.Fatalf("GetTasks() failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "persisted" {
		t.Errorf("GetTasks() = %+v, want the persisted task", tasks)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", reopened.GetConfigPath(), path)
	}
}

func TestEnsureAndFindList(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.FindList("Tomorrow Tasks"); !errors.Is(err, apperrors.ErrListNotFound) {
		t.Fatalf("FindList() on empty store error = %v, want %v", err, apperrors.ErrListNotFound)
	}

	first := mustList(t, store, "Tomorrow Tasks")
	second := mustList(t, store, "Tomorrow Tasks")
	if first.ID == "" || first.ID != second.ID {
		t.Errorf("EnsureList should be idempotent, got %q and %q", first.ID, second.ID)
	}

	found, err := store.FindList("Tomorrow Tasks")
	if err != nil {
		t.Fatalf("FindList() failed: %v", err)
	}
	if found != first {
		t.Errorf("FindList() = %+v, want %+v", found, first)
	}
}

func TestAddTask(t *testing.T) {
	store := setupTestStore(t)
	list := mustList(t, store, "Inbox")

	tests := []struct {
		name    string
		task    models.Task
		wantErr bool
	}{
		{name: "valid", task: models.Task{ListID: list.ID, Title: "写周报", Notes: "1h"}},
		{name: "missing list", task: models.Task{Title: "orphan"}, wantErr: true},
		{name: "blank title", task: models.Task{ListID: list.ID, Title: "  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.AddTask(tt.task)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddTask() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.ID == "" {
				t.Error("AddTask() should assign an id")
			}
			if got.Status != models.TaskStatusNeedsAction {
				t.Errorf("Status = %q, want %q", got.Status, models.TaskStatusNeedsAction)
			}
			if got.CreatedAt != "2026-10-15T21:00:00Z" {
				t.Errorf("CreatedAt = %q", got.CreatedAt)
			}
		})
	}
}

func TestPendingTasksKeepInsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	list := mustList(t, store, "Inbox")
	other := mustList(t, store, "Other")

	titles := []string{"third", "first", "second"}
	var added []models.Task
	for _, title := range titles {
		added = append(added, mustAdd(t, store, models.Task{ListID: list.ID, Title: title}))
	}
	mustAdd(t, store, models.Task{ListID: other.ID, Title: "elsewhere"})

	if err := store.CompleteTask(added[1].ID); err != nil {
		t.Fatalf("CompleteTask() failed: %v", err)
	}

	pending, err := store.GetPendingTasks(list.ID)
	if err != nil {
		t.Fatalf("GetPendingTasks() failed: %v", err)
	}
	if len(pending) != 2 || pending[0].Title != "third" || pending[1].Title != "second" {
		t.Errorf("GetPendingTasks() = %+v, want [third second]", pending)
	}
	if pending[0].Position >= pending[1].Position {
		t.Errorf("positions should increase: %d, %d", pending[0].Position, pending[1].Position)
	}

	all, err := store.GetTasks(list.ID)
	if err != nil {
		t.Fatalf("GetTasks() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetTasks() returned %d tasks, want 3", len(all))
	}
	if all[1].Status != models.TaskStatusCompleted || all[1].CompletedAt == nil {
		t.Errorf("completed task = %+v", all[1])
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteTask("nope"); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("CompleteTask() error = %v, want %v", err, apperrors.ErrTaskNotFound)
	}
}

func TestHasIncompleteTasksAndClear(t *testing.T) {
	store := setupTestStore(t)
	list := mustList(t, store, "Morrow Schedule")

	has, err := store.HasIncompleteTasks(list.ID)
	if err != nil || has {
		t.Fatalf("HasIncompleteTasks() on empty list = %v, %v", has, err)
	}

	task := mustAdd(t, store, models.Task{ListID: list.ID, Title: "🕒 [08:30] 买菜"})
	if has, _ = store.HasIncompleteTasks(list.ID); !has {
		t.Error("HasIncompleteTasks() = false after adding a task")
	}

	if err := store.CompleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if has, _ = store.HasIncompleteTasks(list.ID); has {
		t.Error("HasIncompleteTasks() = true after completing the only task")
	}

	mustAdd(t, store, models.Task{ListID: list.ID, Title: "🕒 [09:00] 写代码"})
	n, err := store.ClearList(list.ID)
	if err != nil {
		t.Fatalf("ClearList() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("ClearList() removed %d tasks, want 2", n)
	}
	if tasks, _ := store.GetTasks(list.ID); len(tasks) != 0 {
		t.Errorf("list should be empty after clear, got %d tasks", len(tasks))
	}
}

func TestGetTasksDue(t *testing.T) {
	store := setupTestStore(t)
	list := mustList(t, store, "Morrow Schedule")

	mustAdd(t, store, models.Task{ListID: list.ID, Title: "a", Due: "2026-10-16"})
	mustAdd(t, store, models.Task{ListID: list.ID, Title: "b", Due: "2026-10-17"})
	mustAdd(t, store, models.Task{ListID: list.ID, Title: "c", Due: "2026-10-16"})

	due, err := store.GetTasksDue(list.ID, "2026-10-16")
	if err != nil {
		t.Fatalf("GetTasksDue() failed: %v", err)
	}
	if len(due) != 2 || due[0].Title != "a" || due[1].Title != "c" {
		t.Errorf("GetTasksDue() = %+v, want [a c]", due)
	}
}
