package storage

import "github.com/julianstephens/morrow/internal/models"

// Provider is a store of named task lists.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Lists
	EnsureList(title string) (models.TaskList, error)
	FindList(title string) (models.TaskList, error)

	// Tasks
	AddTask(models.Task) (models.Task, error)
	GetTasks(listID string) ([]models.Task, error)
	GetPendingTasks(listID string) ([]models.Task, error)
	GetTasksDue(listID, date string) ([]models.Task, error)
	HasIncompleteTasks(listID string) (bool, error)
	CompleteTask(id string) error
	ClearList(listID string) (int, error)

	// Utils
	GetConfigPath() string
}
