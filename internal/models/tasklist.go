package models

type TaskStatus string

const (
	TaskStatusNeedsAction TaskStatus = "needsAction"
	TaskStatusCompleted   TaskStatus = "completed"
)

// TaskList is a named list in the task store.
type TaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Task is a stored task record.
type Task struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Due         string     `json:"due,omitempty"` // YYYY-MM-DD format
	Status      TaskStatus `json:"status"`
	Position    int        `json:"position"`
	CreatedAt   string     `json:"created_at"`             // RFC3339 timestamp
	CompletedAt *string    `json:"completed_at,omitempty"` // RFC3339 timestamp
}

// Raw converts a stored task into a planning input.
func (t Task) Raw() RawTask {
	return RawTask{Title: t.Title, Notes: t.Notes}
}
