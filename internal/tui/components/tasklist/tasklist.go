package tasklist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/morrow/internal/models"
)

// CompleteTaskMsg asks the parent model to mark a task done.
type CompleteTaskMsg struct {
	ID string
}

type Item struct {
	Task models.Task
}

func (i Item) Title() string {
	if i.Task.Status == models.TaskStatusCompleted {
		return "✓ " + i.Task.Title
	}
	return i.Task.Title
}

func (i Item) Description() string {
	if i.Task.Notes == "" {
		return "no notes"
	}
	return i.Task.Notes
}

func (i Item) FilterValue() string { return i.Task.Title }

type Model struct {
	list list.Model
	done key.Binding
}

func New(tasks []models.Task, width, height int) Model {
	l := list.New(toItems(tasks), list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	done := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "mark done"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{done} }

	return Model{list: l, done: done}
}

func toItems(tasks []models.Task) []list.Item {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = Item{Task: t}
	}
	return items
}

func (m *Model) SetTasks(tasks []models.Task) {
	m.list.SetItems(toItems(tasks))
}

// Tasks returns the tasks currently shown.
func (m Model) Tasks() []models.Task {
	var tasks []models.Task
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			tasks = append(tasks, i.Task)
		}
	}
	return tasks
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.done) {
			if i, ok := m.list.SelectedItem().(Item); ok && i.Task.Status != models.TaskStatusCompleted {
				id := i.Task.ID
				return m, func() tea.Msg { return CompleteTaskMsg{ID: id} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No pending tasks.\n  Add one with 'morrow task add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
