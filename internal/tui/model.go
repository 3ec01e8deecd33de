// Package tui is the interactive viewer for a planned day.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/tui/components/schedule"
	"github.com/julianstephens/morrow/internal/tui/components/tasklist"
)

type SessionState int

const (
	StateSchedule SessionState = iota
	StateTasks
	stateCount
)

// Completer marks source tasks as done.
type Completer interface {
	CompleteTask(id string) error
}

type taskCompletedMsg struct {
	id  string
	err error
}

type Model struct {
	store    Completer
	date     time.Time
	state    SessionState
	keys     KeyMap
	help     help.Model
	schedule schedule.Model
	taskList tasklist.Model
	status   string
	quitting bool
	width    int
	height   int
}

// NewModel shows the schedule for date next to the pending source tasks.
// store may be nil, in which case tasks are read-only.
func NewModel(store Completer, date time.Time, items []models.PolishedItem, tasks []models.Task) Model {
	return Model{
		store:    store,
		date:     date,
		state:    StateSchedule,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		schedule: schedule.New(items, 0, 0),
		taskList: tasklist.New(tasks, 0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateTasks && m.store != nil {
		keys = append(keys, m.keys.Done)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) completeTask(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return taskCompletedMsg{id: id, err: store.CompleteTask(id)}
	}
}
