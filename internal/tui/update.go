package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/tui/components/tasklist"
)

// chrome is the number of rows used by tabs, header, status and help.
const chrome = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.schedule.SetSize(msg.Width-h, msg.Height-v-chrome)
		m.taskList.SetSize(msg.Width-h, msg.Height-v-chrome)
		return m, nil

	case tasklist.CompleteTaskMsg:
		if m.store == nil {
			m.status = "read-only: no task store"
			return m, nil
		}
		return m, m.completeTask(msg.ID)

	case taskCompletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not complete task: %v", msg.err)
			return m, nil
		}
		tasks := m.taskList.Tasks()
		for i := range tasks {
			if tasks[i].ID == msg.id {
				tasks[i].Status = models.TaskStatusCompleted
				m.status = fmt.Sprintf("done: %s", tasks[i].Title)
			}
		}
		m.taskList.SetTasks(tasks)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + stateCount) % stateCount
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateSchedule:
		m.schedule, cmd = m.schedule.Update(msg)
	case StateTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}
