package schedule

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/morrow/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			PaddingLeft(14)
)

type Model struct {
	viewport viewport.Model
	Items    []models.PolishedItem
}

func New(items []models.PolishedItem, width, height int) Model {
	m := Model{viewport: viewport.New(width, height), Items: items}
	m.Render()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.Items) == 0 {
		return "No schedule for this day. Run 'morrow plan' to generate one."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// Span formats an item's time range, e.g. "08:30 - 09:00".
func Span(item models.PolishedItem) string {
	start, err := models.ParseTimeOfDay(item.Time)
	if err != nil {
		return item.Time
	}
	return fmt.Sprintf("%s - %s", start, start.Add(item.Duration))
}

func (m *Model) Render() {
	var b strings.Builder
	for _, item := range m.Items {
		b.WriteString(timeStyle.Render(Span(item)))
		b.WriteString(titleStyle.Render(item.Title))
		b.WriteString("\n")
		if item.Suggestion != "" {
			b.WriteString(suggestionStyle.Render(item.Suggestion))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
}
