package cli

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	TimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	OKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)
