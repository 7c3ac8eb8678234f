package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D787AF")).Bold(true)
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	lookStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAF5F"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F"))
)
