package ui

import (
	"github.com/charmbracelet/lipgloss"

	"qstack-client/models"
)

// Theme defines the color palette for the TUI. Ticket status colors
// match the web client so screenshots line up across surfaces.
type Theme struct {
	Mentor   lipgloss.Color
	Open     lipgloss.Color
	Claimed  lipgloss.Color
	Resolved lipgloss.Color

	Accent lipgloss.Color
	Muted  lipgloss.Color
	Error  lipgloss.Color

	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Notice    lipgloss.Style
	Selected  lipgloss.Style
	Help      lipgloss.Style
}

var DefaultTheme = func() Theme {
	t := Theme{
		Mentor:   lipgloss.Color("#8b5cf6"),
		Open:     lipgloss.Color("#3b82f6"),
		Claimed:  lipgloss.Color("#f59e0b"),
		Resolved: lipgloss.Color("#10b981"),
		Accent:   lipgloss.Color("#7dd3fc"),
		Muted:    lipgloss.Color("#6b7280"),
		Error:    lipgloss.Color("#ef4444"),
	}
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.StatusBar = lipgloss.NewStyle().Foreground(t.Muted)
	t.Notice = lipgloss.NewStyle().Bold(true).Foreground(t.Claimed)
	t.Selected = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Help = lipgloss.NewStyle().Faint(true)
	return t
}()

// StatusColor maps a ticket status to its fill color.
func (t Theme) StatusColor(status string) lipgloss.Color {
	switch status {
	case models.TicketClaimed:
		return t.Claimed
	case models.TicketResolved:
		return t.Resolved
	default:
		return t.Open
	}
}
