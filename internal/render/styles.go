package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header  lipgloss.Style
	Info    lipgloss.Style
	Money   lipgloss.Style
	Prompt  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Money: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Prompt: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Border: r.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")),
	}
}
