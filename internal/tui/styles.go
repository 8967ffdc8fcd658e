package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorTitle   = lipgloss.Color("#FFF7E6")
	colorBanner  = lipgloss.Color("#C0392B")
	colorGold    = lipgloss.Color("#F4C430")
	colorPlayer  = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#E67E22")
	colorMuted   = lipgloss.Color("#7F8C8D")
	colorFocus   = colorPlayer
)

var (
	HeaderStyle  = lipgloss.NewStyle().Foreground(colorTitle).Background(colorBanner).Bold(true)
	PhaseStyle   = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	BalanceStyle = lipgloss.NewStyle().Foreground(colorGold).Bold(true)
	HumanStyle   = lipgloss.NewStyle().Foreground(colorPlayer).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorBanner).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorMuted)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)

func paneStyle(focused bool) lipgloss.Style {
	border := colorMuted
	if focused {
		border = colorFocus
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}
