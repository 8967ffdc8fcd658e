// Package tui is the Bubble Tea front-end: a scrolling game log with a
// player sidebar and an input pane.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/lotto/internal/console"
	"github.com/lox/lotto/internal/game"
	"github.com/lox/lotto/internal/input"
	"github.com/lox/lotto/internal/lottery"
	"github.com/lox/lotto/internal/render"
)

// Messages delivered from the game streams.
type (
	stateMsg    struct{ state game.State }
	errMsg      struct{ err error }
	gameOverMsg struct{}
)

// TUIModel represents the Bubble Tea model for a lottery game
type TUIModel struct {
	ctx      context.Context
	game     console.Game
	rules    lottery.Rules
	renderer *render.Renderer
	logger   *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	state       game.State
	hasState    bool
	gameLog     []string
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// NewTUIModel creates a model driving g.
func NewTUIModel(ctx context.Context, g console.Game, rules lottery.Rules, renderer *render.Renderer, logger *log.Logger) *TUIModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Number of tickets, or e to exit"
	ti.Focus()
	ti.CharLimit = 20
	ti.Width = 40
	ti.PromptStyle = HumanStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorTitle)
	ti.Prompt = "> "

	return &TUIModel{
		ctx:         ctx,
		game:        g,
		rules:       rules,
		renderer:    renderer,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
}

// Run shows the TUI until the game ends or the player quits.
func Run(ctx context.Context, g console.Game, rules lottery.Rules, renderer *render.Renderer, logger *log.Logger) error {
	m := NewTUIModel(ctx, g, rules, renderer, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init starts listening to the game streams.
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForState(), m.waitForError())
}

func (m *TUIModel) waitForState() tea.Cmd {
	return func() tea.Msg {
		st, ok := <-m.game.States()
		if !ok {
			return gameOverMsg{}
		}
		return stateMsg{state: st}
	}
}

func (m *TUIModel) waitForError() tea.Cmd {
	return func() tea.Msg {
		err, ok := <-m.game.Errors()
		if !ok {
			return nil
		}
		return errMsg{err: err}
	}
}

func (m *TUIModel) submit(cmd game.Command) tea.Cmd {
	return func() tea.Msg {
		err := m.game.Submit(m.ctx, cmd)
		if err != nil && !errors.Is(err, game.ErrStopped) {
			return errMsg{err: err}
		}
		return nil
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case stateMsg:
		m.state = msg.state
		m.hasState = true
		m.AddLogEntry(m.renderer.State(msg.state))
		m.logger.Debug("State received", "phase", msg.state.Phase, "round", msg.state.Round)
		cmds = append(cmds, m.waitForState())

	case errMsg:
		m.AddLogEntry(m.renderer.Error(msg.err))
		cmds = append(cmds, m.waitForError())

	case gameOverMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(m.submit(game.Exit{}), tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				if cmd := m.processInput(m.actionInput.Value()); cmd != nil {
					cmds = append(cmds, cmd)
				}
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processInput parses a submitted line against the latest snapshot.
func (m *TUIModel) processInput(line string) tea.Cmd {
	if !m.hasState {
		return nil
	}

	cmd, err := input.Parse(m.state, line, m.rules)
	if err != nil {
		m.AddLogEntry(m.renderer.Error(err))
		return nil
	}

	m.logger.Debug("Submitting command", "command", cmd)
	if _, exit := cmd.(game.Exit); exit {
		m.quitting = true
		return tea.Sequence(m.submit(cmd), tea.Quit)
	}
	return m.submit(cmd)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionPane := paneStyle(m.focusedPane == 1).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := paneStyle(false).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.SetContent(m.renderLogPane())
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := paneStyle(m.focusedPane == 0).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n\n")
}

// renderSidebarPane lists every player's balance.
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" Round %d ", m.state.Round)))
	content.WriteString("\n")
	content.WriteString(PhaseStyle.Render(strings.ReplaceAll(m.state.Phase.String(), "_", " ")))
	content.WriteString("\n\n")

	if !m.hasState {
		return content.String()
	}

	content.WriteString(InfoStyle.Render("Balances:"))
	content.WriteString("\n")
	for _, id := range m.state.Balances.IDs() {
		line := fmt.Sprintf("  Player %-3d %s", int(id), m.renderer.Money(m.state.Balances[id]))
		if id.IsHuman() {
			line = HumanStyle.Render(line + " (you)")
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	if res := m.state.LastResult; res != nil {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("Last pool: "))
		content.WriteString(BalanceStyle.Render(m.renderer.Money(res.Pool)))
		content.WriteString("\n")
	}
	return content.String()
}

func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	if m.hasState {
		content.WriteString(BalanceStyle.Render(m.renderer.Prompt(m.state)))
	} else {
		content.WriteString(PhaseStyle.Render("Waiting for the game to start..."))
	}
	content.WriteString("\n")

	switch m.state.Phase {
	case game.AwaitingBet:
		m.actionInput.Placeholder = "Number of tickets, or e to exit"
	case game.GameOver:
		m.actionInput.Placeholder = "Enter to exit"
	default:
		m.actionInput.Placeholder = "y or n"
	}
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(helpStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(helpStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}

// AddLogEntry appends to the game log and scrolls to the bottom.
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(m.renderLogPane())
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the game log.
func (m *TUIModel) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// State returns the latest snapshot shown.
func (m *TUIModel) State() game.State {
	return m.state
}
