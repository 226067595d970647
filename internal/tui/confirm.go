package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is a yes/no dialog rendered as a bordered box.
//
// Navigation: left/right/tab/shift+tab move focus between Yes and No buttons.
// Enter activates the focused button. y/n/esc are shortcut accelerators.
type confirmModel struct {
	message   string
	focusYes  bool // true = Yes focused, false = No focused.
	done      bool
	confirmed bool
}

// newConfirmModel creates a dialog with focus on No, the safe choice for
// destructive actions.
func newConfirmModel(message string) confirmModel {
	return confirmModel{message: message}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmYesKey):
		return m.finish(true)

	case key.Matches(keyMsg, confirmNoKey), key.Matches(keyMsg, keys.Back), keyMsg.Type == tea.KeyCtrlC:
		return m.finish(false)

	case key.Matches(keyMsg, keys.Enter):
		return m.finish(m.focusYes)

	case key.Matches(keyMsg, confirmLeft), key.Matches(keyMsg, confirmRight),
		key.Matches(keyMsg, confirmTab), key.Matches(keyMsg, confirmShiftTab):
		m.focusYes = !m.focusYes
	}
	return m, nil
}

func (m confirmModel) finish(confirmed bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.confirmed = confirmed
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	question := lipgloss.NewStyle().
		Width(40).
		Align(lipgloss.Center).
		Render(m.message)

	var yesBtn, noBtn string
	if m.focusYes {
		yesBtn = dialogActiveButtonStyle.Render("Yes")
		noBtn = dialogButtonStyle.Render("No")
	} else {
		yesBtn = dialogButtonStyle.Render("Yes")
		noBtn = dialogActiveButtonStyle.Render("No")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, "  ", noBtn)
	ui := lipgloss.JoinVertical(lipgloss.Center, question, "", buttons)
	return dialogBoxStyle.Render(ui) + "\n"
}

// Confirm asks a yes/no question and reports the answer. in and out may be
// nil to use the terminal.
func Confirm(message string, in io.Reader, out io.Writer) (bool, error) {
	var opts []tea.ProgramOption
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(newConfirmModel(message), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("running confirmation: %w", err)
	}
	m, ok := final.(confirmModel)
	return ok && m.confirmed, nil
}

// Key bindings for the confirm dialog (not part of the global keyMap).
var (
	confirmYesKey = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	)
	confirmNoKey = key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "cancel"),
	)
	confirmLeft = key.NewBinding(
		key.WithKeys("left", "h"),
	)
	confirmRight = key.NewBinding(
		key.WithKeys("right", "l"),
	)
	confirmTab = key.NewBinding(
		key.WithKeys("tab"),
	)
	confirmShiftTab = key.NewBinding(
		key.WithKeys("shift+tab"),
	)
)
