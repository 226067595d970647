package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/barysiuk/skillhub/internal/core"
)

// hintBulletStyle styles the bullet point for hint items.
var hintBulletStyle = lipgloss.NewStyle().
	Foreground(colorWarning)

// RenderCloneError renders a classified clone failure: kind, URL, the git
// output and suggestions.
func RenderCloneError(ce *core.CloneError) string {
	var b strings.Builder

	b.WriteString(errorStyle.Bold(true).Render(ce.Kind.String()))
	b.WriteString("\n\n")

	b.WriteString(mutedStyle.Render("Repository:"))
	b.WriteString("\n  ")
	b.WriteString(normalItemStyle.Render(ce.URL))
	if ce.Branch != "" {
		b.WriteString(mutedStyle.Render(" (branch " + ce.Branch + ")"))
	}
	b.WriteString("\n")

	// Raw error output (may be multi-line).
	var lines []string
	for _, line := range strings.Split(ce.RawOutput, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Error:"))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(errorStyle.Render(line))
			b.WriteString("\n")
		}
	}

	if len(ce.Hints) > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Suggestions:"))
		b.WriteString("\n")
		for _, hint := range ce.Hints {
			b.WriteString("  ")
			b.WriteString(hintBulletStyle.Render("*"))
			b.WriteString(" ")
			b.WriteString(normalItemStyle.Render(hint))
			b.WriteString("\n")
		}
	}

	return errorBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// cloneURLModel asks for a replacement clone URL after a failed clone.
type cloneURLModel struct {
	cloneErr  *core.CloneError
	input     textinput.Model
	done      bool
	cancelled bool
}

func newCloneURLModel(ce *core.CloneError) cloneURLModel {
	ti := textinput.New()
	ti.Placeholder = "Enter clone URL..."
	ti.CharLimit = 512
	ti.SetValue(ce.URL)
	ti.Focus()
	return cloneURLModel{cloneErr: ce, input: ti}
}

func (m cloneURLModel) Init() tea.Cmd { return textinput.Blink }

func (m cloneURLModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Enter):
			if strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(keyMsg, keys.Back), keyMsg.Type == tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m cloneURLModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(RenderCloneError(m.cloneErr))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("  Edit the clone URL and press Enter to retry (esc to give up):"))
	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

// PromptCloneURL shows a clone failure and lets the user edit the URL. It
// returns ErrCancelled if the user gives up, and the unchanged URL is
// treated the same way.
func PromptCloneURL(ce *core.CloneError, in io.Reader, out io.Writer) (string, error) {
	var opts []tea.ProgramOption
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(newCloneURLModel(ce), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	m, ok := final.(cloneURLModel)
	if !ok || m.cancelled {
		return "", ErrCancelled
	}
	url := strings.TrimSpace(m.input.Value())
	if url == "" || url == ce.URL {
		return "", ErrCancelled
	}
	return url, nil
}
