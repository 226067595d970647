package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Viewport overlay (SKILL.md preview).
var (
	viewportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#D1D5DB")).
				Background(colorBorder).
				Padding(0, 1)

	previewPctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D1D5DB")).
			Background(colorBorder)
)

// RenderMarkdown renders a SKILL.md body for the terminal. The raw text is
// returned if rendering fails.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// previewModel is a scrollable full-screen view of rendered markdown.
type previewModel struct {
	title    string
	raw      string
	viewport viewport.Model
	ready    bool
}

func (m previewModel) Init() tea.Cmd { return nil }

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// -2 for the header and footer lines.
		h := max(1, msg.Height-2)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.viewport.SetContent(RenderMarkdown(m.raw, msg.Width))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) || key.Matches(msg, keys.Back) {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m previewModel) View() string {
	if !m.ready {
		return ""
	}
	header := viewportTitleStyle.Render(m.title)
	footer := previewPctStyle.Render(fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + helpStyle.Render("q/esc close")
	return header + "\n" + m.viewport.View() + "\n" + footer
}

// Page shows rendered markdown in a scrollable full-screen view.
func Page(title, content string) error {
	m := previewModel{title: title, raw: content}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running pager: %w", err)
	}
	return nil
}
