package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/barysiuk/skillhub/internal/core"
)

// ErrCancelled is returned when the user leaves a prompt without choosing.
var ErrCancelled = errors.New("cancelled")

// PickerOptions configures Pick.
type PickerOptions struct {
	Title  string
	Input  io.Reader // defaults to stdin
	Output io.Writer // defaults to stdout
}

// pickerModel lets the user choose one valid candidate out of a discovery
// result.
type pickerModel struct {
	width  int
	height int

	title  string
	list   list.Model
	help   help.Model
	notice string

	chosen    string
	cancelled bool
}

func newPickerModel(title string, candidates []core.SkillCandidate) pickerModel {
	l := list.New(candidatesToItems(candidates), candidateDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetShowPagination(false)

	// Start cursor on the first installable candidate.
	for i, c := range candidates {
		if c.Valid {
			l.Select(i)
			break
		}
	}

	if title == "" {
		title = "SELECT SKILL"
	}
	return pickerModel{title: title, list: l, help: help.New()}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, max(1, msg.Height))
		return m, nil

	case tea.KeyMsg:
		// Don't intercept keys while filtering.
		if m.list.SettingFilter() {
			break
		}

		switch {
		case key.Matches(msg, keys.Enter):
			it, ok := m.list.SelectedItem().(candidateItem)
			if !ok {
				return m, nil
			}
			if !it.candidate.Valid {
				m.notice = fmt.Sprintf("%s cannot be installed: %s", it.candidate.Subpath, it.candidate.Reason)
				return m, nil
			}
			m.chosen = it.candidate.Subpath
			return m, tea.Quit

		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			if m.list.FilterState() == list.FilterApplied {
				m.list.ResetFilter()
				return m, nil
			}
			m.cancelled = true
			return m, tea.Quit
		}
		m.notice = ""
	}

	// Forward to list for navigation + filtering.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	// --- Render-then-measure ---
	header := renderSectionHeader(m.title) + "\n"
	footer := "\n"
	if m.notice != "" {
		footer += "  " + warningStyle.Render(m.notice) + "\n"
	}
	footer += "  " + helpStyle.Render(m.help.View(keys))

	if m.height > 0 {
		listH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
		m.list.SetSize(m.width, max(1, listH))
	}
	return header + m.list.View() + footer
}

// Pick runs an interactive list of candidates and returns the subpath of the
// one the user chose. It returns ErrCancelled if the user quits, and an
// error without prompting when no candidate is valid.
func Pick(candidates []core.SkillCandidate, opts PickerOptions) (string, error) {
	if len(core.ValidCandidates(candidates)) == 0 {
		return "", errors.New("no installable skills found")
	}

	var progOpts []tea.ProgramOption
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(newPickerModel(opts.Title, candidates), progOpts...).Run()
	if err != nil {
		return "", fmt.Errorf("running picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.cancelled || m.chosen == "" {
		return "", ErrCancelled
	}
	return m.chosen, nil
}
