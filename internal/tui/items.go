package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/barysiuk/skillhub/internal/core"
)

// candidateItem wraps a discovered skill candidate for the picker list.
type candidateItem struct {
	candidate core.SkillCandidate
}

func (i candidateItem) Title() string {
	if i.candidate.Name != "" {
		return i.candidate.Name
	}
	return i.candidate.Subpath
}

func (i candidateItem) Description() string {
	if !i.candidate.Valid {
		return "invalid: " + i.candidate.Reason
	}
	if i.candidate.Description != "" {
		return i.candidate.Description
	}
	return "No description"
}

func (i candidateItem) FilterValue() string {
	return i.candidate.Name + " " + i.candidate.Subpath
}

// candidatesToItems converts discovery results to list items. Invalid
// candidates are kept so the user sees why a folder was not offered.
func candidatesToItems(candidates []core.SkillCandidate) []list.Item {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = candidateItem{candidate: c}
	}
	return items
}

// candidateDelegate renders one candidate per line:
// "  > name  skills/name  description"
type candidateDelegate struct{}

func (d candidateDelegate) Height() int                             { return 1 }
func (d candidateDelegate) Spacing() int                            { return 0 }
func (d candidateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d candidateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(candidateItem)
	if !ok {
		return
	}
	isSelected := index == m.Index()

	indicator := "    "
	if isSelected {
		indicator = "  > "
	}

	var title string
	switch {
	case !it.candidate.Valid:
		title = mutedStyle.Render(it.Title())
	case isSelected:
		title = selectedItemStyle.Render(it.Title())
	default:
		title = normalItemStyle.Render(it.Title())
	}

	line := indicator + title
	if it.candidate.Subpath != "." && it.candidate.Name != "" {
		line += "  " + badgeStyle.Render(it.candidate.Subpath)
	}

	desc := it.Description()
	if !it.candidate.Valid {
		desc = warningStyle.Render(desc)
	} else {
		desc = mutedStyle.Render(desc)
	}
	line += "  " + desc

	if width := m.Width(); width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	_, _ = fmt.Fprint(w, line)
}
