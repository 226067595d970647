package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/barysiuk/skillhub/internal/core"
)

func updateConfirm(t *testing.T, m confirmModel, msg tea.Msg) (confirmModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(confirmModel)
	if !ok {
		t.Fatalf("Update returned %T, want confirmModel", next)
	}
	return cm, cmd
}

func TestNewConfirmModel(t *testing.T) {
	m := newConfirmModel("Remove skill foo?")
	if m.focusYes {
		t.Error("focus should default to No")
	}
	if m.done || m.confirmed {
		t.Error("new confirm should not be answered")
	}
}

func TestConfirmUpdate_YesKey(t *testing.T) {
	m := newConfirmModel("Delete?")
	yKey := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}

	m, cmd := updateConfirm(t, m, yKey)
	if !m.done || !m.confirmed {
		t.Errorf("after y: done=%v confirmed=%v", m.done, m.confirmed)
	}
	if cmd == nil {
		t.Error("y should quit the dialog")
	}
}

func TestConfirmUpdate_NoAndEsc(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'n'}},
		{Type: tea.KeyEsc},
	} {
		m, cmd := updateConfirm(t, newConfirmModel("Delete?"), msg)
		if !m.done || m.confirmed {
			t.Errorf("%v: done=%v confirmed=%v", msg, m.done, m.confirmed)
		}
		if cmd == nil {
			t.Errorf("%v should quit the dialog", msg)
		}
	}
}

func TestConfirmUpdate_EnterUsesFocus(t *testing.T) {
	// Default focus is No.
	m, _ := updateConfirm(t, newConfirmModel("Delete?"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.confirmed {
		t.Error("enter with No focused should not confirm")
	}

	m = newConfirmModel("Delete?")
	m, cmd := updateConfirm(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.focusYes {
		t.Fatal("tab should move focus to Yes")
	}
	if cmd != nil {
		t.Error("navigation should not quit")
	}
	m, _ = updateConfirm(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.confirmed {
		t.Error("enter with Yes focused should confirm")
	}
}

func TestConfirmUpdate_IgnoresOtherKeys(t *testing.T) {
	m, cmd := updateConfirm(t, newConfirmModel("Delete?"), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if m.done || cmd != nil {
		t.Error("unrelated keys should be ignored")
	}
}

func TestConfirmView(t *testing.T) {
	m := newConfirmModel("Remove skill foo?")
	view := m.View()
	for _, want := range []string{"Remove skill foo?", "Yes", "No"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	m.done = true
	if m.View() != "" {
		t.Error("view should be empty once answered")
	}
}

func TestRenderCloneError(t *testing.T) {
	ce := &core.CloneError{
		Kind:      core.CloneErrAuth,
		URL:       "https://github.com/owner/repo.git",
		Branch:    "dev",
		RawOutput: "Cloning into 'x'...\n\nfatal: Authentication failed\n",
		Hints:     []string{"Try SSH instead"},
	}
	out := RenderCloneError(ce)
	for _, want := range []string{"authentication required", "https://github.com/owner/repo.git", "branch dev", "fatal: Authentication failed", "Try SSH instead"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCloneURLModel(t *testing.T) {
	ce := &core.CloneError{Kind: core.CloneErrAuth, URL: "https://github.com/owner/repo.git"}
	m := newCloneURLModel(ce)
	if m.input.Value() != ce.URL {
		t.Errorf("input = %q, want the failed URL", m.input.Value())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := next.(cloneURLModel)
	if !cm.done || cmd == nil {
		t.Error("enter should accept the URL")
	}

	next, _ = newCloneURLModel(ce).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(cloneURLModel).cancelled {
		t.Error("esc should cancel")
	}
}
