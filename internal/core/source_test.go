package core

import (
	"strings"
	"testing"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		input   string
		url     string
		branch  string
		subpath string
		remote  bool
	}{
		{"https://github.com/owner/repo", "https://github.com/owner/repo.git", "", "", true},
		{"https://github.com/owner/repo.git", "https://github.com/owner/repo.git", "", "", true},
		{"https://github.com/owner/repo/", "https://github.com/owner/repo.git", "", "", true},
		{"http://gitlab.example.com/team/skills", "https://gitlab.example.com/team/skills.git", "", "", true},
		{"https://github.com/owner/repo/tree/main/skills/x", "https://github.com/owner/repo.git", "main", "skills/x", true},
		{"https://github.com/owner/repo/tree/dev", "https://github.com/owner/repo.git", "dev", "", true},
		{"https://github.com/owner/repo/blob/main/SKILL.md", "https://github.com/owner/repo.git", "", "", true},
		{"github.com/owner/repo", "https://github.com/owner/repo.git", "", "", true},
		{"gitlab.com/owner/repo/tree/v2/a/b/c", "https://gitlab.com/owner/repo.git", "v2", "a/b/c", true},
		{"anthropics/skills", "https://github.com/anthropics/skills.git", "", "", true},
		{"owner/repo/tree/main/skills/x", "https://github.com/owner/repo.git", "main", "skills/x", true},
		{"owner/repo.git", "https://github.com/owner/repo.git", "", "", true},
		{"git@github.com:owner/repo.git", "git@github.com:owner/repo.git", "", "", true},
		{"/local/path/to/repo", "/local/path/to/repo", "", "", false},
		{"./skills/mine", "./skills/mine", "", "", false},
		{"../sibling/dir", "../sibling/dir", "", "", false},
		{"~/skills/x", "~/skills/x", "", "", false},
		{"owner/repo/not-a-tree/x", "owner/repo/not-a-tree/x", "", "", false},
		{"single", "single", "", "", false},
		{"file:///tmp/repo", "file:///tmp/repo", "", "", false},
		{"", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseSource(tt.input)
			if got.CloneURL != tt.url {
				t.Errorf("CloneURL = %q, want %q", got.CloneURL, tt.url)
			}
			if got.Branch != tt.branch {
				t.Errorf("Branch = %q, want %q", got.Branch, tt.branch)
			}
			if got.Subpath != tt.subpath {
				t.Errorf("Subpath = %q, want %q", got.Subpath, tt.subpath)
			}
			if got.Remote != tt.remote {
				t.Errorf("Remote = %v, want %v", got.Remote, tt.remote)
			}
		})
	}
}

func TestParseSource_RemoteAlwaysCanonical(t *testing.T) {
	inputs := []string{
		"owner/repo",
		"owner/repo.git",
		"github.com/owner/repo/",
		"https://example.org/a/b/tree/x/y",
		"ssh://git@example.org/a/b",
	}
	for _, in := range inputs {
		d := ParseSource(in)
		if !d.Remote {
			t.Errorf("%q: expected remote", in)
			continue
		}
		if !strings.HasPrefix(d.CloneURL, "https://") || !strings.HasSuffix(d.CloneURL, ".git") {
			t.Errorf("%q: CloneURL %q is not canonical", in, d.CloneURL)
		}
		if strings.HasSuffix(strings.TrimSuffix(d.CloneURL, ".git"), ".git") {
			t.Errorf("%q: CloneURL %q has a doubled suffix", in, d.CloneURL)
		}
	}
}

func TestParseSource_ShorthandMatchesFullURL(t *testing.T) {
	short := ParseSource("owner/repo/tree/main/skills/x")
	full := ParseSource("https://github.com/owner/repo/tree/main/skills/x")
	if short.CloneURL != full.CloneURL || short.Branch != full.Branch || short.Subpath != full.Subpath {
		t.Errorf("shorthand %+v != full %+v", short, full)
	}
}

func TestParseSource_Fields(t *testing.T) {
	d := ParseSource("https://GitHub.com/Owner/Repo")
	if d.Host != "GitHub.com" || d.Owner != "Owner" || d.Repo != "Repo" {
		t.Errorf("fields = %+v", d)
	}
	if got := d.RepoKey(); got != "github.com/owner/repo" {
		t.Errorf("RepoKey = %q", got)
	}
	if got := ParseSource("/tmp/x").RepoKey(); got != "" {
		t.Errorf("local RepoKey = %q, want empty", got)
	}
}

func TestApplyCloneURLOverride(t *testing.T) {
	overrides := map[string]string{
		"github.com/owner/repo": "git@github.com:owner/repo.git",
	}

	d := ParseSource("owner/repo/tree/main/skills/x").ApplyCloneURLOverride(overrides)
	if d.CloneURL != "git@github.com:owner/repo.git" {
		t.Errorf("CloneURL = %q", d.CloneURL)
	}
	if d.Branch != "main" || d.Subpath != "skills/x" {
		t.Errorf("override dropped branch/subpath: %+v", d)
	}

	other := ParseSource("owner/other").ApplyCloneURLOverride(overrides)
	if other.CloneURL != "https://github.com/owner/other.git" {
		t.Errorf("unrelated source overridden: %q", other.CloneURL)
	}

	local := ParseSource("/tmp/repo").ApplyCloneURLOverride(overrides)
	if local.CloneURL != "/tmp/repo" {
		t.Errorf("local source overridden: %q", local.CloneURL)
	}
}

func TestSourceDescriptorString(t *testing.T) {
	got := ParseSource("owner/repo/tree/main/skills/x").String()
	want := "https://github.com/owner/repo.git@main:skills/x"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
