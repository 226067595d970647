package core

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates parent directories and writes content under base.
func writeFile(t *testing.T, base, rel, content string) {
	t.Helper()
	p := filepath.Join(base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func skillMd(name string) string {
	return "---\nname: " + name + "\n---\n"
}

func findCandidate(list []SkillCandidate, subpath string) *SkillCandidate {
	for i := range list {
		if list[i].Subpath == subpath {
			return &list[i]
		}
	}
	return nil
}

func TestParseSkillMd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SKILL.md", `---
name: "My Skill"
description: "Desc"
---

body
`)

	metadata, err := ParseSkillMd(filepath.Join(dir, "SKILL.md"))
	if err != nil {
		t.Fatalf("ParseSkillMd() error: %v", err)
	}
	if metadata.Name != "My Skill" {
		t.Errorf("Name = %q, want %q", metadata.Name, "My Skill")
	}
	if metadata.Description != "Desc" {
		t.Errorf("Description = %q, want %q", metadata.Description, "Desc")
	}
	if metadata.Body != "body\n" {
		t.Errorf("Body = %q", metadata.Body)
	}
}

func TestParseSkillMd_Reasons(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file
		reason  string
	}{
		{"missing file", "", ReasonMissingSkillMd},
		{"no delimiters", "name: C\n", ReasonInvalidFrontmatter},
		{"unterminated", "---\nname: x\n", ReasonInvalidFrontmatter},
		{"not a mapping", "---\n- a\n- b\n---\n", ReasonInvalidFrontmatter},
		{"bad yaml", "---\nname: [unclosed\n---\n", ReasonInvalidFrontmatter},
		{"no name", "---\ndescription: D\n---\n", ReasonMissingName},
		{"blank name", "---\nname: \"  \"\n---\n", ReasonMissingName},
		{"empty block", "---\n---\n", ReasonMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				writeFile(t, dir, "SKILL.md", tt.content)
			}
			_, err := ParseSkillMd(filepath.Join(dir, "SKILL.md"))
			ie, ok := IsInvalidSkill(err)
			if !ok {
				t.Fatalf("expected *InvalidSkillError, got %v", err)
			}
			if ie.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", ie.Reason, tt.reason)
			}
			if got, want := err.Error(), "SKILL_INVALID|"+tt.reason; got != want {
				t.Errorf("Error() = %q, want %q", got, want)
			}
		})
	}
}

func TestDiscoverCandidates_RootOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SKILL.md", skillMd("root-skill"))
	writeFile(t, dir, "docs/readme.md", "hello")

	list, err := DiscoverCandidates(dir, DiscoverOptions{})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", list)
	}
	if list[0].Subpath != "." || !list[0].Valid || list[0].Name != "root-skill" {
		t.Errorf("candidate = %+v", list[0])
	}
}

func TestDiscoverCandidates_InvalidEntries(t *testing.T) {
	base := t.TempDir()
	for _, d := range []string{"skills/a", "skills/b", "skills/c", "skills/d"} {
		if err := os.MkdirAll(filepath.Join(base, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, base, "skills/a/SKILL.md", skillMd("A"))
	writeFile(t, base, "skills/c/SKILL.md", "name: C\n")
	writeFile(t, base, "skills/d/SKILL.md", "---\ndescription: D\n---\n")

	list, err := DiscoverCandidates(base, DiscoverOptions{})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error: %v", err)
	}

	root := findCandidate(list, ".")
	if root == nil || root.Valid || root.Reason != ReasonMissingSkillMd {
		t.Errorf("root = %+v, want invalid missing_skill_md", root)
	}

	a := findCandidate(list, "skills/a")
	if a == nil || !a.Valid || a.Name != "A" {
		t.Errorf("skills/a = %+v", a)
	}

	want := map[string]string{
		"skills/b": ReasonMissingSkillMd,
		"skills/c": ReasonInvalidFrontmatter,
		"skills/d": ReasonMissingName,
	}
	for subpath, reason := range want {
		c := findCandidate(list, subpath)
		if c == nil {
			t.Errorf("%s not listed", subpath)
			continue
		}
		if c.Valid || c.Reason != reason {
			t.Errorf("%s = %+v, want reason %q", subpath, c, reason)
		}
	}
}

func TestDiscoverCandidates_OrderAndNesting(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "SKILL.md", skillMd("Root"))
	writeFile(t, base, "z/SKILL.md", skillMd("Z"))
	writeFile(t, base, "skills/a/SKILL.md", skillMd("A"))
	writeFile(t, base, ".agents/skills/b/SKILL.md", skillMd("B"))

	list, err := DiscoverCandidates(base, DiscoverOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range list {
		got = append(got, c.Subpath)
	}
	want := []string{".", ".agents/skills/b", "skills/a", "z"}
	if len(got) != len(want) {
		t.Fatalf("subpaths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("subpaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverCandidates_SkipsIgnoredDirs(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, ".git/hooks/SKILL.md", skillMd("git"))
	writeFile(t, base, ".hidden/SKILL.md", skillMd("hidden"))
	writeFile(t, base, "node_modules/pkg/SKILL.md", skillMd("npm"))
	writeFile(t, base, "examples/demo/SKILL.md", skillMd("demo"))
	writeFile(t, base, "a/b/c/d/e/SKILL.md", skillMd("deep"))
	writeFile(t, base, "a/b/SKILL.md", skillMd("shallow"))

	list, err := DiscoverCandidates(base, DiscoverOptions{Ignore: []string{"examples/**"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range list {
		switch c.Subpath {
		case ".", "a/b":
		default:
			t.Errorf("unexpected candidate %q", c.Subpath)
		}
	}
	if findCandidate(list, "a/b") == nil {
		t.Error("a/b should be discovered")
	}
}

func TestDiscoverCandidates_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "x")

	if _, err := DiscoverCandidates(filepath.Join(dir, "file.txt"), DiscoverOptions{}); err == nil {
		t.Error("expected error for a file root")
	}
	if _, err := DiscoverCandidates(filepath.Join(dir, "missing"), DiscoverOptions{}); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestValidCandidates(t *testing.T) {
	list := []SkillCandidate{
		{Subpath: ".", Reason: ReasonMissingSkillMd},
		{Subpath: "skills/a", Valid: true, Name: "A"},
		{Subpath: "skills/b", Valid: true, Name: "B"},
	}
	valid := ValidCandidates(list)
	if len(valid) != 2 || valid[0].Subpath != "skills/a" || valid[1].Subpath != "skills/b" {
		t.Errorf("ValidCandidates = %+v", valid)
	}
}
