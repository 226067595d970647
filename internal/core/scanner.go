package core

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const (
	skillFileName = "SKILL.md"

	// DefaultDiscoveryDepth bounds how deep DiscoverCandidates walks.
	DefaultDiscoveryDepth = 4
)

// containerDirs hold one skill per immediate subdirectory. Their children
// are reported even when they lack a SKILL.md, so the user can see why.
var containerDirs = []string{"skills", ".agents/skills", ".claude/skills"}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// allowedHiddenDirs are dot-directories that may hold skills.
var allowedHiddenDirs = map[string]bool{
	".agents": true,
	".claude": true,
}

// DiscoverOptions configures DiscoverCandidates.
type DiscoverOptions struct {
	MaxDepth int      // 0 means DefaultDiscoveryDepth
	Ignore   []string // doublestar patterns matched against slash-separated subpaths
}

// ParseSkillMd reads and parses the YAML frontmatter from a SKILL.md file.
// Failures are returned as *InvalidSkillError carrying the reason.
func ParseSkillMd(path string) (*SkillMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InvalidSkillError{Reason: ReasonMissingSkillMd, Path: path, Err: err}
		}
		return nil, &InvalidSkillError{Reason: ReasonReadFailed, Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Look for opening ---
	if !scanner.Scan() || strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff")) != "---" {
		if err := scanner.Err(); err != nil {
			return nil, &InvalidSkillError{Reason: ReasonReadFailed, Path: path, Err: err}
		}
		return nil, &InvalidSkillError{
			Reason: ReasonInvalidFrontmatter,
			Path:   path,
			Err:    fmt.Errorf("no frontmatter in %s", path),
		}
	}

	// Collect frontmatter lines until closing ---
	var frontmatter, body strings.Builder
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if closed {
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}
		if strings.TrimSpace(line) == "---" {
			closed = true
			continue
		}
		frontmatter.WriteString(line)
		frontmatter.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, &InvalidSkillError{Reason: ReasonReadFailed, Path: path, Err: err}
	}
	if !closed {
		return nil, &InvalidSkillError{
			Reason: ReasonInvalidFrontmatter,
			Path:   path,
			Err:    fmt.Errorf("unterminated frontmatter in %s", path),
		}
	}

	// The block must be a flat mapping; decoding into a map rejects scalars
	// and sequences before the typed decode.
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(frontmatter.String()), &raw); err != nil {
		return nil, &InvalidSkillError{
			Reason: ReasonInvalidFrontmatter,
			Path:   path,
			Err:    fmt.Errorf("parsing frontmatter in %s: %w", path, err),
		}
	}

	var metadata SkillMetadata
	if err := yaml.Unmarshal([]byte(frontmatter.String()), &metadata); err != nil {
		return nil, &InvalidSkillError{
			Reason: ReasonInvalidFrontmatter,
			Path:   path,
			Err:    fmt.Errorf("parsing frontmatter in %s: %w", path, err),
		}
	}

	metadata.Name = strings.TrimSpace(metadata.Name)
	if metadata.Name == "" {
		return nil, &InvalidSkillError{
			Reason: ReasonMissingName,
			Path:   path,
			Err:    fmt.Errorf("SKILL.md missing name field: %s", path),
		}
	}
	metadata.Description = strings.TrimSpace(metadata.Description)
	metadata.Body = strings.TrimLeft(body.String(), "\n")

	return &metadata, nil
}

// DiscoverCandidates lists every directory under root that could be a skill.
//
// The root itself is always the first candidate (subpath "."). Other
// candidates are directories containing a SKILL.md, found within
// opts.MaxDepth levels, plus every immediate subdirectory of the
// well-known skill container directories. Invalid candidates are reported
// with a reason rather than dropped. Nothing is written.
func DiscoverCandidates(root string, opts DiscoverOptions) ([]SkillCandidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultDiscoveryDepth
	}

	subpaths := map[string]bool{".": true}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; the root was checked above.
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if skipDiscoveryDir(d.Name(), rel, opts.Ignore) {
			return filepath.SkipDir
		}
		if depth := strings.Count(rel, "/") + 1; depth > maxDepth {
			return filepath.SkipDir
		}

		if fileExists(filepath.Join(p, skillFileName)) {
			subpaths[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	for _, container := range containerDirs {
		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(container)))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			rel := path.Join(container, entry.Name())
			if isIgnored(rel, opts.Ignore) {
				continue
			}
			subpaths[rel] = true
		}
	}

	candidates := make([]SkillCandidate, 0, len(subpaths))
	for rel := range subpaths {
		candidates = append(candidates, evaluateCandidate(root, rel))
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].Subpath, candidates[j].Subpath
		if a == "." || b == "." {
			return a == "." && b != "."
		}
		return a < b
	})
	return candidates, nil
}

// ValidCandidates filters candidates down to the valid ones, keeping order.
func ValidCandidates(candidates []SkillCandidate) []SkillCandidate {
	var valid []SkillCandidate
	for _, c := range candidates {
		if c.Valid {
			valid = append(valid, c)
		}
	}
	return valid
}

func evaluateCandidate(root, subpath string) SkillCandidate {
	c := SkillCandidate{Subpath: subpath}
	dir := filepath.Join(root, filepath.FromSlash(subpath))

	metadata, err := ParseSkillMd(filepath.Join(dir, skillFileName))
	if err != nil {
		c.Reason = ReasonReadFailed
		if ie, ok := IsInvalidSkill(err); ok {
			c.Reason = ie.Reason
		}
		return c
	}

	c.Valid = true
	c.Name = metadata.Name
	c.Description = metadata.Description
	return c
}

func skipDiscoveryDir(name, rel string, ignore []string) bool {
	if skippedDirs[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && !allowedHiddenDirs[name] {
		return true
	}
	return isIgnored(rel, ignore)
}

func isIgnored(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
