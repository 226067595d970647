package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// privateSupportHints are path fragments of skillhub's own storage. Entries
// living under them are never reported as user skills.
var privateSupportHints = []string{
	"Application Support/com.skillhub.app/skills",
	".skillhub/skills",
}

// DetectedSkill is a directory found inside a tool's skills directory.
type DetectedSkill struct {
	Tool       string `json:"tool"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	IsLink     bool   `json:"isLink"`
	LinkTarget string `json:"linkTarget,omitempty"`
}

// ScanOptions configures ScanToolDir.
type ScanOptions struct {
	// PrivateRoots are absolute directories owned by skillhub (e.g. the
	// central repository). Entries under them, or links into them, are skipped.
	PrivateRoots []string
}

// ScanToolDir lists the immediate directory entries of dir, including
// symlinks that resolve to directories. A missing dir yields no entries.
func ScanToolDir(a Adapter, dir string, opts ScanOptions) ([]DetectedSkill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var results []DetectedSkill
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		isLink := entry.Type()&os.ModeSymlink != 0
		if !entry.IsDir() && !(isLink && dirExists(path)) {
			continue
		}
		if a.reserves(name) {
			continue
		}

		var linkTarget string
		if isLink {
			linkTarget = readLinkAbs(path)
		}

		if isPrivatePath(path, opts.PrivateRoots) ||
			(linkTarget != "" && isPrivatePath(linkTarget, opts.PrivateRoots)) {
			continue
		}

		results = append(results, DetectedSkill{
			Tool:       a.Key,
			Name:       name,
			Path:       path,
			IsLink:     isLink,
			LinkTarget: linkTarget,
		})
	}
	return results, nil
}

// readLinkAbs returns the link's target, made absolute relative to the
// link's directory. Empty when the link cannot be read.
func readLinkAbs(path string) string {
	target, err := os.Readlink(path)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target)
}

func isPrivatePath(path string, roots []string) bool {
	// Hints match whole path segments only.
	slashed := "/" + strings.Trim(filepath.ToSlash(path), "/") + "/"
	for _, hint := range privateSupportHints {
		if strings.Contains(slashed, "/"+hint+"/") {
			return true
		}
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}
