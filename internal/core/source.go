package core

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultHost is assumed for "owner/repo" shorthand.
const DefaultHost = "github.com"

var (
	// scheme://host/owner/repo[/rest]
	urlSourcePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://([^/@]+@)?([^/]+)/([^/]+)/([^/]+)(/.*)?$`)

	// host/owner/repo[/rest]; the host must contain a dot.
	hostSourcePattern = regexp.MustCompile(`^([a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)+(?::[0-9]+)?)/([^/]+)/([^/]+)(/.*)?$`)

	// owner/repo[/tree/branch/subpath...]
	shorthandPattern = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)/([a-zA-Z0-9_.-]+)(/tree(?:/.*)?)?/?$`)

	// git@host:owner/repo.git
	scpSourcePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+@([a-zA-Z0-9.-]+):([^/]+)/([^/]+?)(?:\.git)?/?$`)
)

// ParseSource turns a user-supplied source string into a SourceDescriptor.
//
// Supported forms, checked in order:
//   - "scheme://host/owner/repo[/tree/<branch>/<subpath...>]"
//   - "host/owner/repo[/tree/<branch>/<subpath...>]"
//   - "owner/repo[/tree/<branch>/<subpath...>]" (host is github.com)
//   - "git@host:owner/repo.git" (kept verbatim)
//
// Anything else is a local path and is returned verbatim. ParseSource never
// touches the network or the filesystem and never fails.
func ParseSource(input string) SourceDescriptor {
	input = strings.TrimSpace(input)

	if m := urlSourcePattern.FindStringSubmatch(input); m != nil {
		return remoteDescriptor(m[2], m[3], m[4], m[5])
	}

	if m := hostSourcePattern.FindStringSubmatch(input); m != nil {
		return remoteDescriptor(m[1], m[2], m[3], m[4])
	}

	if m := shorthandPattern.FindStringSubmatch(input); m != nil && !isDotSegment(m[1]) && !isDotSegment(m[2]) {
		return remoteDescriptor(DefaultHost, m[1], m[2], m[3])
	}

	if m := scpSourcePattern.FindStringSubmatch(input); m != nil {
		return SourceDescriptor{
			CloneURL: input,
			Remote:   true,
			Host:     m[1],
			Owner:    m[2],
			Repo:     m[3],
		}
	}

	return SourceDescriptor{CloneURL: input}
}

func remoteDescriptor(host, owner, repo, rest string) SourceDescriptor {
	repo = strings.TrimSuffix(repo, ".git")
	d := SourceDescriptor{
		CloneURL: fmt.Sprintf("https://%s/%s/%s.git", host, owner, repo),
		Remote:   true,
		Host:     host,
		Owner:    owner,
		Repo:     repo,
	}
	d.Branch, d.Subpath = parseTreeSuffix(rest)
	return d
}

// parseTreeSuffix extracts branch and subpath from "/tree/<branch>/<subpath...>".
// Other suffixes (e.g. "/blob/...") are ignored.
func parseTreeSuffix(rest string) (branch, subpath string) {
	var parts []string
	for _, p := range strings.Split(rest, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 || parts[0] != "tree" {
		return "", ""
	}
	return parts[1], strings.Join(parts[2:], "/")
}

func isDotSegment(s string) bool {
	return s == "." || s == ".."
}

// RepoKey returns a lowercase "host/owner/repo" key identifying the
// repository, or "" for local sources.
func (d SourceDescriptor) RepoKey() string {
	if !d.Remote || d.Owner == "" || d.Repo == "" {
		return ""
	}
	return strings.ToLower(d.Host + "/" + d.Owner + "/" + d.Repo)
}

// ApplyCloneURLOverride replaces the clone URL when overrides holds an entry
// for the descriptor's RepoKey. Branch and subpath are preserved.
func (d SourceDescriptor) ApplyCloneURLOverride(overrides map[string]string) SourceDescriptor {
	key := d.RepoKey()
	if key == "" || len(overrides) == 0 {
		return d
	}
	if url, ok := overrides[key]; ok && url != "" {
		d.CloneURL = url
	}
	return d
}

// String renders the descriptor for logs and messages.
func (d SourceDescriptor) String() string {
	s := d.CloneURL
	if d.Branch != "" {
		s += "@" + d.Branch
	}
	if d.Subpath != "" {
		s += ":" + d.Subpath
	}
	return s
}
