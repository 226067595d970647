package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultCloneTimeout bounds a single repository fetch.
const DefaultCloneTimeout = 60 * time.Second

// CloneErrorKind classifies why a git clone failed.
type CloneErrorKind int

const (
	CloneErrUnknown CloneErrorKind = iota
	CloneErrAuth
	CloneErrRepoNotFound
	CloneErrBranchNotFound
	CloneErrNetwork
	CloneErrSSHKey
	CloneErrHostKey
	CloneErrTimeout
)

func (k CloneErrorKind) String() string {
	switch k {
	case CloneErrAuth:
		return "authentication required"
	case CloneErrRepoNotFound:
		return "repository not found"
	case CloneErrBranchNotFound:
		return "branch not found"
	case CloneErrNetwork:
		return "network error"
	case CloneErrSSHKey:
		return "ssh key error"
	case CloneErrHostKey:
		return "ssh host key error"
	case CloneErrTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// CloneError is returned when fetching a repository fails. It carries the
// raw git output and a few hints the CLI prints under the error.
type CloneError struct {
	Kind      CloneErrorKind
	URL       string
	Branch    string
	RawOutput string
	Hints     []string
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("git clone %s failed (%s): %s", e.URL, e.Kind, e.firstLine())
}

func (e *CloneError) firstLine() string {
	for _, line := range strings.Split(e.RawOutput, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "Cloning into") && !strings.HasPrefix(line, "warning:") {
			return line
		}
	}
	return "clone failed"
}

// IsCloneError reports whether err carries a *CloneError.
func IsCloneError(err error) (*CloneError, bool) {
	var ce *CloneError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// cloneRepo shallow-clones url into a fresh temp directory and returns its
// path. The caller removes the directory. A failed clone leaves nothing behind.
func cloneRepo(ctx context.Context, url, branch string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultCloneTimeout
	}

	tmpDir, err := os.MkdirTemp("", "skillhub-clone-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}

	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, "--", url, tmpDir)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.CombinedOutput()
	if err == nil {
		return tmpDir, nil
	}
	_ = os.RemoveAll(tmpDir)

	if errors.Is(err, exec.ErrNotFound) {
		return "", fmt.Errorf("git is not installed: %w", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", classifyCloneError(url, branch, fmt.Sprintf("clone timed out after %s", timeout))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	return "", classifyCloneError(url, branch, string(output))
}

func classifyCloneError(url, branch, output string) *CloneError {
	kind := classifyCloneOutput(output)
	return &CloneError{
		Kind:      kind,
		URL:       url,
		Branch:    branch,
		RawOutput: strings.TrimSpace(output),
		Hints:     cloneHints(kind, url),
	}
}

// cloneOutputPatterns maps lowercase git output fragments to a kind.
// Order matters: the first kind with a matching fragment wins.
var cloneOutputPatterns = []struct {
	kind      CloneErrorKind
	fragments []string
}{
	{CloneErrTimeout, []string{"timed out after"}},
	{CloneErrSSHKey, []string{"permission denied (publickey)", "no such identity", "load key"}},
	{CloneErrHostKey, []string{"host key verification failed", "offending", "remote host identification has changed"}},
	{CloneErrAuth, []string{"could not read username", "could not read password", "authentication failed", "invalid credentials", "logon failed", "error: 401", "error: 403"}},
	{CloneErrBranchNotFound, []string{"remote branch", "not found in upstream"}},
	{CloneErrRepoNotFound, []string{"repository not found", "does not appear to be a git repository", "does not exist", "not found"}},
	{CloneErrNetwork, []string{"could not resolve host", "connection refused", "connection timed out", "network is unreachable", "no route to host"}},
}

func classifyCloneOutput(output string) CloneErrorKind {
	lower := strings.ToLower(output)
	for _, p := range cloneOutputPatterns {
		for _, f := range p.fragments {
			if strings.Contains(lower, f) {
				return p.kind
			}
		}
	}
	return CloneErrUnknown
}

func cloneHints(kind CloneErrorKind, url string) []string {
	switch kind {
	case CloneErrAuth:
		hints := []string{"Configure a git credential helper, or authenticate with your host's CLI"}
		if ssh := httpsToSSH(url); ssh != "" {
			hints = append(hints, "Try SSH instead: skillhub config set cloneURLOverrides."+repoKeyFromURL(url)+" "+ssh)
		}
		return hints
	case CloneErrSSHKey:
		return []string{"Ensure your SSH key is loaded: `ssh-add -l`"}
	case CloneErrHostKey:
		return []string{"Connect once manually with `ssh -T` and accept the host key"}
	case CloneErrBranchNotFound:
		return []string{"Check the branch name in the /tree/<branch>/ part of the source"}
	case CloneErrRepoNotFound:
		return []string{"Verify the repository URL and that you have access to it"}
	case CloneErrNetwork:
		return []string{"Check your connection and the hostname in the URL"}
	case CloneErrTimeout:
		return []string{"Raise cloneTimeout in the config for very large repositories"}
	default:
		return nil
	}
}

// httpsToSSH converts https://host/owner/repo.git to git@host:owner/repo.git.
func httpsToSSH(url string) string {
	rest, ok := strings.CutPrefix(url, "https://")
	if !ok {
		return ""
	}
	host, path, ok := strings.Cut(rest, "/")
	path = strings.TrimSuffix(path, "/")
	if !ok || strings.Count(path, "/") != 1 {
		return ""
	}
	if !strings.HasSuffix(path, ".git") {
		path += ".git"
	}
	return "git@" + host + ":" + path
}

func repoKeyFromURL(url string) string {
	return ParseSource(url).RepoKey()
}
